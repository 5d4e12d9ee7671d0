package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, DefaultDatabasePath, cfg.Database.Path)
	assert.Equal(t, ProviderGemini, cfg.AI.Provider)
	assert.Equal(t, DefaultModel, cfg.AI.Gemini.Model)
	assert.Equal(t, DefaultTimeout, cfg.AI.Gemini.Timeout)
	assert.Equal(t, int64(DefaultMaxBytes), cfg.Upload.MaxBytes)
	assert.Equal(t, DefaultHistoryLimit, cfg.History.Limit)
	assert.False(t, cfg.Export.S3.Enabled())
}

func TestLoadFromYAML(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(`
database:
  path: /var/lib/matcher.db
ai:
  gemini:
    model: gemini-2.5-pro
    timeout: 90s
history:
  limit: 25
export:
  s3:
    bucket: reports
    region: eu-central-1
`)))

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/matcher.db", cfg.Database.Path)
	assert.Equal(t, "gemini-2.5-pro", cfg.AI.Gemini.Model)
	assert.Equal(t, 90*time.Second, cfg.AI.Gemini.Timeout)
	assert.Equal(t, 25, cfg.History.Limit)
	assert.True(t, cfg.Export.S3.Enabled())
	assert.Equal(t, "eu-central-1", cfg.Export.S3.Region)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("RESUME_MATCHER_HISTORY_LIMIT", "3")
	t.Setenv("RESUME_MATCHER_AI_GEMINI_TIMEOUT", "5s")
	t.Setenv("RESUME_MATCHER_UPLOAD_MAX_BYTES", "1024")

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.History.Limit)
	assert.Equal(t, 5*time.Second, cfg.AI.Gemini.Timeout)
	assert.Equal(t, int64(1024), cfg.Upload.MaxBytes)
}

func TestLoadDotEnv(t *testing.T) {
	const key = "RESUME_MATCHER_DATABASE_PATH"
	require.Empty(t, os.Getenv(key))
	t.Cleanup(func() { os.Unsetenv(key) })

	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte(key+"=from-dotenv.db\n"), 0o600))

	cfg, err := Load(viper.New(), filepath.Join(t.TempDir(), "missing.env"), envFile)
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv.db", cfg.Database.Path)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	v := viper.New()
	v.Set("history.limit", 0)
	v.Set("ai.provider", "openai")
	v.Set("export.s3.bucket", "reports")

	_, err := Load(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "history.limit")
	assert.Contains(t, err.Error(), "openai")
	assert.Contains(t, err.Error(), "export.s3.region")
}
