package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix is prepended to every configuration key looked up in the environment.
	EnvPrefix = "RESUME_MATCHER"
	// APIKeyEnv is the conventional environment variable holding the Gemini API key.
	APIKeyEnv = "GEMINI_API_KEY"

	ProviderGemini = "gemini"

	DefaultDatabasePath = "resume_matcher.db"
	DefaultModel        = "gemini-2.5-flash"
	DefaultTimeout      = 60 * time.Second
	DefaultMaxLogLength = 512
	DefaultMaxBytes     = 10 << 20
	DefaultHistoryLimit = 10
	DefaultExportDir    = "."
)

type Config struct {
	Debug    bool           `mapstructure:"debug"`
	JSON     bool           `mapstructure:"json"`
	Database DatabaseConfig `mapstructure:"database"`
	AI       AIConfig       `mapstructure:"ai"`
	Upload   UploadConfig   `mapstructure:"upload"`
	History  HistoryConfig  `mapstructure:"history"`
	Export   ExportConfig   `mapstructure:"export"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type AIConfig struct {
	Provider string       `mapstructure:"provider"`
	Gemini   GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	// APIKeyFile points to a file holding the API key. The key itself is never
	// read from the config file.
	APIKeyFile   string        `mapstructure:"api-key-file"`
	Model        string        `mapstructure:"model"`
	Timeout      time.Duration `mapstructure:"timeout"`
	MaxLogLength int           `mapstructure:"max-log-length"`
}

type UploadConfig struct {
	MaxBytes int64 `mapstructure:"max-bytes"`
}

type HistoryConfig struct {
	Limit int `mapstructure:"limit"`
}

type ExportConfig struct {
	Dir string   `mapstructure:"dir"`
	S3  S3Config `mapstructure:"s3"`
}

type S3Config struct {
	Bucket          string `mapstructure:"bucket"`
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"`
	Prefix          string `mapstructure:"prefix"`
	AccessKeyID     string `mapstructure:"access-key-id"`
	SecretAccessKey string `mapstructure:"secret-access-key"`
}

// Enabled reports whether reports should also be uploaded to S3.
func (c S3Config) Enabled() bool {
	return strings.TrimSpace(c.Bucket) != ""
}

// SetDefaults registers every known key so that environment overrides are
// visible through viper.AllSettings.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("debug", false)
	v.SetDefault("json", false)
	v.SetDefault("database.path", DefaultDatabasePath)
	v.SetDefault("ai.provider", ProviderGemini)
	v.SetDefault("ai.gemini.api-key-file", "")
	v.SetDefault("ai.gemini.model", DefaultModel)
	v.SetDefault("ai.gemini.timeout", DefaultTimeout)
	v.SetDefault("ai.gemini.max-log-length", DefaultMaxLogLength)
	v.SetDefault("upload.max-bytes", DefaultMaxBytes)
	v.SetDefault("history.limit", DefaultHistoryLimit)
	v.SetDefault("export.dir", DefaultExportDir)
	v.SetDefault("export.s3.bucket", "")
	v.SetDefault("export.s3.region", "")
	v.SetDefault("export.s3.endpoint", "")
	v.SetDefault("export.s3.prefix", "")
	v.SetDefault("export.s3.access-key-id", "")
	v.SetDefault("export.s3.secret-access-key", "")
}

// Load applies dotenv files, defaults and environment bindings to v and
// decodes the merged settings. Missing dotenv files are ignored.
func Load(v *viper.Viper, envFiles ...string) (*Config, error) {
	if err := loadDotEnv(envFiles...); err != nil {
		return nil, err
	}

	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		Result:           cfg,
	})
	if err != nil {
		return nil, fmt.Errorf("creating config decoder: %w", err)
	}

	if err := decoder.Decode(v.AllSettings()); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Database.Path) == "" {
		errs = append(errs, errors.New("database.path must not be empty"))
	}
	if c.AI.Provider != ProviderGemini {
		errs = append(errs, fmt.Errorf("ai.provider %q is not supported", c.AI.Provider))
	}
	if strings.TrimSpace(c.AI.Gemini.Model) == "" {
		errs = append(errs, errors.New("ai.gemini.model must not be empty"))
	}
	if c.AI.Gemini.Timeout < 0 {
		errs = append(errs, errors.New("ai.gemini.timeout must not be negative"))
	}
	if c.Upload.MaxBytes <= 0 {
		errs = append(errs, errors.New("upload.max-bytes must be positive"))
	}
	if c.History.Limit <= 0 {
		errs = append(errs, errors.New("history.limit must be positive"))
	}
	if c.Export.S3.Enabled() && strings.TrimSpace(c.Export.S3.Region) == "" {
		errs = append(errs, errors.New("export.s3.region is required when export.s3.bucket is set"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}

	return nil
}

func loadDotEnv(files ...string) error {
	for _, file := range files {
		if strings.TrimSpace(file) == "" {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading env file %q: %w", file, err)
		}
	}
	return nil
}
