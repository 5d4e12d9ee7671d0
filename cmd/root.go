package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/ai"
	"github.com/spigell/resume-matcher/internal/ai/gemini"
	"github.com/spigell/resume-matcher/internal/app"
	"github.com/spigell/resume-matcher/internal/config"
	"github.com/spigell/resume-matcher/internal/logger"
	"github.com/spigell/resume-matcher/internal/report"
	"github.com/spigell/resume-matcher/internal/secrets"
	"github.com/spigell/resume-matcher/internal/store"
)

const (
	appName = "resume-matcher"

	passwordEnv = "RESUME_MATCHER_PASSWORD"
)

var (
	// Used for flags.
	cfgFile string
	envFile string

	rootCmd = &cobra.Command{
		Use:          appName,
		Short:        "resume-matcher scores a PDF resume against a job description with Gemini and keeps a history of results",
		SilenceUsage: true,
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is resume-matcher.yaml in current directory)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file with environment overrides")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("db", "", "path to the sqlite database")
	rootCmd.PersistentFlags().String("api-key-file", "", "file holding the Gemini API key")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("database.path", rootCmd.PersistentFlags().Lookup("db"))
	viper.BindPFlag("ai.gemini.api-key-file", rootCmd.PersistentFlags().Lookup("api-key-file"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(appName)
		viper.SetConfigType("yaml")
	}

	// Running without a config file is fine; a broken one is not.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

// runtime bundles everything a command needs.
type runtime struct {
	cfg    *config.Config
	logger *zap.Logger
	store  *store.Store
	svc    *app.Service
}

func newRuntime(ctx context.Context) (*runtime, error) {
	cfg, err := config.Load(viper.GetViper(), envFile)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.JSON, cfg.Debug)
	if err != nil {
		return nil, fmt.Errorf("creating a logger: %w", err)
	}

	log.Debug("starting", zap.String("version", version), zap.String("database", cfg.Database.Path))

	st, err := store.Open(ctx, cfg.Database.Path, store.WithLogger(log))
	if err != nil {
		return nil, err
	}

	svc := app.New(app.Options{
		Accounts:       st.Accounts,
		History:        st.History,
		Assessors:      geminiAssessors(cfg, log),
		Logger:         log,
		MaxUploadBytes: cfg.Upload.MaxBytes,
		HistoryLimit:   cfg.History.Limit,
	})

	return &runtime{cfg: cfg, logger: log, store: st, svc: svc}, nil
}

func (rt *runtime) Close() {
	if err := rt.store.Close(); err != nil {
		rt.logger.Warn("closing the store", zap.Error(err))
	}
	_ = rt.logger.Sync()
}

func geminiAssessors(cfg *config.Config, log *zap.Logger) app.AssessorFactory {
	return func(ctx context.Context, apiKey string) (ai.Assessor, error) {
		gen, err := gemini.NewGenerator(ctx, apiKey, cfg.AI.Gemini.Model)
		if err != nil {
			return nil, err
		}

		aiLogger := logger.WithAIFields(log, cfg.AI.Provider, gen.Model())
		return gemini.NewAssessor(gen, aiLogger, cfg.AI.Gemini.MaxLogLength, cfg.AI.Gemini.Timeout), nil
	}
}

// resolveAPIKey loads the key from the configured file or GEMINI_API_KEY.
func (rt *runtime) resolveAPIKey() (string, error) {
	return secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: rt.cfg.AI.Gemini.APIKeyFile,
		Env:  config.APIKeyEnv,
	})
}

// sinks returns the configured export targets: the export directory and,
// when a bucket is set, S3.
func (rt *runtime) sinks(ctx context.Context) ([]report.Sink, error) {
	sinks := []report.Sink{report.DirSink{Dir: rt.cfg.Export.Dir}}

	s3cfg := rt.cfg.Export.S3
	if s3cfg.Enabled() {
		sink, err := report.NewS3Sink(ctx, report.S3Options{
			Bucket:          s3cfg.Bucket,
			Region:          s3cfg.Region,
			Endpoint:        s3cfg.Endpoint,
			Prefix:          s3cfg.Prefix,
			AccessKeyID:     s3cfg.AccessKeyID,
			SecretAccessKey: s3cfg.SecretAccessKey,
		})
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, sink)
	}

	return sinks, nil
}

// describe logs err and turns it into the message shown to the user.
func (rt *runtime) describe(err error) error {
	rt.logger.Debug("command failed", zap.Error(err))
	return errors.New(app.Describe(err))
}

// signIn authenticates the --username account with the password from
// RESUME_MATCHER_PASSWORD or an interactive prompt.
func (rt *runtime) signIn(ctx context.Context, p prompter, username string) (*store.Account, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		input, err := p.Input("Username", false)
		if err != nil {
			return nil, err
		}
		username = input
	}

	password := os.Getenv(passwordEnv)
	if password == "" {
		input, err := p.Input("Password", true)
		if err != nil {
			return nil, err
		}
		password = input
	}

	account, err := rt.svc.Login(ctx, username, password)
	if err != nil {
		return nil, rt.describe(err)
	}

	return account, nil
}
