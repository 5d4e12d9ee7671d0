package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/ai/gemini"
	"github.com/spigell/resume-matcher/internal/config"
	"github.com/spigell/resume-matcher/internal/logger"
)

var checkKeyCmd = &cobra.Command{
	Use:   "check-key",
	Short: "Verify that the Gemini API key works",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		rt, err := newRuntime(ctx)
		if err != nil {
			return err
		}
		defer rt.Close()

		apiKey, err := rt.resolveAPIKey()
		if err != nil {
			return fmt.Errorf("%w (set %s or ai.gemini.api-key-file)", err, config.APIKeyEnv)
		}

		gen, err := gemini.NewGenerator(ctx, apiKey, rt.cfg.AI.Gemini.Model)
		if err != nil {
			return err
		}

		log := logger.WithAIFields(rt.logger, rt.cfg.AI.Provider, gen.Model())

		if err := gen.Ping(ctx); err != nil {
			log.Debug("api key check failed", zap.Error(err))
			return fmt.Errorf("the API key was rejected or the model is unreachable: %w", err)
		}

		log.Debug("api key check passed")
		fmt.Fprintf(cmd.OutOrStdout(), "API key is valid for model %s.\n", gen.Model())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkKeyCmd)
}
