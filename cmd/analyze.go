package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/app"
	"github.com/spigell/resume-matcher/internal/secrets"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Score a PDF resume against a job description and save the result",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		rt, err := newRuntime(ctx)
		if err != nil {
			return err
		}
		defer rt.Close()

		username, _ := cmd.Flags().GetString("username")
		account, err := rt.signIn(ctx, terminalPrompter{}, username)
		if err != nil {
			return err
		}

		resumePath, _ := cmd.Flags().GetString("resume")
		jobText, _ := cmd.Flags().GetString("job")
		jobFile, _ := cmd.Flags().GetString("job-file")
		title, _ := cmd.Flags().GetString("title")

		upload, err := loadUpload(resumePath, jobText, jobFile, title)
		if err != nil {
			return err
		}

		apiKey, err := rt.resolveAPIKey()
		if err != nil && !errors.Is(err, secrets.ErrNotConfigured) {
			return err
		}

		res, err := rt.svc.Analyze(ctx, account.ID, upload, apiKey)
		if err != nil {
			return rt.describe(err)
		}

		printView(cmd.OutOrStdout(), res.View())
		fmt.Fprintf(cmd.OutOrStdout(), "Saved as record %s.\n", res.Record.ID)

		if export, _ := cmd.Flags().GetBool("export"); export {
			return exportResult(ctx, cmd, rt, res)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringP("username", "u", "", "account username")
	analyzeCmd.Flags().StringP("resume", "r", "", "path to the PDF resume")
	analyzeCmd.Flags().String("job", "", "job description text")
	analyzeCmd.Flags().String("job-file", "", "file with the job description")
	analyzeCmd.Flags().StringP("title", "t", "", "optional job title")
	analyzeCmd.Flags().Bool("export", false, "export the report after the analysis")

	analyzeCmd.MarkFlagRequired("resume")
	analyzeCmd.MarkFlagsMutuallyExclusive("job", "job-file")
}

// loadUpload reads the résumé and job description named by the user. A job
// description starting with @ is read from that file.
func loadUpload(resumePath, jobText, jobFile, title string) (app.Upload, error) {
	data, err := os.ReadFile(resumePath)
	if err != nil {
		return app.Upload{}, fmt.Errorf("reading resume: %w", err)
	}

	if jobFile == "" && strings.HasPrefix(jobText, "@") {
		jobFile = strings.TrimPrefix(jobText, "@")
	}
	if jobFile != "" {
		content, err := os.ReadFile(jobFile)
		if err != nil {
			return app.Upload{}, fmt.Errorf("reading job description: %w", err)
		}
		jobText = string(content)
	}

	return app.Upload{
		Filename:       filepath.Base(resumePath),
		Data:           data,
		JobDescription: jobText,
		JobTitle:       title,
	}, nil
}

func exportResult(ctx context.Context, cmd *cobra.Command, rt *runtime, res *app.Result) error {
	sinks, err := rt.sinks(ctx)
	if err != nil {
		return err
	}

	for _, sink := range sinks {
		location, err := rt.svc.Export(ctx, res, sink)
		if err != nil {
			rt.logger.Error("exporting report", zap.Error(err))
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", location)
	}

	return nil
}
