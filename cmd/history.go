package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect and manage saved analyses",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the most recent analyses",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		rt, err := newRuntime(ctx)
		if err != nil {
			return err
		}
		defer rt.Close()

		account, err := rt.signIn(ctx, terminalPrompter{}, historyUsername(cmd))
		if err != nil {
			return err
		}

		records, err := rt.svc.History(ctx, account.ID)
		if err != nil {
			return rt.describe(err)
		}

		printHistory(cmd.OutOrStdout(), records)
		return nil
	},
}

var historyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show score statistics",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		rt, err := newRuntime(ctx)
		if err != nil {
			return err
		}
		defer rt.Close()

		account, err := rt.signIn(ctx, terminalPrompter{}, historyUsername(cmd))
		if err != nil {
			return err
		}

		stats, err := rt.svc.Stats(ctx, account.ID)
		if err != nil {
			return rt.describe(err)
		}

		printStats(cmd.OutOrStdout(), stats)
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show RECORD_ID",
	Short: "Show a saved analysis",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		rt, err := newRuntime(ctx)
		if err != nil {
			return err
		}
		defer rt.Close()

		account, err := rt.signIn(ctx, terminalPrompter{}, historyUsername(cmd))
		if err != nil {
			return err
		}

		res, err := rt.svc.Record(ctx, account.ID, args[0])
		if err != nil {
			return rt.describe(err)
		}

		printView(cmd.OutOrStdout(), res.View())
		return nil
	},
}

var historyExportCmd = &cobra.Command{
	Use:   "export RECORD_ID",
	Short: "Export a saved analysis as a text report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		rt, err := newRuntime(ctx)
		if err != nil {
			return err
		}
		defer rt.Close()

		account, err := rt.signIn(ctx, terminalPrompter{}, historyUsername(cmd))
		if err != nil {
			return err
		}

		res, err := rt.svc.Record(ctx, account.ID, args[0])
		if err != nil {
			return rt.describe(err)
		}

		return exportResult(ctx, cmd, rt, res)
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete RECORD_ID",
	Short: "Delete a saved analysis",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		rt, err := newRuntime(ctx)
		if err != nil {
			return err
		}
		defer rt.Close()

		account, err := rt.signIn(ctx, terminalPrompter{}, historyUsername(cmd))
		if err != nil {
			return err
		}

		if err := rt.svc.Delete(ctx, account.ID, args[0]); err != nil {
			return rt.describe(err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Record %s deleted.\n", args[0])
		return nil
	},
}

func historyUsername(cmd *cobra.Command) string {
	username, _ := cmd.Flags().GetString("username")
	return username
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd, historyStatsCmd, historyShowCmd, historyExportCmd, historyDeleteCmd)

	historyCmd.PersistentFlags().StringP("username", "u", "", "account username")
}
