package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new account",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		rt, err := newRuntime(ctx)
		if err != nil {
			return err
		}
		defer rt.Close()

		p := terminalPrompter{}

		username, _ := cmd.Flags().GetString("username")
		if username == "" {
			if username, err = p.Input("Username", false); err != nil {
				return err
			}
		}

		email, _ := cmd.Flags().GetString("email")
		if email == "" {
			if email, err = p.Input("Email", false); err != nil {
				return err
			}
		}

		password, confirm := os.Getenv(passwordEnv), os.Getenv(passwordEnv)
		if password == "" {
			if password, err = p.Input("Password", true); err != nil {
				return err
			}
			if confirm, err = p.Input("Confirm password", true); err != nil {
				return err
			}
		}

		account, err := rt.svc.Register(ctx, username, email, password, confirm)
		if err != nil {
			return rt.describe(err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Account %q created.\n", account.Username)
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Check account credentials",
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

		fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (account %s).\n", account.Username, account.ID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(registerCmd, loginCmd)

	registerCmd.Flags().StringP("username", "u", "", "account username")
	registerCmd.Flags().StringP("email", "e", "", "account email")
	loginCmd.Flags().StringP("username", "u", "", "account username")
}
