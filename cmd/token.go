package cmd

import (
	"fmt"

	"github.com/jon4hz/recipebox/internal/accounts"
	"github.com/jon4hz/recipebox/internal/auth"
	"github.com/spf13/cobra"
)

var issueTokenCmdFlags struct {
	Email string
}

var issueTokenCmd = &cobra.Command{
	Use:   "issue-token",
	Short: "Issue an API token for an existing user",
	Long:  `Mint a bearer token for the given user without checking the password. The token is printed to stdout.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, db, err := openDatabase()
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer db.Close() //nolint: errcheck

		user, err := db.GetUserByEmail(cmd.Context(), accounts.NormalizeEmail(issueTokenCmdFlags.Email))
		if err != nil {
			return fmt.Errorf("failed to find user %q: %w", issueTokenCmdFlags.Email, err)
		}
		if !user.IsActive {
			return fmt.Errorf("user %q is inactive", user.Email)
		}

		token, err := auth.GenerateToken(user.ID, []byte(cfg.SecretKey), cfg.TokenTTL)
		if err != nil {
			return err
		}
		fmt.Println(token)
		return nil
	},
}

func init() {
	issueTokenCmd.Flags().StringVar(&issueTokenCmdFlags.Email, "email", "", "Email address of the user")
	_ = issueTokenCmd.MarkFlagRequired("email")
	rootCmd.AddCommand(issueTokenCmd)
}
