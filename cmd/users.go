package cmd

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/jon4hz/recipebox/internal/accounts"
	"github.com/spf13/cobra"
)

var userCmdFlags struct {
	Email    string
	Password string
	Name     string
}

var createUserCmd = &cobra.Command{
	Use:     "create-user",
	Short:   "Create a regular user",
	Example: `recipebox create-user --email user@example.com --password secret --name "Jane Doe"`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, db, err := openDatabase()
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer db.Close() //nolint: errcheck

		user, err := accounts.CreateUser(cmd.Context(), db, userCmdFlags.Email, userCmdFlags.Password, accounts.WithName(userCmdFlags.Name))
		if err != nil {
			return err
		}
		log.Info("user created", "id", user.ID, "email", user.Email)
		return nil
	},
}

var createSuperuserCmd = &cobra.Command{
	Use:     "create-superuser",
	Short:   "Create a staff user with all permissions",
	Example: `recipebox create-superuser --email admin@example.com --password secret`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, db, err := openDatabase()
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer db.Close() //nolint: errcheck

		user, err := accounts.CreateSuperuser(cmd.Context(), db, userCmdFlags.Email, userCmdFlags.Password, accounts.WithName(userCmdFlags.Name))
		if err != nil {
			return err
		}
		log.Info("superuser created", "id", user.ID, "email", user.Email)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{createUserCmd, createSuperuserCmd} {
		c.Flags().StringVar(&userCmdFlags.Email, "email", "", "Email address of the user")
		c.Flags().StringVar(&userCmdFlags.Password, "password", "", "Password of the user")
		c.Flags().StringVar(&userCmdFlags.Name, "name", "", "Display name of the user")
		_ = c.MarkFlagRequired("email")
		rootCmd.AddCommand(c)
	}
	_ = createSuperuserCmd.MarkFlagRequired("password")
}
