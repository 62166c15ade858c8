package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var dbStatsCmd = &cobra.Command{
	Use:   "db-stats",
	Short: "Show database statistics",
	Long:  `Display the number of users, tags and ingredients stored.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, err := openDatabase()
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer db.Close() //nolint: errcheck

		stats, err := db.GetStats(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get database stats: %w", err)
		}

		fmt.Println("Database Statistics:")
		fmt.Printf("Users: %s (%s staff)\n", humanize.Comma(stats.Users), humanize.Comma(stats.StaffUsers))
		fmt.Printf("Tags: %s\n", humanize.Comma(stats.Tags))
		fmt.Printf("Ingredients: %s\n", humanize.Comma(stats.Ingredients))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dbStatsCmd)
}
