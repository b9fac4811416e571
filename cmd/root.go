package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/teamtask/taskapi/cmd/users"
	"github.com/teamtask/taskapi/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "taskapi",
	Short: "Role-based multi-tenant todo API server",
	Long: `Task API serves a JSON HTTP API for a shared todo list with three
permission tiers (user, manager, admin) controlling visibility and
mutation rights.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		return nil
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().String("db-url", "", "Database connection URL (env: DATABASE_URL)")
	rootCmd.PersistentFlags().String("server-addr", "", "Server bind address (env: SERVER_ADDR)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging (env: DEBUG)")

	rootCmd.AddCommand(users.UsersCmd)
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
