package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tharsikan/shop-web-app-backend/cmd/cmdutil"
	"github.com/tharsikan/shop-web-app-backend/cmd/users"
	"github.com/tharsikan/shop-web-app-backend/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "muzfiapi",
	Short: "Muzfi API server",
	Long: `Muzfi API serves the social and marketplace backend. User roles are mirrored from
Okta group membership and kept in sync with live login sessions.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = cmdutil.LoadConfig(cmd)
		return err
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().String("db-url", "", "Database connection URL (env: DATABASE_URL)")
	rootCmd.PersistentFlags().String("server-addr", "", "Server bind address (env: SERVER_ADDR)")
	rootCmd.PersistentFlags().String("server-url", "", "Public base URL (env: SERVER_URL)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (env: LOG_LEVEL)")

	rootCmd.AddCommand(users.UsersCmd)
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
