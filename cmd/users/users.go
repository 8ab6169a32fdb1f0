// Package users holds the muzfiapi users subcommands, which inspect local users and
// drive their Okta-backed role membership.
package users

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tharsikan/shop-web-app-backend/cmd/cmdutil"
	"github.com/tharsikan/shop-web-app-backend/internal/logging"
)

// UsersCmd is the parent command for user management operations
var UsersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage Muzfi users and their roles",
}

// withIAM loads configuration and runs fn against a CLI IAM service bundle.
func withIAM(cmd *cobra.Command, fn func(b *cmdutil.IAMServiceBundle) error) error {
	cfg, err := cmdutil.LoadConfig(cmd)
	if err != nil {
		return err
	}
	bundle, err := cmdutil.NewIAMServiceBundle(cmd.Context(), cfg, logging.NewConsole(cfg.LogLevel))
	if err != nil {
		return err
	}
	defer bundle.Close()
	return fn(bundle)
}

func printRoles(cmd *cobra.Command, subject string, roles []string) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s\t%v\n", subject, roles)
}

func init() {
	UsersCmd.AddCommand(listCmd)
	UsersCmd.AddCommand(syncRolesCmd)
	UsersCmd.AddCommand(grantCmd)
	UsersCmd.AddCommand(revokeCmd)
	UsersCmd.AddCommand(showCmd)
	UsersCmd.AddCommand(logoutCmd)
}
