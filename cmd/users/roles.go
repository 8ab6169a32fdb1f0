package users

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tharsikan/shop-web-app-backend/cmd/cmdutil"
	"github.com/tharsikan/shop-web-app-backend/internal/auth"
)

var syncRolesCmd = &cobra.Command{
	Use:   "sync-roles <subject>",
	Short: "Re-read a user's Okta groups and store the resulting roles",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return bySubject(cmd, args[0], func(ctx context.Context, b *cmdutil.IAMServiceBundle, userID string) ([]auth.Role, error) {
			return b.Service.SyncRoles(ctx, userID)
		})
	},
}

var grantCmd = &cobra.Command{
	Use:   "grant <subject> <role>",
	Short: "Add a user to the Okta group of an application role",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editRole(cmd, args[0], args[1], auth.RoleEditAdd)
	},
}

var keepSessions bool

var revokeCmd = &cobra.Command{
	Use:   "revoke <subject> <role>",
	Short: "Remove a user from the Okta group of an application role and end their sessions",
	Long: `Remove a user from the Okta group of an application role.

Unless --keep-sessions is set, every session of the user is revoked as well, so running
servers stop honouring the removed role at their next session check.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editRole(cmd, args[0], args[1], auth.RoleEditRemove)
	},
}

func editRole(cmd *cobra.Command, subject, roleName string, action auth.RoleEditAction) error {
	role, err := auth.ParseRole(roleName)
	if err != nil {
		return err
	}
	return bySubject(cmd, subject, func(ctx context.Context, b *cmdutil.IAMServiceBundle, userID string) ([]auth.Role, error) {
		roles, err := b.Service.EditRole(ctx, userID, role, action)
		if err != nil || action != auth.RoleEditRemove || keepSessions {
			return roles, err
		}
		n, err := b.Sessions.RevokeUser(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("role removed but revoking sessions failed: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "revoked %d session(s)\n", n)
		return roles, nil
	})
}

// bySubject resolves the local user for an Okta subject, runs op and prints the resulting roles.
func bySubject(cmd *cobra.Command, subject string, op func(ctx context.Context, b *cmdutil.IAMServiceBundle, userID string) ([]auth.Role, error)) error {
	return withIAM(cmd, func(b *cmdutil.IAMServiceBundle) error {
		ctx := cmd.Context()
		user, err := b.Service.GetUserBySubject(ctx, subject)
		if err != nil {
			return fmt.Errorf("user %s: %w", subject, err)
		}
		roles, err := op(ctx, b, user.ID)
		if err != nil {
			return err
		}
		printRoles(cmd, subject, auth.RoleStrings(roles))
		return nil
	})
}

func init() {
	revokeCmd.Flags().BoolVar(&keepSessions, "keep-sessions", false, "Leave the user's sessions active")
}
