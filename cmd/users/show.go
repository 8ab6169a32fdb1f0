package users

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tharsikan/shop-web-app-backend/cmd/cmdutil"
	"github.com/tharsikan/shop-web-app-backend/internal/auth"
	"github.com/tharsikan/shop-web-app-backend/internal/okta"
)

var showCmd = &cobra.Command{
	Use:   "show <subject>",
	Short: "Show a local user next to their Okta account and groups",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		subject := args[0]
		return withIAM(cmd, func(b *cmdutil.IAMServiceBundle) error {
			ctx := cmd.Context()
			user, err := b.Service.GetUserBySubject(ctx, subject)
			if err != nil {
				return fmt.Errorf("user %s: %w", subject, err)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "ID\t%s\n", user.ID)
			fmt.Fprintf(tw, "SUBJECT\t%s\n", user.Subject)
			fmt.Fprintf(tw, "EMAIL\t%s\n", user.Email)
			fmt.Fprintf(tw, "STORED ROLES\t%s\n", strings.Join(user.Roles, ","))

			if b.Okta == nil {
				fmt.Fprintln(tw, "OKTA\tnot configured")
				return tw.Flush()
			}
			oktaUser, err := b.Okta.GetUser(ctx, subject)
			if err != nil {
				return fmt.Errorf("okta user %s: %w", subject, err)
			}
			groups, err := b.Okta.ListUserGroups(ctx, subject)
			if err != nil {
				return fmt.Errorf("okta groups of %s: %w", subject, err)
			}
			oktaRoles := auth.ResolveApplicationRoles(groups)

			fmt.Fprintf(tw, "OKTA STATUS\t%s\n", oktaUser.Status)
			fmt.Fprintf(tw, "OKTA LOGIN\t%s\n", oktaUser.Profile.Login)
			fmt.Fprintf(tw, "OKTA GROUPS\t%s\n", strings.Join(okta.GroupNames(groups), ","))
			fmt.Fprintf(tw, "OKTA ROLES\t%s\n", strings.Join(auth.RoleStrings(oktaRoles), ","))
			if !auth.SameRoles(auth.ResolveRoleNames(user.Roles), oktaRoles) {
				fmt.Fprintln(tw, "\tstored roles differ from Okta; run sync-roles to reconcile")
			}
			return tw.Flush()
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout <subject>",
	Short: "Revoke every session of a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		subject := args[0]
		return withIAM(cmd, func(b *cmdutil.IAMServiceBundle) error {
			ctx := cmd.Context()
			user, err := b.Service.GetUserBySubject(ctx, subject)
			if err != nil {
				return fmt.Errorf("user %s: %w", subject, err)
			}
			n, err := b.Sessions.RevokeUser(ctx, user.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\trevoked %d session(s)\n", subject, n)
			return nil
		})
	},
}
