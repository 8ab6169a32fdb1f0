package users

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tharsikan/shop-web-app-backend/cmd/cmdutil"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List local users with their persisted roles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withIAM(cmd, func(b *cmdutil.IAMServiceBundle) error {
			users, err := b.Service.ListUsers(cmd.Context())
			if err != nil {
				return fmt.Errorf("list users: %w", err)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tSUBJECT\tEMAIL\tROLES")
			for _, u := range users {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", u.ID, u.Subject, u.Email, strings.Join(u.Roles, ","))
			}
			return tw.Flush()
		})
	},
}
