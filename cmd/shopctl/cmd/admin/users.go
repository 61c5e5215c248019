package admin

import (
	"fmt"
	"text/tabwriter"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/terraconstructs/shopadmin/pkg/sdk"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List users",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := requireAdmin(cmd, args)
		if err != nil {
			return err
		}
		client, err := cfg.ClientProvider.SDKClient(cmd.Context())
		if err != nil {
			return err
		}

		res, err := client.ListUsers(cmd.Context(), sdk.PageInput{Current: page, PageSize: pageSize})
		if err != nil {
			return fmt.Errorf("failed to list users: %w", err)
		}

		out := cmd.OutOrStdout()
		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tEMAIL\tPHONE\tROLE")
		for _, u := range res.Result {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", u.ID, u.FullName, u.Email, u.Phone, u.Role)
		}
		w.Flush()
		pterm.Info.WithWriter(out).Printf("Page %d of %d (%d users)\n", res.Meta.Current, res.Meta.Pages, res.Meta.Total)
		return nil
	},
}
