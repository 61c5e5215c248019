package admin

import (
	"fmt"
	"text/tabwriter"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/terraconstructs/shopadmin/pkg/sdk"
)

var booksCmd = &cobra.Command{
	Use:   "books",
	Short: "List books",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := requireAdmin(cmd, args)
		if err != nil {
			return err
		}
		client, err := cfg.ClientProvider.SDKClient(cmd.Context())
		if err != nil {
			return err
		}

		res, err := client.ListBooks(cmd.Context(), sdk.PageInput{Current: page, PageSize: pageSize})
		if err != nil {
			return fmt.Errorf("failed to list books: %w", err)
		}

		out := cmd.OutOrStdout()
		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tAUTHOR\tCATEGORY\tPRICE\tSTOCK\tSOLD")
		for _, b := range res.Result {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.0f\t%d\t%d\n", b.ID, b.MainText, b.Author, b.Category, b.Price, b.Quantity, b.Sold)
		}
		w.Flush()
		pterm.Info.WithWriter(out).Printf("Page %d of %d (%d books)\n", res.Meta.Current, res.Meta.Pages, res.Meta.Total)
		return nil
	},
}
