package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/terraconstructs/shopadmin/cmd/shopctl/internal/config"
	"github.com/terraconstructs/shopadmin/cmd/shopctl/internal/gate"
	"github.com/terraconstructs/shopadmin/cmd/shopctl/internal/menu"
	"github.com/terraconstructs/shopadmin/pkg/nav"
)

var homeCmd = &cobra.Command{
	Use:   "home",
	Short: "Show the navigation menu for the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())
		out := cmd.OutOrStdout()

		seq, err := cfg.ClientProvider.Session(cmd.Context())
		if err != nil {
			return err
		}
		snap, err := gate.New(out, !cfg.NonInteractive).Wait(cmd.Context(), seq)
		if err != nil {
			return err
		}

		shell, err := nav.New(cfg.MenuCacheSize)
		if err != nil {
			return err
		}
		items, err := shell.Items(nav.MenuHeader, snap)
		if err != nil {
			return err
		}

		title := "Welcome, guest"
		if snap.Authenticated() {
			title = fmt.Sprintf("Welcome, %s", snap.Identity.DisplayName())
		}
		return menu.Print(out, title, items, nav.ActiveKey(items, "/"))
	},
}
