package admin

import (
	"github.com/spf13/cobra"

	"github.com/terraconstructs/shopadmin/cmd/shopctl/internal/config"
	"github.com/terraconstructs/shopadmin/cmd/shopctl/internal/gate"
	"github.com/terraconstructs/shopadmin/cmd/shopctl/internal/menu"
	"github.com/terraconstructs/shopadmin/pkg/nav"
	"github.com/terraconstructs/shopadmin/pkg/sdk"
	"github.com/terraconstructs/shopadmin/pkg/session"
)

var (
	page     int
	pageSize int
)

// AdminCmd groups admin-only commands. Run alone it shows the admin menu.
var AdminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Administration commands (admin role required)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, snap, err := requireAdmin(cmd, args)
		if err != nil {
			return err
		}
		shell, err := nav.New(cfg.MenuCacheSize)
		if err != nil {
			return err
		}
		items, err := shell.Items(nav.MenuAdmin, snap)
		if err != nil {
			return err
		}
		return menu.Print(cmd.OutOrStdout(), "Admin", items, nav.ActiveKey(items, "/admin"))
	},
}

func init() {
	AdminCmd.PersistentFlags().IntVar(&page, "page", 1, "Page number")
	AdminCmd.PersistentFlags().IntVar(&pageSize, "page-size", 10, "Items per page")

	AdminCmd.AddCommand(usersCmd)
	AdminCmd.AddCommand(booksCmd)
}

// requireAdmin bootstraps the session and stops the command unless the
// visitor is an admin.
func requireAdmin(cmd *cobra.Command, args []string) (*config.GlobalConfig, session.Snapshot, error) {
	cfg := config.MustFromContext(cmd.Context())
	seq, err := cfg.ClientProvider.Session(cmd.Context())
	if err != nil {
		return cfg, session.Snapshot{}, err
	}
	snap, err := gate.New(cmd.OutOrStdout(), !cfg.NonInteractive).
		Require(cmd.Context(), seq, sdk.RoleAdmin, gate.From(cmd, args))
	return cfg, snap, err
}
