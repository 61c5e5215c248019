package auth

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/terraconstructs/shopadmin/cmd/shopctl/internal/config"
	"github.com/terraconstructs/shopadmin/cmd/shopctl/internal/gate"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Print the logged in user's email and role",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())

		seq, err := cfg.ClientProvider.Session(cmd.Context())
		if err != nil {
			return err
		}
		snap, err := gate.New(cmd.OutOrStdout(), !cfg.NonInteractive).Require(cmd.Context(), seq, "", gate.From(cmd, args))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", snap.Identity.Email, snap.Identity.Role)
		return nil
	},
}
