package auth

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/terraconstructs/shopadmin/cmd/shopctl/internal/config"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and forget the stored session",
	Long: `Tells the server to end the session and deletes the stored token and user
snapshot. Local credentials are deleted even if the server cannot be reached.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())

		seq, err := cfg.ClientProvider.Session(cmd.Context())
		if err != nil {
			return err
		}
		seq.Manager().Logout(cmd.Context())

		pterm.Success.WithWriter(cmd.OutOrStdout()).Println("Logged out successfully")
		return nil
	},
}
