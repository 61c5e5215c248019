package auth

import (
	"errors"
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/terraconstructs/shopadmin/cmd/shopctl/internal/config"
	"github.com/terraconstructs/shopadmin/pkg/credstore"
	"github.com/terraconstructs/shopadmin/pkg/sdk"
)

var (
	username string
	password string
	returnTo string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the bookstore API",
	Long: `Logs in with a username (email) and password and stores the access token
and user snapshot in the credential store.

The password may also be supplied via SHOPCTL_PASSWORD. In interactive mode
missing values are prompted for.

Use --return-to with the command a denied command suggested, to be reminded
how to continue once logged in.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())
		out := cmd.OutOrStdout()

		if password == "" {
			password = os.Getenv("SHOPCTL_PASSWORD")
		}
		if !cfg.NonInteractive {
			var err error
			if username == "" {
				if username, err = pterm.DefaultInteractiveTextInput.Show("Email"); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = pterm.DefaultInteractiveTextInput.WithMask("*").Show("Password"); err != nil {
					return err
				}
			}
		}
		if username == "" || password == "" {
			return errors.New("--username and --password are required in non-interactive mode")
		}

		store, err := cfg.ClientProvider.Store(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to open credential store: %w", err)
		}
		client, err := cfg.ClientProvider.SDKClient(cmd.Context())
		if err != nil {
			return err
		}

		res, err := client.Login(cmd.Context(), sdk.LoginInput{Username: username, Password: password})
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}
		if err := credstore.SaveLogin(cmd.Context(), store, res.AccessToken, res.User); err != nil {
			return fmt.Errorf("failed to save credentials: %w", err)
		}

		pterm.Success.WithWriter(out).Printf("Logged in as %s (%s)\n", res.User.DisplayName(), res.User.Role)
		if returnTo != "" {
			pterm.Info.WithWriter(out).Printf("Continue with: %s\n", returnTo)
		}
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVarP(&username, "username", "u", "", "Account email")
	loginCmd.Flags().StringVarP(&password, "password", "p", "", "Account password")
	loginCmd.Flags().StringVar(&returnTo, "return-to", "", "Command to continue with after login")
}
