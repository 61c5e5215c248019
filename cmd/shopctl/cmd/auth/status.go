package auth

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/terraconstructs/shopadmin/cmd/shopctl/internal/config"
	"github.com/terraconstructs/shopadmin/cmd/shopctl/internal/gate"
	"github.com/terraconstructs/shopadmin/pkg/credstore"
	"github.com/terraconstructs/shopadmin/pkg/sdk"
	"github.com/terraconstructs/shopadmin/pkg/session"
)

var offline bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display authentication status",
	Long: `Resolves the stored token against the server and shows the resulting
session. A rejected token is forgotten.

With --offline the stored snapshot is shown without contacting the server.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())
		out := cmd.OutOrStdout()

		if offline {
			store, err := cfg.ClientProvider.Store(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to open credential store: %w", err)
			}
			cached, err := credstore.Load(cmd.Context(), store)
			if err != nil && !cached.HasToken() {
				return fmt.Errorf("failed to read credentials: %w", err)
			}
			pterm.DefaultSection.WithWriter(out).Println("Stored Session")
			if !cached.HasToken() {
				pterm.Info.WithWriter(out).Println("Not logged in")
				return nil
			}
			printToken(out, cached.Token)
			if cached.User != nil {
				printIdentity(out, cfg.ServerURL, *cached.User)
			}
			if err != nil {
				pterm.Warning.WithWriter(out).Printf("Stored user snapshot is unreadable: %v\n", err)
			}
			return nil
		}

		seq, err := cfg.ClientProvider.Session(cmd.Context())
		if err != nil {
			return err
		}
		snap, err := gate.New(out, !cfg.NonInteractive).Wait(cmd.Context(), seq)
		if err != nil {
			return err
		}

		pterm.DefaultSection.WithWriter(out).Println("Authentication Status")
		if snap.Status != session.StatusAuthenticated {
			pterm.Info.WithWriter(out).Println("Not logged in")
			return nil
		}
		printIdentity(out, cfg.ServerURL, *snap.Identity)

		store, err := cfg.ClientProvider.Store(cmd.Context())
		if err != nil {
			return err
		}
		if token, ok, err := store.Get(cmd.Context(), credstore.KeyAccessToken); err == nil && ok {
			printToken(out, token)
		}
		return nil
	},
}

func init() {
	statusCmd.Flags().BoolVar(&offline, "offline", false, "Show the stored snapshot without contacting the server")
}

func printIdentity(out io.Writer, serverURL string, ident sdk.Identity) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "NAME\t%s\n", ident.DisplayName())
	fmt.Fprintf(w, "EMAIL\t%s\n", ident.Email)
	fmt.Fprintf(w, "ROLE\t%s\n", ident.Role)
	fmt.Fprintf(w, "ID\t%s\n", ident.ID)
	if ident.Phone != "" {
		fmt.Fprintf(w, "PHONE\t%s\n", ident.Phone)
	}
	if avatar := ident.AvatarURL(serverURL); avatar != "" {
		fmt.Fprintf(w, "AVATAR\t%s\n", avatar)
	}
	w.Flush()
}

// printToken shows what can be read from the token locally. Opaque tokens
// are not an error.
func printToken(out io.Writer, token string) {
	info, err := sdk.InspectToken(token)
	if err != nil || !info.HasExpiry() {
		return
	}
	if info.IsExpired() {
		pterm.Warning.WithWriter(out).Printf("Token expired at %s\n", info.ExpiresAt.Format(time.RFC1123))
		return
	}
	pterm.Info.WithWriter(out).Printf("Token expires at %s\n", info.ExpiresAt.Format(time.RFC1123))
}
