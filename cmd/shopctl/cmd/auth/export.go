package auth

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/terraconstructs/shopadmin/cmd/shopctl/internal/config"
	"github.com/terraconstructs/shopadmin/pkg/credstore"
	"github.com/terraconstructs/shopadmin/pkg/sdk"
)

const (
	envAccessToken = "SHOPCTL_ACCESS_TOKEN"
	envServerURL   = "SHOPCTL_SERVER_URL"
)

var shellFormat string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the stored access token as shell variables",
	Long: `Prints shell commands setting SHOPCTL_ACCESS_TOKEN and SHOPCTL_SERVER_URL
from the stored login, for scripts calling the bookstore API directly.

Supported shells:
  - posix (bash, zsh, sh) - default
  - fish
  - powershell

Usage:
  eval $(shopctl auth export)
  eval (shopctl auth export --shell fish)
  shopctl auth export --shell powershell | Invoke-Expression`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())

		store, err := cfg.ClientProvider.Store(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to open credential store: %w", err)
		}
		token, ok, err := store.Get(cmd.Context(), credstore.KeyAccessToken)
		if err != nil {
			return fmt.Errorf("failed to load credentials: %w", err)
		}
		if !ok || token == "" {
			return fmt.Errorf("not logged in\n\nPlease run 'shopctl auth login' first")
		}
		if info, err := sdk.InspectToken(token); err == nil && info.IsExpired() {
			return fmt.Errorf("access token has expired\n\nPlease run 'shopctl auth login' again")
		}

		format := strings.ToLower(shellFormat)
		if format == "" {
			format = detectShell(os.Getenv("SHELL"))
		}
		return writeExport(cmd.OutOrStdout(), format, map[string]string{
			envAccessToken: token,
			envServerURL:   cfg.ServerURL,
		})
	},
}

func init() {
	exportCmd.Flags().StringVar(&shellFormat, "shell", "", "Shell format: posix, fish, powershell (auto-detected if not specified)")
}

// detectShell maps $SHELL to an export format, defaulting to posix.
func detectShell(shell string) string {
	switch filepath.Base(shell) {
	case "fish":
		return "fish"
	case "pwsh", "powershell":
		return "powershell"
	default:
		return "posix"
	}
}

func writeExport(out io.Writer, format string, vars map[string]string) error {
	var line string
	switch format {
	case "posix", "bash", "zsh", "sh":
		line = "export %s=%q\n"
	case "fish":
		line = "set -x %s %q\n"
	case "powershell", "pwsh", "ps1":
		line = "$env:%s=%q\n"
	default:
		return fmt.Errorf("unsupported shell format: %s\n\nSupported formats: posix, fish, powershell", format)
	}
	for _, name := range []string{envAccessToken, envServerURL} {
		fmt.Fprintf(out, line, name, vars[name])
	}
	return nil
}
