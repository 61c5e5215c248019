package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/terraconstructs/shopadmin/cmd/shopctl/cmd/admin"
	"github.com/terraconstructs/shopadmin/cmd/shopctl/cmd/auth"
	"github.com/terraconstructs/shopadmin/cmd/shopctl/internal/client"
	"github.com/terraconstructs/shopadmin/cmd/shopctl/internal/config"
	"github.com/terraconstructs/shopadmin/cmd/shopctl/internal/gate"
	"github.com/terraconstructs/shopadmin/cmd/shopctl/internal/logging"
	"github.com/terraconstructs/shopadmin/pkg/session"
)

var (
	serverURL      string
	storeDSN       string
	logLevel       string
	nonInteractive bool

	// provider is the current invocation's provider, closed by execute even
	// when the command fails and post-run hooks are skipped.
	provider *client.Provider
)

var rootCmd = &cobra.Command{
	Use:   "shopctl",
	Short: "Bookstore admin CLI",
	Long: `shopctl is the command-line client for the bookstore administration API.
It keeps your login between runs, checks your role before running admin
commands, and can serve a local admin shell in the browser.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		// flags win over environment
		flags := cmd.Flags()
		if flags.Changed("server") {
			cfg.ServerURL = serverURL
		}
		if flags.Changed("store") {
			cfg.Store = storeDSN
		}
		if flags.Changed("log-level") {
			cfg.LogLevel = logLevel
		}
		if flags.Changed("non-interactive") {
			cfg.NonInteractive = nonInteractive
		}

		logger, err := logging.Init(cfg.LogLevel, cfg.LogFormat)
		if err != nil {
			return err
		}

		metrics, err := session.NewMetrics(nil)
		if err != nil {
			return fmt.Errorf("create session metrics: %w", err)
		}

		provider = client.NewProvider(cfg.ServerURL, cfg.Store,
			client.WithLogger(logger),
			client.WithMetrics(metrics),
		)

		global := &config.GlobalConfig{Config: cfg, ClientProvider: provider}
		cmd.SetContext(config.InjectConfig(cmd.Context(), global))
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if cfg, ok := config.FromContext(cmd.Context()); ok {
			return cfg.ClientProvider.Close()
		}
		return nil
	},
}

// Execute runs the root command. Ctrl-C cancels the command context, which
// discards an unsettled session bootstrap rather than clearing credentials.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := execute(ctx)
	stop()
	if err == nil {
		return
	}
	if !errors.Is(err, gate.ErrDenied) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(1)
}

func execute(ctx context.Context) error {
	defer closeProvider()
	return rootCmd.ExecuteContext(ctx)
}

func closeProvider() {
	if provider == nil {
		return
	}
	if err := provider.Close(); err != nil {
		provider.Logger().Warn("close credential store", "error", err)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "Bookstore API server URL (also SHOPCTL_SERVER_URL)")
	rootCmd.PersistentFlags().StringVar(&storeDSN, "store", "", "Credential store: path, file:PATH, memory:, redis://..., sqlite:PATH (also SHOPCTL_STORE)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn, error (also SHOPCTL_LOG_LEVEL)")
	rootCmd.PersistentFlags().BoolVar(&nonInteractive, "non-interactive", false, "Disable spinners and prompts (also SHOPCTL_NON_INTERACTIVE=true)")

	rootCmd.AddCommand(auth.AuthCmd)
	rootCmd.AddCommand(admin.AdminCmd)
	rootCmd.AddCommand(homeCmd)
	rootCmd.AddCommand(serveCmd)
}
