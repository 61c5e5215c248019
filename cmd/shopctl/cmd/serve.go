package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/terraconstructs/shopadmin/cmd/shopctl/internal/config"
	"github.com/terraconstructs/shopadmin/cmd/shopctl/internal/shell"
	"github.com/terraconstructs/shopadmin/pkg/nav"
)

var listenAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the admin shell in the browser",
	Long: `Starts a local web shell over the bookstore API. The session is bootstrapped
from the credential store when the server starts and again after every login.
Every page shows a loading view until the session is ready.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())
		if cmd.Flags().Changed("listen") {
			cfg.ListenAddr = listenAddr
		}
		ctx := cmd.Context()

		store, err := cfg.ClientProvider.Store(ctx)
		if err != nil {
			return fmt.Errorf("failed to open credential store: %w", err)
		}
		client, err := cfg.ClientProvider.SDKClient(ctx)
		if err != nil {
			return err
		}
		menus, err := nav.New(cfg.MenuCacheSize)
		if err != nil {
			return err
		}
		web := shell.New(ctx, shell.Options{
			Store:       store,
			Client:      client,
			Nav:         menus,
			Logger:      cfg.ClientProvider.Logger(),
			Metrics:     cfg.ClientProvider.Metrics(),
			CORSOrigins: cfg.CORSOrigins,
		})
		defer web.Close()

		srv := &http.Server{
			Addr:              cfg.ListenAddr,
			Handler:           web.Router(),
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       60 * time.Second,
		}

		serverErrors := make(chan error, 1)
		go func() {
			slog.Info("starting shell", "addr", cfg.ListenAddr, "api", cfg.ServerURL)
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)
		case <-ctx.Done():
			slog.Info("shutting down shell")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				srv.Close()
				return fmt.Errorf("graceful shutdown failed: %w", err)
			}
			return nil
		}
	},
}

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "listen", "127.0.0.1:3000", "Address to serve the shell on (also SHOPCTL_LISTEN_ADDR)")
}
