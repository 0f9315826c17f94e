package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"taskagent-portal/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the portal and the webhook proxy",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("port", "", "listen port (env PORT)")
	serveCmd.Flags().String("webhook-url", "", "external workflow webhook URL (env N8N_URL)")
	serveCmd.Flags().String("webhook-mode", "", "forwarding mode: query or body (env WEBHOOK_MODE)")
	serveCmd.Flags().Duration("webhook-timeout", 0, "outbound webhook timeout, 0 for none (env WEBHOOK_TIMEOUT)")
	serveCmd.Flags().String("catalog", "", "portal catalog file, yaml or toml (env PORTAL_CATALOG)")
	_ = viper.BindPFlag("port", serveCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("webhook_url", serveCmd.Flags().Lookup("webhook-url"))
	_ = viper.BindPFlag("webhook_mode", serveCmd.Flags().Lookup("webhook-mode"))
	_ = viper.BindPFlag("webhook_timeout", serveCmd.Flags().Lookup("webhook-timeout"))
	_ = viper.BindPFlag("catalog", serveCmd.Flags().Lookup("catalog"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	logger := newLogger(cfg)

	s, err := server.NewServer(cfg, logger)
	if err != nil {
		exitOnError(logger, "failed to create server", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("portal listening", "addr", srv.Addr, "webhook_mode", cfg.WebhookMode, "webhook_configured", cfg.WebhookConfigured())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
