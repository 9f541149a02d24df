package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/prolifel/ceker/internal/config"
	"github.com/prolifel/ceker/internal/core/preview"
	"github.com/prolifel/ceker/internal/notify"
	"github.com/prolifel/ceker/internal/observability"
	"github.com/prolifel/ceker/internal/server"
	"github.com/prolifel/ceker/internal/server/handlers"
)

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the ceker HTTP server",
	Long: `Start the HTTP server exposing the website check API, the curated
list management endpoints, screenshot serving, and health/metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()

		if cmd.Flags().Changed("host") {
			cfg.Server.Host = serveHost
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port = servePort
		}

		observability.InitServerLogger("ceker", cfg.Logging.Level)
		logger := observability.ServerLogger
		defer func() { _ = logger.Sync() }()

		ctx := cmd.Context()

		st, err := openStore(ctx, cfg)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer func() {
			if err := st.Close(); err != nil {
				logger.Warn("failed to close store", zap.Error(err))
			}
		}()

		eng := buildEngine(cfg, st, logger)

		notifier := &notify.TeamsNotifier{
			WebhookURL: cfg.Notify.TeamsWebhookURL,
			BaseURL:    cfg.Server.BaseURL,
			Logger:     logger,
		}

		api := &handlers.API{
			Engine:    eng,
			Store:     st,
			Notifier:  notifier,
			Logger:    logger,
			BotAPIKey: cfg.BotAPIKey,
			Version:   handlers.AppVersion,
		}
		if cfg.Preview.Enabled {
			api.Previews = &preview.Storage{Dir: cfg.Preview.Dir}
		}

		health := handlers.HealthCheckers{
			"database": st,
		}

		srv := server.New(cfg.Server.Host, cfg.Server.Port, api, health, logger, cfg.Metrics.Enabled)

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Start()
		}()

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server failed: %w", err)
		case sig := <-stop:
			logger.Info("shutdown signal received", zap.String("signal", sig.String()))
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}

		logger.Info("server stopped")
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "0.0.0.0", "host address to bind to")
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "port to listen on")
	rootCmd.AddCommand(serveCmd)
}
