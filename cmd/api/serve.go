package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Redwolfc4/nusantarago-backend/internal/application/account"
	"github.com/Redwolfc4/nusantarago-backend/internal/config"
	"github.com/Redwolfc4/nusantarago-backend/internal/infrastructure/dynamo"
	jwtinfra "github.com/Redwolfc4/nusantarago-backend/internal/infrastructure/jwt"
	"github.com/Redwolfc4/nusantarago-backend/internal/infrastructure/postgres"
	"github.com/Redwolfc4/nusantarago-backend/internal/infrastructure/smtp"
	"github.com/Redwolfc4/nusantarago-backend/internal/logging"
	"github.com/Redwolfc4/nusantarago-backend/internal/observability"
	transporthttp "github.com/Redwolfc4/nusantarago-backend/internal/transport/http"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.SetDefault("nusantarago-backend", version, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	tokens, err := jwtinfra.NewProvider([]byte(cfg.JWTSecret), cfg.SessionTTL)
	if err != nil {
		return fmt.Errorf("jwt provider: %w", err)
	}

	router := transporthttp.NewRouter(cfg, &transporthttp.Deps{
		Store:   store,
		Mailer:  smtp.NewMailer(cfg),
		Tokens:  tokens,
		Metrics: observability.NewMetrics(),
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.AppPort, "env", cfg.AppEnv, "store", cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	slog.Info("server stopped")
	return nil
}

// openStore connects the backend selected by STORE_DRIVER. The returned
// func releases its connections.
func openStore(ctx context.Context, cfg *config.Config) (account.AccountStore, func(), error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		pool, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewAccountRepo(pool), pool.Close, nil
	default:
		client, err := dynamo.NewClient(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		dynamo.Bootstrap(ctx, client, cfg.DynamoTables)
		return dynamo.NewAccountRepo(client, cfg.DynamoTables.Accounts), func() {}, nil
	}
}
