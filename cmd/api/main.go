package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/coinlink/exchange/internal/api"
	"github.com/coinlink/exchange/internal/infra/logging"
	"github.com/coinlink/exchange/internal/infra/pgutils"
	"github.com/coinlink/exchange/internal/metrics"
	"github.com/coinlink/exchange/internal/notify"
	pgbots "github.com/coinlink/exchange/internal/repos/bots/postgres"
	"github.com/coinlink/exchange/internal/services/exchange"
	"github.com/coinlink/exchange/pkg/envconf"
	"github.com/coinlink/exchange/pkg/shutdownqueue"
	"github.com/joho/godotenv"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error running api: %v", err)
		//nolint:gocritic
		os.Exit(1)
	}
}

func run(ctx context.Context) (retErr error) {
	// Local development convenience; absence of a .env file is fine.
	_ = godotenv.Load()

	cfg := new(apiConfig)

	err := envconf.Load(cfg)
	if err != nil {
		return fmt.Errorf("init config: %w", err)
	}

	logging.SetupJSON(cfg.LogLevel)

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		serr := shutdownqueue.Shutdown(shutdownCtx)
		if serr != nil {
			retErr = errors.Join(retErr, serr)
		}
	}()

	// --- Infra ---
	dbConns, err := pgutils.OpenDB(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}

	shutdownqueue.Add(func(context.Context) error {
		return dbConns.Close()
	})

	// --- Collaborators ---
	var recorder metrics.Recorder = metrics.Noop{}

	if cfg.ClickHouse.Addr != "" {
		ch, cherr := metrics.NewClickHouseRecorder(ctx, metrics.ClickHouseConfig{
			Addr:     cfg.ClickHouse.Addr,
			Database: cfg.ClickHouse.Database,
			Username: cfg.ClickHouse.Username,
			Password: cfg.ClickHouse.Password,
			Timeout:  cfg.ClickHouse.Timeout,
		})
		if cherr != nil {
			return fmt.Errorf("open clickhouse: %w", cherr)
		}

		shutdownqueue.Add(func(context.Context) error {
			return ch.Close()
		})

		recorder = ch
	}

	var notifier notify.Notifier = notify.Noop{}

	if cfg.Webhook.URL != "" {
		notifier = notify.NewWebhook(cfg.Webhook.URL)
	}

	// --- Domain ---
	exchangeSrv := exchange.New(dbConns, notifier, recorder, exchange.Config{
		MaxAmount:      cfg.MaxAmount,
		RequestTimeout: cfg.RequestTimeout,
	})

	// --- HTTP server ---
	srv := api.NewServer(cfg.Port, exchangeSrv, pgbots.New(dbConns))

	// Register HTTP server graceful shutdown
	shutdownqueue.Add(func(c context.Context) error {
		slog.Info("Shut down server")

		err := srv.Shutdown(c)
		if err != nil {
			return fmt.Errorf("shutdown srv: %w", err)
		}

		return nil
	})

	// Run server
	errCh := make(chan error, 1)

	go func() {
		serr := srv.ListenAndServe()
		// http.ErrServerClosed is the normal path during Shutdown
		if serr != nil && !errors.Is(serr, http.ErrServerClosed) {
			errCh <- serr
			return
		}

		errCh <- nil
	}()

	slog.Info("API started", "port", cfg.Port)

	// --- Wait until either context cancels or server errors out ---
	select {
	case <-ctx.Done():
		// graceful path; deferred shutdownqueue.Shutdown will run
		return nil
	case serr := <-errCh:
		if serr != nil {
			return fmt.Errorf("server error: %w", serr)
		}

		return nil
	}
}
