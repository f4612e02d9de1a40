package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
	"golang.org/x/sync/errgroup"

	"github.com/ahmetcoskunkizilkaya/flashdeck-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/flashdeck-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/flashdeck-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/flashdeck-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/flashdeck-backend/internal/services"
)

const shutdownTimeout = 10 * time.Second

// Run connects the store, serves HTTP and runs log maintenance until ctx is
// cancelled.
func Run(ctx context.Context, cfg *config.Config) error {
	stdout := logging.Setup(cfg.AppEnv)

	db, err := database.Connect(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			slog.Error("database close error", "error", err)
		}
	}()

	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	// ERROR+ records also go to system_logs
	dbLogs := logging.NewDBHandler(db, stdout)
	slog.SetDefault(slog.New(logging.NewMultiHandler(stdout, dbLogs)))
	defer dbLogs.Stop()

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: cfg.SentryTracesSampleRate,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	server := NewServer(cfg, Deps{
		DB:        db,
		Identity:  identity.NewGoTrueClient(cfg.SupabaseURL, cfg.SupabaseAnonKey, cfg.AuthTimeout),
		Generator: services.NewOpenAIGenerator(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.AITimeout),
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("server starting", "port", cfg.Port, "auth_mode", cfg.AuthMode)
		if err := server.Listen(":" + cfg.Port); err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down server...")
		return server.ShutdownWithTimeout(shutdownTimeout)
	})

	g.Go(func() error {
		return logging.RunCleanup(gctx, db, cfg.LogRetention)
	})

	err = g.Wait()
	slog.Info("server stopped")
	return err
}
