package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron"
	"golang.org/x/sync/errgroup"

	"glownexa-backend/internal/bootstrap"
	"glownexa-backend/internal/shared/config"
	"glownexa-backend/internal/shared/server"
	"glownexa-backend/internal/shared/server/middleware"
	"glownexa-backend/internal/shared/telemetry"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		telemetry.Error("api.exit", map[string]any{"error": err})
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.Build(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			telemetry.Error("api.close_failed", map[string]any{"error": err})
		}
	}()

	app.Contact.VerifyTransport(ctx)

	srv := &http.Server{
		Addr:              server.Addr(cfg.Port),
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		telemetry.Info("api.listening", map[string]any{"addr": srv.Addr, "env": cfg.Env})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		return runJanitor(gctx, app.MemoryLimiter)
	})
	group.Go(func() error {
		<-gctx.Done()
		telemetry.Info("api.shutdown", nil)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return group.Wait()
}

// runJanitor prunes expired in-memory limiter windows every minute until ctx ends.
func runJanitor(ctx context.Context, store *middleware.MemoryWindowStore) error {
	if store == nil {
		<-ctx.Done()
		return nil
	}
	scheduler := gocron.NewScheduler(time.UTC)
	scheduler.SingletonModeAll()
	if _, err := scheduler.Every(1).Minute().Do(func() {
		if n := store.Prune(); n > 0 {
			telemetry.Info("ratelimit.pruned", map[string]any{"windows": n})
		}
	}); err != nil {
		return err
	}
	scheduler.StartAsync()
	<-ctx.Done()
	scheduler.Stop()
	return nil
}
