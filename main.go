package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/msomdec/limur-users/internal/config"
	"github.com/msomdec/limur-users/internal/handler"
	"github.com/msomdec/limur-users/internal/remote"
	"github.com/msomdec/limur-users/internal/repository/sqlite"
	"github.com/msomdec/limur-users/internal/service"
	"golang.org/x/sync/errgroup"
)

func main() {
	logOpts := &slog.HandlerOptions{Level: slog.LevelInfo}
	logger := slog.New(slog.NewMultiHandler(
		slog.NewTextHandler(os.Stdout, logOpts),
		slog.NewJSONHandler(os.Stderr, logOpts),
	))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func run(cfg config.Config) error {
	db, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Migrate(context.Background()); err != nil {
		return err
	}
	slog.Info("database migrations applied")

	client := remote.NewClient(
		remote.WithEndpoint(cfg.UsersEndpoint),
		remote.WithTimeout(cfg.FetchTimeout),
	)
	stores := service.NewUserStores(db.KV, client)
	profiles := service.NewProfileService(cfg.ProfileSecret)
	limiter := service.NewTokenBucket(cfg.RateLimitRPS, cfg.RateLimitBurst)
	issuance := service.NewTokenBucket(cfg.IssueRPS, cfg.IssueBurst)
	retention := service.NewRetention(db, service.ProfileTTL)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, stores, profiles, limiter, issuance, cfg.CookieSecure)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler.LogRequests(handler.SecurityHeaders(mux)),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("server starting", "addr", srv.Addr, "users_endpoint", cfg.UsersEndpoint)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		return limiter.Run(gctx, time.Minute)
	})

	g.Go(func() error {
		return issuance.Run(gctx, time.Minute)
	})

	g.Go(func() error {
		return stores.Run(gctx, time.Minute)
	})

	g.Go(func() error {
		return retention.Run(gctx, time.Hour)
	})

	return g.Wait()
}
