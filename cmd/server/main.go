package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"route-reconciliation-service/internal/adapters/repositories"
	"route-reconciliation-service/internal/api"
	"route-reconciliation-service/internal/config"
	"route-reconciliation-service/internal/domain"
	"route-reconciliation-service/internal/platform/obs"
	"route-reconciliation-service/internal/session"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
)

// main is the application composition root.
// It wires the configured route store behind the session manager and starts the HTTP server.
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	dotenv := config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := obs.NewLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	obs.SetLogger(logger)
	log := obs.L()

	if !dotenv {
		log.Infow("no .env file found, using environment variables")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := repositories.OpenStore(ctx, repositories.StoreOptions{
		Backend:       cfg.StoreBackend,
		DBPath:        cfg.DBPath,
		DatabaseURL:   cfg.DatabaseURL,
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
		AutoMigrate:   cfg.AutoMigrate,
	})
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()

	// Seed today's scope with demo manifests for local runs.
	if cfg.SeedPath != "" {
		scope := domain.ScopeKey(cfg.Operation, time.Now())
		n, err := repositories.SeedFromJSON(ctx, store, scope, cfg.SeedPath)
		if err != nil {
			return err
		}
		log.Infow("seeded manifests", "scope", scope, "routes", n)
	}

	manager := session.NewManager(store, session.Options{
		SyncDebounce:    cfg.SyncDebounce,
		SyncMaxAttempts: cfg.SyncMaxAttempts,
		SyncRetryDelay:  cfg.SyncRetryDelay,
	})
	router := api.NewRouter(manager, api.RouterOptions{Operation: cfg.Operation})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Syncers outlive the HTTP server so scans accepted during shutdown are flushed.
	syncCtx, stopSync := context.WithCancel(context.Background())
	defer stopSync()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return manager.Run(syncCtx)
	})

	g.Go(func() error {
		log.Infow("server listening", "addr", srv.Addr, "store", cfg.StoreBackend, "operation", cfg.Operation)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		defer stopSync()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		log.Infow("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}
