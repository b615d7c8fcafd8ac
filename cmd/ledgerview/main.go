package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"ledgerview/internal/amqp"
	"ledgerview/internal/backend"
	"ledgerview/internal/cache"
	"ledgerview/internal/cli"
	"ledgerview/internal/config"
	"ledgerview/internal/core"
	apphttp "ledgerview/internal/http"
	"ledgerview/internal/loader"
	"ledgerview/internal/log"
	"ledgerview/internal/snapshot"
)

func main() {
	cfg, logger := cli.Bootstrap()
	logger.Info("Starting ledgerview",
		log.NewFields().WithOperation(log.OpStartup).ToSlice()...)

	factory := backend.NewFactory(logger.Logger)
	res, err := factory.CreateBackend(context.Background(), backend.FromAppConfig(cfg))
	if err != nil {
		logger.Error("Failed to initialize data backend", "error", err, log.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}
	logger.Info("Initialized data backend", log.FieldBackend, cfg.DataBackend)

	manager := cache.NewManager(logger.Logger.With(log.FieldComponent, log.ComponentCache))
	store, closeStore, err := newSnapshotStore(cfg, manager)
	if err != nil {
		logger.Error("Failed to initialize snapshot store", "error", err, "cache_backend", cfg.CacheBackend)
		res.Close()
		os.Exit(1)
	}

	snap := snapshot.New(loader.New(res.Backend), store, cfg.SnapshotTTL,
		logger.Logger.With(log.FieldComponent, log.ComponentSnapshot))

	// Fail fast when the source cannot produce a first snapshot.
	startupCtx, cancelStartup := context.WithTimeout(context.Background(), time.Minute)
	tables, err := snap.Get(startupCtx)
	cancelStartup()
	if err != nil {
		logger.Error("Initial load failed", "error", err, log.FieldBackend, cfg.DataBackend)
		closeStore()
		res.Close()
		os.Exit(1)
	}
	ledgerRows, balanceRows, incomeRows, accounts := tables.Counts()
	logger.Info("Initial snapshot loaded",
		log.FieldEntries, ledgerRows,
		"balance_rows", balanceRows,
		"income_rows", incomeRows,
		"accounts", accounts)

	var amqpClient *amqp.Client
	if cfg.AMQPEnabled() {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			closeStore()
			res.Close()
			os.Exit(1)
		}
		logger.Info("AMQP refresh notifications enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	srv := apphttp.NewServer(":"+cfg.Port, snap, apphttp.Options{
		Year:     cfg.ReportingYear,
		Currency: cfg.Currency,
		Ready:    res.Ready,
		Logger:   logger,
	})
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	var cleanupOnce sync.Once
	cleanup := func(ctx context.Context) {
		cleanupOnce.Do(func() {
			if err := srv.Shutdown(ctx); err != nil {
				logger.Error("Server shutdown error", "error", err)
			}
			manager.Stop()
			if amqpClient != nil {
				if err := amqpClient.Close(); err != nil {
					logger.Warn("AMQP close error", "error", err)
				}
			}
			closeStore()
			res.Close()
		})
	}
	ctx, done := cli.GracefulShutdown(logger.Logger, 30*time.Second, cleanup)

	manager.StartCleanup(ctx, time.Minute)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting HTTP server", "port", cfg.Port, log.FieldYear, cfg.ReportingYear)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if amqpClient != nil {
		g.Go(func() error {
			runRefreshConsumer(gctx, amqpClient, snap, logger.Logger)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		// No signal is coming: release resources here before exiting.
		logger.Error("Server error", "error", err, "port", cfg.Port)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		cleanup(shutdownCtx)
		cancel()
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}

// newSnapshotStore builds the configured snapshot store. The returned
// function releases its connections.
func newSnapshotStore(cfg *config.Config, manager *cache.Manager) (snapshot.Store, func(), error) {
	switch cfg.CacheBackend {
	case "redis":
		client := snapshot.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword)
		store := snapshot.NewRedisStore(client, "ledgerview")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	default:
		lru := cache.NewLRUCache[core.Tables](4, cfg.SnapshotTTL)
		manager.Register(lru)
		return snapshot.NewMemoryStore(lru), func() {}, nil
	}
}
