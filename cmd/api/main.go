package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/smartwear/pos-backend/api/controllers"
	"github.com/smartwear/pos-backend/api/routes"
	"github.com/smartwear/pos-backend/internal/events"
	"github.com/smartwear/pos-backend/internal/ledger"
	"github.com/smartwear/pos-backend/internal/messaging"
	"github.com/smartwear/pos-backend/internal/pos"
	"github.com/smartwear/pos-backend/internal/returns"
	"github.com/smartwear/pos-backend/internal/seed"
	"github.com/smartwear/pos-backend/internal/sessions"
	"github.com/smartwear/pos-backend/internal/workbench"
	"github.com/smartwear/pos-backend/pkg/config"
	"github.com/smartwear/pos-backend/pkg/db"
	"github.com/smartwear/pos-backend/pkg/ids"
	"github.com/smartwear/pos-backend/pkg/instance"
	"github.com/smartwear/pos-backend/pkg/logger"
	"github.com/smartwear/pos-backend/pkg/metrics"
	"github.com/smartwear/pos-backend/pkg/migrate"
	"github.com/smartwear/pos-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRun(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run migrations", err)
		os.Exit(1)
	}

	if cfg.FeatureFlags.SeedDemoData {
		if _, err := seed.Demo(context.Background(), dbClient.DB(), logg); err != nil {
			logg.Error(context.Background(), "failed to seed demo data", err)
			os.Exit(1)
		}
	}

	cat, book, err := seed.Load(context.Background(), dbClient.DB(), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to load reference data", err)
		os.Exit(1)
	}

	pingers := map[string]controllers.Pinger{"db": dbClient, "redis": nil}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		pingers["redis"] = redisClient
	}

	var (
		store  sessions.Store
		locker sessions.Locker
	)
	switch {
	case cfg.FeatureFlags.RedisSessions && redisClient != nil:
		redisStore, err := sessions.NewRedisStore(redisClient, cfg.Session.TTL)
		if err != nil {
			logg.Error(context.Background(), "failed to create session store", err)
			os.Exit(1)
		}
		redisLocker, err := sessions.NewRedisLocker(redisClient, cfg.Session.LockTTL)
		if err != nil {
			logg.Error(context.Background(), "failed to create session locker", err)
			os.Exit(1)
		}
		store, locker = redisStore, redisLocker
	case cfg.FeatureFlags.RedisSessions:
		logg.Error(context.Background(), "redis sessions enabled without redis", errors.New("SMARTWEAR_REDIS_URL or SMARTWEAR_REDIS_ADDR is required"))
		os.Exit(1)
	default:
		store, locker = sessions.NewMemoryStore(cfg.Session.TTL), sessions.NewMemoryLocker()
	}

	ledgerService, err := ledger.NewService(ledger.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create ledger service", err)
		os.Exit(1)
	}
	recorders := []events.Recorder{ledgerService}

	if cfg.Eventing.KafkaEnabled() {
		publisher, err := messaging.NewPublisher(cfg.Eventing)
		if err != nil {
			logg.Error(context.Background(), "failed to create kafka publisher", err)
			os.Exit(1)
		}
		defer func() {
			if err := publisher.Close(); err != nil {
				logg.Error(context.Background(), "error closing kafka publisher", err)
			}
		}()
		recorders = append(recorders, publisher)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	taxRate, err := cfg.Pricing.Rate()
	if err != nil {
		logg.Error(context.Background(), "invalid tax rate", err)
		os.Exit(1)
	}
	bench, err := workbench.New(cat, ids.UUID{}, workbench.Options{
		TaxRate:       taxRate,
		StockTracking: cfg.FeatureFlags.StockTracking,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create workbench", err)
		os.Exit(1)
	}
	desk, err := returns.NewDesk(book)
	if err != nil {
		logg.Error(context.Background(), "failed to create returns desk", err)
		os.Exit(1)
	}

	posService, err := pos.NewService(pos.Params{
		Workbench: bench,
		Desk:      desk,
		Store:     store,
		Locker:    locker,
		Recorder:  events.NewFanout(recorders...),
		Metrics:   metrics.NewPOSMetrics(registry),
		Logger:    logg,
		IDs:       ids.UUID{},
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create pos service", err)
		os.Exit(1)
	}

	// A nil *redis.Client inside the interface would not read as nil.
	var idempotencyStore redis.IdempotencyStore
	if redisClient != nil {
		idempotencyStore = redisClient
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
		"products": cat.Len(),
		"orders":   book.Len(),
	})

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, pingers, registry, idempotencyStore, cat, posService, ledgerService),
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-sigCtx.Done():
		logg.Info(ctx, "shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}

	logg.Info(ctx, "api server stopped")
}
