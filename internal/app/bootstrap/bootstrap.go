package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	contributionengine "paperportal/contexts/community-experience/contribution-engine"
	"paperportal/contexts/community-experience/contribution-engine/adapters/memory"
	postgresadapter "paperportal/contexts/community-experience/contribution-engine/adapters/postgres"
	"paperportal/contexts/community-experience/contribution-engine/adapters/redisindex"
	"paperportal/contexts/community-experience/contribution-engine/application/commands"
	workerapp "paperportal/contexts/community-experience/contribution-engine/application/workers"
	"paperportal/contexts/community-experience/contribution-engine/ports"
	"paperportal/internal/platform/config"
	"paperportal/internal/platform/db"
	"paperportal/internal/platform/httpserver"
	"paperportal/internal/platform/messaging"
	"paperportal/internal/platform/metrics"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server *httpserver.Server
	handle *db.Handle
	logger *slog.Logger
}

type WorkerApp struct {
	handle       *db.Handle
	outboxRelay  workerapp.OutboxRelay
	tierConsumer workerapp.TierChangedConsumer
	pollInterval time.Duration
	logger       *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	prom := metrics.NewPrometheus()

	handle, module, err := buildModule(cfg, prom, logger)
	if err != nil {
		return nil, err
	}

	server := httpserver.New(module, prom.Handler(), logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server: server,
		handle: handle,
		logger: logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if cfg.DBDriver == "memory" {
		return nil, errors.New("worker requires a persistent db_driver (postgres or sqlite)")
	}

	handle, err := openHandle(cfg)
	if err != nil {
		return nil, err
	}

	repo := postgresadapter.NewRepository(handle.DB, logger)
	if err := repo.AutoMigrate(); err != nil {
		_ = handle.Close()
		return nil, err
	}

	bus := messaging.NewBus(logger)
	prom := metrics.NewPrometheus()

	return &WorkerApp{
		handle: handle,
		outboxRelay: workerapp.OutboxRelay{
			Outbox:    repo,
			Publisher: bus,
			Clock:     postgresadapter.SystemClock{},
			Metrics:   prom,
			BatchSize: cfg.OutboxBatchSize,
			Logger:    logger,
		},
		tierConsumer: workerapp.TierChangedConsumer{
			Subscriber:    bus,
			Topic:         commands.TopicTierChanged,
			ConsumerGroup: "contribution-tier-changed-cg",
			Logger:        logger,
		},
		pollInterval: time.Duration(cfg.WorkerPollSeconds) * time.Second,
		logger:       logger,
	}, nil
}

func buildModule(cfg config.Config, prom *metrics.Prometheus, logger *slog.Logger) (*db.Handle, contributionengine.Module, error) {
	if cfg.DBDriver == "memory" {
		store := memory.NewStore()
		module := contributionengine.NewModule(contributionengine.Dependencies{
			Ledger:         store,
			States:         store,
			Idempotency:    store,
			Leaderboard:    buildLeaderboard(cfg, store, logger),
			Clock:          store,
			IDGen:          store,
			Metrics:        prom,
			CASRetryLimit:  cfg.CASRetryLimit,
			IdempotencyTTL: time.Duration(cfg.IdempotencyTTLHours) * time.Hour,
			Logger:         logger,
		})
		module.Store = store
		return nil, module, nil
	}

	handle, err := openHandle(cfg)
	if err != nil {
		return nil, contributionengine.Module{}, err
	}

	repo := postgresadapter.NewRepository(handle.DB, logger)
	if err := repo.AutoMigrate(); err != nil {
		_ = handle.Close()
		return nil, contributionengine.Module{}, err
	}

	module := contributionengine.NewModule(contributionengine.Dependencies{
		Ledger:         repo,
		States:         repo,
		Idempotency:    repo,
		Leaderboard:    buildLeaderboard(cfg, memory.NewStore(), logger),
		Clock:          postgresadapter.SystemClock{},
		IDGen:          postgresadapter.UUIDGenerator{},
		Metrics:        prom,
		CASRetryLimit:  cfg.CASRetryLimit,
		IdempotencyTTL: time.Duration(cfg.IdempotencyTTLHours) * time.Hour,
		Logger:         logger,
	})
	return handle, module, nil
}

func buildLeaderboard(cfg config.Config, fallback ports.LeaderboardIndex, logger *slog.Logger) ports.LeaderboardIndex {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return fallback
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	return redisindex.NewIndex(client, logger)
}

func openHandle(cfg config.Config) (*db.Handle, error) {
	switch cfg.DBDriver {
	case "postgres":
		return db.OpenPostgres(cfg.PostgresDSN)
	case "sqlite":
		return db.OpenSQLite(cfg.SQLitePath)
	default:
		return nil, errors.New("unsupported db_driver: " + cfg.DBDriver)
	}
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.handle != nil {
		return a.handle.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	if err := w.tierConsumer.Start(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
	)

	for {
		if err := w.outboxRelay.RunOnce(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	if w.handle != nil {
		return w.handle.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
