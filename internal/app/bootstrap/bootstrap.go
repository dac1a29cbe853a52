package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	nftmarketplace "nftmarket/contexts/marketplace-core/nft-marketplace"
	"nftmarket/contexts/marketplace-core/nft-marketplace/adapters/memory"
	postgresadapter "nftmarket/contexts/marketplace-core/nft-marketplace/adapters/postgres"
	workerapp "nftmarket/contexts/marketplace-core/nft-marketplace/application/workers"
	"nftmarket/contexts/marketplace-core/nft-marketplace/ports"
	"nftmarket/internal/platform/config"
	"nftmarket/internal/platform/db"
	"nftmarket/internal/platform/eventstream"
	"nftmarket/internal/platform/httpserver"
	"nftmarket/internal/platform/messaging"
	"nftmarket/internal/platform/metrics"
)

const shutdownTimeout = 10 * time.Second

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

// eventBus is the in-process Bus in memory mode and the Redis bus when the
// ledger lives in postgres and a separate worker relays the outbox.
type eventBus interface {
	ports.EventPublisher
	ports.EventSubscriber
}

type APIApp struct {
	server       *httpserver.Server
	postgres     *db.Postgres
	redis        *redis.Client
	bus          eventBus
	metrics      *metrics.Metrics
	events       *eventstream.Hub
	relay        *workerapp.OutboxRelay
	topic        string
	pollInterval time.Duration
	logger       *slog.Logger
}

type WorkerApp struct {
	postgres     *db.Postgres
	redis        *redis.Client
	outboxRelay  workerapp.OutboxRelay
	pollInterval time.Duration
	logger       *slog.Logger
}

func BuildAPI(ctx context.Context, cfg config.Config, logger *slog.Logger) (*APIApp, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("service", cfg.ServiceName, "process", "api")

	module, pg, err := buildModule(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	bus, redisClient, err := buildBus(ctx, cfg, logger)
	if err != nil {
		closePostgres(pg)
		return nil, err
	}

	metricsRegistry := metrics.New()
	var hub *eventstream.Hub
	if cfg.EnableEventStream {
		hub = eventstream.NewHub(logger)
	}

	server := httpserver.New(module, metricsRegistry, hub, logger, normalizeAddr(cfg.HTTPPort))
	server.LimitWrites(cfg.RateLimitRPS, cfg.RateLimitBurst)

	app := &APIApp{
		server:       server,
		postgres:     pg,
		redis:        redisClient,
		bus:          bus,
		metrics:      metricsRegistry,
		events:       hub,
		topic:        cfg.EventsTopic,
		pollInterval: cfg.WorkerPollInterval,
		logger:       logger,
	}
	// A memory outbox is only visible to this process, so the API relays it.
	if cfg.StorageDriver == config.StorageMemory {
		relay := module.OutboxRelay(bus, cfg.EventsTopic, cfg.OutboxBatchSize, logger)
		app.relay = &relay
	}
	return app, nil
}

func BuildWorker(ctx context.Context, cfg config.Config, logger *slog.Logger) (*WorkerApp, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("service", cfg.ServiceName, "process", "worker")
	if cfg.StorageDriver != config.StoragePostgres {
		return nil, errors.New("worker requires STORAGE_DRIVER=postgres")
	}

	module, pg, err := buildModule(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	bus, redisClient, err := buildBus(ctx, cfg, logger)
	if err != nil {
		closePostgres(pg)
		return nil, err
	}

	relay := module.OutboxRelay(bus, cfg.EventsTopic, cfg.OutboxBatchSize, logger)
	relay.Clock = postgresadapter.SystemClock{}
	return &WorkerApp{
		postgres:     pg,
		redis:        redisClient,
		outboxRelay:  relay,
		pollInterval: cfg.WorkerPollInterval,
		logger:       logger,
	}, nil
}

// buildBus keeps events in-process for the memory ledger. With postgres the
// outbox is relayed by the worker process, so events cross over Redis.
func buildBus(ctx context.Context, cfg config.Config, logger *slog.Logger) (eventBus, *redis.Client, error) {
	if cfg.StorageDriver != config.StoragePostgres {
		return messaging.NewBus(cfg.KafkaBrokers, logger), nil, nil
	}
	client, err := messaging.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("redis event bus connected",
		"event", "bootstrap_redis_connected",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"addr", cfg.RedisAddr,
	)
	return messaging.NewRedisBus(client, logger), client, nil
}

func closePostgres(pg *db.Postgres) {
	if pg != nil {
		_ = pg.Close()
	}
}

// buildModule picks the ledger backend. The asset registry and the funds
// wallet are in-process in both modes.
func buildModule(ctx context.Context, cfg config.Config, logger *slog.Logger) (nftmarketplace.Module, *db.Postgres, error) {
	if cfg.StorageDriver != config.StoragePostgres {
		return nftmarketplace.NewInMemoryModule(cfg.MarketplaceAddress, logger), nil, nil
	}

	pg, err := db.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		return nftmarketplace.Module{}, nil, err
	}
	if cfg.RunMigrations {
		if err := pg.Migrate(ctx); err != nil {
			_ = pg.Close()
			return nftmarketplace.Module{}, nil, err
		}
		logger.Info("postgres migrations applied",
			"event", "bootstrap_migrations_applied",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}

	repo := postgresadapter.NewRepository(pg.DB, logger)
	registry := memory.NewRegistry(logger)
	wallet := memory.NewWallet(logger)
	module := nftmarketplace.NewModule(nftmarketplace.Dependencies{
		Ledger:      repo,
		Tx:          repo,
		Outbox:      repo,
		Registry:    registry,
		Funds:       wallet,
		Clock:       postgresadapter.SystemClock{},
		IDGenerator: postgresadapter.UUIDGenerator{},
		Marketplace: cfg.MarketplaceAddress,
		Logger:      logger,
	})
	module.Registry = registry
	module.Wallet = wallet
	return module, pg, nil
}

func (a *APIApp) Run(ctx context.Context) error {
	if err := a.bus.Subscribe(ctx, a.topic, "api-metrics", a.metrics.ObserveEvent); err != nil {
		return err
	}
	if a.events != nil {
		if err := a.bus.Subscribe(ctx, a.topic, "api-eventstream", a.events.Broadcast); err != nil {
			return err
		}
	}
	if a.relay != nil {
		go a.runRelay(ctx)
	}

	a.logger.Info("api app started",
		"event", "bootstrap_api_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"embedded_relay", a.relay != nil,
	)

	errCh := make(chan error, 1)
	go func() { errCh <- a.server.Start() }()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	}
}

func (a *APIApp) runRelay(ctx context.Context) {
	ticker := time.NewTicker(a.pollInterval)
	defer ticker.Stop()
	for {
		if _, err := a.relay.RunOnce(ctx); err != nil {
			a.logger.Warn("embedded outbox relay failed",
				"event", "bootstrap_relay_failed",
				"module", "internal/app/bootstrap",
				"layer", "platform",
				"error", err.Error(),
			)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (a *APIApp) Close() error {
	return closeResources(a.postgres, a.redis)
}

func (w *WorkerApp) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
	)

	for {
		if _, err := w.outboxRelay.RunOnce(ctx); err != nil {
			if !errors.Is(err, messaging.ErrNoSubscribers) {
				return err
			}
			w.logger.Warn("no event consumers, outbox rows stay pending",
				"event", "bootstrap_worker_no_consumers",
				"module", "internal/app/bootstrap",
				"layer", "platform",
				"error", err.Error(),
			)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	return closeResources(w.postgres, w.redis)
}

func closeResources(pg *db.Postgres, redisClient *redis.Client) error {
	var errs []error
	if redisClient != nil {
		errs = append(errs, redisClient.Close())
	}
	if pg != nil {
		errs = append(errs, pg.Close())
	}
	return errors.Join(errs...)
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
