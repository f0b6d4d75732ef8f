package di

import (
	"context"
	"fmt"
	"time"

	"GhostRegime/internal/domain/repository"
	"GhostRegime/internal/domain/service"
	"GhostRegime/internal/handler/api"
	internalrepo "GhostRegime/internal/repository"
	"GhostRegime/internal/services/gateway"
	"GhostRegime/internal/services/history"
	"GhostRegime/internal/services/signals"
	"GhostRegime/internal/services/vendors"
	"GhostRegime/internal/usecase"
	"GhostRegime/pkg/cache"
	pkgch "GhostRegime/pkg/clickhouse"
	"GhostRegime/pkg/config"
	xhttp "GhostRegime/pkg/http"
	pkgkafka "GhostRegime/pkg/kafka"
	applogger "GhostRegime/pkg/logger"
	"GhostRegime/pkg/metrics"
	"GhostRegime/pkg/server"
)

const initTimeout = 10 * time.Second

// ProvideLogger creates the application logger from the log section.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideHistoryRepository opens the configured history backend and ensures its schema.
func ProvideHistoryRepository(cfg *config.Config, l *applogger.Logger) (repository.HistoryRepository, func(), error) {
	var repo repository.HistoryRepository
	switch cfg.History.Backend {
	case "memory":
		repo = internalrepo.NewMemoryHistory()
	default:
		client, err := pkgch.NewClient(
			pkgch.WithHost(cfg.ClickHouse.Host),
			pkgch.WithPort(cfg.ClickHouse.Port),
			pkgch.WithDatabase(cfg.ClickHouse.Database),
			pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
			pkgch.WithMaxConnections(4, 2),
			pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
			pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
			pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("clickhouse client: %w", err)
		}
		repo = internalrepo.NewCHHistory(client, l)
	}

	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()
	if err := repo.Init(ctx); err != nil {
		_ = repo.Close()
		return nil, nil, fmt.Errorf("history schema: %w", err)
	}

	cleanup := func() {
		if err := repo.Close(); err != nil {
			l.Warn("history close error", applogger.Error(err))
		}
	}
	return repo, cleanup, nil
}

// ProvideCache returns Redis when enabled, otherwise a process-local cache.
func ProvideCache(cfg *config.Config, l *applogger.Logger) (cache.Service, func(), error) {
	if !cfg.Redis.Enabled {
		mc := cache.NewMemoryCache(cache.WithMemoryMaxSize(cfg.Redis.MemoryMaxSize))
		return mc, func() {}, nil
	}
	rc, err := cache.NewRedisCache(
		cache.WithRedisAddr(cfg.Redis.Addr),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
		cache.WithRedisPrefix(cfg.Redis.Prefix),
		cache.WithRedisPool(cfg.Redis.PoolSize, cfg.Redis.MinIdleConns, cfg.Redis.PoolTimeout),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("redis: %w", err)
	}
	cleanup := func() {
		if err := rc.Close(); err != nil {
			l.Warn("redis close error", applogger.Error(err))
		}
	}
	return rc, cleanup, nil
}

// ProvideDateLocker exposes the cache as the cross-process build lock.
func ProvideDateLocker(c cache.Service) repository.DateLocker {
	return c
}

// ProvideSeriesCache exposes the cache as the vendor series cache.
func ProvideSeriesCache(c cache.Service) repository.SeriesCache {
	return c
}

// ProvideSnapshotPublisher creates the Kafka snapshot publisher, or a no-op when Kafka is off.
func ProvideSnapshotPublisher(cfg *config.Config, l *applogger.Logger) (repository.SnapshotPublisher, func(), error) {
	if !cfg.Kafka.Enabled || len(cfg.Kafka.Brokers) == 0 {
		return internalrepo.NoopPublisher{}, func() {}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.MaxAttempts),
		pkgkafka.WithTimeouts(cfg.Kafka.WriteTimeout, cfg.Kafka.WriteTimeout),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	pub := internalrepo.NewKafkaSnapshotPublisher(producer, cfg.Kafka.Topic)
	cleanup := func() {
		if err := pub.Close(); err != nil {
			l.Warn("kafka producer close error", applogger.Error(err))
		}
	}
	return pub, cleanup, nil
}

// ProvideVendorRegistry builds the enabled market data vendors.
func ProvideVendorRegistry(cfg *config.Config) map[string]service.Vendor {
	return vendors.NewRegistry(cfg.Vendors)
}

// ProvideGateway creates the fallback-chain market data gateway.
func ProvideGateway(
	cfg *config.Config,
	registry map[string]service.Vendor,
	seriesCache repository.SeriesCache,
	m repository.Metrics,
	l *applogger.Logger,
) service.Gateway {
	return gateway.New(cfg.GhostRegime, cfg.Vendors, registry,
		gateway.WithCache(seriesCache, cfg.Redis.SeriesTTL),
		gateway.WithMetrics(m),
		gateway.WithLogger(l),
	)
}

// ProvideSignalBank returns the stock signal set.
func ProvideSignalBank() *signals.Bank {
	return signals.NewBank()
}

// ProvideHistoryStore loads persisted rows into the in-memory store.
func ProvideHistoryStore(repo repository.HistoryRepository, l *applogger.Logger) (*history.Store, error) {
	store := history.NewStore(repo, l)
	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()
	if err := store.Load(ctx); err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return store, nil
}

// ProvideSnapshotBuilder creates the single writer of snapshots.
func ProvideSnapshotBuilder(
	cfg *config.Config,
	gw service.Gateway,
	bank *signals.Bank,
	store *history.Store,
	locker repository.DateLocker,
	pub repository.SnapshotPublisher,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.SnapshotBuilder {
	return usecase.NewSnapshotBuilder(cfg.GhostRegime, gw, bank, store,
		usecase.WithDateLocker(locker),
		usecase.WithPublisher(pub),
		usecase.WithBuilderMetrics(m),
		usecase.WithBuilderLogger(l),
	)
}

// ProvideGhostRegimeService creates the read/query use case.
func ProvideGhostRegimeService(cfg *config.Config, store *history.Store, builder *usecase.SnapshotBuilder) *usecase.GhostRegimeService {
	return usecase.NewGhostRegimeService(cfg.GhostRegime, store, builder)
}

// ProvideScheduler creates the daily cron scheduler.
func ProvideScheduler(cfg *config.Config, builder *usecase.SnapshotBuilder, store *history.Store, l *applogger.Logger) (*usecase.Scheduler, error) {
	s, err := usecase.NewScheduler(cfg.GhostRegime, builder, store, l)
	if err != nil {
		return nil, fmt.Errorf("scheduler: %w", err)
	}
	return s, nil
}

// ProvideSeeder creates the history seed loader.
func ProvideSeeder(store *history.Store, l *applogger.Logger) *usecase.Seeder {
	return usecase.NewSeeder(store, l)
}

// ProvideHTTPHandler creates the echo route handler.
func ProvideHTTPHandler(svc *usecase.GhostRegimeService, l *applogger.Logger) xhttp.Handler {
	return api.NewGhostRegimeEchoHandler(l, svc)
}

// ProvideHTTPServer creates the HTTP server.
func ProvideHTTPServer(cfg *config.Config, h xhttp.Handler, l *applogger.Logger) *xhttp.Server {
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	return xhttp.NewServer(h, l,
		xhttp.WithHost(cfg.Server.Host),
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithCORS(cfg.Server.CORS),
		xhttp.WithMetrics(metricsPath, cfg.Server.SlowRequest),
	)
}

// ProvideApp creates the application.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	httpServer *xhttp.Server,
	scheduler *usecase.Scheduler,
	builder *usecase.SnapshotBuilder,
	seeder *usecase.Seeder,
	store *history.Store,
) *server.App {
	return server.New(cfg, l, httpServer, scheduler, builder, seeder, store)
}
