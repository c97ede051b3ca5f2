package container

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/narwhalmedia/scraper/internal/config"
	domainevents "github.com/narwhalmedia/scraper/internal/domain/events"
	"github.com/narwhalmedia/scraper/internal/infrastructure/archive"
	"github.com/narwhalmedia/scraper/internal/infrastructure/backends"
	"github.com/narwhalmedia/scraper/internal/infrastructure/cache"
	eventsink "github.com/narwhalmedia/scraper/internal/infrastructure/events"
	"github.com/narwhalmedia/scraper/internal/infrastructure/events/kafka"
	natsevents "github.com/narwhalmedia/scraper/internal/infrastructure/events/nats"
	"github.com/narwhalmedia/scraper/internal/infrastructure/grpcserver"
	gormrepo "github.com/narwhalmedia/scraper/internal/infrastructure/persistence/gorm"
	"github.com/narwhalmedia/scraper/internal/ranking"
	"github.com/narwhalmedia/scraper/internal/scraping"
)

// ProvideScrapingOptions maps configuration to orchestrator options
func ProvideScrapingOptions(cfg *config.Config) scraping.Options {
	return scraping.Options{
		BaseInterval:   cfg.Scraping.BaseInterval,
		After2Hours:    cfg.Scraping.After2Hours,
		After5Hours:    cfg.Scraping.After5Hours,
		After10Hours:   cfg.Scraping.After10Hours,
		Debug:          cfg.Scraping.Debug,
		MaxWorkers:     cfg.Scraping.MaxWorkers,
		BackendTimeout: cfg.Scraping.BackendTimeout,
	}
}

// ProvideRankingConfig maps configuration to ranker settings
func ProvideRankingConfig(cfg *config.Config) ranking.Config {
	return ranking.Config{
		MinSimilarity: cfg.Ranking.MinSimilarity,
		RejectTrash:   cfg.Ranking.RejectTrash,
	}
}

// ProvideCache returns the configured response cache, nil when disabled
func ProvideCache(cfg *config.Config, logger *zap.Logger) (cache.Cache, func(), error) {
	switch cfg.Scraping.CacheType {
	case "memory":
		c := cache.NewMemoryCache(time.Minute)
		return c, func() { _ = c.Close() }, nil
	case "redis":
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		c, err := cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:         cfg.Redis.Addr(),
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			MaxRetries:   cfg.Redis.MaxRetries,
			Prefix:       cfg.Redis.KeyPrefix,
		})
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Using redis response cache", zap.String("addr", cfg.Redis.Addr()))
		return c, func() { _ = c.Close() }, nil
	default:
		return nil, func() {}, nil
	}
}

// ProvideBackends builds the configured discovery backends
func ProvideBackends(cfg *config.Config, c cache.Cache, logger *zap.Logger) ([]scraping.Backend, error) {
	return backends.FromConfig(cfg.Backends, c, logger)
}

// ProvideRegistry registers every configured backend
func ProvideRegistry(logger *zap.Logger, list []scraping.Backend) (*scraping.Registry, error) {
	return scraping.NewRegistry(logger, list...)
}

// ProvideEventPublisher connects the configured event sink, nil when events
// are disabled.
func ProvideEventPublisher(cfg *config.Config, logger *zap.Logger) (domainevents.EventPublisher, func(), error) {
	switch cfg.Scraping.EventSink {
	case "nats":
		client, cleanup, err := natsevents.NewClient(cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		return natsevents.NewPublisher(client, logger), cleanup, nil
	case "kafka":
		return provideKafkaPublisher(cfg, logger)
	default:
		return nil, func() {}, nil
	}
}

// ProvideSharedEventPublisher is ProvideEventPublisher for processes that
// already hold a NATS connection.
func ProvideSharedEventPublisher(cfg *config.Config, client *natsevents.Client, logger *zap.Logger) (domainevents.EventPublisher, func(), error) {
	switch cfg.Scraping.EventSink {
	case "nats":
		return natsevents.NewPublisher(client, logger), func() {}, nil
	case "kafka":
		return provideKafkaPublisher(cfg, logger)
	default:
		return nil, func() {}, nil
	}
}

func provideKafkaPublisher(cfg *config.Config, logger *zap.Logger) (domainevents.EventPublisher, func(), error) {
	publisher, err := kafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
	if err != nil {
		return nil, nil, err
	}
	return publisher, func() {
		if err := publisher.Close(); err != nil {
			logger.Error("failed to close kafka publisher", zap.Error(err))
		}
	}, nil
}

// ProvideAttemptRepository opens the history database when attempts are
// recorded, nil otherwise.
func ProvideAttemptRepository(cfg *config.Config, logger *zap.Logger) (*gormrepo.AttemptRepository, func(), error) {
	if !cfg.Scraping.RecordAttempts {
		return nil, func() {}, nil
	}
	db, cleanup, err := gormrepo.NewDB(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return gormrepo.NewAttemptRepository(db), cleanup, nil
}

// ProvideArchiver returns the raw result archiver, nil when disabled
func ProvideArchiver(cfg *config.Config, logger *zap.Logger) (*archive.Archiver, error) {
	if !cfg.Scraping.ArchiveResults {
		return nil, nil
	}
	storage, err := archive.NewStorage(context.Background(), cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create archive storage: %w", err)
	}
	return archive.NewArchiver(storage), nil
}

// ProvideSinks collects the enabled result sinks
func ProvideSinks(publisher domainevents.EventPublisher, repo *gormrepo.AttemptRepository, archiver *archive.Archiver) []scraping.ResultSink {
	var sinks []scraping.ResultSink
	if publisher != nil {
		sinks = append(sinks, eventsink.NewPublishingSink(publisher))
	}
	if repo != nil {
		sinks = append(sinks, gormrepo.NewAttemptSink(repo))
	}
	if archiver != nil {
		sinks = append(sinks, archiver)
	}
	return sinks
}

// ProvideOrchestrator wires the orchestrator with its sinks
func ProvideOrchestrator(registry *scraping.Registry, ranker scraping.Ranker, opts scraping.Options, logger *zap.Logger, sinks []scraping.ResultSink) *scraping.Orchestrator {
	return scraping.NewOrchestrator(registry, ranker, opts, logger, scraping.WithSinks(sinks...))
}

// ProvideHealthServer creates the health server and checks NATS on refresh
func ProvideHealthServer(cfg *config.Config, registry *scraping.Registry, client *natsevents.Client, logger *zap.Logger) *grpcserver.Server {
	srv := grpcserver.New(cfg.Server, registry, logger)
	srv.AddCheck("nats", client.Health)
	return srv
}
