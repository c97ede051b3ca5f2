//go:build wireinject
// +build wireinject

package container

import (
	"github.com/google/wire"
	"go.uber.org/zap"

	"github.com/narwhalmedia/scraper/internal/application/scrape"
	"github.com/narwhalmedia/scraper/internal/config"
	natsevents "github.com/narwhalmedia/scraper/internal/infrastructure/events/nats"
	"github.com/narwhalmedia/scraper/internal/ranking"
	"github.com/narwhalmedia/scraper/internal/scraping"
)

var coreSet = wire.NewSet(
	// Backends
	ProvideCache,
	ProvideBackends,
	ProvideRegistry,

	// Ranking
	ProvideRankingConfig,
	ranking.NewDefaultRanker,
	wire.Bind(new(scraping.Ranker), new(*ranking.DefaultRanker)),

	// Result sinks
	ProvideAttemptRepository,
	ProvideArchiver,
	ProvideSinks,

	// Orchestration
	ProvideScrapingOptions,
	ProvideOrchestrator,
	scrape.NewService,
)

// InitializeScraper creates the one-shot scraping container used by the CLI
func InitializeScraper(cfg *config.Config, logger *zap.Logger) (*ScraperContainer, func(), error) {
	wire.Build(
		coreSet,
		ProvideEventPublisher,
		wire.Struct(new(ScraperContainer), "*"),
	)
	return nil, nil, nil
}

// InitializeServer creates the long-running request consumer container
func InitializeServer(cfg *config.Config, logger *zap.Logger) (*ServerContainer, func(), error) {
	wire.Build(
		coreSet,
		natsevents.NewClient,
		ProvideSharedEventPublisher,
		wire.Bind(new(natsevents.CommandHandler), new(*scrape.Service)),
		natsevents.NewRequestConsumer,
		ProvideHealthServer,
		wire.Struct(new(ServerContainer), "*"),
	)
	return nil, nil, nil
}
