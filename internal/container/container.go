// Package container assembles the scraper's dependency graph.
package container

import (
	"go.uber.org/zap"

	"github.com/narwhalmedia/scraper/internal/application/scrape"
	"github.com/narwhalmedia/scraper/internal/config"
	natsevents "github.com/narwhalmedia/scraper/internal/infrastructure/events/nats"
	"github.com/narwhalmedia/scraper/internal/infrastructure/grpcserver"
	gormrepo "github.com/narwhalmedia/scraper/internal/infrastructure/persistence/gorm"
	"github.com/narwhalmedia/scraper/internal/scraping"
)

// ScraperContainer holds the dependencies of a one-shot scrape
type ScraperContainer struct {
	Config       *config.Config
	Logger       *zap.Logger
	Registry     *scraping.Registry
	Orchestrator *scraping.Orchestrator
	Service      *scrape.Service
	// Attempts is nil unless attempt recording is enabled
	Attempts *gormrepo.AttemptRepository
}

// ServerContainer holds the dependencies of the request consumer process
type ServerContainer struct {
	Config   *config.Config
	Logger   *zap.Logger
	Registry *scraping.Registry
	Service  *scrape.Service
	NATS     *natsevents.Client
	Consumer *natsevents.RequestConsumer
	Health   *grpcserver.Server
}
