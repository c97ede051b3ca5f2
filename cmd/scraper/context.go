package main

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/narwhalmedia/scraper/internal/application/scrape"
	"github.com/narwhalmedia/scraper/internal/config"
	"github.com/narwhalmedia/scraper/internal/container"
	"github.com/narwhalmedia/scraper/internal/domain/media"
	"github.com/narwhalmedia/scraper/internal/logger"
)

type commandContext struct {
	backendsFlag *string
	jsonFlag     *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *zap.Logger
	loggerErr  error
}

func newCommandContext(backendsFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{
		backendsFlag: backendsFlag,
		jsonFlag:     jsonFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, err := config.Load(serviceName)
		if err != nil {
			c.configErr = err
			return
		}
		if path := strings.TrimSpace(*c.backendsFlag); path != "" {
			backends, err := config.LoadBackends(path)
			if err != nil {
				c.configErr = err
				return
			}
			cfg.Scraping.BackendsFile = path
			cfg.Backends = backends
			if err := cfg.Validate(); err != nil {
				c.configErr = err
				return
			}
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*zap.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logger.New(logger.Options{
			ServiceName: cfg.Server.ServiceName,
			Environment: cfg.Server.Environment,
			Level:       cfg.Server.LogLevel,
			Format:      cfg.Server.LogFormat,
			Debug:       cfg.Scraping.Debug,
		})
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

// withScraper builds the scraping container, runs fn and releases it.
// mutate may adjust a copy of the configuration first.
func (c *commandContext) withScraper(mutate func(*config.Config), fn func(*container.ScraperContainer) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	log, err := c.ensureLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	local := *cfg
	if mutate != nil {
		mutate(&local)
	}

	scraper, cleanup, err := container.InitializeScraper(&local, log)
	if err != nil {
		return fmt.Errorf("failed to initialize scraper: %w", err)
	}
	defer cleanup()
	return fn(scraper)
}

// readCommand loads an item snapshot file into a scrape command
func readCommand(path string, season, episode int) (scrape.ScrapeCommand, error) {
	file, err := os.Open(path)
	if err != nil {
		return scrape.ScrapeCommand{}, fmt.Errorf("open item file: %w", err)
	}
	defer file.Close()

	item, err := media.DecodeSnapshot(file)
	if err != nil {
		return scrape.ScrapeCommand{}, err
	}

	cmd := scrape.ScrapeCommand{Item: media.ToSnapshot(item)}
	if season >= 0 {
		cmd.Season = &season
		if episode > 0 {
			cmd.Episode = &episode
		}
	}
	return cmd, nil
}
