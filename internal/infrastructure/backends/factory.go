package backends

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/narwhalmedia/scraper/internal/config"
	"github.com/narwhalmedia/scraper/internal/infrastructure/cache"
	"github.com/narwhalmedia/scraper/internal/scraping"
)

// FromConfig builds one backend per entry in declaration order. When c is
// non-nil, backends with a positive cache TTL are wrapped in Cached.
func FromConfig(cfgs []config.BackendConfig, c cache.Cache, logger *zap.Logger) ([]scraping.Backend, error) {
	backends := make([]scraping.Backend, 0, len(cfgs))
	for _, cfg := range cfgs {
		httpOpts := HTTPOptions{
			Timeout:       cfg.Timeout(),
			RatePerSecond: cfg.RatePerSecond,
			Burst:         cfg.Burst,
			UserAgent:     cfg.UserAgent,
		}

		var backend scraping.Backend
		switch cfg.Type {
		case "torrentio":
			backend = NewTorrentio(TorrentioOptions{
				Name:    cfg.Name,
				Enabled: cfg.Enabled,
				BaseURL: cfg.URL,
				Filter:  cfg.Filter,
				HTTP:    httpOpts,
			}, logger)
		case "htmlindex":
			backend = NewHTMLIndex(HTMLIndexOptions{
				Name:      cfg.Name,
				Enabled:   cfg.Enabled,
				SearchURL: cfg.URL,
				Selectors: Selectors{
					Row:     cfg.Selectors.Row,
					Title:   cfg.Selectors.Title,
					Magnet:  cfg.Selectors.Magnet,
					Seeders: cfg.Selectors.Seeders,
					Size:    cfg.Selectors.Size,
				},
				HTTP: httpOpts,
			}, logger)
		default:
			return nil, fmt.Errorf("backend %q: unknown type %q", cfg.Name, cfg.Type)
		}

		if c != nil && cfg.CacheTTL() > 0 {
			backend = NewCached(backend, c, cfg.CacheTTL(), logger)
		}
		backends = append(backends, backend)
	}
	return backends, nil
}
