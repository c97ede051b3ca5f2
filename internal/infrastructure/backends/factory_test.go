package backends

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/narwhalmedia/scraper/internal/config"
	"github.com/narwhalmedia/scraper/internal/infrastructure/cache"
	"github.com/narwhalmedia/scraper/internal/scraping"
)

func TestFromConfig(t *testing.T) {
	store := cache.NewMemoryCache(time.Hour)
	defer store.Close()

	cfgs := []config.BackendConfig{
		{Name: "torrentio", Type: "torrentio", Enabled: true, URL: "https://torrentio.example", CacheTTLSeconds: 60},
		{Name: "indexer", Type: "htmlindex", Enabled: true, URL: "https://i.example/?q={query}",
			Selectors: config.HTMLSelectors{Row: "tr", Magnet: "a"}},
		{Name: "off", Type: "torrentio", Enabled: false, URL: "https://torrentio.example"},
	}

	backends, err := FromConfig(cfgs, store, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, backends, 3)

	assert.IsType(t, &Cached{}, backends[0])
	assert.IsType(t, &HTMLIndex{}, backends[1])
	assert.IsType(t, &Torrentio{}, backends[2])

	registry, err := scraping.NewRegistry(zap.NewNop(), backends...)
	require.NoError(t, err)
	require.Len(t, registry.Active(), 2)
	assert.Equal(t, "torrentio", registry.Active()[0].Name())
	assert.Equal(t, "indexer", registry.Active()[1].Name())
}

func TestFromConfigUnknownType(t *testing.T) {
	_, err := FromConfig([]config.BackendConfig{{Name: "rss", Type: "rss"}}, nil, zap.NewNop())
	assert.ErrorContains(t, err, "unknown type")
}
