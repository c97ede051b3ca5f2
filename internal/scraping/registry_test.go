package scraping

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/narwhalmedia/scraper/internal/domain/media"
)

// stubBackend answers queries with a fixed function
type stubBackend struct {
	name        string
	initialized bool
	query       func(ctx context.Context, item media.Item) (map[string]RawResult, error)
}

func (b *stubBackend) Name() string      { return b.name }
func (b *stubBackend) Initialized() bool { return b.initialized }

func (b *stubBackend) Query(ctx context.Context, item media.Item) (map[string]RawResult, error) {
	if b.query == nil {
		return map[string]RawResult{}, nil
	}
	return b.query(ctx, item)
}

func names(backends []Backend) []string {
	out := make([]string, 0, len(backends))
	for _, b := range backends {
		out = append(out, b.Name())
	}
	return out
}

func TestRegistryActiveOrder(t *testing.T) {
	registry, err := NewRegistry(zap.NewNop(),
		&stubBackend{name: "torrentio", initialized: true},
		&stubBackend{name: "jackett", initialized: false},
		&stubBackend{name: "zilean", initialized: true},
		&stubBackend{name: "comet", initialized: true},
	)
	require.NoError(t, err)

	assert.True(t, registry.Usable())
	assert.Equal(t, []string{"torrentio", "zilean", "comet"}, names(registry.Active()))
	assert.Equal(t, []string{"torrentio", "jackett", "zilean", "comet"}, names(registry.All()))

	active := registry.Active()
	active[0] = nil
	assert.NotNil(t, registry.Active()[0], "Active returns a copy")
}

func TestRegistryNotUsable(t *testing.T) {
	registry, err := NewRegistry(zap.NewNop(), &stubBackend{name: "jackett"})
	require.NoError(t, err)
	assert.False(t, registry.Usable())
	assert.Empty(t, registry.Active())

	empty, err := NewRegistry(zap.NewNop())
	require.NoError(t, err)
	assert.False(t, empty.Usable())
}

func TestRegistryRejectsInvalidBackends(t *testing.T) {
	_, err := NewRegistry(zap.NewNop(), nil)
	assert.ErrorIs(t, err, ErrNilBackend)

	_, err = NewRegistry(zap.NewNop(), &stubBackend{name: "  "})
	assert.ErrorIs(t, err, ErrEmptyBackendName)

	_, err = NewRegistry(zap.NewNop(),
		&stubBackend{name: "Torrentio", initialized: true},
		&stubBackend{name: "torrentio"},
	)
	assert.ErrorIs(t, err, ErrDuplicateBackend)
}
