// Package scraping coordinates discovery backends: it decides when an item may
// be scraped again, fans a query out to every usable backend, merges what they
// return and hands the merged bag to a Ranker.
package scraping

import (
	"context"

	"github.com/narwhalmedia/scraper/internal/domain/media"
)

// RawResult is one candidate source as reported by a backend, before ranking.
type RawResult struct {
	InfoHash   string            `json:"infohash"`
	Title      string            `json:"title"`
	Backend    string            `json:"backend"`
	Magnet     string            `json:"magnet,omitempty"`
	Seeders    int               `json:"seeders,omitempty"`
	SizeBytes  int64             `json:"size_bytes,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// Backend is a discovery service queried for candidate sources.
type Backend interface {
	Name() string
	// Initialized reports whether the backend validated its configuration at
	// construction. Uninitialized backends are never queried.
	Initialized() bool
	// Query returns the results keyed by info hash. Implementations should
	// honour ctx; a query that outlives its deadline is abandoned.
	Query(ctx context.Context, item media.Item) (map[string]RawResult, error)
}

// Ranker scores merged results and returns them ordered by descending rank.
// The input never holds two results for the same info hash.
type Ranker interface {
	Rank(ctx context.Context, item media.Item, results map[string]RawResult, verbose bool) ([]media.Stream, error)
}
