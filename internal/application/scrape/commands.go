package scrape

import (
	"github.com/narwhalmedia/scraper/internal/domain/media"
)

// ScrapeCommand asks for an item tree, or one of its descendants, to be
// scraped. Season and Episode address the target inside a show; when Season
// is nil the root item is the target.
type ScrapeCommand struct {
	RequestID string         `json:"request_id"`
	Item      media.Snapshot `json:"item"`
	Season    *int           `json:"season,omitempty"`
	Episode   *int           `json:"episode,omitempty"`
}

// ScrapeOutcome reports what a command did
type ScrapeOutcome struct {
	Root   media.Item
	Target media.Item
	// Submitted holds the units handed to the orchestrator. Units that were
	// not due come back unchanged.
	Submitted []media.Item
}
