package events

import (
	"time"

	"github.com/google/uuid"
)

// EventTypeItemScraped is emitted after every completed scrape attempt
const EventTypeItemScraped = "scraped"

// BackendOutcome summarizes one backend's part in an attempt
type BackendOutcome struct {
	Backend   string `json:"backend"`
	Outcome   string `json:"outcome"`
	Results   int    `json:"results"`
	ElapsedMS int64  `json:"elapsed_ms"`
	Error     string `json:"error,omitempty"`
}

// ItemScraped reports the result of a scrape attempt for one item
type ItemScraped struct {
	BaseEvent
	Kind         string           `json:"kind"`
	Label        string           `json:"label"`
	IMDbID       string           `json:"imdb_id,omitempty"`
	StreamsAdded int              `json:"streams_added"`
	StreamsTotal int              `json:"streams_total"`
	Offered      int              `json:"offered"`
	Duplicates   int              `json:"duplicates"`
	ScrapedTimes int              `json:"scraped_times"`
	Backends     []BackendOutcome `json:"backends"`
}

// NewItemScraped creates the event for item itemID of the given kind
func NewItemScraped(itemID uuid.UUID, kind string, at time.Time) *ItemScraped {
	return &ItemScraped{
		BaseEvent: NewBaseEvent(itemID, kind, EventTypeItemScraped, 1, at),
		Kind:      kind,
	}
}
