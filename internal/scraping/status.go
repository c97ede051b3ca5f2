package scraping

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/narwhalmedia/scraper/internal/domain/media"
)

// Outcome is the result of one backend query
type Outcome string

const (
	OutcomeOK       Outcome = "ok"
	OutcomeFailed   Outcome = "failed"
	OutcomeTimeout  Outcome = "timeout"
	OutcomeCanceled Outcome = "canceled"
	OutcomePanicked Outcome = "panicked"
)

// BackendStatus reports how a single backend fared during a fan-out
type BackendStatus struct {
	Backend string
	Outcome Outcome
	Results int
	Elapsed time.Duration
	Err     error
}

// ScrapeResult is the outcome of one fan-out and merge
type ScrapeResult struct {
	ItemID uuid.UUID
	Label  string

	// Streams are ordered by descending rank
	Streams  []media.Stream
	Statuses []BackendStatus
	// Merged holds the deduplicated raw results handed to the ranker
	Merged     map[string]RawResult
	Offered    int
	Duplicates int
	// Added is the number of streams newly attached by Submit
	Added int

	StartedAt  time.Time
	FinishedAt time.Time
}

// Failed returns the number of backends that did not answer successfully
func (r *ScrapeResult) Failed() int {
	failed := 0
	for _, s := range r.Statuses {
		if s.Outcome != OutcomeOK {
			failed++
		}
	}
	return failed
}

// panicError carries a value recovered from a backend query
type panicError struct {
	value interface{}
}

func (e *panicError) Error() string {
	return fmt.Sprintf("backend panicked: %v", e.value)
}
