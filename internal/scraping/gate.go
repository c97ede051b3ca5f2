package scraping

import (
	"time"

	"github.com/narwhalmedia/scraper/internal/domain/media"
)

// Reason explains the outcome of CanScrape
type Reason string

const (
	ReasonEligible    Reason = "eligible"
	ReasonNotReleased Reason = "not_released"
	ReasonBackingOff  Reason = "backing_off"
)

// CanScrape is the admission check for a submission: the item must be
// released and out of its backoff window.
func (p BackoffPolicy) CanScrape(item media.Item, now time.Time) (bool, Reason) {
	if !item.IsReleased() {
		return false, ReasonNotReleased
	}
	if !p.ShouldSubmit(item, now) {
		return false, ReasonBackingOff
	}
	return true, ReasonEligible
}
