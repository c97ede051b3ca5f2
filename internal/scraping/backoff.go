package scraping

import (
	"time"

	"github.com/narwhalmedia/scraper/internal/domain/media"
)

// DefaultBaseInterval is the wait between the first scrape attempts.
const DefaultBaseInterval = 5 * time.Minute

// Options configures the backoff policy and the orchestrator.
type Options struct {
	// BaseInterval applies to items scraped at most once.
	BaseInterval time.Duration
	// After2Hours applies once an item was scraped 2 to 5 times.
	After2Hours float64
	// After5Hours applies once an item was scraped 6 to 10 times.
	After5Hours float64
	// After10Hours applies once an item was scraped more than 10 times.
	After10Hours float64

	// Debug logs the top ranked streams of every scrape.
	Debug bool
	// MaxWorkers bounds concurrent backend queries. Zero means one worker
	// per active backend.
	MaxWorkers int
	// BackendTimeout bounds a single backend query.
	BackendTimeout time.Duration
}

// DefaultOptions returns the stock backoff tiers and pool settings
func DefaultOptions() Options {
	return Options{
		BaseInterval:   DefaultBaseInterval,
		After2Hours:    2,
		After5Hours:    6,
		After10Hours:   24,
		MaxWorkers:     8,
		BackendTimeout: 30 * time.Second,
	}
}

// BackoffPolicy decides whether an item may be queried again.
type BackoffPolicy struct {
	base    time.Duration
	after2  time.Duration
	after5  time.Duration
	after10 time.Duration
}

// NewBackoffPolicy builds the policy from the tier settings in opts
func NewBackoffPolicy(opts Options) BackoffPolicy {
	base := opts.BaseInterval
	if base <= 0 {
		base = DefaultBaseInterval
	}
	return BackoffPolicy{
		base:    base,
		after2:  hours(opts.After2Hours),
		after5:  hours(opts.After5Hours),
		after10: hours(opts.After10Hours),
	}
}

func hours(h float64) time.Duration {
	return time.Duration(h * float64(time.Hour))
}

// Interval returns the minimum wait after the given number of attempts
func (p BackoffPolicy) Interval(scrapedTimes int) time.Duration {
	switch {
	case scrapedTimes > 10:
		return p.after10
	case scrapedTimes > 5:
		return p.after5
	case scrapedTimes >= 2:
		return p.after2
	default:
		return p.base
	}
}

// ShouldSubmit reports whether item was never scraped or its tier interval
// has strictly elapsed at now. It has no side effects.
func (p BackoffPolicy) ShouldSubmit(item media.Item, now time.Time) bool {
	scrapedAt, ok := item.ScrapedAt()
	if !ok {
		return true
	}
	return now.Sub(scrapedAt) > p.Interval(item.ScrapedTimes())
}
