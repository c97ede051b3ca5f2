// Package events turns completed scrapes into published events.
package events

import (
	"context"
	"time"

	domainevents "github.com/narwhalmedia/scraper/internal/domain/events"
	"github.com/narwhalmedia/scraper/internal/domain/media"
	"github.com/narwhalmedia/scraper/internal/scraping"
)

// PublishingSink publishes an ItemScraped event for every completed scrape.
type PublishingSink struct {
	publisher domainevents.EventPublisher
}

// NewPublishingSink creates a sink backed by publisher
func NewPublishingSink(publisher domainevents.EventPublisher) *PublishingSink {
	return &PublishingSink{publisher: publisher}
}

// HandleScrape implements scraping.ResultSink
func (s *PublishingSink) HandleScrape(ctx context.Context, item media.Item, result *scraping.ScrapeResult) error {
	return s.publisher.PublishEvent(ctx, NewItemScrapedEvent(item, result))
}

// NewItemScrapedEvent summarizes result as an event
func NewItemScrapedEvent(item media.Item, result *scraping.ScrapeResult) *domainevents.ItemScraped {
	at := result.FinishedAt
	if at.IsZero() {
		at = time.Now()
	}
	event := domainevents.NewItemScraped(item.ID(), string(item.Kind()), at)
	event.Label = item.LogLabel()
	event.IMDbID = item.IMDbID()
	event.StreamsAdded = result.Added
	event.StreamsTotal = len(item.Streams())
	event.Offered = result.Offered
	event.Duplicates = result.Duplicates
	event.ScrapedTimes = item.ScrapedTimes()

	event.Backends = make([]domainevents.BackendOutcome, 0, len(result.Statuses))
	for _, status := range result.Statuses {
		outcome := domainevents.BackendOutcome{
			Backend:   status.Backend,
			Outcome:   string(status.Outcome),
			Results:   status.Results,
			ElapsedMS: status.Elapsed.Milliseconds(),
		}
		if status.Err != nil {
			outcome.Error = status.Err.Error()
		}
		event.Backends = append(event.Backends, outcome)
	}
	return event
}
