package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	domainevents "github.com/narwhalmedia/scraper/internal/domain/events"
	"github.com/narwhalmedia/scraper/internal/domain/media"
	"github.com/narwhalmedia/scraper/internal/scraping"
	"github.com/narwhalmedia/scraper/test/testutil"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishEvent(ctx context.Context, event domainevents.Event) error {
	return m.Called(ctx, event).Error(0)
}

func scrapedMovie(t *testing.T) (media.Item, *scraping.ScrapeResult) {
	t.Helper()
	movie := testutil.CreateTestMovie("Heat")
	stream, err := media.NewStream(testutil.TestInfoHash(7), "Heat.1995.1080p", "Heat", "torrentio", 120)
	require.NoError(t, err)
	added := movie.AppendStreams(stream)
	finished := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	movie.MarkScraped(finished)

	return movie, &scraping.ScrapeResult{
		ItemID:  movie.ID(),
		Streams: []media.Stream{stream},
		Statuses: []scraping.BackendStatus{
			{Backend: "torrentio", Outcome: scraping.OutcomeOK, Results: 2, Elapsed: 1500 * time.Millisecond},
			{Backend: "indexer", Outcome: scraping.OutcomeTimeout, Err: context.DeadlineExceeded},
		},
		Offered:    3,
		Duplicates: 1,
		Added:      added,
		FinishedAt: finished,
	}
}

func TestNewItemScrapedEvent(t *testing.T) {
	movie, result := scrapedMovie(t)

	event := NewItemScrapedEvent(movie, result)

	assert.Equal(t, movie.ID(), event.AggregateID())
	assert.Equal(t, "movie", event.AggregateType())
	assert.Equal(t, domainevents.EventTypeItemScraped, event.EventType())
	assert.Equal(t, result.FinishedAt, event.CreatedAt())
	assert.Equal(t, "Heat (1994)", event.Label)
	assert.Equal(t, 1, event.StreamsAdded)
	assert.Equal(t, 1, event.StreamsTotal)
	assert.Equal(t, 1, event.Duplicates)
	assert.Equal(t, 1, event.ScrapedTimes)
	require.Len(t, event.Backends, 2)
	assert.Equal(t, int64(1500), event.Backends[0].ElapsedMS)
	assert.Equal(t, "timeout", event.Backends[1].Outcome)
	assert.Equal(t, context.DeadlineExceeded.Error(), event.Backends[1].Error)
}

func TestPublishingSink(t *testing.T) {
	movie, result := scrapedMovie(t)
	publisher := new(mockPublisher)
	publisher.On("PublishEvent", mock.Anything, mock.MatchedBy(func(e domainevents.Event) bool {
		return e.AggregateID() == movie.ID()
	})).Return(nil).Once()

	sink := NewPublishingSink(publisher)
	require.NoError(t, sink.HandleScrape(context.Background(), movie, result))
	publisher.AssertExpectations(t)

	failing := new(mockPublisher)
	failing.On("PublishEvent", mock.Anything, mock.Anything).Return(errors.New("broker down"))
	assert.Error(t, NewPublishingSink(failing).HandleScrape(context.Background(), movie, result))
}
