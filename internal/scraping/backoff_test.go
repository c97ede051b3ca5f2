package scraping

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/narwhalmedia/scraper/internal/domain/media"
	"github.com/narwhalmedia/scraper/test/testutil"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func testPolicy() BackoffPolicy {
	return NewBackoffPolicy(Options{After2Hours: 2, After5Hours: 6, After10Hours: 24})
}

func TestShouldSubmitNeverScraped(t *testing.T) {
	policy := testPolicy()
	show := testutil.CreateTestShow("Breaking Bad", testutil.SeasonFixture{
		Number: 1, Released: true, Episodes: testutil.ReleasedEpisodes(2),
	})

	items := []media.Item{testutil.CreateTestMovie("Heat"), show}
	items = append(items, show.Children()...)
	items = append(items, show.Children()[0].Children()...)
	for _, item := range items {
		assert.True(t, policy.ShouldSubmit(item, testNow), item.LogLabel())
		assert.True(t, policy.ShouldSubmit(item, time.Time{}), item.LogLabel())
	}
}

func TestBackoffTiers(t *testing.T) {
	policy := testPolicy()

	tests := []struct {
		name    string
		times   int
		elapsed time.Duration
		want    bool
	}{
		{"first attempt inside base", 1, 4 * time.Minute, false},
		{"first attempt after base", 1, 6 * time.Minute, true},
		{"third attempt at 1h59m", 3, time.Hour + 59*time.Minute, false},
		{"third attempt at 2h01m", 3, 2*time.Hour + time.Minute, true},
		{"fifth attempt uses after2", 5, 2*time.Hour + time.Second, true},
		{"sixth attempt uses after5", 6, 5 * time.Hour, false},
		{"tenth attempt after after5", 10, 6*time.Hour + time.Second, true},
		{"eleventh attempt uses after10", 11, 23 * time.Hour, false},
		{"eleventh attempt after after10", 11, 25 * time.Hour, true},
		{"interval boundary is exclusive", 3, 2 * time.Hour, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			movie := testutil.CreateTestMovie("Heat")
			testutil.ScrapedAgo(movie, tt.times, testNow, tt.elapsed)
			require.Equal(t, tt.times, movie.ScrapedTimes())

			assert.Equal(t, tt.want, policy.ShouldSubmit(movie, testNow))
		})
	}
}

func TestShouldSubmitMonotoneInElapsedTime(t *testing.T) {
	policy := testPolicy()

	for _, times := range []int{1, 2, 7, 12} {
		movie := testutil.CreateTestMovie("Heat")
		testutil.ScrapedAgo(movie, times, testNow, 0)

		eligible := false
		for elapsed := time.Duration(0); elapsed <= 30*time.Hour; elapsed += 7 * time.Minute {
			got := policy.ShouldSubmit(movie, testNow.Add(elapsed))
			if eligible {
				assert.True(t, got, "times=%d elapsed=%s", times, elapsed)
			}
			eligible = eligible || got
		}
		assert.True(t, eligible, "times=%d never became eligible", times)
	}
}

func TestShouldSubmitHasNoSideEffects(t *testing.T) {
	policy := testPolicy()
	movie := testutil.CreateTestMovie("Heat")

	policy.ShouldSubmit(movie, testNow)
	_, _ = policy.CanScrape(movie, testNow)

	_, scraped := movie.ScrapedAt()
	assert.False(t, scraped)
	assert.Zero(t, movie.ScrapedTimes())
}

func TestInterval(t *testing.T) {
	policy := NewBackoffPolicy(Options{After2Hours: 1.5, After5Hours: 3, After10Hours: 12})

	assert.Equal(t, DefaultBaseInterval, policy.Interval(0))
	assert.Equal(t, DefaultBaseInterval, policy.Interval(1))
	assert.Equal(t, 90*time.Minute, policy.Interval(2))
	assert.Equal(t, 3*time.Hour, policy.Interval(6))
	assert.Equal(t, 12*time.Hour, policy.Interval(11))
}

func TestCanScrape(t *testing.T) {
	policy := testPolicy()

	unreleased, err := media.NewMovie("Dune: Part Three", "", 2026)
	require.NoError(t, err)
	ok, reason := policy.CanScrape(unreleased, testNow)
	assert.False(t, ok)
	assert.Equal(t, ReasonNotReleased, reason)

	recent := testutil.CreateTestMovie("Heat")
	testutil.ScrapedAgo(recent, 1, testNow, time.Minute)
	ok, reason = policy.CanScrape(recent, testNow)
	assert.False(t, ok)
	assert.Equal(t, ReasonBackingOff, reason)

	fresh := testutil.CreateTestMovie("Heat")
	ok, reason = policy.CanScrape(fresh, testNow)
	assert.True(t, ok)
	assert.Equal(t, ReasonEligible, reason)
}
