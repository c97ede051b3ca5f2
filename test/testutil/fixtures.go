package testutil

import (
	"fmt"
	"time"

	"github.com/narwhalmedia/scraper/internal/domain/media"
)

// EpisodeFixture describes one episode of a test show.
type EpisodeFixture struct {
	Number   int
	Released bool
	State    media.State
}

// SeasonFixture describes one season of a test show.
type SeasonFixture struct {
	Number   int
	Released bool
	State    media.State
	Episodes []EpisodeFixture
}

// ReleasedEpisodes returns n released episodes in the requested state.
func ReleasedEpisodes(n int) []EpisodeFixture {
	episodes := make([]EpisodeFixture, 0, n)
	for i := 1; i <= n; i++ {
		episodes = append(episodes, EpisodeFixture{Number: i, Released: true, State: media.StateRequested})
	}
	return episodes
}

// CreateTestMovie creates a released movie in the requested state.
func CreateTestMovie(title string) *media.Movie {
	movie, err := media.NewMovie(title, "tt0111161", 1994)
	if err != nil {
		panic(err)
	}
	movie.SetReleased(true)
	return movie
}

// CreateTestShow builds a released show from the given season fixtures.
func CreateTestShow(title string, seasons ...SeasonFixture) *media.Show {
	show, err := media.NewShow(title, "tt0903747")
	if err != nil {
		panic(err)
	}
	show.SetReleased(true)

	for _, sf := range seasons {
		season, err := show.AddSeason(sf.Number)
		if err != nil {
			panic(err)
		}
		season.SetReleased(sf.Released)
		if sf.State != "" {
			season.SetState(sf.State)
		}
		for _, ef := range sf.Episodes {
			episode, err := season.AddEpisode(ef.Number)
			if err != nil {
				panic(err)
			}
			episode.SetReleased(ef.Released)
			if ef.State != "" {
				episode.SetState(ef.State)
			}
		}
	}
	return show
}

// TestInfoHash returns a valid hex info hash derived from seed.
func TestInfoHash(seed int) string {
	return fmt.Sprintf("%040x", seed)
}

// ScrapedAgo marks item as scraped times times, the last one d before now.
func ScrapedAgo(item media.Item, times int, now time.Time, d time.Duration) {
	for i := 0; i < times; i++ {
		item.MarkScraped(now.Add(-d))
	}
}
