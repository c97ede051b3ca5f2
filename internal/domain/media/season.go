package media

import (
	"fmt"
	"sort"
)

// Season is a composite item owned by a show
type Season struct {
	BaseItem
	number   int
	show     *Show
	episodes []*Episode
}

func (s *Season) Kind() Kind {
	return KindSeason
}

// Number returns the season number
func (s *Season) Number() int {
	return s.number
}

// Show returns the owning show
func (s *Season) Show() *Show {
	return s.show
}

// Title returns the title of the owning show
func (s *Season) Title() string {
	return s.show.title
}

// IMDbID returns the IMDb identifier of the owning show
func (s *Season) IMDbID() string {
	return s.show.imdbID
}

// AddEpisode creates an episode with the given number and attaches it to the
// season. Episodes stay ordered by number.
func (s *Season) AddEpisode(number int) (*Episode, error) {
	if number < 1 {
		return nil, ErrInvalidEpisodeNumber
	}
	for _, existing := range s.episodes {
		if existing.number == number {
			return nil, fmt.Errorf("%w: S%02dE%02d", ErrDuplicateEpisode, s.number, number)
		}
	}

	episode := &Episode{
		BaseItem: NewBaseItem("", ""),
		number:   number,
		season:   s,
	}
	s.episodes = append(s.episodes, episode)
	sort.SliceStable(s.episodes, func(i, j int) bool {
		return s.episodes[i].number < s.episodes[j].number
	})
	return episode, nil
}

// Episodes returns a copy of the episode list
func (s *Season) Episodes() []*Episode {
	episodesCopy := make([]*Episode, len(s.episodes))
	copy(episodesCopy, s.episodes)
	return episodesCopy
}

func (s *Season) Children() []Item {
	children := make([]Item, 0, len(s.episodes))
	for _, episode := range s.episodes {
		children = append(children, episode)
	}
	return children
}

func (s *Season) IsComposite() bool {
	return true
}

func (s *Season) LogLabel() string {
	return fmt.Sprintf("%s [Season %d]", s.show.title, s.number)
}
