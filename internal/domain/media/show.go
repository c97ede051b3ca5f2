package media

import (
	"fmt"
	"sort"
)

// Show is a composite item owning its seasons in order
type Show struct {
	BaseItem
	seasons []*Season
}

// NewShow creates a new Show with no seasons
func NewShow(title, imdbID string) (*Show, error) {
	if title == "" {
		return nil, ErrInvalidTitle
	}
	return &Show{
		BaseItem: NewBaseItem(title, imdbID),
		seasons:  make([]*Season, 0),
	}, nil
}

func (s *Show) Kind() Kind {
	return KindShow
}

// Title returns the show title
func (s *Show) Title() string {
	return s.title
}

// IMDbID returns the IMDb identifier, if known
func (s *Show) IMDbID() string {
	return s.imdbID
}

// AddSeason creates a season with the given number and attaches it to the
// show. Seasons stay ordered by number.
func (s *Show) AddSeason(number int) (*Season, error) {
	if number < 0 {
		return nil, ErrInvalidSeasonNumber
	}
	for _, existing := range s.seasons {
		if existing.number == number {
			return nil, fmt.Errorf("%w: season %d", ErrDuplicateSeason, number)
		}
	}

	season := &Season{
		BaseItem: NewBaseItem("", ""),
		number:   number,
		show:     s,
		episodes: make([]*Episode, 0),
	}
	s.seasons = append(s.seasons, season)
	sort.SliceStable(s.seasons, func(i, j int) bool {
		return s.seasons[i].number < s.seasons[j].number
	})
	return season, nil
}

// Seasons returns a copy of the season list
func (s *Show) Seasons() []*Season {
	seasonsCopy := make([]*Season, len(s.seasons))
	copy(seasonsCopy, s.seasons)
	return seasonsCopy
}

// Season looks up a season by number
func (s *Show) Season(number int) (*Season, bool) {
	for _, season := range s.seasons {
		if season.number == number {
			return season, true
		}
	}
	return nil, false
}

func (s *Show) Children() []Item {
	children := make([]Item, 0, len(s.seasons))
	for _, season := range s.seasons {
		children = append(children, season)
	}
	return children
}

func (s *Show) IsComposite() bool {
	return true
}

func (s *Show) LogLabel() string {
	return s.title
}
