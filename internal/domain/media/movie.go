package media

import "fmt"

// Movie is a leaf item
type Movie struct {
	BaseItem
	year int
}

// NewMovie creates a new Movie
func NewMovie(title, imdbID string, year int) (*Movie, error) {
	if title == "" {
		return nil, ErrInvalidTitle
	}
	return &Movie{
		BaseItem: NewBaseItem(title, imdbID),
		year:     year,
	}, nil
}

func (m *Movie) Kind() Kind {
	return KindMovie
}

// Title returns the movie title
func (m *Movie) Title() string {
	return m.title
}

// IMDbID returns the IMDb identifier, if known
func (m *Movie) IMDbID() string {
	return m.imdbID
}

// Year returns the release year, zero when unknown
func (m *Movie) Year() int {
	return m.year
}

func (m *Movie) Children() []Item {
	return nil
}

func (m *Movie) IsComposite() bool {
	return false
}

func (m *Movie) LogLabel() string {
	if m.year > 0 {
		return fmt.Sprintf("%s (%d)", m.title, m.year)
	}
	return m.title
}
