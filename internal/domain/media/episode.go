package media

import "fmt"

// Episode is a leaf item owned by a season
type Episode struct {
	BaseItem
	number int
	season *Season
}

func (e *Episode) Kind() Kind {
	return KindEpisode
}

// Number returns the episode number within its season
func (e *Episode) Number() int {
	return e.number
}

// Season returns the owning season
func (e *Episode) Season() *Season {
	return e.season
}

// Title returns the title of the owning show
func (e *Episode) Title() string {
	return e.season.Title()
}

// IMDbID returns the IMDb identifier of the owning show
func (e *Episode) IMDbID() string {
	return e.season.IMDbID()
}

func (e *Episode) Children() []Item {
	return nil
}

func (e *Episode) IsComposite() bool {
	return false
}

func (e *Episode) LogLabel() string {
	return fmt.Sprintf("%s [Episode %d:%d]", e.season.Title(), e.season.number, e.number)
}
