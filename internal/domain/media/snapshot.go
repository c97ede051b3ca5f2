package media

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
)

// Snapshot is the JSON form in which the catalog hands items to the scraper.
// Only movies and shows may be roots; seasons and episodes travel inside
// their show.
type Snapshot struct {
	ID           string           `json:"id,omitempty"`
	Kind         Kind             `json:"kind"`
	Title        string           `json:"title,omitempty"`
	IMDbID       string           `json:"imdb_id,omitempty"`
	Year         int              `json:"year,omitempty"`
	Number       int              `json:"number,omitempty"`
	State        State            `json:"state,omitempty"`
	LastState    State            `json:"last_state,omitempty"`
	Released     bool             `json:"released"`
	ScrapedAt    *time.Time       `json:"scraped_at,omitempty"`
	ScrapedTimes int              `json:"scraped_times,omitempty"`
	Streams      []StreamSnapshot `json:"streams,omitempty"`
	Children     []Snapshot       `json:"children,omitempty"`
}

// StreamSnapshot is the JSON form of a Stream
type StreamSnapshot struct {
	InfoHash    string  `json:"infohash"`
	RawTitle    string  `json:"raw_title"`
	ParsedTitle string  `json:"parsed_title,omitempty"`
	Backend     string  `json:"backend,omitempty"`
	Rank        float64 `json:"rank"`
}

// DecodeSnapshot reads a JSON snapshot and rebuilds the item tree
func DecodeSnapshot(r io.Reader) (Item, error) {
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("failed to decode item snapshot: %w", err)
	}
	return FromSnapshot(snap)
}

// EncodeSnapshot writes the item tree as indented JSON
func EncodeSnapshot(w io.Writer, item Item) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ToSnapshot(item))
}

// FromSnapshot rebuilds an item tree from its snapshot
func FromSnapshot(snap Snapshot) (Item, error) {
	switch snap.Kind {
	case KindMovie:
		movie, err := NewMovie(snap.Title, snap.IMDbID, snap.Year)
		if err != nil {
			return nil, err
		}
		if err := applySnapshot(&movie.BaseItem, snap); err != nil {
			return nil, err
		}
		return movie, nil
	case KindShow:
		show, err := NewShow(snap.Title, snap.IMDbID)
		if err != nil {
			return nil, err
		}
		if err := applySnapshot(&show.BaseItem, snap); err != nil {
			return nil, err
		}
		for _, seasonSnap := range snap.Children {
			if seasonSnap.Kind != KindSeason {
				return nil, fmt.Errorf("%w: show child must be a season, got %q", ErrInvalidKind, seasonSnap.Kind)
			}
			season, err := show.AddSeason(seasonSnap.Number)
			if err != nil {
				return nil, err
			}
			if err := applySnapshot(&season.BaseItem, seasonSnap); err != nil {
				return nil, err
			}
			for _, episodeSnap := range seasonSnap.Children {
				if episodeSnap.Kind != KindEpisode {
					return nil, fmt.Errorf("%w: season child must be an episode, got %q", ErrInvalidKind, episodeSnap.Kind)
				}
				episode, err := season.AddEpisode(episodeSnap.Number)
				if err != nil {
					return nil, err
				}
				if err := applySnapshot(&episode.BaseItem, episodeSnap); err != nil {
					return nil, err
				}
			}
		}
		return show, nil
	case KindSeason, KindEpisode:
		return nil, fmt.Errorf("%w: %q cannot be a snapshot root", ErrInvalidKind, snap.Kind)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidKind, snap.Kind)
	}
}

func applySnapshot(b *BaseItem, snap Snapshot) error {
	id := uuid.Nil
	if snap.ID != "" {
		parsed, err := uuid.Parse(snap.ID)
		if err != nil {
			return NewValidationError("id", err.Error())
		}
		id = parsed
	}
	state, err := ParseState(string(snap.State))
	if err != nil {
		return err
	}
	if snap.State == "" {
		state = StateRequested
	}
	lastState, err := ParseState(string(snap.LastState))
	if err != nil {
		return err
	}
	if snap.ScrapedTimes < 0 {
		return NewValidationError("scraped_times", "cannot be negative")
	}

	var scrapedAt time.Time
	if snap.ScrapedAt != nil {
		scrapedAt = *snap.ScrapedAt
	}
	b.restore(id, state, lastState, scrapedAt, snap.ScrapedTimes)
	b.released = snap.Released

	for _, ss := range snap.Streams {
		stream, err := NewStream(ss.InfoHash, ss.RawTitle, ss.ParsedTitle, ss.Backend, ss.Rank)
		if err != nil {
			return err
		}
		b.AppendStreams(stream)
	}
	return nil
}

// ToSnapshot converts an item tree to its snapshot form
func ToSnapshot(item Item) Snapshot {
	snap := Snapshot{
		ID:           item.ID().String(),
		Kind:         item.Kind(),
		State:        item.State(),
		LastState:    item.LastState(),
		Released:     item.IsReleased(),
		ScrapedTimes: item.ScrapedTimes(),
	}
	if at, ok := item.ScrapedAt(); ok {
		snap.ScrapedAt = &at
	}

	switch v := item.(type) {
	case *Movie:
		snap.Title, snap.IMDbID, snap.Year = v.Title(), v.IMDbID(), v.Year()
	case *Show:
		snap.Title, snap.IMDbID = v.Title(), v.IMDbID()
	case *Season:
		snap.Number = v.Number()
	case *Episode:
		snap.Number = v.Number()
	}

	for _, s := range item.Streams() {
		snap.Streams = append(snap.Streams, StreamSnapshot{
			InfoHash:    s.InfoHash(),
			RawTitle:    s.RawTitle(),
			ParsedTitle: s.ParsedTitle(),
			Backend:     s.Backend(),
			Rank:        s.Rank(),
		})
	}
	for _, child := range item.Children() {
		snap.Children = append(snap.Children, ToSnapshot(child))
	}
	return snap
}

// Locate returns the item addressed by a season and episode number inside a
// show. A negative season selects the root and an episode below one selects
// the season itself.
func Locate(root Item, season, episode int) (Item, error) {
	if season < 0 {
		return root, nil
	}
	show, ok := root.(*Show)
	if !ok {
		return nil, fmt.Errorf("%w: only shows have seasons", ErrInvalidKind)
	}
	s, ok := show.Season(season)
	if !ok {
		return nil, fmt.Errorf("season %d not found in %q", season, show.Title())
	}
	if episode < 1 {
		return s, nil
	}
	for _, e := range s.episodes {
		if e.number == episode {
			return e, nil
		}
	}
	return nil, fmt.Errorf("episode S%02dE%02d not found in %q", season, episode, show.Title())
}
