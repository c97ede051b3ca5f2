package media

import (
	"time"

	"github.com/google/uuid"
)

// Kind identifies the variant of a media item
type Kind string

const (
	KindMovie   Kind = "movie"
	KindShow    Kind = "show"
	KindSeason  Kind = "season"
	KindEpisode Kind = "episode"
)

// Item is a media item that can be scraped for streams. Movies and episodes
// are leaves; shows and seasons are composites owning their children.
type Item interface {
	ID() uuid.UUID
	Kind() Kind
	Title() string
	IMDbID() string

	State() State
	LastState() State
	IsReleased() bool

	// ScrapedAt returns the time of the last completed scrape and false if the
	// item was never scraped.
	ScrapedAt() (time.Time, bool)
	ScrapedTimes() int
	// MarkScraped records a completed scrape attempt.
	MarkScraped(at time.Time)

	Streams() []Stream
	HasStream(infoHash string) bool
	// AppendStreams adds the streams whose info hash is not already attached
	// and returns how many were added.
	AppendStreams(streams ...Stream) int

	Children() []Item
	IsComposite() bool
	LogLabel() string
}

// BaseItem holds the state shared by every media variant
type BaseItem struct {
	id           uuid.UUID
	title        string
	imdbID       string
	state        State
	lastState    State
	released     bool
	scrapedAt    time.Time
	scrapedTimes int
	streams      []Stream
	streamKeys   map[string]struct{}
}

// NewBaseItem creates a base item in the requested state
func NewBaseItem(title, imdbID string) BaseItem {
	return BaseItem{
		id:         uuid.New(),
		title:      title,
		imdbID:     imdbID,
		state:      StateRequested,
		lastState:  StateUnknown,
		streamKeys: make(map[string]struct{}),
	}
}

// ID returns the item ID
func (b *BaseItem) ID() uuid.UUID {
	return b.id
}

// State returns the current lifecycle state
func (b *BaseItem) State() State {
	return b.state
}

// LastState returns the state the item was in before its current one
func (b *BaseItem) LastState() State {
	return b.lastState
}

// SetState moves the item to a new state, remembering the previous one
func (b *BaseItem) SetState(state State) {
	if state == b.state {
		return
	}
	b.lastState = b.state
	b.state = state
}

// IsReleased reports whether the item has been released
func (b *BaseItem) IsReleased() bool {
	return b.released
}

// SetReleased marks the item as released or not
func (b *BaseItem) SetReleased(released bool) {
	b.released = released
}

func (b *BaseItem) ScrapedAt() (time.Time, bool) {
	return b.scrapedAt, !b.scrapedAt.IsZero()
}

func (b *BaseItem) ScrapedTimes() int {
	return b.scrapedTimes
}

func (b *BaseItem) MarkScraped(at time.Time) {
	b.scrapedAt = at
	b.scrapedTimes++
}

// Streams returns a copy of the attached streams
func (b *BaseItem) Streams() []Stream {
	streamsCopy := make([]Stream, len(b.streams))
	copy(streamsCopy, b.streams)
	return streamsCopy
}

func (b *BaseItem) HasStream(infoHash string) bool {
	_, ok := b.streamKeys[NormalizeInfoHash(infoHash)]
	return ok
}

func (b *BaseItem) AppendStreams(streams ...Stream) int {
	if b.streamKeys == nil {
		b.streamKeys = make(map[string]struct{})
	}
	added := 0
	for _, s := range streams {
		if s.InfoHash() == "" {
			continue
		}
		if _, ok := b.streamKeys[s.InfoHash()]; ok {
			continue
		}
		b.streamKeys[s.InfoHash()] = struct{}{}
		b.streams = append(b.streams, s)
		added++
	}
	return added
}

// restore applies persisted scrape bookkeeping when rebuilding an item
func (b *BaseItem) restore(id uuid.UUID, state, lastState State, scrapedAt time.Time, scrapedTimes int) {
	if id != uuid.Nil {
		b.id = id
	}
	b.state = state
	b.lastState = lastState
	b.scrapedAt = scrapedAt
	b.scrapedTimes = scrapedTimes
}
