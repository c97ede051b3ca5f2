package media

import "fmt"

// State is the lifecycle tag of a media item. Transitions are owned by the
// catalog; the scraper only reads them.
type State string

const (
	StateUnknown            State = "Unknown"
	StateRequested          State = "Requested"
	StateIndexed            State = "Indexed"
	StateScraped            State = "Scraped"
	StateDownloaded         State = "Downloaded"
	StateSymlinked          State = "Symlinked"
	StateCompleted          State = "Completed"
	StatePartiallyCompleted State = "PartiallyCompleted"
)

var knownStates = map[State]struct{}{
	StateUnknown:            {},
	StateRequested:          {},
	StateIndexed:            {},
	StateScraped:            {},
	StateDownloaded:         {},
	StateSymlinked:          {},
	StateCompleted:          {},
	StatePartiallyCompleted: {},
}

// ParseState validates a state name. An empty name maps to StateUnknown.
func ParseState(s string) (State, error) {
	if s == "" {
		return StateUnknown, nil
	}
	state := State(s)
	if _, ok := knownStates[state]; !ok {
		return StateUnknown, fmt.Errorf("%w: %q", ErrInvalidState, s)
	}
	return state, nil
}

// IsCompleted reports whether the item needs no further work
func (s State) IsCompleted() bool {
	return s == StateCompleted
}
