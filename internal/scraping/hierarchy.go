package scraping

import (
	"time"

	"github.com/narwhalmedia/scraper/internal/domain/media"
)

// Walker selects which children of a composite item still need scraping.
type Walker struct {
	policy BackoffPolicy
}

// NewWalker creates a walker using policy for backoff checks
func NewWalker(policy BackoffPolicy) Walker {
	return Walker{policy: policy}
}

// IncompleteChildren returns the children of a composite item that are
// released, not completed and out of their backoff window. Leaves have none.
func (w Walker) IncompleteChildren(item media.Item, now time.Time) []media.Item {
	if !item.IsComposite() {
		return nil
	}
	var children []media.Item
	for _, child := range item.Children() {
		if w.pending(child, now) {
			children = append(children, child)
		}
	}
	return children
}

func (w Walker) pending(item media.Item, now time.Time) bool {
	return !item.State().IsCompleted() && item.IsReleased() && w.policy.ShouldSubmit(item, now)
}

// PartialFrontier returns the units to scrape below an item whose last state
// was partially completed and which is not itself eligible. Pending composite
// children are scheduled whole when every grandchild is released and
// incomplete, otherwise their released incomplete grandchildren are scheduled
// one by one. Leaf children are scheduled when released. A leaf in this state
// is its own frontier. Items outside this state have no frontier.
func (w Walker) PartialFrontier(item media.Item, now time.Time) []media.Item {
	if item.LastState() != media.StatePartiallyCompleted {
		return nil
	}
	if ok, _ := w.policy.CanScrape(item, now); ok {
		return nil
	}
	if !item.IsComposite() {
		return []media.Item{item}
	}

	frontier := make([]media.Item, 0)
	for _, child := range item.Children() {
		if !child.IsComposite() {
			if child.IsReleased() {
				frontier = append(frontier, child)
			}
			continue
		}
		if !w.pending(child, now) {
			continue
		}

		grandchildren := child.Children()
		if allReleasedAndIncomplete(grandchildren) {
			frontier = append(frontier, child)
			continue
		}
		for _, g := range grandchildren {
			if g.IsReleased() && !g.State().IsCompleted() {
				frontier = append(frontier, g)
			}
		}
	}
	return frontier
}

// allReleasedAndIncomplete is true for an empty list.
func allReleasedAndIncomplete(items []media.Item) bool {
	for _, item := range items {
		if !item.IsReleased() || item.State().IsCompleted() {
			return false
		}
	}
	return true
}
