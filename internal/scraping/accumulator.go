package scraping

import "sync"

// accumulator merges backend results from concurrent workers. The merged map
// and the offered counter are only reachable through mergeOne and snapshot.
type accumulator struct {
	mu      sync.Mutex
	merged  map[string]RawResult
	offered int
}

func newAccumulator() *accumulator {
	return &accumulator{merged: make(map[string]RawResult)}
}

// mergeOne adds one worker's results. On a key collision the last writer wins.
func (a *accumulator) mergeOne(partial map[string]RawResult) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for key, result := range partial {
		a.merged[key] = result
	}
	a.offered += len(partial)
}

// snapshot returns a copy of the merged results and the number of results
// offered before deduplication.
func (a *accumulator) snapshot() (map[string]RawResult, int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	merged := make(map[string]RawResult, len(a.merged))
	for key, result := range a.merged {
		merged[key] = result
	}
	return merged, a.offered
}
