package fuzzy

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// cancelCheckInterval is how many items a worker ranks between context checks.
const cancelCheckInterval = 64

// AsyncMatcher ranks large item sets in parallel.
// Results are identical to Matcher.Match for the same input.
type AsyncMatcher struct {
	matcher    *Matcher
	numWorkers int
}

// NewAsyncMatcher creates an async matcher with the given base matcher.
// If numWorkers is 0, it defaults to runtime.NumCPU().
// Panics if matcher is nil.
func NewAsyncMatcher(matcher *Matcher, numWorkers int) *AsyncMatcher {
	if matcher == nil {
		panic("fuzzy: NewAsyncMatcher called with nil matcher")
	}
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &AsyncMatcher{
		matcher:    matcher,
		numWorkers: numWorkers,
	}
}

// Workers returns the number of workers used per search.
func (m *AsyncMatcher) Workers() int {
	return m.numWorkers
}

// MatchParallel ranks items across worker goroutines and returns at most
// limit results. It returns ctx.Err() if the context is canceled before
// ranking completes.
func (m *AsyncMatcher) MatchParallel(ctx context.Context, filter string, items []Item, limit int) ([]Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if filter == "" {
		return m.matcher.emptyFilterResults(items, limit), nil
	}

	chunkSize := m.chunkSize(len(items))
	numChunks := (len(items) + chunkSize - 1) / chunkSize
	parts := make([][]Result, numChunks)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.numWorkers)

	for c := 0; c < numChunks; c++ {
		start := c * chunkSize
		end := min(start+chunkSize, len(items))
		chunk := items[start:end]

		g.Go(func() error {
			local := make([]Result, 0, len(chunk)/4)
			for i, item := range chunk {
				if i%cancelCheckInterval == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				if r, ok := m.matcher.matchItem(filter, item); ok {
					local = append(local, r)
				}
			}
			parts[c] = local
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Chunks are joined in input order so the stable sort gives the same
	// order as the sequential matcher.
	total := 0
	for _, p := range parts {
		total += len(p)
	}
	results := make([]Result, 0, total)
	for _, p := range parts {
		results = append(results, p...)
	}

	sortResults(results)
	return applyLimit(results, limit), nil
}

// chunkSize calculates an adaptive chunk size for n items.
func (m *AsyncMatcher) chunkSize(n int) int {
	size := (n + m.numWorkers - 1) / m.numWorkers
	minSize := 50
	if n < 1000 {
		minSize = 10
	}
	return max(size, minSize)
}

// Batch is the outcome of one streaming search.
type Batch struct {
	// Revision identifies the search that produced the batch.
	Revision uint64

	// Filter is the filter the batch was ranked for.
	Filter string

	// Results are the ranked items.
	Results []Result
}

// StreamingMatcher runs searches as the user types. Every search gets a new
// revision and cancels the one before it. A batch is delivered only while its
// revision is still the latest, so results of an older filter never replace
// those of a newer one.
type StreamingMatcher struct {
	matcher *AsyncMatcher

	mu         sync.Mutex
	cancel     context.CancelFunc
	revision   uint64
	lastFilter string
}

// NewStreamingMatcher creates a streaming matcher.
// Panics if matcher is nil.
func NewStreamingMatcher(matcher *Matcher, numWorkers int) *StreamingMatcher {
	return &StreamingMatcher{
		matcher: NewAsyncMatcher(matcher, numWorkers),
	}
}

// Search starts a new search, canceling any previous search.
// The returned channel receives at most one batch and is then closed. No
// batch is sent if the search was canceled or superseded.
func (m *StreamingMatcher) Search(ctx context.Context, filter string, items []Item, limit int) <-chan Batch {
	m.mu.Lock()
	if m.cancel != nil {
		m.cancel()
	}
	m.revision++
	rev := m.revision
	m.lastFilter = filter
	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.mu.Unlock()

	out := make(chan Batch, 1)
	go func() {
		defer close(out)
		defer cancel()

		results, err := m.matcher.MatchParallel(ctx, filter, items, limit)
		if err != nil {
			return
		}

		m.mu.Lock()
		defer m.mu.Unlock()
		if rev != m.revision {
			return
		}
		out <- Batch{Revision: rev, Filter: filter, Results: results}
	}()

	return out
}

// IsCurrent reports whether rev is the latest search revision.
func (m *StreamingMatcher) IsCurrent(rev uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return rev == m.revision
}

// Revision returns the latest search revision.
func (m *StreamingMatcher) Revision() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.revision
}

// Cancel stops the current search.
func (m *StreamingMatcher) Cancel() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

// LastFilter returns the most recent filter string.
func (m *StreamingMatcher) LastFilter() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastFilter
}
