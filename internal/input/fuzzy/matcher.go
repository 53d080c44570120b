package fuzzy

import (
	"slices"
)

// Item represents a searchable item.
type Item struct {
	// Text is the name to match against.
	Text string

	// Data is arbitrary data associated with this item.
	Data any
}

// Result represents a ranked item.
type Result struct {
	// Item is the matched item.
	Item Item

	// Weight is the match weight (higher is better, 0 means no match).
	Weight int

	// Segments is the highlighted name.
	Segments Segmentation
}

// Ranked returns the sort key of the result.
func (r Result) Ranked() Ranked {
	return Ranked{Weight: r.Weight, Name: r.Item.Text}
}

// compareResults orders results with Compare.
func compareResults(a, b Result) int {
	return Compare(a.Ranked(), b.Ranked())
}

// Matcher ranks items against a filter.
type Matcher struct {
	cache   *Cache
	options Options
}

// Options configures the matcher behavior.
type Options struct {
	// CacheSize is the maximum number of memoized segmentations.
	// Set to 0 to disable caching.
	CacheSize int

	// MinWeight is the weight a result must exceed to be included.
	// Values below 0 are treated as 0, so non-matching items are
	// always excluded for a non-empty filter.
	MinWeight int
}

// DefaultOptions returns sensible default options.
func DefaultOptions() Options {
	return Options{
		CacheSize: 1000,
		MinWeight: 0,
	}
}

// NewMatcher creates a new matcher with the given options.
func NewMatcher(opts Options) *Matcher {
	if opts.MinWeight < 0 {
		opts.MinWeight = 0
	}

	var cache *Cache
	if opts.CacheSize > 0 {
		cache = NewCache(opts.CacheSize)
	}

	return &Matcher{
		cache:   cache,
		options: opts,
	}
}

// Options returns the matcher options.
func (m *Matcher) Options() Options {
	return m.options
}

// Highlight is Highlight with memoization.
func (m *Matcher) Highlight(name, filter string) Segmentation {
	if m.cache == nil || filter == "" {
		return Highlight(name, filter)
	}
	if cached := m.cache.Get(name, filter); cached != nil {
		return cached
	}
	segments := Highlight(name, filter)
	m.cache.Set(name, filter, segments)
	return segments
}

// Match ranks items against filter and returns at most limit results.
// An empty filter returns the items in their original order with weight 0.
// Otherwise items that do not match are dropped and the rest are ordered
// with Compare.
func (m *Matcher) Match(filter string, items []Item, limit int) []Result {
	if filter == "" {
		return m.emptyFilterResults(items, limit)
	}

	results := m.rank(filter, items)
	sortResults(results)
	return applyLimit(results, limit)
}

// rank scores every item and keeps the ones above MinWeight.
func (m *Matcher) rank(filter string, items []Item) []Result {
	results := make([]Result, 0, len(items))
	for _, item := range items {
		if r, ok := m.matchItem(filter, item); ok {
			results = append(results, r)
		}
	}
	return results
}

// matchItem scores a single item against the filter.
func (m *Matcher) matchItem(filter string, item Item) (Result, bool) {
	segments := m.Highlight(item.Text, filter)
	weight := Weight(segments)
	if weight <= m.options.MinWeight {
		return Result{}, false
	}
	return Result{Item: item, Weight: weight, Segments: segments}, true
}

// emptyFilterResults returns results for an empty filter.
func (m *Matcher) emptyFilterResults(items []Item, limit int) []Result {
	count := len(items)
	if limit > 0 && limit < count {
		count = limit
	}

	results := make([]Result, count)
	for i := 0; i < count; i++ {
		results[i] = Result{
			Item:     items[i],
			Segments: unmatched(items[i].Text),
		}
	}
	return results
}

// ClearCache clears the segmentation cache.
func (m *Matcher) ClearCache() {
	if m.cache != nil {
		m.cache.Clear()
	}
}

// sortResults orders results in place, keeping ties in input order.
func sortResults(results []Result) {
	slices.SortStableFunc(results, compareResults)
}

// applyLimit returns at most limit results.
func applyLimit(results []Result, limit int) []Result {
	if limit <= 0 || limit >= len(results) {
		return results
	}
	return results[:limit]
}
