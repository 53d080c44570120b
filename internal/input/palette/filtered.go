package palette

import (
	"github.com/dshills/cmdpalette/internal/input/fuzzy"
)

// FilteredCommand is the view model of a command under the current filter.
// It keeps the highlighted name and the weight in sync with the filter and
// the command name.
type FilteredCommand struct {
	command     *Command
	matcher     *fuzzy.Matcher
	filter      string
	name        string
	highlighted fuzzy.Segmentation
	weight      int
}

// NewFilteredCommand creates a view model for cmd with an empty filter.
// The matcher memoizes segmentations; nil means no memoization.
func NewFilteredCommand(cmd *Command, matcher *fuzzy.Matcher) *FilteredCommand {
	f := &FilteredCommand{
		command: cmd,
		matcher: matcher,
	}
	f.recompute()
	return f
}

// Command returns the underlying command.
func (f *FilteredCommand) Command() *Command {
	return f.command
}

// Filter returns the filter the entry was computed for.
func (f *FilteredCommand) Filter() string {
	return f.filter
}

// HighlightedName returns the segments of the command name.
func (f *FilteredCommand) HighlightedName() fuzzy.Segmentation {
	return f.highlighted.Clone()
}

// Weight returns the match weight. 0 means the name does not match.
func (f *FilteredCommand) Weight() int {
	return f.weight
}

// Ranked returns the sort key of the entry.
func (f *FilteredCommand) Ranked() fuzzy.Ranked {
	return fuzzy.Ranked{Weight: f.weight, Name: f.name}
}

// UpdateFilter sets a new filter and recomputes the highlighted name and the
// weight. It does nothing and returns false when the filter is unchanged.
func (f *FilteredCommand) UpdateFilter(filter string) bool {
	if filter == f.filter {
		return false
	}
	f.filter = filter
	f.recompute()
	return true
}

// Refresh recomputes the entry after the command name changed.
// It returns false if the name is the one already highlighted.
func (f *FilteredCommand) Refresh() bool {
	if f.command.Name == f.name {
		return false
	}
	f.recompute()
	return true
}

// apply stores a result computed elsewhere for the current name.
func (f *FilteredCommand) apply(filter string, segments fuzzy.Segmentation, weight int) {
	f.filter = filter
	f.name = f.command.Name
	f.highlighted = segments
	f.weight = weight
}

func (f *FilteredCommand) recompute() {
	f.name = f.command.Name
	if f.matcher != nil {
		f.highlighted = f.matcher.Highlight(f.name, f.filter)
	} else {
		f.highlighted = fuzzy.Highlight(f.name, f.filter)
	}
	f.weight = fuzzy.Weight(f.highlighted)
}

// result returns a snapshot of the entry.
func (f *FilteredCommand) result() SearchResult {
	return SearchResult{
		Command:  f.command,
		Weight:   f.weight,
		Segments: f.highlighted.Clone(),
	}
}

// compareFiltered orders entries by weight, then name.
func compareFiltered(a, b *FilteredCommand) int {
	return fuzzy.Compare(a.Ranked(), b.Ranked())
}
