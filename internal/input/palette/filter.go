package palette

import (
	"slices"
	"strings"

	"github.com/dshills/cmdpalette/internal/input/fuzzy"
)

// SearchResult is a snapshot of a visible command.
type SearchResult struct {
	// Command is the matched command.
	Command *Command

	// Weight is the match weight (higher is better).
	Weight int

	// Segments is the highlighted command name.
	Segments fuzzy.Segmentation
}

// Ranked returns the sort key of the result.
func (r SearchResult) Ranked() fuzzy.Ranked {
	return fuzzy.Ranked{Weight: r.Weight, Name: r.Command.Name}
}

// FilterByCategory returns commands in the specified category,
// compared case-insensitively. An empty category returns all commands.
func FilterByCategory(commands []*Command, category string) []*Command {
	if category == "" {
		return commands
	}
	return slices.DeleteFunc(slices.Clone(commands), func(cmd *Command) bool {
		return !strings.EqualFold(cmd.Category, category)
	})
}

// FilterBySource returns commands from the specified source.
// An empty source returns all commands.
func FilterBySource(commands []*Command, source string) []*Command {
	if source == "" {
		return commands
	}
	return slices.DeleteFunc(slices.Clone(commands), func(cmd *Command) bool {
		return cmd.Source != source
	})
}

// Categories returns all unique categories from the commands, sorted.
func Categories(commands []*Command) []string {
	result := make([]string, 0)
	for _, cmd := range commands {
		if cmd.Category != "" {
			result = append(result, cmd.Category)
		}
	}
	slices.Sort(result)
	return slices.Compact(result)
}
