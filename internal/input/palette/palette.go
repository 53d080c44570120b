package palette

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/dshills/cmdpalette/internal/input/fuzzy"
)

// ErrUnknownCommand is returned for operations on an unregistered command ID.
var ErrUnknownCommand = errors.New("unknown command")

// Options configures a Palette.
type Options struct {
	// HistorySize is the number of executed commands remembered.
	HistorySize int

	// CacheSize is the number of memoized segmentations.
	// Set to 0 to disable memoization.
	CacheSize int

	// Workers is the number of goroutines used by SetFilterAsync.
	// 0 means runtime.NumCPU().
	Workers int
}

// DefaultOptions returns the options used by New.
func DefaultOptions() Options {
	return Options{
		HistorySize: DefaultHistorySize,
		CacheSize:   fuzzy.DefaultOptions().CacheSize,
	}
}

// Palette provides searchable access to commands.
type Palette struct {
	mu        sync.RWMutex
	commands  map[string]*Command
	entries   []*FilteredCommand // registration order
	history   *History
	matcher   *fuzzy.Matcher
	streaming *fuzzy.StreamingMatcher

	filter   string
	revision uint64
	visible  []*FilteredCommand

	// onChange callbacks are called when commands are added/removed/renamed.
	onChange []func()
}

// New creates a new command palette.
func New() *Palette {
	return NewWithOptions(DefaultOptions())
}

// NewWithHistory creates a palette with a custom history size.
func NewWithHistory(historySize int) *Palette {
	opts := DefaultOptions()
	opts.HistorySize = historySize
	return NewWithOptions(opts)
}

// NewWithOptions creates a palette with the given options.
func NewWithOptions(opts Options) *Palette {
	matcher := fuzzy.NewMatcher(fuzzy.Options{CacheSize: opts.CacheSize})
	return &Palette{
		commands:  make(map[string]*Command),
		history:   NewHistory(opts.HistorySize),
		matcher:   matcher,
		streaming: fuzzy.NewStreamingMatcher(matcher, opts.Workers),
	}
}

// Register adds a command to the palette.
// If a command with the same ID exists, it is replaced in place.
func (p *Palette) Register(cmd *Command) error {
	if cmd == nil {
		return fmt.Errorf("command cannot be nil")
	}
	if err := cmd.Validate(); err != nil {
		return err
	}

	p.mu.Lock()
	entry := NewFilteredCommand(cmd, p.matcher)
	entry.UpdateFilter(p.filter)
	if _, exists := p.commands[cmd.ID]; exists {
		i := p.indexLocked(cmd.ID)
		p.entries[i] = entry
	} else {
		p.entries = append(p.entries, entry)
	}
	p.commands[cmd.ID] = cmd
	p.rebuildLocked()
	p.mu.Unlock()

	p.notifyChange()
	return nil
}

// RegisterAll adds multiple commands to the palette.
func (p *Palette) RegisterAll(commands []*Command) error {
	for _, cmd := range commands {
		if err := p.Register(cmd); err != nil {
			return err
		}
	}
	return nil
}

// Replace swaps the whole command list, keeping the filter and the history.
// Nothing changes if any command is invalid or IDs repeat.
func (p *Palette) Replace(commands []*Command) error {
	seen := make(map[string]bool, len(commands))
	for _, cmd := range commands {
		if cmd == nil {
			return fmt.Errorf("command cannot be nil")
		}
		if err := cmd.Validate(); err != nil {
			return err
		}
		if seen[cmd.ID] {
			return fmt.Errorf("duplicate command ID %q", cmd.ID)
		}
		seen[cmd.ID] = true
	}

	p.mu.Lock()
	p.commands = make(map[string]*Command, len(commands))
	p.entries = make([]*FilteredCommand, 0, len(commands))
	for _, cmd := range commands {
		entry := NewFilteredCommand(cmd, p.matcher)
		entry.UpdateFilter(p.filter)
		p.commands[cmd.ID] = cmd
		p.entries = append(p.entries, entry)
	}
	p.rebuildLocked()
	p.mu.Unlock()

	p.notifyChange()
	return nil
}

// Unregister removes a command from the palette.
func (p *Palette) Unregister(id string) bool {
	p.mu.Lock()
	_, exists := p.commands[id]
	if exists {
		delete(p.commands, id)
		p.entries = slices.DeleteFunc(p.entries, func(e *FilteredCommand) bool {
			return e.command.ID == id
		})
		p.rebuildLocked()
	}
	p.mu.Unlock()

	if exists {
		p.notifyChange()
	}
	return exists
}

// UnregisterBySource removes all commands from a specific source.
func (p *Palette) UnregisterBySource(source string) int {
	p.mu.Lock()
	count := 0
	p.entries = slices.DeleteFunc(p.entries, func(e *FilteredCommand) bool {
		if e.command.Source != source {
			return false
		}
		delete(p.commands, e.command.ID)
		count++
		return true
	})
	if count > 0 {
		p.rebuildLocked()
	}
	p.mu.Unlock()

	if count > 0 {
		p.notifyChange()
	}
	return count
}

// Rename changes the display name of a command and recomputes its
// highlighted name and weight for the current filter. The registered
// command is replaced by a renamed copy.
func (p *Palette) Rename(id, name string) error {
	p.mu.Lock()
	cmd, exists := p.commands[id]
	if !exists {
		p.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownCommand, id)
	}

	renamed := *cmd
	renamed.Name = name
	if err := renamed.Validate(); err != nil {
		p.mu.Unlock()
		return err
	}

	// Registered commands are never mutated; readers may hold the old one.
	p.commands[id] = &renamed
	entry := p.entries[p.indexLocked(id)]
	entry.command = &renamed
	if entry.Refresh() {
		p.rebuildLocked()
	}
	p.mu.Unlock()

	p.notifyChange()
	return nil
}

// Get retrieves a command by ID.
func (p *Palette) Get(id string) *Command {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.commands[id]
}

// Has checks if a command exists.
func (p *Palette) Has(id string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, exists := p.commands[id]
	return exists
}

// All returns all registered commands sorted by name.
func (p *Palette) All() []*Command {
	p.mu.RLock()
	result := p.commandsLocked()
	p.mu.RUnlock()

	slices.SortStableFunc(result, func(a, b *Command) int {
		return fuzzy.Compare(fuzzy.Ranked{Name: a.Name}, fuzzy.Ranked{Name: b.Name})
	})
	return result
}

// Count returns the number of registered commands.
func (p *Palette) Count() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.commands)
}

// Filter returns the current filter.
func (p *Palette) Filter() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.filter
}

// Revision returns the number of filter updates so far.
func (p *Palette) Revision() uint64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.revision
}

// SetFilter updates the filter of every command, then re-sorts the visible
// list. The whole pass happens under the palette lock, so concurrent callers
// are serialized. It returns the revision of the update.
func (p *Palette) SetFilter(filter string) uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.revision++
	p.filter = filter
	for _, e := range p.entries {
		e.UpdateFilter(filter)
	}
	p.rebuildLocked()
	return p.revision
}

// SetFilterAsync ranks the commands for filter on worker goroutines. When the
// ranking finishes and no newer filter was set in the meantime, the result is
// applied and done is called with the revision and the visible commands.
// done is not called for a superseded or canceled update.
func (p *Palette) SetFilterAsync(ctx context.Context, filter string, done func(rev uint64, visible []SearchResult)) uint64 {
	p.mu.Lock()
	p.revision++
	rev := p.revision
	items := make([]fuzzy.Item, len(p.entries))
	names := make(map[*FilteredCommand]string, len(p.entries))
	for i, e := range p.entries {
		items[i] = fuzzy.Item{Text: e.command.Name, Data: e}
		names[e] = e.command.Name
	}
	p.mu.Unlock()

	batches := p.streaming.Search(ctx, filter, items, 0)
	go func() {
		batch, ok := <-batches
		if !ok {
			return
		}

		p.mu.Lock()
		if rev != p.revision {
			p.mu.Unlock()
			return
		}
		p.applyLocked(filter, names, batch.Results)
		visible := p.visibleLocked(0)
		p.mu.Unlock()

		if done != nil {
			done(rev, visible)
		}
	}()

	return rev
}

// applyLocked stores ranked results in the entries. names holds the command
// names the results were computed for.
// Must be called with lock held.
func (p *Palette) applyLocked(filter string, names map[*FilteredCommand]string, results []fuzzy.Result) {
	ranked := make(map[*FilteredCommand]fuzzy.Result, len(results))
	for _, r := range results {
		e := r.Item.Data.(*FilteredCommand) //nolint:errcheck // items are built from entries
		ranked[e] = r
	}

	p.filter = filter
	for _, e := range p.entries {
		name, ok := names[e]
		if !ok || name != e.command.Name {
			// Registered or renamed while ranking.
			e.filter = filter
			e.recompute()
			continue
		}

		if r, ok := ranked[e]; ok {
			e.apply(filter, r.Segments, r.Weight)
		} else {
			e.apply(filter, fuzzy.Segmentation{{Text: name}}, 0)
		}
	}
	p.rebuildLocked()
}

// Visible returns the commands shown for the current filter, at most limit
// of them (0 means all).
func (p *Palette) Visible(limit int) []SearchResult {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.visibleLocked(limit)
}

func (p *Palette) visibleLocked(limit int) []SearchResult {
	n := len(p.visible)
	if limit > 0 && limit < n {
		n = limit
	}
	results := make([]SearchResult, n)
	for i := 0; i < n; i++ {
		results[i] = p.visible[i].result()
	}
	return results
}

// rebuildLocked recomputes the visible list.
// Must be called with lock held.
func (p *Palette) rebuildLocked() {
	visible := make([]*FilteredCommand, 0, len(p.entries))

	if p.filter != "" {
		for _, e := range p.entries {
			if e.weight > 0 {
				visible = append(visible, e)
			}
		}
		slices.SortStableFunc(visible, compareFiltered)
		p.visible = visible
		return
	}

	// Empty filter: recent commands first, then by name.
	visible = append(visible, p.entries...)
	recent := p.history.positions()
	slices.SortStableFunc(visible, func(a, b *FilteredCommand) int {
		pa, aRecent := recent[a.command.ID]
		pb, bRecent := recent[b.command.ID]
		switch {
		case aRecent && bRecent:
			return pa - pb
		case aRecent:
			return -1
		case bRecent:
			return 1
		}
		return compareFiltered(a, b)
	})
	p.visible = visible
}

// Search ranks the commands for query without changing the palette filter.
// Results follow the same ordering as Visible.
func (p *Palette) Search(query string, limit int) []SearchResult {
	p.mu.RLock()
	commands := p.commandsLocked()
	p.mu.RUnlock()

	if query == "" {
		return p.recentCommands(commands, limit)
	}

	items := make([]fuzzy.Item, len(commands))
	for i, cmd := range commands {
		items[i] = fuzzy.Item{Text: cmd.Name, Data: cmd}
	}

	matches := p.matcher.Match(query, items, limit)
	results := make([]SearchResult, len(matches))
	for i, m := range matches {
		results[i] = SearchResult{
			Command:  m.Item.Data.(*Command), //nolint:errcheck // items are built from commands
			Weight:   m.Weight,
			Segments: m.Segments,
		}
	}
	return results
}

// recentCommands returns commands sorted by recency, then by name.
func (p *Palette) recentCommands(commands []*Command, limit int) []SearchResult {
	recent := p.history.positions()
	results := make([]SearchResult, 0, len(commands))
	for _, cmd := range commands {
		results = append(results, SearchResult{
			Command:  cmd,
			Segments: fuzzy.Highlight(cmd.Name, ""),
		})
	}

	slices.SortStableFunc(results, func(a, b SearchResult) int {
		pa, aRecent := recent[a.Command.ID]
		pb, bRecent := recent[b.Command.ID]
		switch {
		case aRecent && bRecent:
			return pa - pb
		case aRecent:
			return -1
		case bRecent:
			return 1
		}
		return fuzzy.Compare(a.Ranked(), b.Ranked())
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

// Execute runs a command by ID with the given arguments.
// History is only updated after successful execution.
func (p *Palette) Execute(id string, args map[string]any) error {
	p.mu.RLock()
	cmd, exists := p.commands[id]
	p.mu.RUnlock()

	if !exists {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, id)
	}

	err := cmd.Execute(args)
	if err == nil {
		p.history.Add(id)

		p.mu.Lock()
		if p.filter == "" {
			p.rebuildLocked()
		}
		p.mu.Unlock()
	}

	return err
}

// History returns the command history.
func (p *Palette) History() *History {
	return p.history
}

// RecentCommands returns IDs of recently executed commands.
func (p *Palette) RecentCommands(limit int) []string {
	return p.history.Recent(limit)
}

// Categories returns all unique command categories.
func (p *Palette) Categories() []string {
	p.mu.RLock()
	commands := p.commandsLocked()
	p.mu.RUnlock()

	return Categories(commands)
}

// CommandsByCategory returns commands in the specified category, by name.
func (p *Palette) CommandsByCategory(category string) []*Command {
	result := slices.DeleteFunc(p.All(), func(cmd *Command) bool {
		return cmd.Category != category
	})
	return result
}

// OnChange registers a callback for command list changes.
// Callbacks are invoked after registration, removal and renames.
// Callbacks should not register or unregister commands.
func (p *Palette) OnChange(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onChange = append(p.onChange, fn)
}

// notifyChange calls all registered change callbacks.
// Callbacks are invoked without holding locks to prevent deadlocks.
func (p *Palette) notifyChange() {
	p.mu.RLock()
	callbacks := slices.Clone(p.onChange)
	p.mu.RUnlock()

	for _, fn := range callbacks {
		fn()
	}
}

// Clear removes all commands and clears history.
func (p *Palette) Clear() {
	p.mu.Lock()
	p.commands = make(map[string]*Command)
	p.entries = nil
	p.visible = nil
	p.mu.Unlock()

	p.history.Clear()
	p.matcher.ClearCache()
	p.notifyChange()
}

// commandsLocked returns the commands in registration order.
// Must be called with lock held.
func (p *Palette) commandsLocked() []*Command {
	result := make([]*Command, len(p.entries))
	for i, e := range p.entries {
		result[i] = e.command
	}
	return result
}

// indexLocked returns the entry index of id, or -1.
// Must be called with lock held.
func (p *Palette) indexLocked(id string) int {
	return slices.IndexFunc(p.entries, func(e *FilteredCommand) bool {
		return e.command.ID == id
	})
}
