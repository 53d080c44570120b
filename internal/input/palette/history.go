package palette

import (
	"slices"
	"sync"
)

// DefaultHistorySize is the history capacity used by New.
const DefaultHistorySize = 100

// History tracks recently executed commands.
// Command IDs are kept most recent first.
type History struct {
	mu       sync.Mutex
	ids      []string
	capacity int
}

// NewHistory creates a command history with the given capacity.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistorySize
	}
	return &History{
		ids:      make([]string, 0, capacity),
		capacity: capacity,
	}
}

// Add records a command execution, moving the ID to the front.
func (h *History) Add(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if i := slices.Index(h.ids, id); i >= 0 {
		h.ids = slices.Delete(h.ids, i, i+1)
	}
	h.ids = slices.Insert(h.ids, 0, id)
	if len(h.ids) > h.capacity {
		h.ids = h.ids[:h.capacity]
	}
}

// Recent returns up to limit command IDs, most recent first.
// A limit of 0 or less returns all of them.
func (h *History) Recent(limit int) []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	if limit <= 0 || limit > len(h.ids) {
		limit = len(h.ids)
	}
	return slices.Clone(h.ids[:limit])
}

// Contains checks if a command ID is in history.
func (h *History) Contains(id string) bool {
	return h.Position(id) >= 0
}

// Position returns the position of a command in history (0 = most recent).
// Returns -1 if not found.
func (h *History) Position(id string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Index(h.ids, id)
}

// positions returns the history position of every recorded ID.
func (h *History) positions() map[string]int {
	h.mu.Lock()
	defer h.mu.Unlock()

	pos := make(map[string]int, len(h.ids))
	for i, id := range h.ids {
		pos[id] = i
	}
	return pos
}

// Remove removes a specific command from history.
func (h *History) Remove(id string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	i := slices.Index(h.ids, id)
	if i < 0 {
		return false
	}
	h.ids = slices.Delete(h.ids, i, i+1)
	return true
}

// Clear removes all history entries.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ids = h.ids[:0]
}

// Len returns the number of items in history.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.ids)
}
