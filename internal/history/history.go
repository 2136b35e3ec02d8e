package history

import (
	"strings"
	"sync"
)

// DefaultLimit is the number of turns a History keeps before evicting the oldest.
const DefaultLimit = 10

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in a conversation. Turns are values and never change after creation.
type Turn struct {
	Role    Role
	Content string
}

func (t Turn) String() string {
	return string(t.Role) + ": " + t.Content
}

// History is a bounded, insertion-ordered list of turns with FIFO eviction.
type History struct {
	mu    sync.RWMutex
	limit int
	turns []Turn
}

func New(limit int) *History {
	if limit < 1 {
		limit = DefaultLimit
	}
	return &History{
		limit: limit,
		turns: make([]Turn, 0, limit+1),
	}
}

func (h *History) Append(turn Turn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.turns = append(h.turns, turn)
	if overflow := len(h.turns) - h.limit; overflow > 0 {
		kept := make([]Turn, h.limit, h.limit+1)
		copy(kept, h.turns[overflow:])
		h.turns = kept
	}
}

func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.turns)
}

func (h *History) Limit() int {
	return h.limit
}

// Turns returns a copy of every retained turn, oldest first.
func (h *History) Turns() []Turn {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Turn, len(h.turns))
	copy(out, h.turns)
	return out
}

// Recent returns up to n of the newest turns in chronological order.
func (h *History) Recent(n int) []Turn {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if n <= 0 {
		return nil
	}
	start := len(h.turns) - n
	if start < 0 {
		start = 0
	}
	out := make([]Turn, len(h.turns)-start)
	copy(out, h.turns[start:])
	return out
}

// RecentContext renders Recent(n) as "role: content" lines joined by newlines.
func (h *History) RecentContext(n int) string {
	recent := h.Recent(n)
	lines := make([]string, 0, len(recent))
	for _, turn := range recent {
		lines = append(lines, turn.String())
	}
	return strings.Join(lines, "\n")
}
