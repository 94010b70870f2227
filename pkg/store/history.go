package store

import (
	"sync"
	"time"
)

const (
	// HistoryDisplayLimit is how many entries Recent returns
	HistoryDisplayLimit = 50

	// TimestampFormat is how history timestamps are shown
	TimestampFormat = "2006-01-02 15:04:05"
)

// HistoryEntry is one finished page load.
type HistoryEntry struct {
	URL     string
	Title   string
	Visited time.Time
}

// Timestamp formats the visit time for display.
func (e HistoryEntry) Timestamp() string {
	return e.Visited.Format(TimestampFormat)
}

// History is the in-memory browsing history. Entries are appended oldest
// first and never persisted.
type History struct {
	mu      sync.RWMutex
	entries []HistoryEntry
	now     func() time.Time
}

// NewHistory returns an empty history.
func NewHistory() *History {
	return &History{now: time.Now}
}

// Append records a visit at the current time.
func (h *History) Append(url, title string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, HistoryEntry{URL: url, Title: title, Visited: h.now()})
}

// Recent returns at most HistoryDisplayLimit entries, newest first.
func (h *History) Recent() []HistoryEntry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	start := max(len(h.entries)-HistoryDisplayLimit, 0)
	recent := make([]HistoryEntry, 0, len(h.entries)-start)
	for i := len(h.entries) - 1; i >= start; i-- {
		recent = append(recent, h.entries[i])
	}
	return recent
}

// RecentAt returns the entry at index in Recent order.
func (h *History) RecentAt(index int) (HistoryEntry, bool) {
	recent := h.Recent()
	if index < 0 || index >= len(recent) {
		return HistoryEntry{}, false
	}
	return recent[index], true
}

// Clear empties the whole history, not only the displayed window.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = nil
}

// Len returns the number of recorded entries.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}
