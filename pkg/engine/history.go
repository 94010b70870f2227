package engine

import "sync"

// direction marks what kind of navigation is in flight for a view.
type direction int

const (
	dirNew direction = iota
	dirBack
	dirForward
	dirReload
)

// history mirrors the session history of one page. The engine exposes no
// index into its own back/forward list, so views record committed main-frame
// URLs here and derive CanGoBack/CanGoForward from the position.
type history struct {
	mu      sync.Mutex
	entries []string
	index   int
	pending direction
}

func newHistory() *history {
	return &history{index: -1}
}

// expect records the direction of the next commit.
func (h *history) expect(d direction) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pending = d
}

// commit records a committed main-frame URL.
func (h *history) commit(url string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	d := h.pending
	h.pending = dirNew

	switch d {
	case dirBack:
		if h.index > 0 {
			h.index--
			h.entries[h.index] = url
			return
		}
	case dirForward:
		if h.index < len(h.entries)-1 {
			h.index++
			h.entries[h.index] = url
			return
		}
	case dirReload:
		if h.index >= 0 {
			h.entries[h.index] = url
			return
		}
	}

	if h.index >= 0 && h.entries[h.index] == url {
		return
	}

	// A new navigation drops the forward list
	h.entries = append(h.entries[:h.index+1], url)
	h.index = len(h.entries) - 1
}

// dropCurrent removes the current entry. Used when a committed navigation is
// undone by going back, so the undone URL is not offered as forward.
func (h *history) dropCurrent() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.index < 0 {
		return
	}
	h.entries = h.entries[:h.index]
	h.index--
}

func (h *history) canGoBack() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.index > 0
}

func (h *history) canGoForward() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.index >= 0 && h.index < len(h.entries)-1
}

func (h *history) current() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.index < 0 {
		return ""
	}
	return h.entries[h.index]
}
