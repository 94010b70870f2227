package chrome

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// relay hands messages from any goroutine to the program without blocking
// the sender. program.Send blocks until Update takes the message, and Update
// calls into the shell, so a shell event must never be sent synchronously.
type relay struct {
	mu      sync.Mutex
	pending []tea.Msg
	stopped bool
	signal  chan struct{}
	done    chan struct{}
}

func newRelay() *relay {
	return &relay{
		signal: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// push queues msg. Messages pushed after stop are dropped.
func (r *relay) push(msg tea.Msg) {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.pending = append(r.pending, msg)
	r.mu.Unlock()

	select {
	case r.signal <- struct{}{}:
	default:
	}
}

// run delivers queued messages to send in order until stop is called.
func (r *relay) run(send func(tea.Msg)) {
	defer close(r.done)

	for range r.signal {
		r.mu.Lock()
		batch := r.pending
		r.pending = nil
		stopped := r.stopped
		r.mu.Unlock()

		for _, msg := range batch {
			send(msg)
		}
		if stopped {
			return
		}
	}
}

// stop ends run after the messages already queued are delivered.
func (r *relay) stop() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.stopped = true
	r.mu.Unlock()

	select {
	case r.signal <- struct{}{}:
	default:
	}
}
