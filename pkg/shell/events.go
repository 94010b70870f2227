package shell

import "github.com/entrhq/flow/pkg/navigation"

// Event is a notification from the shell to the chrome. Events are delivered
// after the shell has released its lock, in the order they were raised.
type Event interface {
	event()
}

// TabsChanged reports that tabs were opened, closed, retitled or reordered.
type TabsChanged struct{}

// StateChanged carries the address bar state of the active tab.
type StateChanged struct {
	State navigation.State
}

// DownloadsChanged reports a change to the download records. It is only sent
// while downloads are watched.
type DownloadsChanged struct{}

// FullScreenChanged reports a page entering or leaving element full-screen.
type FullScreenChanged struct {
	On bool
}

// Notice is a short message for the status line.
type Notice struct {
	Text  string
	Error bool
}

func (TabsChanged) event()       {}
func (StateChanged) event()      {}
func (DownloadsChanged) event()  {}
func (FullScreenChanged) event() {}
func (Notice) event()            {}
