package shell

import (
	"errors"

	"github.com/entrhq/flow/pkg/engine"
	"github.com/entrhq/flow/pkg/tabs"
)

// AcceptNavigation decides whether a navigation of v proceeds. Object URLs are
// read in the page that owns them: a popup's opener, or v itself.
func (s *Shell) AcceptNavigation(v engine.View, target string, mainFrame bool) bool {
	return s.downloads.Navigate(v, s.origin(v), target, mainFrame)
}

// AcceptPopup decides whether a popup opened by opener becomes a tab.
func (s *Shell) AcceptPopup(opener engine.View, target string) bool {
	return s.downloads.NewWindow(opener, target)
}

func (s *Shell) origin(v engine.View) engine.View {
	if opener, ok := s.origins.Load(v.ID()); ok {
		return opener.(engine.View)
	}
	return v
}

// forgetOrigins drops v as a popup and as an opener.
func (s *Shell) forgetOrigins(v engine.View) {
	id := v.ID()
	s.origins.Delete(id)
	s.origins.Range(func(key, value any) bool {
		if value.(engine.View).ID() == id {
			s.origins.Delete(key)
		}
		return true
	})
}

// TitleChanged records a page title on its tab.
func (s *Shell) TitleChanged(v engine.View, title string) {
	s.lock()
	defer s.unlock()

	tab, ok := s.tabs.FindByView(v)
	if !ok {
		return
	}
	s.tabs.SetTitle(tab.Handle, title)
	s.emit(TabsChanged{})
}

// URLChanged refreshes the address bar when the active tab commits a URL.
func (s *Shell) URLChanged(v engine.View, url string) {
	s.lock()
	defer s.unlock()

	if _, ok := s.tabs.FindByView(v); !ok {
		return
	}
	s.nav.URLChanged(v)
	s.emit(TabsChanged{})
}

// LoadFinished refreshes the address bar and, for the active page tab,
// records the visit.
func (s *Shell) LoadFinished(v engine.View, ok bool) {
	s.lock()
	defer s.unlock()

	tab, found := s.tabs.FindByView(v)
	if !found {
		return
	}

	if !s.nav.LoadFinished(v) {
		return
	}
	if !ok {
		s.noticef("Failed to load %s", v.URL())
		return
	}
	if tab.IsDevTools() {
		return
	}

	title := tab.Title
	if title == "" {
		title = v.Title()
	}
	s.history.Append(v.URL(), title)
}

// PopupOpened turns an accepted popup into a tab next to its opener's.
func (s *Shell) PopupOpened(opener engine.View, popup engine.View) {
	s.origins.Store(popup.ID(), opener)

	s.lock()
	defer s.unlock()

	if s.closed {
		_ = popup.Close()
		return
	}

	openerHandle := tabs.None
	if tab, ok := s.tabs.FindByView(opener); ok {
		openerHandle = tab.Handle
	}

	h := s.tabs.Adopt(popup, openerHandle)
	s.log.Debugf("popup %s adopted as tab %d", popup.ID(), h)
	s.activeChanged()
}

// FullScreenRequested records element full-screen for the active tab.
func (s *Shell) FullScreenRequested(v engine.View, on bool) {
	s.lock()
	defer s.unlock()

	if !s.tabs.IsActiveView(v) || s.fullScreen == on {
		return
	}
	s.fullScreen = on
	s.emit(FullScreenChanged{On: on})
}

// DownloadRequested tracks a transport-level download.
func (s *Shell) DownloadRequested(v engine.View, d engine.Download) {
	s.lock()
	defer s.unlock()

	id := s.downloads.Track(d)
	if record, ok := s.downloads.List().Get(id); ok && !record.Done {
		s.noticef("Downloading %s", record.Filename)
	}
}

// BridgeMessage hands a script bridge message to the interceptor.
func (s *Shell) BridgeMessage(v engine.View, msg engine.BridgeMessage) {
	s.lock()
	defer s.unlock()

	if err := s.downloads.HandleBridge(msg); err != nil {
		_ = s.failf(err, "Failed to save %s", msg.Filename)
		return
	}
	if msg.Kind == engine.BridgeBlobError {
		s.emit(Notice{Text: "Download failed: " + msg.Error, Error: true})
		return
	}
	s.noticef("Saved to %s", s.downloads.Dir())
}

// ViewClosed removes the tab of a page that closed itself. The last tab is
// replaced by a home tab rather than leaving the window empty.
func (s *Shell) ViewClosed(v engine.View) {
	s.forgetOrigins(v)

	s.lock()
	defer s.unlock()

	if s.closed {
		return
	}

	tab, ok := s.tabs.FindByView(v)
	if !ok {
		return
	}
	h := tab.Handle

	err := s.tabs.CloseTab(s.tabs.IndexOf(h))
	if errors.Is(err, tabs.ErrLastTab) {
		if _, err := s.tabs.CreateTab("", tabs.None); err != nil {
			_ = s.failf(err, "Failed to open a new tab")
			return
		}
		err = s.tabs.CloseTab(s.tabs.IndexOf(h))
	}
	if err != nil {
		s.log.Warnf("failed to drop tab %d after its page closed: %v", h, err)
		return
	}

	s.activeChanged()
}
