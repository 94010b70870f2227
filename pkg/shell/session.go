package shell

import (
	"time"

	"github.com/entrhq/flow/pkg/navigation"
	"github.com/entrhq/flow/pkg/store"
	"github.com/entrhq/flow/pkg/tabs"
)

// Open creates one tab per address, or a single home tab when there are none.
// The first tab is left active.
func (s *Shell) Open(addresses []string) error {
	s.lock()
	defer s.unlock()

	return s.open(addresses, 0)
}

func (s *Shell) open(addresses []string, active int) error {
	search := s.searchURL()

	var first error
	for _, text := range addresses {
		target := navigation.ResolveAddress(text, search)
		if target == "" {
			continue
		}
		if _, err := s.tabs.CreateTab(target, tabs.None); err != nil && first == nil {
			first = err
		}
	}

	if s.tabs.Len() == 0 {
		if _, err := s.tabs.CreateTab("", tabs.None); err != nil {
			return s.failf(err, "Failed to open a tab")
		}
	}
	if first != nil {
		_ = s.failf(first, "Failed to open every tab")
	}

	if active < 0 || active >= s.tabs.Len() {
		active = 0
	}
	_ = s.tabs.SetActive(active)
	s.activeChanged()
	return nil
}

// Restore reopens the tabs of the saved session. With no saved session it
// opens a home tab.
func (s *Shell) Restore() error {
	s.lock()
	defer s.unlock()

	session, err := s.session.Load()
	if err != nil {
		s.log.Warnf("ignoring saved session: %v", err)
	}
	if len(session.Tabs) > 0 {
		s.log.Infof("restoring %d tabs saved %s", len(session.Tabs), session.SavedAt.Format(store.TimestampFormat))
	}
	return s.open(session.Tabs, session.Active)
}

// SaveSession records the open page tabs. DevTools tabs are not saved.
func (s *Shell) SaveSession() error {
	s.lock()
	defer s.unlock()

	return s.saveSession()
}

func (s *Shell) saveSession() error {
	var session store.Session
	active := s.tabs.Active()

	for _, tab := range s.tabs.Tabs() {
		if tab.IsDevTools() {
			if active != nil && tab.Handle == active.Handle {
				session.Active = len(session.Tabs) - 1
			}
			continue
		}
		if active != nil && tab.Handle == active.Handle {
			session.Active = len(session.Tabs)
		}
		session.Tabs = append(session.Tabs, tab.View.URL())
	}
	if session.Active < 0 {
		session.Active = 0
	}

	if err := s.session.Save(session); err != nil {
		return s.failf(err, "Failed to save session")
	}
	return nil
}

// Close optionally saves the session, then closes every tab and stops
// handling engine callbacks. Closing a page can interrupt its downloads, so
// call FinishDownloads first.
func (s *Shell) Close(saveSession bool) error {
	s.lock()
	defer s.unlock()

	if s.closed {
		return nil
	}

	var err error
	if saveSession {
		err = s.saveSession()
	}

	s.closed = true
	s.tabs.CloseAll()
	s.log.Infof("shell closed")
	return err
}

// FinishDownloads gives downloads in progress up to grace to complete, then
// cancels the rest. It takes no lock.
func (s *Shell) FinishDownloads(grace time.Duration) {
	if !s.downloads.Drain(grace) {
		s.log.Warnf("downloads cut short by shutdown")
	}
}
