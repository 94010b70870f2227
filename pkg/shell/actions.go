package shell

import (
	"errors"
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"strings"

	"github.com/entrhq/flow/pkg/download"
	"github.com/entrhq/flow/pkg/navigation"
	"github.com/entrhq/flow/pkg/store"
	"github.com/entrhq/flow/pkg/tabs"
)

// ErrNoActiveTab is returned by operations on the active tab when none is open.
var ErrNoActiveTab = errors.New("no active tab")

// activeChanged resyncs everything that follows the active tab. Must be
// called with the lock held.
func (s *Shell) activeChanged() {
	if s.fullScreen {
		s.fullScreen = false
		s.emit(FullScreenChanged{On: false})
	}
	s.nav.ActiveChanged()
	s.emit(TabsChanged{})
}

// NewTab opens a tab for the address text, or the home page when text is
// blank, and makes it active.
func (s *Shell) NewTab(text string) error {
	s.lock()
	defer s.unlock()

	return s.newTab(navigation.ResolveAddress(text, s.searchURL()))
}

func (s *Shell) newTab(address string) error {
	if _, err := s.tabs.CreateTab(address, tabs.None); err != nil {
		return s.failf(err, "Failed to open a new tab")
	}
	s.activeChanged()
	return nil
}

// CloseTab closes the tab at index. Closing the last tab is refused with
// tabs.ErrLastTab.
func (s *Shell) CloseTab(index int) error {
	s.lock()
	defer s.unlock()

	return s.closeTab(index)
}

// CloseCurrentTab closes the active tab.
func (s *Shell) CloseCurrentTab() error {
	s.lock()
	defer s.unlock()

	return s.closeTab(s.tabs.ActiveIndex())
}

func (s *Shell) closeTab(index int) error {
	tab, ok := s.tabs.At(index)
	if ok {
		s.forgetOrigins(tab.View)
	}

	if err := s.tabs.CloseTab(index); err != nil {
		if errors.Is(err, tabs.ErrLastTab) {
			s.noticef("The last tab cannot be closed")
		}
		return err
	}
	s.activeChanged()
	return nil
}

// SelectTab makes the tab at index active.
func (s *Shell) SelectTab(index int) error {
	s.lock()
	defer s.unlock()

	if index == s.tabs.ActiveIndex() {
		return nil
	}
	if err := s.tabs.SetActive(index); err != nil {
		return err
	}
	s.activeChanged()
	return nil
}

// CycleTab activates the tab delta positions away from the active one,
// wrapping at either end.
func (s *Shell) CycleTab(delta int) error {
	s.lock()
	defer s.unlock()

	n := s.tabs.Len()
	if n == 0 {
		return ErrNoActiveTab
	}
	next := ((s.tabs.ActiveIndex()+delta)%n + n) % n
	if err := s.tabs.SetActive(next); err != nil {
		return err
	}
	s.activeChanged()
	return nil
}

// MoveTab moves the tab at from to position to.
func (s *Shell) MoveTab(from, to int) error {
	s.lock()
	defer s.unlock()

	if err := s.tabs.Move(from, to); err != nil {
		return err
	}
	s.emit(TabsChanged{})
	return nil
}

// Navigate loads address bar text in the active tab. It returns the URL that
// was loaded, "" when text was blank.
func (s *Shell) Navigate(text string) string {
	s.lock()
	defer s.unlock()

	return s.nav.LoadFromAddressInput(text)
}

// Back goes back in the active tab.
func (s *Shell) Back() {
	s.lock()
	defer s.unlock()
	s.nav.Back()
}

// Forward goes forward in the active tab.
func (s *Shell) Forward() {
	s.lock()
	defer s.unlock()
	s.nav.Forward()
}

// Reload reloads the active tab.
func (s *Shell) Reload() {
	s.lock()
	defer s.unlock()
	s.nav.Reload()
}

// Home loads the home page in the active tab.
func (s *Shell) Home() {
	s.lock()
	defer s.unlock()
	s.nav.Home()
}

// OpenDevTools shows the inspector for the active tab.
func (s *Shell) OpenDevTools() error {
	s.lock()
	defer s.unlock()

	active := s.tabs.Active()
	if active == nil {
		return ErrNoActiveTab
	}
	if _, err := s.tabs.OpenDevTools(active.Handle); err != nil {
		return s.failf(err, "Failed to open developer tools")
	}
	s.activeChanged()
	return nil
}

// AddBookmark bookmarks the active tab's page.
func (s *Shell) AddBookmark() error {
	s.lock()
	defer s.unlock()

	active := s.tabs.Active()
	if active == nil {
		return ErrNoActiveTab
	}

	address := active.View.URL()
	title := active.Title
	if strings.TrimSpace(title) == "" {
		title = address
	}

	if err := s.bookmarks.Add(title, address); err != nil {
		return s.failf(err, "Failed to save bookmark")
	}
	s.noticef("Bookmarked %s", title)
	return nil
}

// Bookmarks returns the bookmarks in order.
func (s *Shell) Bookmarks() []store.Bookmark {
	s.lock()
	defer s.unlock()
	return s.bookmarks.List()
}

// OpenBookmark opens the bookmark at index in a new tab.
func (s *Shell) OpenBookmark(index int) error {
	s.lock()
	defer s.unlock()

	bookmark, ok := s.bookmarks.Get(index)
	if !ok {
		return fmt.Errorf("no bookmark at index %d", index)
	}
	return s.newTab(bookmark.URL)
}

// RemoveBookmark deletes the bookmark at index.
func (s *Shell) RemoveBookmark(index int) error {
	s.lock()
	defer s.unlock()

	if err := s.bookmarks.Remove(index); err != nil {
		return s.failf(err, "Failed to remove bookmark")
	}
	return nil
}

// History returns the visits shown in the history list, newest first.
func (s *Shell) History() []store.HistoryEntry {
	s.lock()
	defer s.unlock()
	return s.history.Recent()
}

// OpenHistory opens the visit at index of History in a new tab.
func (s *Shell) OpenHistory(index int) error {
	s.lock()
	defer s.unlock()

	entry, ok := s.history.RecentAt(index)
	if !ok {
		return fmt.Errorf("no history entry at index %d", index)
	}
	return s.newTab(entry.URL)
}

// ClearHistory forgets every visit.
func (s *Shell) ClearHistory() {
	s.lock()
	defer s.unlock()

	s.history.Clear()
	s.noticef("History cleared")
}

// Downloads returns a copy of the download records, oldest first.
func (s *Shell) Downloads() []download.Record {
	return s.downloads.List().Snapshot()
}

// RemoveDownload drops the record at index, cancelling it if still running.
func (s *Shell) RemoveDownload(index int) error {
	return s.downloads.List().Remove(index)
}

// OpenDownloadsDir shows the downloads directory in the system file manager.
func (s *Shell) OpenDownloadsDir() error {
	dir := s.downloads.Dir()

	var name string
	switch runtime.GOOS {
	case "windows":
		name = "explorer"
	case "darwin":
		name = "open"
	default:
		name = "xdg-open"
	}

	if err := launch(name, dir); err != nil {
		s.log.Warnf("failed to open %s with %s: %v", dir, name, err)
		return fmt.Errorf("failed to open %s: %w", dir, err)
	}
	return nil
}

// launch starts a helper program without waiting for it.
var launch = func(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

// WatchDownloads starts sending DownloadsChanged on every record change.
// Records change on download goroutines and under the shell lock, so the
// event is sent from a goroutine of its own.
func (s *Shell) WatchDownloads() {
	s.downloads.List().Attach(func() {
		go s.deliver(DownloadsChanged{})
	})
}

// UnwatchDownloads stops DownloadsChanged events.
func (s *Shell) UnwatchDownloads() {
	s.downloads.List().Detach()
}

// SaveCookies copies the engine's cookies for the active page into the cookie
// file, replacing what was stored for each of their domains.
func (s *Shell) SaveCookies() error {
	s.lock()
	defer s.unlock()

	active := s.tabs.Active()
	if active == nil {
		return ErrNoActiveTab
	}

	cookies, err := active.View.Cookies()
	if err != nil {
		return s.failf(err, "Failed to read cookies")
	}

	byDomain := make(map[string][]store.Cookie)
	for _, c := range cookies {
		domain := c.Domain
		if domain == "" {
			domain = hostOf(active.View.URL())
		}
		byDomain[domain] = append(byDomain[domain], store.Cookie{
			Name:    c.Name,
			Value:   c.Value,
			Expires: c.Expires,
		})
	}

	for domain, list := range byDomain {
		if err := s.cookies.Persist(domain, list); err != nil {
			return s.failf(err, "Failed to save cookies")
		}
	}

	s.noticef("Saved %d cookies", len(cookies))
	return nil
}

// Cookies returns the stored cookies. With siteOnly, only domains of the
// active page's site are returned. A malformed cookie file reads as empty.
func (s *Shell) Cookies(siteOnly bool) (store.Jar, error) {
	s.lock()
	defer s.unlock()

	if siteOnly {
		active := s.tabs.Active()
		if active == nil {
			return store.Jar{}, ErrNoActiveTab
		}
		jar, err := s.cookies.ForSite(active.View.URL())
		if errors.Is(err, store.ErrMalformedCookies) {
			s.log.Warnf("reading cookies as empty: %v", err)
			return store.Jar{}, nil
		}
		return jar, err
	}

	jar, err := s.cookies.Load()
	if err != nil {
		s.log.Warnf("reading cookies as empty: %v", err)
	}
	return jar, nil
}

// SavePage writes the active tab's HTML into the downloads directory and
// returns the path written.
func (s *Shell) SavePage() (string, error) {
	s.lock()
	defer s.unlock()

	active := s.tabs.Active()
	if active == nil {
		return "", ErrNoActiveTab
	}

	html, err := active.View.Content()
	if err != nil {
		return "", s.failf(err, "Failed to read page")
	}

	path, err := s.downloads.SaveBytes(pageFilename(active.Title), active.View.URL(), []byte(html))
	if err != nil {
		return "", s.failf(err, "Failed to save page")
	}
	s.noticef("Saved page to %s", path)
	return path, nil
}

// PageSource returns the active tab's URL and serialized DOM.
func (s *Shell) PageSource() (address, html string, err error) {
	s.lock()
	defer s.unlock()

	active := s.tabs.Active()
	if active == nil {
		return "", "", ErrNoActiveTab
	}

	html, err = active.View.Content()
	if err != nil {
		return "", "", s.failf(err, "Failed to read page")
	}
	return active.View.URL(), html, nil
}

// SetTheme switches the chrome theme and saves it.
func (s *Shell) SetTheme(theme string) error {
	s.lock()
	defer s.unlock()

	if err := s.profile.SetTheme(theme); err != nil {
		return s.failf(err, "Failed to set theme")
	}
	return nil
}

// ToggleTheme flips between the dark and light themes, saves the choice and
// returns it.
func (s *Shell) ToggleTheme() string {
	s.lock()
	defer s.unlock()

	theme := s.profile.UI.ToggleTheme()
	if err := s.profile.Save(); err != nil {
		_ = s.failf(err, "Failed to save theme")
	}
	return theme
}

// SetHomeURL changes and saves the home page.
func (s *Shell) SetHomeURL(text string) error {
	s.lock()
	defer s.unlock()

	home := navigation.ResolveAddress(text, s.searchURL())
	if home == "" {
		return fmt.Errorf("home page cannot be empty")
	}

	s.profile.Browser.SetHomeURL(home)
	if err := s.profile.Save(); err != nil {
		return s.failf(err, "Failed to save home page")
	}

	s.tabs.SetHomeURL(home)
	s.nav.SetHomeURL(home)
	s.noticef("Home page set to %s", home)
	return nil
}

func (s *Shell) searchURL() string {
	return s.profile.Browser.Snapshot().SearchURL
}

// pageFilename derives a file name for a saved page from its title.
func pageFilename(title string) string {
	name := download.Sanitize(strings.TrimSpace(title))
	if name == "" || name == "download" {
		name = "page"
	}
	return name + ".html"
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
