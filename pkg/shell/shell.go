// Package shell is the browser application behind the chrome. It owns the
// tab registry, the navigation controller, the download interceptor and the
// persistence stores, receives every engine callback, and exposes the
// operations the chrome binds to keys.
//
// All shell state is guarded by one mutex, which plays the part of a UI
// thread: engine callbacks and chrome operations never interleave. The
// navigation policy is the exception; it runs on request goroutines and only
// touches state that is safe without the lock.
package shell

import (
	"fmt"
	"sync"

	"github.com/entrhq/flow/pkg/config"
	"github.com/entrhq/flow/pkg/download"
	"github.com/entrhq/flow/pkg/engine"
	"github.com/entrhq/flow/pkg/logging"
	"github.com/entrhq/flow/pkg/navigation"
	"github.com/entrhq/flow/pkg/profile"
	"github.com/entrhq/flow/pkg/store"
	"github.com/entrhq/flow/pkg/tabs"
)

// Shell is the running browser.
type Shell struct {
	mu sync.Mutex

	profile   *profile.Context
	log       *logging.Logger
	tabs      *tabs.Registry
	nav       *navigation.Controller
	downloads *download.Interceptor
	bookmarks *store.Bookmarks
	history   *store.History
	cookies   store.CookieStore
	session   store.SessionFile

	fullScreen bool
	closed     bool
	pending    []Event

	// origins maps a popup's view ID to the view that opened it. Object URLs
	// navigated to in a popup belong to the opener.
	origins sync.Map

	notifyMu sync.RWMutex
	notify   func(Event)
}

var (
	_ engine.Listener         = (*Shell)(nil)
	_ engine.NavigationPolicy = (*Shell)(nil)
)

// New builds a shell over the profile. Views are created through factory,
// which for a real run is the started engine.
func New(ctx *profile.Context, factory engine.Factory) (*Shell, error) {
	settings := ctx.Browser.Snapshot()
	log := ctx.Logger.With("shell")

	interceptor, err := download.NewInterceptor(settings.DownloadsDir, settings.DownloadExtensions, ctx.Logger.With("download"))
	if err != nil {
		return nil, fmt.Errorf("failed to set up downloads: %w", err)
	}

	bookmarkStore := store.BookmarkStore{Dir: ctx.Paths.Bookmarks}
	bookmarks, err := store.OpenBookmarks(bookmarkStore)
	if err != nil {
		log.Warnf("failed to load bookmarks, starting empty: %v", err)
		bookmarks = store.EmptyBookmarks(bookmarkStore)
	}

	registry := tabs.NewRegistry(factory, settings.HomeURL, ctx.Logger.With("tabs"))

	s := &Shell{
		profile:   ctx,
		log:       log,
		tabs:      registry,
		nav:       navigation.NewController(registry, settings.HomeURL, settings.SearchURL, ctx.Logger.With("navigation")),
		downloads: interceptor,
		bookmarks: bookmarks,
		history:   store.NewHistory(),
		cookies:   store.CookieStore{Path: ctx.Paths.Cookies},
		session:   store.SessionFile{Path: ctx.Paths.Session},
	}

	s.nav.OnChange(func(state navigation.State) {
		s.emit(StateChanged{State: state})
	})

	log.Infof("shell ready (home %s, downloads %s)", settings.HomeURL, interceptor.Dir())
	return s, nil
}

// Subscribe sets the function that receives events. It is called without the
// shell lock held, possibly from engine or download goroutines.
func (s *Shell) Subscribe(fn func(Event)) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	s.notify = fn
}

func (s *Shell) lock() {
	s.mu.Lock()
}

// unlock releases the lock and then delivers the events raised while it was
// held.
func (s *Shell) unlock() {
	events := s.pending
	s.pending = nil
	s.mu.Unlock()

	for _, ev := range events {
		s.deliver(ev)
	}
}

// emit queues ev for delivery on unlock. Must be called with the lock held.
func (s *Shell) emit(ev Event) {
	s.pending = append(s.pending, ev)
}

func (s *Shell) deliver(ev Event) {
	s.notifyMu.RLock()
	fn := s.notify
	s.notifyMu.RUnlock()

	if fn != nil {
		fn(ev)
	}
}

// noticef queues a status line message. Must be called with the lock held.
func (s *Shell) noticef(format string, args ...any) {
	s.emit(Notice{Text: fmt.Sprintf(format, args...)})
}

// failf logs err and queues it as an error notice. Must be called with the
// lock held. It returns err unchanged.
func (s *Shell) failf(err error, format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	s.log.Errorf("%s: %v", text, err)
	s.emit(Notice{Text: fmt.Sprintf("%s: %v", text, err), Error: true})
	return err
}

// TabInfo describes one tab for display.
type TabInfo struct {
	Handle   tabs.Handle
	Title    string
	URL      string
	DevTools bool
	Active   bool
}

// Snapshot is a consistent copy of everything the chrome draws.
type Snapshot struct {
	Tabs         []TabInfo
	Active       int
	State        navigation.State
	FullScreen   bool
	Theme        string
	HomeURL      string
	SearchURL    string
	DownloadsDir string
}

// Snapshot returns the current state for display.
func (s *Shell) Snapshot() Snapshot {
	s.lock()
	defer s.unlock()

	active := s.tabs.ActiveIndex()
	open := s.tabs.Tabs()
	infos := make([]TabInfo, 0, len(open))
	for i, tab := range open {
		infos = append(infos, TabInfo{
			Handle:   tab.Handle,
			Title:    tab.Title,
			URL:      tab.View.URL(),
			DevTools: tab.IsDevTools(),
			Active:   i == active,
		})
	}

	settings := s.profile.Browser.Snapshot()
	return Snapshot{
		Tabs:         infos,
		Active:       active,
		State:        s.nav.State(),
		FullScreen:   s.fullScreen,
		Theme:        s.profile.Theme(),
		HomeURL:      s.nav.HomeURL(),
		SearchURL:    settings.SearchURL,
		DownloadsDir: s.downloads.Dir(),
	}
}

// Settings returns the configuration sections in display order.
func (s *Shell) Settings() []config.Section {
	return s.profile.Config.GetSections()
}
