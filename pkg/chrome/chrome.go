// Package chrome is the terminal user interface of the browser: a tab strip,
// an address bar, a status line and overlays for bookmarks, history,
// downloads, cookies, settings, page source and key help. Pages themselves
// render in the engine's windows.
//
// The package is split into:
// - chrome.go: Browser interface and program lifecycle
// - relay.go: non-blocking hand-off of shell events to the program
// - model.go: model state
// - update.go: message and key handling
// - view.go: rendering
// - keys.go: key bindings
// - styles.go: light and dark palettes
// - overlay*.go: modal overlays
package chrome

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/entrhq/flow/pkg/config"
	"github.com/entrhq/flow/pkg/download"
	"github.com/entrhq/flow/pkg/logging"
	"github.com/entrhq/flow/pkg/shell"
	"github.com/entrhq/flow/pkg/store"
)

// Browser is the set of shell operations the chrome drives.
type Browser interface {
	Subscribe(fn func(shell.Event))
	Snapshot() shell.Snapshot
	Settings() []config.Section

	NewTab(text string) error
	CloseCurrentTab() error
	SelectTab(index int) error
	CycleTab(delta int) error
	MoveTab(from, to int) error

	Navigate(text string) string
	Back()
	Forward()
	Reload()
	Home()
	OpenDevTools() error

	AddBookmark() error
	Bookmarks() []store.Bookmark
	OpenBookmark(index int) error
	RemoveBookmark(index int) error

	History() []store.HistoryEntry
	OpenHistory(index int) error
	ClearHistory()

	Downloads() []download.Record
	RemoveDownload(index int) error
	OpenDownloadsDir() error
	WatchDownloads()
	UnwatchDownloads()

	SaveCookies() error
	Cookies(siteOnly bool) (store.Jar, error)

	SavePage() (string, error)
	PageSource() (address, html string, err error)

	ToggleTheme() string
	SetHomeURL(text string) error
}

var _ Browser = (*shell.Shell)(nil)

// Chrome runs the terminal interface over a browser.
type Chrome struct {
	browser Browser
	log     *logging.Logger
	program *tea.Program
}

// New creates a chrome for browser.
func New(browser Browser, log *logging.Logger) *Chrome {
	if log == nil {
		log = logging.Discard("chrome")
	}
	return &Chrome{browser: browser, log: log}
}

// Run shows the interface and blocks until the user quits or ctx is done.
func (c *Chrome) Run(ctx context.Context) error {
	m := newModel(c.browser)

	c.program = tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	events := newRelay()
	go events.run(c.program.Send)
	c.browser.Subscribe(func(ev shell.Event) {
		events.push(ev)
	})
	defer func() {
		c.browser.Subscribe(nil)
		events.stop()
	}()

	c.log.Infof("chrome started")
	if _, err := c.program.Run(); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("failed to run chrome: %w", err)
	}
	c.log.Infof("chrome stopped")
	return nil
}
