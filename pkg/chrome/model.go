package chrome

import (
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/entrhq/flow/pkg/shell"
)

const (
	// noticeTimeout is how long a status line notice stays up
	noticeTimeout = 4 * time.Second

	// chromeHeight is the rows taken by the tab strip, address bar and status line
	chromeHeight = 5
)

// model is the chrome's bubbletea model.
type model struct {
	browser Browser
	keys    keyMap
	theme   theme

	snap    shell.Snapshot
	address textinput.Model
	editing bool
	overlay overlay

	notice    *shell.Notice
	noticeSeq int

	width  int
	height int

	// copyText writes to the system clipboard
	copyText func(string) error
}

func newModel(browser Browser) *model {
	address := textinput.New()
	address.Prompt = ""
	address.Placeholder = "Search or enter address"

	m := &model{
		browser:  browser,
		keys:     defaultKeyMap(),
		address:  address,
		copyText: clipboard.WriteAll,
	}
	m.refresh()
	return m
}

// noticeExpiredMsg clears the notice it was scheduled for.
type noticeExpiredMsg struct {
	seq int
}

// pageSourceMsg carries the active page's markup for the source overlay.
type pageSourceMsg struct {
	address string
	html    string
	err     error
}

// themeMsg switches the chrome to the named theme.
type themeMsg struct {
	name string
}

func (m *model) Init() tea.Cmd {
	return nil
}

// refresh reloads the snapshot from the browser. The address text follows the
// active tab unless the user is editing it.
func (m *model) refresh() {
	m.snap = m.browser.Snapshot()
	if m.theme.name != m.snap.Theme {
		m.theme = newTheme(m.snap.Theme)
	}
	if !m.editing {
		m.address.SetValue(m.snap.State.Address)
	}
}

func (m *model) showNotice(n shell.Notice) tea.Cmd {
	m.noticeSeq++
	m.notice = &n

	seq := m.noticeSeq
	return tea.Tick(noticeTimeout, func(time.Time) tea.Msg {
		return noticeExpiredMsg{seq: seq}
	})
}

func (m *model) bodyHeight() int {
	if m.snap.FullScreen {
		return max(m.height-1, 0)
	}
	return max(m.height-chromeHeight, 0)
}

func (m *model) openOverlay(o overlay) {
	if m.overlay != nil {
		m.closeOverlay()
	}
	m.overlay = o
}

func (m *model) closeOverlay() {
	if c, ok := m.overlay.(interface{ close() }); ok {
		c.close()
	}
	m.overlay = nil
}

func noticeCmd(text string, isError bool) tea.Cmd {
	return func() tea.Msg {
		return shell.Notice{Text: text, Error: isError}
	}
}
