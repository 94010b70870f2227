package chrome

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/entrhq/flow/pkg/shell"
)

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.address.Width = max(msg.Width-6, 1)
		if m.overlay != nil {
			m.overlay.resize(m.width, m.bodyHeight())
		}
		return m, nil

	case shell.TabsChanged:
		m.refresh()
		return m, nil

	case shell.StateChanged:
		m.snap.State = msg.State
		if !m.editing {
			m.address.SetValue(msg.State.Address)
		}
		return m, nil

	case shell.DownloadsChanged:
		if o, ok := m.overlay.(*listOverlay); ok {
			o.reload()
		}
		return m, nil

	case shell.FullScreenChanged:
		m.snap.FullScreen = msg.On
		return m, nil

	case shell.Notice:
		return m, m.showNotice(msg)

	case noticeExpiredMsg:
		if msg.seq == m.noticeSeq {
			m.notice = nil
		}
		return m, nil

	case pageSourceMsg:
		if msg.err == nil {
			m.openOverlay(m.sourceOverlay(msg.address, msg.html))
		}
		return m, nil

	case themeMsg:
		m.theme = newTheme(msg.name)
		m.snap.Theme = m.theme.name
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.editing {
		var cmd tea.Cmd
		m.address, cmd = m.address.Update(msg)
		return m, cmd
	}
	if m.overlay != nil {
		return m.updateOverlay(msg)
	}
	return m, nil
}

func (m *model) updateOverlay(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.overlay.Update(msg)
	if next == nil {
		m.closeOverlay()
	} else {
		m.overlay = next
	}
	return m, cmd
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	if m.overlay != nil {
		return m.updateOverlay(msg)
	}
	if m.editing {
		return m.handleAddressKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Address):
		return m, m.editAddress(m.snap.State.Address)
	case key.Matches(msg, m.keys.Open):
		return m, m.editAddress("")

	case key.Matches(msg, m.keys.Back):
		m.browser.Back()
	case key.Matches(msg, m.keys.Forward):
		m.browser.Forward()
	case key.Matches(msg, m.keys.Reload):
		m.browser.Reload()
	case key.Matches(msg, m.keys.Home):
		m.browser.Home()

	case key.Matches(msg, m.keys.NewTab):
		_ = m.browser.NewTab("")
	case key.Matches(msg, m.keys.CloseTab):
		_ = m.browser.CloseCurrentTab()
	case key.Matches(msg, m.keys.NextTab):
		_ = m.browser.CycleTab(1)
	case key.Matches(msg, m.keys.PrevTab):
		_ = m.browser.CycleTab(-1)
	case key.Matches(msg, m.keys.MoveLeft):
		m.moveActive(-1)
	case key.Matches(msg, m.keys.MoveRight):
		m.moveActive(1)
	case key.Matches(msg, m.keys.DevTools):
		_ = m.browser.OpenDevTools()

	case key.Matches(msg, m.keys.AddBookmark):
		_ = m.browser.AddBookmark()
	case key.Matches(msg, m.keys.Bookmarks):
		m.openOverlay(m.bookmarksOverlay())
	case key.Matches(msg, m.keys.History):
		m.openOverlay(m.historyOverlay())
	case key.Matches(msg, m.keys.Downloads):
		m.openOverlay(m.downloadsOverlay())
	case key.Matches(msg, m.keys.Cookies):
		m.openOverlay(m.cookiesOverlay())
	case key.Matches(msg, m.keys.Settings):
		m.openOverlay(m.settingsOverlay())
	case key.Matches(msg, m.keys.Help):
		m.openOverlay(m.helpOverlay())

	case key.Matches(msg, m.keys.Source):
		return m, m.loadSource()
	case key.Matches(msg, m.keys.SavePage):
		return m, m.savePage()
	case key.Matches(msg, m.keys.CopyURL):
		return m, m.copyAddress()
	case key.Matches(msg, m.keys.Theme):
		m.theme = newTheme(m.browser.ToggleTheme())
		m.snap.Theme = m.theme.name

	default:
		if index, ok := tabDigit(msg); ok {
			if index == 8 {
				index = len(m.snap.Tabs) - 1
			}
			_ = m.browser.SelectTab(index)
		}
	}
	return m, nil
}

func (m *model) handleAddressKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		text := m.address.Value()
		m.stopEditing()
		if text == "" {
			return m, nil
		}
		if len(m.snap.Tabs) == 0 {
			_ = m.browser.NewTab(text)
			return m, nil
		}
		m.browser.Navigate(text)
		return m, nil
	case tea.KeyEsc:
		m.stopEditing()
		return m, nil
	}

	var cmd tea.Cmd
	m.address, cmd = m.address.Update(msg)
	return m, cmd
}

func (m *model) editAddress(text string) tea.Cmd {
	m.editing = true
	m.address.SetValue(text)
	m.address.CursorEnd()
	return m.address.Focus()
}

func (m *model) stopEditing() {
	m.editing = false
	m.address.Blur()
	m.address.SetValue(m.snap.State.Address)
}

func (m *model) moveActive(delta int) {
	from := m.snap.Active
	to := from + delta
	if from < 0 || to < 0 || to >= len(m.snap.Tabs) {
		return
	}
	_ = m.browser.MoveTab(from, to)
}

// loadSource reads the page off the update loop; the engine round trip can
// take a while.
func (m *model) loadSource() tea.Cmd {
	browser := m.browser
	return func() tea.Msg {
		address, html, err := browser.PageSource()
		return pageSourceMsg{address: address, html: html, err: err}
	}
}

func (m *model) savePage() tea.Cmd {
	browser := m.browser
	return func() tea.Msg {
		// the shell reports the outcome as a notice
		_, _ = browser.SavePage()
		return nil
	}
}

func (m *model) copyAddress() tea.Cmd {
	address := m.snap.State.Address
	if address == "" {
		return nil
	}
	if err := m.copyText(address); err != nil {
		return m.showNotice(shell.Notice{Text: fmt.Sprintf("Failed to copy address: %v", err), Error: true})
	}
	return m.showNotice(shell.Notice{Text: "Copied " + address})
}

// tabDigit maps the keys 1-9 to tab indexes 0-8.
func tabDigit(msg tea.KeyMsg) (int, bool) {
	if msg.Type != tea.KeyRunes || len(msg.Runes) != 1 {
		return 0, false
	}
	r := msg.Runes[0]
	if r < '1' || r > '9' {
		return 0, false
	}
	return int(r - '1'), true
}
