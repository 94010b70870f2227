package chrome

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// overlay is a modal panel drawn over the page area. Update returns nil
// when the overlay closes itself.
type overlay interface {
	Update(msg tea.Msg) (overlay, tea.Cmd)
	View() string
	resize(width, height int)
}

var closeKey = key.NewBinding(
	key.WithKeys("esc", "q"),
	key.WithHelp("esc/q", "close"),
)

// entry is a two-line list row.
type entry struct {
	title string
	desc  string
}

func (e entry) Title() string       { return e.title }
func (e entry) Description() string { return e.desc }
func (e entry) FilterValue() string { return e.title }

// listAction runs against the selected row. It reports whether the overlay
// should close; otherwise the rows are reloaded.
type listAction struct {
	binding key.Binding
	run     func(index int) (done bool, cmd tea.Cmd)

	// any runs the action on an empty list too
	any bool
}

// listOverlay shows rows loaded from the browser with per-key actions.
type listOverlay struct {
	list    list.Model
	theme   theme
	load    func() (title string, rows []entry)
	actions []listAction
	onClose func()
}

func newListOverlay(th theme, width, height int, load func() (string, []entry), actions ...listAction) *listOverlay {
	d := list.NewDefaultDelegate()
	d.Styles.SelectedTitle = d.Styles.SelectedTitle.
		Foreground(th.palette.accent).
		BorderForeground(th.palette.accent)
	d.Styles.SelectedDesc = d.Styles.SelectedDesc.
		Foreground(th.palette.muted).
		BorderForeground(th.palette.accent)

	l := list.New(nil, d, 0, 0)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(false)
	l.KeyMap.Quit.SetEnabled(false)
	l.KeyMap.ForceQuit.SetEnabled(false)
	l.Styles.Title = th.overlayTitle.Padding(0, 1)
	l.AdditionalShortHelpKeys = func() []key.Binding {
		keys := make([]key.Binding, 0, len(actions)+1)
		for _, a := range actions {
			keys = append(keys, a.binding)
		}
		return append(keys, closeKey)
	}

	o := &listOverlay{
		list:    l,
		theme:   th,
		load:    load,
		actions: actions,
	}
	o.resize(width, height)
	o.reload()
	return o
}

// reload fetches the rows again, keeping the selection where possible.
func (o *listOverlay) reload() {
	title, rows := o.load()
	items := make([]list.Item, len(rows))
	for i, row := range rows {
		items[i] = row
	}

	index := o.list.Index()
	o.list.Title = title
	o.list.SetItems(items)
	if index >= len(items) {
		index = len(items) - 1
	}
	if index >= 0 {
		o.list.Select(index)
	}
}

func (o *listOverlay) Update(msg tea.Msg) (overlay, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if key.Matches(msg, closeKey) {
			return nil, nil
		}
		for _, a := range o.actions {
			if !key.Matches(msg, a.binding) {
				continue
			}
			if len(o.list.Items()) == 0 && !a.any {
				return o, nil
			}
			done, cmd := a.run(o.list.Index())
			if done {
				return nil, cmd
			}
			o.reload()
			return o, cmd
		}
	}

	var cmd tea.Cmd
	o.list, cmd = o.list.Update(msg)
	return o, cmd
}

func (o *listOverlay) View() string {
	return o.theme.overlayBox.Render(o.list.View())
}

func (o *listOverlay) resize(width, height int) {
	// border and padding of overlayBox
	o.list.SetSize(max(width-8, 10), max(height-4, 3))
}

func (o *listOverlay) close() {
	if o.onClose != nil {
		o.onClose()
	}
}

// textOverlay shows scrollable text with a title and a help line.
type textOverlay struct {
	viewport viewport.Model
	theme    theme
	title    string
	help     string
	content  string
	keys     []textKey
}

// textKey is an extra key handled by a text overlay.
type textKey struct {
	binding key.Binding
	run     func() tea.Cmd
}

func newTextOverlay(th theme, width, height int, title, content string, keys ...textKey) *textOverlay {
	help := closeKey.Help().Key + " " + closeKey.Help().Desc + " • ↑/↓ scroll"
	for _, k := range keys {
		help += " • " + k.binding.Help().Key + " " + k.binding.Help().Desc
	}

	o := &textOverlay{
		viewport: viewport.New(0, 0),
		theme:    th,
		title:    title,
		help:     help,
		keys:     keys,
	}
	o.resize(width, height)
	o.setContent(content)
	return o
}

func (o *textOverlay) setContent(content string) {
	o.content = content
	o.viewport.SetContent(content)
}

func (o *textOverlay) Update(msg tea.Msg) (overlay, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if key.Matches(msg, closeKey) {
			return nil, nil
		}
		for _, k := range o.keys {
			if key.Matches(msg, k.binding) {
				return o, k.run()
			}
		}
	}

	var cmd tea.Cmd
	o.viewport, cmd = o.viewport.Update(msg)
	return o, cmd
}

func (o *textOverlay) View() string {
	return o.theme.overlayBox.Render(lipgloss.JoinVertical(
		lipgloss.Left,
		o.theme.overlayTitle.Render(o.title),
		"",
		o.viewport.View(),
		"",
		o.theme.overlayHelp.Render(o.help),
	))
}

func (o *textOverlay) resize(width, height int) {
	// border, padding, title and help rows
	o.viewport.Width = max(width-8, 10)
	o.viewport.Height = max(height-10, 3)
}
