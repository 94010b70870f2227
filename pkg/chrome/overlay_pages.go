package chrome

import (
	"fmt"
	"slices"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

func (m *model) sourceOverlay(address, html string) *textOverlay {
	return newTextOverlay(m.theme, m.width, m.bodyHeight(), "Source of "+address, highlight(html, m.theme.palette.code))
}

// highlight colors HTML for a 256 color terminal. Markup that fails to
// tokenize is shown plain.
func highlight(source, style string) string {
	var b strings.Builder
	if err := quick.Highlight(&b, source, "html", "terminal256", style); err != nil {
		return source
	}
	return b.String()
}

func (m *model) helpOverlay() *textOverlay {
	var b strings.Builder
	for i, group := range m.keys.groups() {
		if i > 0 {
			b.WriteString("\n")
		}
		for _, binding := range group {
			h := binding.Help()
			fmt.Fprintf(&b, "%-16s %s\n", h.Key, h.Desc)
		}
	}
	b.WriteString("\n1-9              select tab\n")
	return newTextOverlay(m.theme, m.width, m.bodyHeight(), "Keys", b.String())
}

var (
	themeKey = key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "toggle theme"),
	)
	homeKey = key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "edit home page"),
	)
)

// settingsOverlay shows every configuration section and edits the theme and
// home page.
type settingsOverlay struct {
	*textOverlay
	m       *model
	input   textinput.Model
	editing bool
}

func (m *model) settingsOverlay() *settingsOverlay {
	input := textinput.New()
	input.Prompt = "Home page: "

	o := &settingsOverlay{m: m, input: input}
	o.textOverlay = newTextOverlay(m.theme, m.width, m.bodyHeight(), "Settings", "",
		textKey{binding: themeKey, run: o.toggleTheme},
		textKey{binding: homeKey, run: o.editHome},
	)
	o.render()
	return o
}

func (o *settingsOverlay) render() {
	var b strings.Builder
	for i, section := range o.m.browser.Settings() {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(o.theme.overlayTitle.Render(section.Title()) + "\n")
		b.WriteString(o.theme.overlaySubtitle.Render(section.Description()) + "\n")

		data := section.Data()
		keys := make([]string, 0, len(data))
		for k := range data {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "  %-22s %v\n", k, data[k])
		}
	}
	o.setContent(b.String())
}

func (o *settingsOverlay) toggleTheme() tea.Cmd {
	name := o.m.browser.ToggleTheme()
	o.render()
	return func() tea.Msg { return themeMsg{name: name} }
}

func (o *settingsOverlay) editHome() tea.Cmd {
	o.editing = true
	o.input.SetValue(o.m.browser.Snapshot().HomeURL)
	o.input.CursorEnd()
	return o.input.Focus()
}

func (o *settingsOverlay) Update(msg tea.Msg) (overlay, tea.Cmd) {
	if !o.editing {
		next, cmd := o.textOverlay.Update(msg)
		if next == nil {
			return nil, cmd
		}
		return o, cmd
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.Type {
		case tea.KeyEsc:
			o.editing = false
			o.input.Blur()
			return o, nil
		case tea.KeyEnter:
			o.editing = false
			o.input.Blur()
			if err := o.m.browser.SetHomeURL(o.input.Value()); err != nil {
				return o, noticeCmd(err.Error(), true)
			}
			o.render()
			return o, nil
		}
	}

	var cmd tea.Cmd
	o.input, cmd = o.input.Update(msg)
	return o, cmd
}

func (o *settingsOverlay) View() string {
	if !o.editing {
		return o.textOverlay.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		o.textOverlay.View(),
		o.theme.addressFocused.Render(o.input.View()),
	)
}
