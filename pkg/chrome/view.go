package chrome

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/entrhq/flow/pkg/shell"
)

// maxTabLabel is the widest a tab label is drawn, in cells
const maxTabLabel = 24

func (m *model) View() string {
	if m.width == 0 {
		return "Starting..."
	}

	if m.snap.FullScreen {
		return lipgloss.JoinVertical(lipgloss.Left,
			m.buildBody(),
			m.buildStatusLine(),
		)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.buildTabStrip(),
		m.buildAddressBar(),
		m.buildBody(),
		m.buildStatusLine(),
	)
}

func (m *model) buildTabStrip() string {
	labels := make([]string, 0, len(m.snap.Tabs))
	for i, tab := range m.snap.Tabs {
		label := fmt.Sprintf("%d %s", i+1, tabLabel(tab))
		if tab.Active {
			labels = append(labels, m.theme.activeTab.Render(label))
		} else {
			labels = append(labels, m.theme.tab.Render(label))
		}
	}
	strip := lipgloss.JoinHorizontal(lipgloss.Top, labels...)
	return lipgloss.NewStyle().MaxWidth(m.width).Render(strip)
}

func tabLabel(tab shell.TabInfo) string {
	label := tab.Title
	if strings.TrimSpace(label) == "" {
		label = tab.URL
	}
	if label == "" {
		label = "New Tab"
	}
	if tab.DevTools && !strings.HasPrefix(label, "Inspect") {
		label = "Inspect: " + label
	}
	return truncate(label, maxTabLabel)
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-1]) + "…"
}

func (m *model) buildAddressBar() string {
	style := m.theme.address
	if m.editing {
		style = m.theme.addressFocused
	}
	return style.Width(max(m.width-2, 1)).Render(m.address.View())
}

func (m *model) buildBody() string {
	height := m.bodyHeight()
	if m.overlay != nil {
		return lipgloss.Place(m.width, height, lipgloss.Center, lipgloss.Center, m.overlay.View())
	}

	hint := m.theme.hint.Render("Pages open in the browser window. Press ? for keys.")
	if len(m.snap.Tabs) > 0 && m.snap.Active >= 0 && m.snap.Active < len(m.snap.Tabs) {
		tab := m.snap.Tabs[m.snap.Active]
		hint = lipgloss.JoinVertical(lipgloss.Center,
			m.theme.overlayTitle.Render(tabLabel(tab)),
			m.theme.overlaySubtitle.Render(tab.URL),
			"",
			hint,
		)
	}
	return lipgloss.Place(m.width, height, lipgloss.Center, lipgloss.Center, hint)
}

func (m *model) buildStatusLine() string {
	back := m.theme.disabled.Render("◀")
	if m.snap.State.CanGoBack {
		back = m.theme.enabled.Render("◀")
	}
	forward := m.theme.disabled.Render("▶")
	if m.snap.State.CanGoForward {
		forward = m.theme.enabled.Render("▶")
	}

	parts := []string{back + " " + forward}
	if n := len(m.snap.Tabs); n > 0 {
		parts = append(parts, fmt.Sprintf("tab %d/%d", m.snap.Active+1, n))
	}
	if m.snap.FullScreen {
		parts = append(parts, "full screen")
	}

	switch {
	case m.notice != nil && m.notice.Error:
		parts = append(parts, m.theme.errorNotice.Render(m.notice.Text))
	case m.notice != nil:
		parts = append(parts, m.theme.notice.Render(m.notice.Text))
	default:
		parts = append(parts, "? help")
	}

	return m.theme.status.MaxWidth(m.width).Render(strings.Join(parts, "  │  "))
}
