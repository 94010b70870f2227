package chrome

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/entrhq/flow/pkg/config"
)

// palette is the set of colors a theme is built from.
type palette struct {
	accent    lipgloss.Color // active tab, borders, titles
	secondary lipgloss.Color // inactive tabs
	success   lipgloss.Color // notices
	danger    lipgloss.Color // errors
	muted     lipgloss.Color // secondary text, disabled buttons
	text      lipgloss.Color
	surface   lipgloss.Color // active tab background

	// code is the chroma style used for page source
	code string
}

var (
	darkPalette = palette{
		accent:    lipgloss.Color("#FFB3BA"),
		secondary: lipgloss.Color("#FFCCCB"),
		success:   lipgloss.Color("#A8E6CF"),
		danger:    lipgloss.Color("#FF6B6B"),
		muted:     lipgloss.Color("#6B7280"),
		text:      lipgloss.Color("#F9FAFB"),
		surface:   lipgloss.Color("#374151"),
		code:      "monokai",
	}

	lightPalette = palette{
		accent:    lipgloss.Color("#C2185B"),
		secondary: lipgloss.Color("#8E5A62"),
		success:   lipgloss.Color("#2E7D32"),
		danger:    lipgloss.Color("#C62828"),
		muted:     lipgloss.Color("#9CA3AF"),
		text:      lipgloss.Color("#111827"),
		surface:   lipgloss.Color("#F3E5E8"),
		code:      "github",
	}
)

// theme holds the styles the chrome is drawn with.
type theme struct {
	name    string
	palette palette

	tab            lipgloss.Style
	activeTab      lipgloss.Style
	address        lipgloss.Style
	addressFocused lipgloss.Style
	status         lipgloss.Style
	enabled        lipgloss.Style
	disabled       lipgloss.Style
	notice         lipgloss.Style
	errorNotice    lipgloss.Style
	hint           lipgloss.Style

	overlayBox      lipgloss.Style
	overlayTitle    lipgloss.Style
	overlaySubtitle lipgloss.Style
	overlayHelp     lipgloss.Style
}

func newTheme(name string) theme {
	p := darkPalette
	if name == config.ThemeLight {
		p = lightPalette
	} else {
		name = config.ThemeDark
	}

	return theme{
		name:    name,
		palette: p,

		tab: lipgloss.NewStyle().
			Foreground(p.secondary).
			Padding(0, 1),
		activeTab: lipgloss.NewStyle().
			Foreground(p.accent).
			Background(p.surface).
			Bold(true).
			Padding(0, 1),
		address: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.muted).
			Foreground(p.text).
			Padding(0, 1),
		addressFocused: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.accent).
			Foreground(p.text).
			Padding(0, 1),
		status: lipgloss.NewStyle().
			Foreground(p.muted).
			Padding(0, 1),
		enabled: lipgloss.NewStyle().
			Foreground(p.accent).
			Bold(true),
		disabled: lipgloss.NewStyle().
			Foreground(p.muted),
		notice: lipgloss.NewStyle().
			Foreground(p.success),
		errorNotice: lipgloss.NewStyle().
			Foreground(p.danger).
			Bold(true),
		hint: lipgloss.NewStyle().
			Foreground(p.muted).
			Italic(true),

		overlayBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.accent).
			Padding(1, 2),
		overlayTitle: lipgloss.NewStyle().
			Foreground(p.accent).
			Bold(true),
		overlaySubtitle: lipgloss.NewStyle().
			Foreground(p.muted),
		overlayHelp: lipgloss.NewStyle().
			Foreground(p.muted).
			Italic(true),
	}
}
