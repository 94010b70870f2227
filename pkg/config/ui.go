package config

import (
	"fmt"
	"sync"
)

const (
	// SectionIDUI is the identifier for the UI settings section
	SectionIDUI = "ui"

	// ThemeDark and ThemeLight are the supported chrome themes
	ThemeDark  = "dark"
	ThemeLight = "light"

	defaultTheme       = ThemeDark
	defaultWebDarkMode = false
)

// UISection manages chrome appearance settings.
type UISection struct {
	Theme       string `json:"theme"`
	WebDarkMode bool   `json:"web_dark_mode"`
	mu          sync.RWMutex
}

// NewUISection creates a new UI section with default settings.
func NewUISection() *UISection {
	return &UISection{
		Theme:       defaultTheme,
		WebDarkMode: defaultWebDarkMode,
	}
}

// ID returns the section identifier.
func (s *UISection) ID() string {
	return SectionIDUI
}

// Title returns the section title.
func (s *UISection) Title() string {
	return "UI Settings"
}

// Description returns the section description.
func (s *UISection) Description() string {
	return "Configure the chrome theme and whether pages are asked to render in dark mode."
}

// Data returns the current configuration data.
func (s *UISection) Data() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]any{
		"theme":         s.Theme,
		"web_dark_mode": s.WebDarkMode,
	}
}

// SetData updates the configuration from the provided data.
func (s *UISection) SetData(data map[string]any) error {
	if data == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range data {
		switch key {
		case "theme":
			theme, ok := value.(string)
			if !ok {
				return fmt.Errorf("invalid value type for theme: expected string, got %T", value)
			}
			s.Theme = theme

		case "web_dark_mode":
			enabled, ok := value.(bool)
			if !ok {
				return fmt.Errorf("invalid value type for web_dark_mode: expected bool, got %T", value)
			}
			s.WebDarkMode = enabled

		default:
			// Ignore unknown keys for forward compatibility
			continue
		}
	}

	return nil
}

// Validate validates the current configuration.
func (s *UISection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.Theme != ThemeDark && s.Theme != ThemeLight {
		return fmt.Errorf("theme must be %q or %q, got %q", ThemeDark, ThemeLight, s.Theme)
	}
	return nil
}

// Reset resets the section to default configuration.
func (s *UISection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Theme = defaultTheme
	s.WebDarkMode = defaultWebDarkMode
}

// GetTheme returns the current theme name.
func (s *UISection) GetTheme() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Theme
}

// SetTheme switches the chrome theme. Unknown names are rejected.
func (s *UISection) SetTheme(theme string) error {
	if theme != ThemeDark && theme != ThemeLight {
		return fmt.Errorf("unknown theme %q", theme)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.Theme = theme
	return nil
}

// ToggleTheme flips between dark and light and returns the new theme.
func (s *UISection) ToggleTheme() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Theme == ThemeDark {
		s.Theme = ThemeLight
	} else {
		s.Theme = ThemeDark
	}
	return s.Theme
}

// GetWebDarkMode reports whether pages should be asked for a dark color scheme.
func (s *UISection) GetWebDarkMode() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.WebDarkMode
}
