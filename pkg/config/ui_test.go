package config

import "testing"

func TestUISection_DefaultValues(t *testing.T) {
	ui := NewUISection()

	if ui.GetTheme() != ThemeDark {
		t.Errorf("Expected dark theme by default, got %s", ui.GetTheme())
	}
	if ui.GetWebDarkMode() {
		t.Error("Expected web dark mode to be disabled by default")
	}
	if err := ui.Validate(); err != nil {
		t.Errorf("Defaults should validate: %v", err)
	}
}

func TestUISection_SetTheme(t *testing.T) {
	ui := NewUISection()

	if err := ui.SetTheme(ThemeLight); err != nil {
		t.Fatalf("SetTheme failed: %v", err)
	}
	if ui.GetTheme() != ThemeLight {
		t.Errorf("Expected light theme, got %s", ui.GetTheme())
	}

	if err := ui.SetTheme("solarized"); err == nil {
		t.Error("Expected error for unknown theme")
	}
	if ui.GetTheme() != ThemeLight {
		t.Error("Rejected theme should not change the current theme")
	}
}

func TestUISection_ToggleTheme(t *testing.T) {
	ui := NewUISection()

	if got := ui.ToggleTheme(); got != ThemeLight {
		t.Errorf("Expected light after first toggle, got %s", got)
	}
	if got := ui.ToggleTheme(); got != ThemeDark {
		t.Errorf("Expected dark after second toggle, got %s", got)
	}
}

func TestUISection_SetData(t *testing.T) {
	tests := []struct {
		name        string
		data        map[string]any
		expectError bool
		theme       string
		webDark     bool
	}{
		{
			name:    "valid data",
			data:    map[string]any{"theme": "light", "web_dark_mode": true},
			theme:   ThemeLight,
			webDark: true,
		},
		{
			name:  "unknown keys ignored",
			data:  map[string]any{"future_key": 42.0},
			theme: ThemeDark,
		},
		{
			name:        "invalid theme type",
			data:        map[string]any{"theme": 1.0},
			expectError: true,
			theme:       ThemeDark,
		},
		{
			name:        "invalid dark mode type",
			data:        map[string]any{"web_dark_mode": "yes"},
			expectError: true,
			theme:       ThemeDark,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ui := NewUISection()
			err := ui.SetData(tt.data)

			if tt.expectError && err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !tt.expectError && err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if ui.GetTheme() != tt.theme {
				t.Errorf("Expected theme %s, got %s", tt.theme, ui.GetTheme())
			}
			if ui.GetWebDarkMode() != tt.webDark {
				t.Errorf("Expected web dark mode %v, got %v", tt.webDark, ui.GetWebDarkMode())
			}
		})
	}
}

func TestUISection_ValidateRejectsUnknownTheme(t *testing.T) {
	ui := NewUISection()
	ui.SetData(map[string]any{"theme": "neon"})

	if err := ui.Validate(); err == nil {
		t.Error("Expected validation error for unknown theme")
	}

	ui.Reset()
	if err := ui.Validate(); err != nil {
		t.Errorf("Reset should restore a valid theme: %v", err)
	}
}
