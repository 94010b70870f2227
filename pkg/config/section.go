package config

// Section is a named group of settings persisted under its ID.
type Section interface {
	// ID returns the key the section is stored under
	ID() string

	// Title returns a human readable name for settings screens
	Title() string

	// Description explains what the section controls
	Description() string

	// Data returns the current settings as a plain map
	Data() map[string]any

	// SetData applies settings loaded from the store
	SetData(data map[string]any) error

	// Validate reports whether the current settings are usable
	Validate() error

	// Reset restores default settings
	Reset()
}
