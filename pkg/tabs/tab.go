package tabs

import "github.com/entrhq/flow/pkg/engine"

// Handle identifies a tab for the lifetime of a run. Handles are never reused;
// the zero Handle means "no tab".
type Handle int

// None is the zero Handle.
const None Handle = 0

// DefaultSaveShortcut is bound on every tab to save the page's HTML.
const DefaultSaveShortcut = "ctrl+s"

// devToolsTitlePrefix is prepended to the inspected tab's title.
const devToolsTitlePrefix = "Inspect: "

// Tab is one open tab. A tab and its DevTools companion reference each other
// by handle: DevTools on the inspected tab, Inspected on the companion.
type Tab struct {
	Handle Handle
	View   engine.View
	Title  string

	// DevTools is the companion inspecting this tab, None if closed
	DevTools Handle

	// Inspected is the tab this DevTools tab inspects, None for page tabs
	Inspected Handle

	// Opener is the tab whose page opened this one as a popup
	Opener Handle

	SaveShortcut string
}

// IsDevTools reports whether the tab hosts an inspector.
func (t *Tab) IsDevTools() bool {
	return t.Inspected != None
}

// DevToolsTitle returns the companion title for an inspected page title.
func DevToolsTitle(title string) string {
	return devToolsTitlePrefix + title
}
