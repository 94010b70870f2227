package tabs

import (
	"errors"
	"fmt"

	"github.com/entrhq/flow/pkg/engine"
	"github.com/entrhq/flow/pkg/logging"
)

var (
	// ErrLastTab is returned when a close would leave no tab open. The
	// registry is unchanged.
	ErrLastTab = errors.New("cannot close the last tab")

	// ErrNoSuchTab is returned for unknown handles and out-of-range indices
	ErrNoSuchTab = errors.New("no such tab")
)

// Registry tracks open tabs in display order. Tabs live in an arena keyed by
// Handle; order holds the handles left to right.
//
// Registry is not safe for concurrent use. The shell serialises all access.
type Registry struct {
	factory engine.Factory
	log     *logging.Logger
	homeURL string

	arena  map[Handle]*Tab
	order  []Handle
	active Handle
	next   Handle
}

// NewRegistry creates an empty registry. Tabs created without a URL load
// homeURL.
func NewRegistry(factory engine.Factory, homeURL string, log *logging.Logger) *Registry {
	if log == nil {
		log = logging.Discard("tabs")
	}
	return &Registry{
		factory: factory,
		log:     log,
		homeURL: homeURL,
		arena:   make(map[Handle]*Tab),
	}
}

// SetHomeURL changes the URL loaded by tabs created without one.
func (r *Registry) SetHomeURL(url string) {
	r.homeURL = url
}

// CreateTab opens a new view, loads url in it and makes it the active tab.
func (r *Registry) CreateTab(url string, opener Handle) (Handle, error) {
	view, err := r.factory.NewView()
	if err != nil {
		return None, fmt.Errorf("failed to create view: %w", err)
	}

	h := r.add(view, opener)

	if url == "" {
		url = r.homeURL
	}
	if err := view.Load(url); err != nil {
		r.log.Warnf("tab %d: failed to load %s: %v", h, url, err)
	}
	return h, nil
}

// Adopt registers a view the engine already created, such as an accepted
// popup, and makes it the active tab.
func (r *Registry) Adopt(view engine.View, opener Handle) Handle {
	if tab, ok := r.FindByView(view); ok {
		return tab.Handle
	}
	return r.add(view, opener)
}

func (r *Registry) add(view engine.View, opener Handle) Handle {
	if _, ok := r.arena[opener]; !ok {
		opener = None
	}

	r.next++
	tab := &Tab{
		Handle:       r.next,
		View:         view,
		Title:        view.Title(),
		Opener:       opener,
		SaveShortcut: DefaultSaveShortcut,
	}

	r.arena[tab.Handle] = tab
	r.order = append(r.order, tab.Handle)
	r.active = tab.Handle

	r.log.Debugf("tab %d created (view %s, opener %d)", tab.Handle, view.ID(), opener)
	return tab.Handle
}

// CloseTab closes the tab at index. Closing a page tab also closes its
// DevTools companion; closing a companion detaches it from the inspected tab.
// It returns ErrLastTab, and changes nothing, when no tab would remain.
func (r *Registry) CloseTab(index int) error {
	if index < 0 || index >= len(r.order) {
		return fmt.Errorf("close tab %d: %w", index, ErrNoSuchTab)
	}

	tab := r.arena[r.order[index]]

	doomed := []Handle{tab.Handle}
	if tab.DevTools != None {
		doomed = append(doomed, tab.DevTools)
	}
	if len(doomed) >= len(r.order) {
		return ErrLastTab
	}

	if tab.IsDevTools() {
		if inspected, ok := r.arena[tab.Inspected]; ok {
			inspected.DevTools = None
		}
	}

	activeGone := false
	next := index
	for _, h := range doomed {
		if h == r.active {
			activeGone = true
		}
		if h != tab.Handle && r.IndexOf(h) < index {
			next--
		}
		r.remove(h)
	}

	if activeGone {
		if next >= len(r.order) {
			next = len(r.order) - 1
		}
		r.active = r.order[next]
	}
	return nil
}

func (r *Registry) remove(h Handle) {
	tab, ok := r.arena[h]
	if !ok {
		return
	}

	if err := tab.View.Close(); err != nil {
		r.log.Warnf("tab %d: failed to close view: %v", h, err)
	}

	delete(r.arena, h)
	for i, oh := range r.order {
		if oh == h {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	// Popups outlive their opener; drop the dangling reference
	for _, other := range r.arena {
		if other.Opener == h {
			other.Opener = None
		}
	}

	r.log.Debugf("tab %d closed", h)
}

// Active returns the active tab, nil when the registry is empty.
func (r *Registry) Active() *Tab {
	return r.arena[r.active]
}

// ActiveView returns the view of the active tab, nil when empty.
func (r *Registry) ActiveView() engine.View {
	if tab := r.Active(); tab != nil {
		return tab.View
	}
	return nil
}

// ActiveIndex returns the position of the active tab, -1 when empty.
func (r *Registry) ActiveIndex() int {
	return r.IndexOf(r.active)
}

// SetActive makes the tab at index active.
func (r *Registry) SetActive(index int) error {
	if index < 0 || index >= len(r.order) {
		return fmt.Errorf("select tab %d: %w", index, ErrNoSuchTab)
	}
	r.active = r.order[index]
	return nil
}

// Activate makes the tab with handle h active.
func (r *Registry) Activate(h Handle) error {
	if _, ok := r.arena[h]; !ok {
		return fmt.Errorf("activate tab %d: %w", h, ErrNoSuchTab)
	}
	r.active = h
	return nil
}

// OpenDevTools shows the inspector for the tab h and returns the companion's
// handle. An existing companion is activated rather than duplicated.
func (r *Registry) OpenDevTools(h Handle) (Handle, error) {
	tab, ok := r.arena[h]
	if !ok {
		return None, fmt.Errorf("open devtools for tab %d: %w", h, ErrNoSuchTab)
	}

	if tab.IsDevTools() {
		r.active = h
		return h, nil
	}

	if tab.DevTools != None {
		r.active = tab.DevTools
		return tab.DevTools, nil
	}

	view, err := r.factory.NewInspector(tab.View)
	if err != nil {
		return None, fmt.Errorf("failed to open inspector: %w", err)
	}

	companion := r.add(view, None)
	r.arena[companion].Inspected = h
	r.arena[companion].Title = DevToolsTitle(tab.Title)
	tab.DevTools = companion
	return companion, nil
}

// SetTitle records the engine-reported title of tab h and keeps the DevTools
// companion's title in sync. Inspector views keep their derived title.
func (r *Registry) SetTitle(h Handle, title string) {
	tab, ok := r.arena[h]
	if !ok || tab.IsDevTools() {
		return
	}

	tab.Title = title
	if companion, ok := r.arena[tab.DevTools]; ok {
		companion.Title = DevToolsTitle(title)
	}
}

// IndexOf returns the position of h, -1 if it is not open.
func (r *Registry) IndexOf(h Handle) int {
	for i, oh := range r.order {
		if oh == h {
			return i
		}
	}
	return -1
}

// Lookup returns the tab with handle h.
func (r *Registry) Lookup(h Handle) (*Tab, bool) {
	tab, ok := r.arena[h]
	return tab, ok
}

// At returns the tab at index.
func (r *Registry) At(index int) (*Tab, bool) {
	if index < 0 || index >= len(r.order) {
		return nil, false
	}
	return r.arena[r.order[index]], true
}

// FindByView returns the tab wrapping view.
func (r *Registry) FindByView(view engine.View) (*Tab, bool) {
	if view == nil {
		return nil, false
	}
	for _, h := range r.order {
		if tab := r.arena[h]; tab.View.ID() == view.ID() {
			return tab, true
		}
	}
	return nil, false
}

// IsActiveView reports whether view belongs to the active tab.
func (r *Registry) IsActiveView(view engine.View) bool {
	active := r.Active()
	return active != nil && view != nil && active.View.ID() == view.ID()
}

// Tabs returns a copy of the open tabs in display order.
func (r *Registry) Tabs() []Tab {
	tabs := make([]Tab, 0, len(r.order))
	for _, h := range r.order {
		tabs = append(tabs, *r.arena[h])
	}
	return tabs
}

// Len returns the number of open tabs.
func (r *Registry) Len() int {
	return len(r.order)
}

// Move moves the tab at from to position to. The active tab stays active.
func (r *Registry) Move(from, to int) error {
	if from < 0 || from >= len(r.order) || to < 0 || to >= len(r.order) {
		return fmt.Errorf("move tab %d to %d: %w", from, to, ErrNoSuchTab)
	}
	if from == to {
		return nil
	}

	h := r.order[from]
	r.order = append(r.order[:from], r.order[from+1:]...)
	r.order = append(r.order[:to], append([]Handle{h}, r.order[to:]...)...)
	return nil
}

// CloseAll closes every tab, including the last. Used at shutdown.
func (r *Registry) CloseAll() {
	for len(r.order) > 0 {
		r.remove(r.order[0])
	}
	r.active = None
}
