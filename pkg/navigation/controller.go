package navigation

import (
	"github.com/entrhq/flow/pkg/engine"
	"github.com/entrhq/flow/pkg/logging"
)

// ActiveViewer exposes the view of the active tab.
type ActiveViewer interface {
	ActiveView() engine.View
}

// State is what the chrome shows for the active tab.
type State struct {
	Address      string
	CanGoBack    bool
	CanGoForward bool
}

// Controller turns navigation intents into calls on the active tab's view and
// keeps the address bar state in sync with it.
//
// Controller is not safe for concurrent use.
type Controller struct {
	tabs      ActiveViewer
	homeURL   string
	searchURL string
	state     State
	onChange  func(State)
	log       *logging.Logger
}

// NewController creates a controller over tabs.
func NewController(tabs ActiveViewer, homeURL, searchURL string, log *logging.Logger) *Controller {
	if log == nil {
		log = logging.Discard("navigation")
	}
	return &Controller{
		tabs:      tabs,
		homeURL:   homeURL,
		searchURL: searchURL,
		log:       log,
	}
}

// OnChange sets the callback run after every state change.
func (c *Controller) OnChange(fn func(State)) {
	c.onChange = fn
}

// State returns the current address bar state.
func (c *Controller) State() State {
	return c.state
}

// HomeURL returns the configured home page.
func (c *Controller) HomeURL() string {
	return c.homeURL
}

// SetHomeURL changes the home page.
func (c *Controller) SetHomeURL(url string) {
	c.homeURL = url
}

// SetSearchURL changes the search endpoint.
func (c *Controller) SetSearchURL(url string) {
	c.searchURL = url
}

// LoadFromAddressInput resolves text and loads it in the active tab. It
// returns the resolved URL, "" when text was blank.
func (c *Controller) LoadFromAddressInput(text string) string {
	target := ResolveAddress(text, c.searchURL)
	if target == "" {
		return ""
	}

	c.load(target)
	return target
}

// Back goes back in the active tab.
func (c *Controller) Back() {
	if view := c.tabs.ActiveView(); view != nil {
		if err := view.Back(); err != nil {
			c.log.Warnf("back failed: %v", err)
		}
	}
}

// Forward goes forward in the active tab.
func (c *Controller) Forward() {
	if view := c.tabs.ActiveView(); view != nil {
		if err := view.Forward(); err != nil {
			c.log.Warnf("forward failed: %v", err)
		}
	}
}

// Reload reloads the active tab.
func (c *Controller) Reload() {
	if view := c.tabs.ActiveView(); view != nil {
		if err := view.Reload(); err != nil {
			c.log.Warnf("reload failed: %v", err)
		}
	}
}

// Home resets the address to the home page and loads it.
func (c *Controller) Home() {
	c.load(c.homeURL)
}

func (c *Controller) load(target string) {
	view := c.tabs.ActiveView()
	if view == nil {
		return
	}

	c.state.Address = target
	c.notify()

	if err := view.Load(target); err != nil {
		c.log.Warnf("failed to load %s: %v", target, err)
	}
}

// ActiveChanged refreshes the state from the newly active tab.
func (c *Controller) ActiveChanged() {
	c.refresh(c.tabs.ActiveView())
}

// URLChanged handles a URL change reported by view. Events from background
// tabs are ignored. It reports whether the state was refreshed.
func (c *Controller) URLChanged(view engine.View) bool {
	return c.syncIfActive(view)
}

// LoadFinished handles a finished load reported by view. Events from
// background tabs are ignored. It reports whether the state was refreshed.
func (c *Controller) LoadFinished(view engine.View) bool {
	return c.syncIfActive(view)
}

func (c *Controller) syncIfActive(view engine.View) bool {
	active := c.tabs.ActiveView()
	if view == nil || active == nil || active.ID() != view.ID() {
		return false
	}
	c.refresh(active)
	return true
}

func (c *Controller) refresh(view engine.View) {
	if view == nil {
		c.state = State{}
	} else {
		c.state = State{
			Address:      view.URL(),
			CanGoBack:    view.CanGoBack(),
			CanGoForward: view.CanGoForward(),
		}
	}
	c.notify()
}

func (c *Controller) notify() {
	if c.onChange != nil {
		c.onChange(c.state)
	}
}
