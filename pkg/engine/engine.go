package engine

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/entrhq/flow/pkg/logging"
	"github.com/playwright-community/playwright-go"
)

const (
	// DefaultViewportWidth and DefaultViewportHeight size headless pages
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 800

	// DefaultTimeout is the default engine timeout in milliseconds
	DefaultTimeout = 30000.0
)

// Options configure the engine at launch.
type Options struct {
	Headless     bool
	DevToolsPort int
	DarkMode     bool

	// InitScripts run in every frame before page scripts
	InitScripts []string

	Logger *logging.Logger
}

// Engine owns the Chromium instance and its single browser context. All views
// share the context, so cookies and storage are shared between tabs.
type Engine struct {
	mu          sync.RWMutex
	pw          *playwright.Playwright
	browser     playwright.Browser
	context     playwright.BrowserContext
	views       map[playwright.Page]*PageView
	events      *queue
	nextID      int
	listener    Listener
	policy      NavigationPolicy
	opts        Options
	log         *logging.Logger
	initialized bool
}

// New creates an engine. Start must be called before creating views.
func New(opts Options) *Engine {
	log := opts.Logger
	if log == nil {
		log = logging.Discard("engine")
	}
	return &Engine{
		views:  make(map[playwright.Page]*PageView),
		events: newQueue(),
		opts:   opts,
		log:    log,
	}
}

// Start installs and runs Playwright, launches Chromium and wires the
// context-level interception. The listener and policy receive every callback.
func (e *Engine) Start(listener Listener, policy NavigationPolicy) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.initialized {
		return nil
	}

	// Discard driver output so it does not draw over the chrome
	runOpts := &playwright.RunOptions{
		Browsers: []string{"chromium"},
		Verbose:  false,
		Stdout:   io.Discard,
		Stderr:   io.Discard,
	}

	if err := playwright.Install(runOpts); err != nil {
		return fmt.Errorf("failed to install playwright: %w", err)
	}

	pw, err := playwright.Run(runOpts)
	if err != nil {
		return fmt.Errorf("failed to start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(e.opts.Headless),
		Args:     []string{fmt.Sprintf("--remote-debugging-port=%d", e.opts.DevToolsPort)},
	})
	if err != nil {
		_ = pw.Stop()
		return fmt.Errorf("failed to launch browser: %w", err)
	}

	contextOpts := playwright.BrowserNewContextOptions{
		AcceptDownloads: playwright.Bool(true),
	}
	if e.opts.Headless {
		contextOpts.Viewport = &playwright.Size{Width: DefaultViewportWidth, Height: DefaultViewportHeight}
	} else {
		contextOpts.NoViewport = playwright.Bool(true)
	}
	if e.opts.DarkMode {
		contextOpts.ColorScheme = playwright.ColorSchemeDark
	}

	context, err := browser.NewContext(contextOpts)
	if err != nil {
		browser.Close()
		_ = pw.Stop()
		return fmt.Errorf("failed to create context: %w", err)
	}
	context.SetDefaultTimeout(DefaultTimeout)

	e.pw = pw
	e.browser = browser
	e.context = context
	e.listener = listener
	e.policy = policy

	if err := e.wire(); err != nil {
		context.Close()
		browser.Close()
		_ = pw.Stop()
		return err
	}

	e.initialized = true
	e.log.Infof("engine started (headless=%v, devtools port %d)", e.opts.Headless, e.opts.DevToolsPort)
	return nil
}

// wire installs permissions, bindings, init scripts and the navigation route.
func (e *Engine) wire() error {
	// Permission requests are granted unconditionally
	err := e.context.GrantPermissions([]string{
		"geolocation", "notifications", "camera", "microphone",
		"clipboard-read", "clipboard-write",
	})
	if err != nil {
		e.log.Warnf("failed to grant permissions: %v", err)
	}

	bindings := map[string]func(*PageView, []interface{}){
		BindingSaveBlob:      e.onSaveBlob,
		BindingSaveBlobError: e.onSaveBlobError,
		bindingFullscreen:    e.onFullscreen,
	}
	for name, handle := range bindings {
		if err := e.context.ExposeBinding(name, e.binding(handle)); err != nil {
			return fmt.Errorf("failed to expose binding %s: %w", name, err)
		}
	}

	scripts := append([]string{fullscreenScript}, e.opts.InitScripts...)
	for _, script := range scripts {
		content := script
		if err := e.context.AddInitScript(playwright.Script{Content: &content}); err != nil {
			return fmt.Errorf("failed to add init script: %w", err)
		}
	}

	// Route handlers answer over the same connection, so they never run on
	// the dispatcher
	err = e.context.Route("**/*", func(route playwright.Route) {
		go e.route(route)
	})
	if err != nil {
		return fmt.Errorf("failed to install navigation route: %w", err)
	}

	e.context.OnPage(func(page playwright.Page) {
		e.events.push(func() { e.onPage(page) })
	})
	return nil
}

// NewView opens a new page in the shared context.
func (e *Engine) NewView() (View, error) {
	e.mu.RLock()
	initialized := e.initialized
	context := e.context
	e.mu.RUnlock()

	if !initialized {
		return nil, fmt.Errorf("engine not started")
	}

	page, err := context.NewPage()
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	view := e.adopt(page)
	view.mu.Lock()
	view.decided = true
	view.mu.Unlock()
	return view, nil
}

// NewInspector opens a page showing the DevTools frontend attached to target.
func (e *Engine) NewInspector(target View) (View, error) {
	pv, ok := target.(*PageView)
	if !ok {
		return nil, fmt.Errorf("cannot inspect view of type %T", target)
	}

	targetID, err := e.targetID(pv)
	if err != nil {
		return nil, err
	}

	view, err := e.NewView()
	if err != nil {
		return nil, err
	}

	if err := view.Load(InspectorURL(e.opts.DevToolsPort, targetID)); err != nil {
		_ = view.Close()
		return nil, err
	}
	return view, nil
}

// targetID asks the DevTools protocol for the page's target identifier.
func (e *Engine) targetID(pv *PageView) (string, error) {
	session, err := e.context.NewCDPSession(pv.page)
	if err != nil {
		return "", fmt.Errorf("failed to open CDP session: %w", err)
	}
	defer session.Detach()

	result, err := session.Send("Target.getTargetInfo", nil)
	if err != nil {
		return "", fmt.Errorf("failed to query target info: %w", err)
	}

	info, _ := result.(map[string]interface{})
	targetInfo, _ := info["targetInfo"].(map[string]interface{})
	id, _ := targetInfo["targetId"].(string)
	if id == "" {
		return "", fmt.Errorf("target info carried no target id")
	}
	return id, nil
}

// InspectorURL returns the DevTools frontend URL for a target.
func InspectorURL(port int, targetID string) string {
	host := fmt.Sprintf("127.0.0.1:%d", port)
	return fmt.Sprintf("http://%s/devtools/inspector.html?ws=%s/devtools/page/%s", host, host, targetID)
}

// Cookies returns the context's cookies for the given URLs.
func (e *Engine) Cookies(urls ...string) ([]Cookie, error) {
	e.mu.RLock()
	context := e.context
	e.mu.RUnlock()

	if context == nil {
		return nil, fmt.Errorf("engine not started")
	}

	raw, err := context.Cookies(urls...)
	if err != nil {
		return nil, fmt.Errorf("failed to read cookies: %w", err)
	}

	cookies := make([]Cookie, 0, len(raw))
	for _, c := range raw {
		cookies = append(cookies, Cookie{
			Name:    c.Name,
			Value:   c.Value,
			Domain:  c.Domain,
			Expires: c.Expires,
		})
	}
	return cookies, nil
}

// Shutdown closes every view and stops Playwright. Callbacks already queued
// are delivered first; none are delivered afterwards, so the caller must not
// hold a lock its listener takes.
func (e *Engine) Shutdown() error {
	e.events.close()

	e.mu.Lock()
	defer e.mu.Unlock()

	for page := range e.views {
		page.Close()
		delete(e.views, page)
	}

	if e.context != nil {
		e.context.Close()
	}
	if e.browser != nil {
		e.browser.Close()
	}

	if e.initialized && e.pw != nil {
		if err := e.pw.Stop(); err != nil {
			return fmt.Errorf("failed to stop playwright: %w", err)
		}
		e.initialized = false
	}

	e.log.Infof("engine stopped")
	return nil
}

// adopt returns the view wrapping page, creating it on first sight.
func (e *Engine) adopt(page playwright.Page) *PageView {
	e.mu.Lock()
	if view, ok := e.views[page]; ok {
		e.mu.Unlock()
		return view
	}

	e.nextID++
	view := newPageView(e, page, fmt.Sprintf("view-%d", e.nextID))
	e.views[page] = view
	e.mu.Unlock()

	view.attach()
	return view
}

func (e *Engine) lookup(page playwright.Page) (*PageView, bool) {
	if page == nil {
		return nil, false
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	view, ok := e.views[page]
	return view, ok
}

func (e *Engine) forget(page playwright.Page) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.views, page)
}

// onPage sees every page the context opens. Pages with an opener are popups
// and wait for the policy before they become tabs.
func (e *Engine) onPage(page playwright.Page) {
	view := e.adopt(page)

	opener, err := page.Opener()
	if err != nil || opener == nil {
		return
	}

	// Object-reference popups never reach the route handler
	if url := page.URL(); strings.HasPrefix(url, "blob:") {
		e.decidePopup(view, opener, url)
	}
}

// decidePopup asks the policy once per popup whether it becomes a tab.
func (e *Engine) decidePopup(view *PageView, openerPage playwright.Page, url string) bool {
	view.mu.Lock()
	if view.decided {
		accepted := view.accepted
		view.mu.Unlock()
		return accepted
	}
	view.decided = true
	view.mu.Unlock()

	opener, ok := e.lookup(openerPage)
	if !ok {
		opener = e.adopt(openerPage)
	}

	accepted := e.policy.AcceptPopup(opener, url)

	view.mu.Lock()
	view.accepted = accepted
	view.mu.Unlock()

	if !accepted {
		e.log.Debugf("popup for %s resolved without a tab", url)
		go view.Close()
		return false
	}

	e.events.push(func() { e.listener.PopupOpened(opener, view) })
	return true
}

// route intercepts every request in the context. Only navigation requests are
// subject to the policy; everything else continues untouched.
func (e *Engine) route(route playwright.Route) {
	request := route.Request()
	if !request.IsNavigationRequest() {
		_ = route.Continue()
		return
	}

	frame := request.Frame()
	page := frame.Page()
	target := request.URL()
	mainFrame := frame.ParentFrame() == nil

	view := e.adopt(page)

	if mainFrame && view.consumeForced(target) {
		_ = route.Continue()
		return
	}

	if opener, err := page.Opener(); err == nil && opener != nil && mainFrame {
		view.mu.Lock()
		pending := !view.decided
		view.mu.Unlock()

		if pending {
			if !e.decidePopup(view, opener, target) {
				_ = route.Abort("aborted")
				return
			}
			_ = route.Continue()
			return
		}
	}

	if !e.policy.AcceptNavigation(view, target, mainFrame) {
		_ = route.Abort("aborted")
		return
	}
	_ = route.Continue()
}

// binding adapts a handler to a Playwright binding. The page gets its answer
// at once; the handler runs on the event queue.
func (e *Engine) binding(handle func(*PageView, []interface{})) playwright.BindingCallFunction {
	return func(source *playwright.BindingSource, args ...interface{}) interface{} {
		if source == nil || source.Page == nil {
			return nil
		}
		view, ok := e.lookup(source.Page)
		if !ok {
			return nil
		}
		e.events.push(func() { handle(view, args) })
		return nil
	}
}

func (e *Engine) onSaveBlob(view *PageView, args []interface{}) {
	msg := BridgeMessage{Kind: BridgeBlobSaved}
	if len(args) > 0 {
		msg.DataURL, _ = args[0].(string)
	}
	if len(args) > 1 {
		msg.Filename, _ = args[1].(string)
	}
	e.listener.BridgeMessage(view, msg)
}

func (e *Engine) onSaveBlobError(view *PageView, args []interface{}) {
	msg := BridgeMessage{Kind: BridgeBlobError}
	if len(args) > 0 {
		msg.Error = fmt.Sprint(args[0])
	}
	e.listener.BridgeMessage(view, msg)
}

func (e *Engine) onFullscreen(view *PageView, args []interface{}) {
	on := false
	if len(args) > 0 {
		on, _ = args[0].(bool)
	}
	e.listener.FullScreenRequested(view, on)
}

// fullscreenScript reports element full-screen transitions to the host.
const fullscreenScript = `(() => {
  if (window.top !== window) return;
  document.addEventListener('fullscreenchange', () => {
    window.flowFullscreen(!!document.fullscreenElement);
  });
})();`
