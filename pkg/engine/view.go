package engine

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/playwright-community/playwright-go"
)

// PageView is a View backed by one Playwright page.
type PageView struct {
	engine  *Engine
	page    playwright.Page
	id      string
	history *history

	mu       sync.Mutex
	title    string
	forced   map[string]bool
	decided  bool
	accepted bool
	closed   bool
}

func newPageView(e *Engine, page playwright.Page, id string) *PageView {
	return &PageView{
		engine:  e,
		page:    page,
		id:      id,
		history: newHistory(),
		forced:  make(map[string]bool),
	}
}

// attach subscribes to page events and forwards them to the listener through
// the engine's event queue.
func (v *PageView) attach() {
	events := v.engine.events

	v.page.OnFrameNavigated(func(frame playwright.Frame) {
		if frame.ParentFrame() != nil {
			return
		}
		url := frame.URL()
		events.push(func() { v.onCommitted(url) })
	})

	v.page.OnLoad(func(playwright.Page) {
		events.push(func() {
			v.refreshTitle()
			v.engine.listener.LoadFinished(v, true)
		})
	})

	v.page.OnDownload(func(d playwright.Download) {
		events.push(func() {
			v.engine.listener.DownloadRequested(v, &pageDownload{d: d})
		})
	})

	v.page.OnClose(func(playwright.Page) {
		v.mu.Lock()
		v.closed = true
		v.mu.Unlock()

		v.engine.forget(v.page)
		events.push(func() { v.engine.listener.ViewClosed(v) })
	})
}

// onCommitted handles a main-frame commit. Object-reference URLs reach here
// without passing the route handler, so the policy is consulted again and a
// rejected commit is undone.
func (v *PageView) onCommitted(url string) {
	v.history.commit(url)

	if strings.HasPrefix(url, "blob:") && !v.engine.policy.AcceptNavigation(v, url, true) {
		v.history.dropCurrent()
		v.history.expect(dirReload)
		go func() {
			if _, err := v.page.GoBack(); err != nil {
				v.engine.log.Debugf("%s: failed to undo object-reference navigation: %v", v.id, err)
			}
		}()
		return
	}

	v.engine.listener.URLChanged(v, url)
	v.refreshTitle()
}

func (v *PageView) refreshTitle() {
	title, err := v.page.Title()
	if err != nil {
		return
	}

	v.mu.Lock()
	changed := title != v.title
	v.title = title
	v.mu.Unlock()

	if changed {
		v.engine.listener.TitleChanged(v, title)
	}
}

// ID returns the view identifier.
func (v *PageView) ID() string {
	return v.id
}

// Load starts navigating to url. The result arrives as LoadFinished.
func (v *PageView) Load(url string) error {
	if v.isClosed() {
		return fmt.Errorf("%s: view closed", v.id)
	}

	v.history.expect(dirNew)
	go v.await(func() error {
		_, err := v.page.Goto(url)
		return err
	})
	return nil
}

// Back navigates one entry back in the session history.
func (v *PageView) Back() error {
	if !v.history.canGoBack() {
		return nil
	}
	v.history.expect(dirBack)
	go v.await(func() error {
		_, err := v.page.GoBack()
		return err
	})
	return nil
}

// Forward navigates one entry forward in the session history.
func (v *PageView) Forward() error {
	if !v.history.canGoForward() {
		return nil
	}
	v.history.expect(dirForward)
	go v.await(func() error {
		_, err := v.page.GoForward()
		return err
	})
	return nil
}

// Reload reloads the current page.
func (v *PageView) Reload() error {
	if v.isClosed() {
		return fmt.Errorf("%s: view closed", v.id)
	}
	v.history.expect(dirReload)
	go v.await(func() error {
		_, err := v.page.Reload()
		return err
	})
	return nil
}

// await runs a blocking navigation and reports failures as a failed load.
// Aborted navigations are the interceptor's doing and are not failures.
func (v *PageView) await(navigate func() error) {
	err := navigate()
	if err == nil {
		return
	}
	if strings.Contains(err.Error(), "ERR_ABORTED") || errors.Is(err, playwright.ErrTargetClosed) {
		v.engine.log.Debugf("%s: navigation stopped: %v", v.id, err)
		return
	}

	v.engine.log.Warnf("%s: navigation failed: %v", v.id, err)
	v.engine.events.push(func() { v.engine.listener.LoadFinished(v, false) })
}

// URL returns the page's current URL.
func (v *PageView) URL() string {
	if current := v.history.current(); current != "" {
		return current
	}
	return v.page.URL()
}

// Title returns the last title reported by the page.
func (v *PageView) Title() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.title
}

// CanGoBack reports whether Back has an entry to go to.
func (v *PageView) CanGoBack() bool {
	return v.history.canGoBack()
}

// CanGoForward reports whether Forward has an entry to go to.
func (v *PageView) CanGoForward() bool {
	return v.history.canGoForward()
}

// Evaluate runs script in the page.
func (v *PageView) Evaluate(script string, arg any) (any, error) {
	result, err := v.page.Evaluate(script, arg)
	if err != nil {
		return nil, fmt.Errorf("%s: script evaluation failed: %w", v.id, err)
	}
	return result, nil
}

// Download starts a transport-level download of url by clicking a synthetic
// anchor with an empty download attribute, so the server's filename wins.
func (v *PageView) Download(url string) error {
	v.mu.Lock()
	v.forced[url] = true
	v.mu.Unlock()

	if _, err := v.page.Evaluate(downloadScript, url); err != nil {
		v.consumeForced(url)
		return fmt.Errorf("%s: failed to start download: %w", v.id, err)
	}
	return nil
}

// consumeForced reports whether url was marked by Download, clearing the mark.
func (v *PageView) consumeForced(url string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.forced[url] {
		return false
	}
	delete(v.forced, url)
	return true
}

// Content returns the serialized DOM.
func (v *PageView) Content() (string, error) {
	html, err := v.page.Content()
	if err != nil {
		return "", fmt.Errorf("%s: failed to read page content: %w", v.id, err)
	}
	return html, nil
}

// Cookies returns the engine's cookies for the page's current URL.
func (v *PageView) Cookies() ([]Cookie, error) {
	return v.engine.Cookies(v.URL())
}

// Close closes the page. Closing twice is harmless.
func (v *PageView) Close() error {
	if v.isClosed() {
		return nil
	}
	if err := v.page.Close(); err != nil && !errors.Is(err, playwright.ErrTargetClosed) {
		return fmt.Errorf("%s: failed to close page: %w", v.id, err)
	}
	return nil
}

func (v *PageView) isClosed() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.closed
}

const downloadScript = `(url) => {
  const a = document.createElement('a');
  a.href = url;
  a.download = '';
  a.style.display = 'none';
  document.body.appendChild(a);
  a.click();
  a.remove();
}`

// pageDownload adapts a Playwright download to Download.
type pageDownload struct {
	d playwright.Download
}

func (p *pageDownload) URL() string               { return p.d.URL() }
func (p *pageDownload) SuggestedFilename() string { return p.d.SuggestedFilename() }
func (p *pageDownload) SaveAs(path string) error  { return p.d.SaveAs(path) }
func (p *pageDownload) Cancel() error             { return p.d.Cancel() }
func (p *pageDownload) Failure() error            { return p.d.Failure() }
