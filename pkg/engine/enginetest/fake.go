// Package enginetest provides in-memory engine views and downloads for tests.
package enginetest

import (
	"fmt"
	"os"
	"sync"

	"github.com/entrhq/flow/pkg/engine"
)

// Evaluation is one recorded Evaluate call.
type Evaluation struct {
	Script string
	Arg    any
}

// View is a fake engine.View. Navigation calls are recorded and applied
// synchronously; no callbacks are fired.
type View struct {
	mu sync.Mutex

	id        string
	url       string
	title     string
	canBack   bool
	canFwd    bool
	closed    bool
	loads     []string
	backs     int
	forwards  int
	reloads   int
	downloads []string
	evals     []Evaluation
	content   string
	cookies   []engine.Cookie
	evalErr   error

	// Inspects is the view a fake inspector was opened for
	Inspects engine.View
}

var (
	idMu   sync.Mutex
	nextID int
)

// NewView returns a fake view with a unique id.
func NewView() *View {
	idMu.Lock()
	nextID++
	id := fmt.Sprintf("fake-%d", nextID)
	idMu.Unlock()
	return &View{id: id}
}

func (v *View) ID() string { return v.id }

func (v *View) Load(url string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return fmt.Errorf("%s: view closed", v.id)
	}
	v.loads = append(v.loads, url)
	v.url = url
	return nil
}

func (v *View) Back() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.backs++
	return nil
}

func (v *View) Forward() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.forwards++
	return nil
}

func (v *View) Reload() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.reloads++
	return nil
}

func (v *View) URL() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.url
}

func (v *View) Title() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.title
}

func (v *View) CanGoBack() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.canBack
}

func (v *View) CanGoForward() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.canFwd
}

func (v *View) Evaluate(script string, arg any) (any, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.evals = append(v.evals, Evaluation{Script: script, Arg: arg})
	return nil, v.evalErr
}

func (v *View) Download(url string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.downloads = append(v.downloads, url)
	return nil
}

func (v *View) Content() (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.content, nil
}

func (v *View) Cookies() ([]engine.Cookie, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]engine.Cookie(nil), v.cookies...), nil
}

func (v *View) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
	return nil
}

// SetPage sets what the view reports as its current page.
func (v *View) SetPage(url, title string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.url = url
	v.title = title
}

// SetHistory sets the back/forward flags.
func (v *View) SetHistory(canBack, canForward bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.canBack = canBack
	v.canFwd = canForward
}

// SetContent sets the serialized DOM returned by Content.
func (v *View) SetContent(html string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.content = html
}

// SetCookies sets the cookies returned by Cookies.
func (v *View) SetCookies(cookies []engine.Cookie) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.cookies = cookies
}

// FailEvaluate makes every later Evaluate call return err.
func (v *View) FailEvaluate(err error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.evalErr = err
}

// Loads returns every URL passed to Load.
func (v *View) Loads() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.loads...)
}

// Downloads returns every URL passed to Download.
func (v *View) Downloads() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.downloads...)
}

// Evaluations returns every Evaluate call.
func (v *View) Evaluations() []Evaluation {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]Evaluation(nil), v.evals...)
}

// Counts returns the number of Back, Forward and Reload calls.
func (v *View) Counts() (back, forward, reload int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.backs, v.forwards, v.reloads
}

// Closed reports whether Close was called.
func (v *View) Closed() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.closed
}

// Factory is a fake engine.Factory that records the views it creates.
type Factory struct {
	mu    sync.Mutex
	views []*View
	err   error
}

// NewFactory returns an empty fake factory.
func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) NewView() (engine.View, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	v := NewView()
	f.views = append(f.views, v)
	return v, nil
}

func (f *Factory) NewInspector(target engine.View) (engine.View, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	v := NewView()
	v.Inspects = target
	v.url = "devtools://" + target.ID()
	f.views = append(f.views, v)
	return v, nil
}

// Fail makes every later view creation return err.
func (f *Factory) Fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

// Views returns the views created so far, oldest first.
func (f *Factory) Views() []*View {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*View(nil), f.views...)
}

// Last returns the most recently created view.
func (f *Factory) Last() *View {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.views) == 0 {
		return nil
	}
	return f.views[len(f.views)-1]
}

// Download is a fake engine.Download that writes Body on SaveAs.
type Download struct {
	mu sync.Mutex

	Src       string
	Suggested string
	Body      []byte
	Err       error

	// Block, when set, delays SaveAs until it is closed
	Block chan struct{}

	cancelled bool
}

func (d *Download) URL() string               { return d.Src }
func (d *Download) SuggestedFilename() string { return d.Suggested }

func (d *Download) SaveAs(path string) error {
	if d.Block != nil {
		<-d.Block
	}

	d.mu.Lock()
	cancelled := d.cancelled
	d.mu.Unlock()

	if cancelled {
		return fmt.Errorf("canceled")
	}
	if d.Err != nil {
		return d.Err
	}
	return os.WriteFile(path, d.Body, 0o644)
}

func (d *Download) Cancel() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelled = true
	return nil
}

func (d *Download) Failure() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cancelled {
		return fmt.Errorf("canceled")
	}
	return d.Err
}

// Cancelled reports whether Cancel was called.
func (d *Download) Cancelled() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cancelled
}
