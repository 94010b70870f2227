package download

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/entrhq/flow/pkg/engine"
	"github.com/entrhq/flow/pkg/logging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// Action is the interceptor's verdict on a navigation or popup.
type Action int

const (
	// Allow lets the navigation load in its tab
	Allow Action = iota

	// OpenTab opens a popup as a new tab
	OpenTab

	// SaveBlob reads an object URL in its originating page and saves the bytes
	SaveBlob

	// ForceDownload cancels the navigation and downloads the URL instead
	ForceDownload
)

func (a Action) String() string {
	switch a {
	case Allow:
		return "allow"
	case OpenTab:
		return "open-tab"
	case SaveBlob:
		return "save-blob"
	case ForceDownload:
		return "force-download"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// Interceptor turns navigations that should be file saves into downloads and
// keeps the session's download records.
type Interceptor struct {
	heuristic *Heuristic
	guard     *Guard
	list      *List
	log       *logging.Logger
	inflight  sync.WaitGroup
}

// NewInterceptor creates an interceptor saving into dir. extensions is the
// file-extension allow-list for the download heuristic.
func NewInterceptor(dir string, extensions []string, log *logging.Logger) (*Interceptor, error) {
	if log == nil {
		log = logging.Discard("download")
	}

	heuristic, err := NewHeuristic(extensions)
	if err != nil {
		return nil, err
	}

	guard, err := NewGuard(dir)
	if err != nil {
		return nil, err
	}

	return &Interceptor{
		heuristic: heuristic,
		guard:     guard,
		list:      NewList(),
		log:       log,
	}, nil
}

// Dir returns the downloads directory.
func (i *Interceptor) Dir() string {
	return i.guard.Dir()
}

// List returns the session's download records.
func (i *Interceptor) List() *List {
	return i.list
}

// Decide classifies a navigation. Only top-level navigations are ever
// diverted; subframes always load.
func (i *Interceptor) Decide(target string, mainFrame bool) Action {
	if !mainFrame {
		return Allow
	}
	if IsObjectURL(target) {
		return SaveBlob
	}
	if i.heuristic.Matches(target) {
		return ForceDownload
	}
	return Allow
}

// DecideNewWindow classifies a popup or new-window request.
func (i *Interceptor) DecideNewWindow(target string) Action {
	if IsObjectURL(target) {
		return SaveBlob
	}
	if i.heuristic.Matches(target) {
		return ForceDownload
	}
	return OpenTab
}

// Navigate applies Decide to a navigation of view. origin is the page that
// may own an object URL, which differs from view for popups. It reports
// whether the navigation should proceed.
func (i *Interceptor) Navigate(view, origin engine.View, target string, mainFrame bool) bool {
	switch i.Decide(target, mainFrame) {
	case SaveBlob:
		i.SaveBlob(origin, target, "")
		return false
	case ForceDownload:
		i.ForceDownload(view, target)
		return false
	default:
		return true
	}
}

// NewWindow applies DecideNewWindow to a popup opened by opener. It reports
// whether the popup should become a tab.
func (i *Interceptor) NewWindow(opener engine.View, target string) bool {
	switch i.DecideNewWindow(target) {
	case SaveBlob:
		i.SaveBlob(opener, target, "")
		return false
	case ForceDownload:
		i.ForceDownload(opener, target)
		return false
	default:
		return true
	}
}

// ForceDownload starts a transport-level download of target in view. The
// engine reports it back as a Download, which is then tracked.
func (i *Interceptor) ForceDownload(view engine.View, target string) {
	i.log.Infof("forcing download of %s", target)
	if err := view.Download(target); err != nil {
		i.log.Errorf("failed to force download of %s: %v", target, err)
	}
}

// SaveBlob asks origin to read the object URL and send the bytes back through
// the script bridge. The reply arrives later as a BridgeMessage.
func (i *Interceptor) SaveBlob(origin engine.View, blobURL, filename string) {
	if origin == nil {
		i.log.Errorf("no page to read %s from", blobURL)
		return
	}
	if filename == "" {
		filename = blobName(blobURL)
	}

	i.log.Infof("reading object URL %s in %s", blobURL, origin.ID())

	arg := map[string]any{"url": blobURL, "filename": filename}
	i.inflight.Add(1)
	go func() {
		defer i.inflight.Done()
		if _, err := origin.Evaluate(FetchBlobScript, arg); err != nil {
			i.HandleBridge(engine.BridgeMessage{Kind: engine.BridgeBlobError, Error: err.Error()})
		}
	}()
}

// HandleBridge processes a message from page script. blobSaved payloads are
// decoded and written; blobError is recorded as an interrupted download.
func (i *Interceptor) HandleBridge(msg engine.BridgeMessage) error {
	switch msg.Kind {
	case engine.BridgeBlobSaved:
		_, data, err := DecodeDataURL(msg.DataURL)
		if err != nil {
			i.log.Errorf("discarding object URL payload: %v", err)
			i.fail(msg.Filename, "", err.Error())
			return err
		}

		name := msg.Filename
		if name == "" {
			name = fallbackName
		}
		if filepath.Ext(name) == "" {
			name += mimetype.Detect(data).Extension()
		}

		_, err = i.SaveBytes(name, "", data)
		return err

	case engine.BridgeBlobError:
		i.log.Warnf("object URL read failed in page: %s", msg.Error)
		i.fail(msg.Filename, "", msg.Error)
		return nil

	default:
		return fmt.Errorf("unknown bridge message kind %q", msg.Kind)
	}
}

// SaveBytes writes data into the downloads directory under a collision-free
// version of name and records it as a completed download.
func (i *Interceptor) SaveBytes(name, sourceURL string, data []byte) (string, error) {
	path, err := i.reserve(name)
	if err != nil {
		i.log.Errorf("cannot save %s: %v", name, err)
		i.fail(name, sourceURL, err.Error())
		return "", err
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		i.log.Errorf("failed to write %s: %v", path, err)
		i.discard(path)
		i.fail(filepath.Base(path), sourceURL, err.Error())
		return "", fmt.Errorf("failed to write download: %w", err)
	}

	size := int64(len(data))
	i.list.add(&Record{
		Filename: filepath.Base(path),
		URL:      sourceURL,
		Path:     path,
		Received: size,
		Total:    size,
		State:    StateCompleted,
		Done:     true,
		Status:   completedStatus(path),
	})

	i.log.Infof("saved %s (%d bytes)", path, size)
	return path, nil
}

// Track records a transport-level download and saves it in the background.
// It returns the record id.
func (i *Interceptor) Track(d engine.Download) string {
	path, err := i.reserve(d.SuggestedFilename())
	if err != nil {
		i.log.Errorf("cannot save download of %s: %v", d.URL(), err)
		_ = d.Cancel()
		return i.fail(d.SuggestedFilename(), d.URL(), err.Error())
	}

	id := i.list.add(&Record{
		Filename:  filepath.Base(path),
		URL:       d.URL(),
		Path:      path,
		State:     StateInProgress,
		Status:    "Downloading",
		transport: d,
	})

	i.log.Infof("downloading %s to %s", d.URL(), path)

	i.inflight.Add(1)
	go func() {
		defer i.inflight.Done()
		i.finish(id, d, path, d.SaveAs(path))
	}()
	return id
}

func (i *Interceptor) finish(id string, d engine.Download, path string, saveErr error) {
	if saveErr != nil {
		reason := saveErr.Error()
		if failure := d.Failure(); failure != nil {
			reason = failure.Error()
		}
		i.log.Warnf("download of %s interrupted: %s", d.URL(), reason)
		i.discard(path)

		i.list.update(id, func(r *Record) {
			if r.State == StateCancelled {
				return
			}
			r.State = StateInterrupted
			r.Reason = reason
			r.Done = true
			r.Status = "Interrupted: " + reason
		})
		return
	}

	var size int64
	if info, err := os.Stat(path); err == nil {
		size = info.Size()
	}
	status := completedStatus(path)

	i.list.update(id, func(r *Record) {
		r.Received = size
		r.Total = size
		r.State = StateCompleted
		r.Done = true
		r.Status = status
	})
	i.log.Infof("download of %s complete (%d bytes)", d.URL(), size)
}

// reserve resolves a collision-free path for name and creates an empty file
// there so concurrent saves cannot pick the same name.
func (i *Interceptor) reserve(name string) (string, error) {
	unique := UniqueName(i.guard.Dir(), name)
	path, err := i.guard.Resolve(unique)
	if err != nil {
		return "", err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			// Lost a race for the name; probe again
			return i.reserve(name)
		}
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	return path, f.Close()
}

// discard removes a reserved or partially written file so the name is free
// for a retry.
func (i *Interceptor) discard(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		i.log.Warnf("failed to remove %s: %v", path, err)
	}
}

// fail appends an interrupted record and returns its id.
func (i *Interceptor) fail(name, sourceURL, reason string) string {
	return i.list.add(&Record{
		Filename: name,
		URL:      sourceURL,
		State:    StateInterrupted,
		Reason:   reason,
		Done:     true,
		Status:   "Failed: " + reason,
	})
}

// Wait blocks until every background save has finished.
func (i *Interceptor) Wait() {
	i.inflight.Wait()
}

// Drain waits up to grace for background saves, then cancels the transports
// still running and waits for their saves to unwind. It reports whether
// everything finished within grace.
func (i *Interceptor) Drain(grace time.Duration) bool {
	done := make(chan struct{})
	go func() {
		i.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-time.After(grace):
	}

	n := i.list.CancelActive()
	i.log.Warnf("cancelled %d downloads still running at shutdown", n)
	<-done
	return false
}

// completedStatus describes a finished file; PDFs include their page count.
func completedStatus(path string) string {
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return "Completed"
	}
	pages, err := pageCount(path)
	if err != nil {
		return "Completed"
	}
	return fmt.Sprintf("Completed (%d pages)", pages)
}

// pageCount reads the page count of a PDF. Malformed files can panic inside
// the parser, so panics are turned into errors.
func pageCount(path string) (pages int, err error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	if info.Size() == 0 {
		return 0, fmt.Errorf("%s is empty", path)
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to parse %s: %v", path, r)
		}
	}()
	return api.PageCountFile(path)
}
