package engine

// View is one browser page hosted by the engine. Tabs wrap exactly one View.
//
// Navigation methods are fire-and-forget: they start the engine operation and
// return; completion is reported through the Listener.
type View interface {
	// ID is unique for the lifetime of the engine
	ID() string

	Load(url string) error
	Back() error
	Forward() error
	Reload() error

	URL() string
	Title() string
	CanGoBack() bool
	CanGoForward() bool

	// Evaluate runs script in the page's main frame with arg as its parameter
	Evaluate(script string, arg any) (any, error)

	// Download starts a transport-level download of url with no suggested
	// filename, so the server's own name wins
	Download(url string) error

	// Content returns the serialized DOM of the page
	Content() (string, error)

	// Cookies returns the engine's cookies for the page's current URL
	Cookies() ([]Cookie, error)

	Close() error
}

// Download is a transport-level download reported by the engine.
type Download interface {
	URL() string
	SuggestedFilename() string

	// SaveAs blocks until the transfer finishes and the file is written to path
	SaveAs(path string) error

	// Cancel requests cancellation; best effort
	Cancel() error

	// Failure returns the interruption reason, nil when the transfer succeeded
	Failure() error
}

// Cookie is the subset of an engine cookie that Flow mirrors to disk.
type Cookie struct {
	Name    string  `json:"name"`
	Value   string  `json:"value"`
	Domain  string  `json:"domain,omitempty"`
	Expires float64 `json:"expires"`
}

// BridgeKind identifies a message sent from page script to the host.
type BridgeKind string

const (
	// BridgeBlobSaved carries a base64 data URL and a filename
	BridgeBlobSaved BridgeKind = "blobSaved"

	// BridgeBlobError carries the reason an in-page blob read failed
	BridgeBlobError BridgeKind = "blobError"
)

// Script bridge entry points exposed to every page.
const (
	BindingSaveBlob      = "saveBlob"
	BindingSaveBlobError = "saveBlobError"
	bindingFullscreen    = "flowFullscreen"
)

// BridgeMessage is one inbound message on the script bridge.
type BridgeMessage struct {
	Kind     BridgeKind
	DataURL  string
	Filename string
	Error    string
}

// Listener receives engine callbacks. Callbacks are delivered one at a time,
// in the order the engine saw the events, on a single engine goroutine.
type Listener interface {
	TitleChanged(v View, title string)
	URLChanged(v View, url string)
	LoadFinished(v View, ok bool)

	// PopupOpened reports a page opened by script or target=_blank that the
	// policy accepted as a new tab
	PopupOpened(opener View, popup View)

	FullScreenRequested(v View, on bool)
	DownloadRequested(v View, d Download)
	BridgeMessage(v View, msg BridgeMessage)
	ViewClosed(v View)
}

// NavigationPolicy decides whether navigations proceed. A policy that returns
// false has already arranged whatever should happen instead.
//
// Policy methods run concurrently on request goroutines. They must not wait on
// a lock that is held while calling into the engine.
type NavigationPolicy interface {
	AcceptNavigation(v View, target string, mainFrame bool) bool
	AcceptPopup(opener View, target string) bool
}

// Factory creates views. Implemented by Engine and by test fakes.
type Factory interface {
	NewView() (View, error)

	// NewInspector creates a view showing the DevTools frontend for target
	NewInspector(target View) (View, error)
}
