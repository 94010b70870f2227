// Package engine is the boundary between Flow and the embedded browser engine.
//
// The rest of Flow depends only on the interfaces in this package:
//
//   - View: one page, with fire-and-forget navigation
//   - Download: a transport-level download reported by the engine
//   - Listener: engine callbacks (title, URL, load, popup, download, bridge)
//   - NavigationPolicy: accept/reject decisions per navigation and popup
//   - Factory: view creation, including DevTools inspector views
//
// Engine implements Factory on top of Playwright-driven Chromium. One browser
// context is shared by every view. Navigation requests are intercepted with a
// context-wide route and passed to the NavigationPolicy; object-reference
// (blob:) URLs bypass routing, so they are checked when a popup appears or a
// main frame commits.
//
// The script bridge is exposed to every page as two bindings, saveBlob and
// saveBlobError, which arrive at the Listener as BridgeMessage values.
//
// Example:
//
//	eng := engine.New(engine.Options{DevToolsPort: 9222})
//	if err := eng.Start(listener, policy); err != nil {
//	    return err
//	}
//	defer eng.Shutdown()
//
//	view, err := eng.NewView()
//	if err != nil {
//	    return err
//	}
//	view.Load("https://www.startpage.com")
package engine
