package shell

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/entrhq/flow/pkg/download"
	"github.com/entrhq/flow/pkg/engine"
	"github.com/entrhq/flow/pkg/engine/enginetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcceptNavigation(t *testing.T) {
	s, factory, _ := newTestShell(t)
	require.NoError(t, s.Open(nil))
	view := factory.Last()

	tests := []struct {
		name      string
		target    string
		mainFrame bool
		proceed   bool
	}{
		{"page", "https://a.example/docs", true, true},
		{"archive", "https://a.example/files/tool.zip", true, false},
		{"archive in subframe", "https://a.example/files/tool.zip", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.proceed, s.AcceptNavigation(view, tt.target, tt.mainFrame))
		})
	}

	assert.Equal(t, []string{"https://a.example/files/tool.zip"}, view.Downloads())
}

func TestAcceptNavigation_BlobReadInOwnPage(t *testing.T) {
	s, factory, _ := newTestShell(t)
	require.NoError(t, s.Open(nil))
	view := factory.Last()

	assert.False(t, s.AcceptNavigation(view, "blob:https://a.example/1234", true))
	s.downloads.Wait()

	evals := view.Evaluations()
	require.Len(t, evals, 1)
	assert.Equal(t, download.FetchBlobScript, evals[0].Script)
}

func TestAcceptPopup(t *testing.T) {
	s, factory, _ := newTestShell(t)
	require.NoError(t, s.Open(nil))
	opener := factory.Last()

	assert.True(t, s.AcceptPopup(opener, "https://b.example/"))
	assert.False(t, s.AcceptPopup(opener, "https://b.example/setup.exe"))
	assert.False(t, s.AcceptPopup(opener, "blob:https://a.example/99"))
	s.downloads.Wait()

	assert.Equal(t, []string{"https://b.example/setup.exe"}, opener.Downloads())
	assert.Len(t, opener.Evaluations(), 1)
}

func TestPopupOpened(t *testing.T) {
	s, factory, _ := newTestShell(t)
	require.NoError(t, s.Open(nil))
	opener := factory.Last()

	popup := enginetest.NewView()
	popup.SetPage("https://b.example/", "B")
	s.PopupOpened(opener, popup)

	snap := s.Snapshot()
	require.Len(t, snap.Tabs, 2)
	assert.Equal(t, 1, snap.Active, "popup becomes the active tab")
	assert.Equal(t, "B", snap.Tabs[1].Title)
	assert.Equal(t, "https://b.example/", snap.State.Address)

	tab, ok := s.tabs.FindByView(popup)
	require.True(t, ok)
	assert.Equal(t, snap.Tabs[0].Handle, tab.Opener)

	// An object URL opened inside the popup belongs to its opener
	assert.False(t, s.AcceptNavigation(popup, "blob:https://a.example/77", true))
	s.downloads.Wait()
	assert.Len(t, opener.Evaluations(), 1)
	assert.Empty(t, popup.Evaluations())

	// Once the opener is gone the popup reads its own object URLs
	require.NoError(t, s.CloseTab(0))
	assert.False(t, s.AcceptNavigation(popup, "blob:https://b.example/78", true))
	s.downloads.Wait()
	assert.Len(t, popup.Evaluations(), 1)
}

func TestPopupOpened_AfterClose(t *testing.T) {
	s, factory, _ := newTestShell(t)
	require.NoError(t, s.Open(nil))
	opener := factory.Last()
	require.NoError(t, s.Close(false))

	popup := enginetest.NewView()
	s.PopupOpened(opener, popup)

	assert.True(t, popup.Closed())
	assert.Empty(t, s.Snapshot().Tabs)
}

func TestTitleChanged(t *testing.T) {
	s, factory, rec := newTestShell(t)
	require.NoError(t, s.Open(nil))
	view := factory.Last()
	require.NoError(t, s.OpenDevTools())
	rec.reset()

	s.TitleChanged(view, "Docs")
	s.TitleChanged(enginetest.NewView(), "stranger")

	snap := s.Snapshot()
	assert.Equal(t, "Docs", snap.Tabs[0].Title)
	assert.Equal(t, "Inspect: Docs", snap.Tabs[1].Title)
	assert.Equal(t, 1, rec.count(func(ev Event) bool { _, ok := ev.(TabsChanged); return ok }))
}

func TestURLChanged_IgnoresBackgroundTabs(t *testing.T) {
	s, factory, rec := newTestShell(t)
	require.NoError(t, s.Open([]string{"https://a.example", "https://b.example"}))
	background := factory.Views()[1]
	active := factory.Views()[0]
	rec.reset()

	background.SetPage("https://b.example/next", "")
	s.URLChanged(background, "https://b.example/next")
	assert.Equal(t, "https://a.example", s.Snapshot().State.Address)
	assert.Zero(t, rec.count(func(ev Event) bool { _, ok := ev.(StateChanged); return ok }))

	active.SetPage("https://a.example/next", "")
	active.SetHistory(true, false)
	s.URLChanged(active, "https://a.example/next")

	state := s.Snapshot().State
	assert.Equal(t, "https://a.example/next", state.Address)
	assert.True(t, state.CanGoBack)
	assert.False(t, state.CanGoForward)
}

func TestLoadFinished_RecordsActivePageTabsOnly(t *testing.T) {
	s, factory, rec := newTestShell(t)
	require.NoError(t, s.Open([]string{"https://a.example", "https://b.example"}))
	active := factory.Views()[0]
	background := factory.Views()[1]

	s.TitleChanged(active, "A")
	s.LoadFinished(active, true)
	s.LoadFinished(background, true)
	s.LoadFinished(enginetest.NewView(), true)

	history := s.History()
	require.Len(t, history, 1)
	assert.Equal(t, "https://a.example", history[0].URL)
	assert.Equal(t, "A", history[0].Title)

	require.NoError(t, s.OpenDevTools())
	s.LoadFinished(factory.Last(), true)
	assert.Len(t, s.History(), 1, "inspector loads are not history")

	require.NoError(t, s.SelectTab(0))
	rec.reset()
	s.LoadFinished(active, false)
	assert.Len(t, s.History(), 1, "failed loads are not history")
	require.Len(t, rec.notices(), 1)
	assert.Contains(t, rec.notices()[0].Text, "Failed to load")
}

func TestFullScreenRequested(t *testing.T) {
	s, factory, rec := newTestShell(t)
	require.NoError(t, s.Open([]string{"https://a.example", "https://b.example"}))
	active := factory.Views()[0]
	background := factory.Views()[1]

	s.FullScreenRequested(background, true)
	assert.False(t, s.Snapshot().FullScreen)

	s.FullScreenRequested(active, true)
	s.FullScreenRequested(active, true)
	assert.True(t, s.Snapshot().FullScreen)
	assert.Equal(t, 1, rec.count(func(ev Event) bool {
		fs, ok := ev.(FullScreenChanged)
		return ok && fs.On
	}))

	require.NoError(t, s.SelectTab(1))
	assert.False(t, s.Snapshot().FullScreen, "switching tabs leaves full-screen")
}

func TestDownloadRequested(t *testing.T) {
	s, factory, rec := newTestShell(t)
	require.NoError(t, s.Open(nil))

	d := &enginetest.Download{
		Src:       "https://a.example/files/tool.zip",
		Suggested: "tool.zip",
		Body:      []byte("PK"),
		Block:     make(chan struct{}),
	}
	s.DownloadRequested(factory.Last(), d)

	notices := rec.notices()
	require.Len(t, notices, 1)
	assert.Equal(t, "Downloading tool.zip", notices[0].Text)

	close(d.Block)
	s.downloads.Wait()

	records := s.Downloads()
	require.Len(t, records, 1)
	assert.Equal(t, download.StateCompleted, records[0].State)

	data, err := os.ReadFile(records[0].Path)
	require.NoError(t, err)
	assert.Equal(t, "PK", string(data))
}

func TestBridgeMessage(t *testing.T) {
	s, factory, rec := newTestShell(t)
	require.NoError(t, s.Open(nil))
	view := factory.Last()

	s.BridgeMessage(view, engine.BridgeMessage{
		Kind:     engine.BridgeBlobSaved,
		DataURL:  "data:text/plain;base64,aGVsbG8=",
		Filename: "hello.txt",
	})

	data, err := os.ReadFile(filepath.Join(s.downloads.Dir(), "hello.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	s.BridgeMessage(view, engine.BridgeMessage{Kind: engine.BridgeBlobError, Error: "TypeError: Failed to fetch"})
	s.BridgeMessage(view, engine.BridgeMessage{Kind: engine.BridgeBlobSaved, DataURL: "not a data url", Filename: "x.bin"})

	records := s.Downloads()
	require.Len(t, records, 3)
	assert.Equal(t, download.StateCompleted, records[0].State)
	assert.Equal(t, download.StateInterrupted, records[1].State)
	assert.Equal(t, "TypeError: Failed to fetch", records[1].Reason)
	assert.Equal(t, download.StateInterrupted, records[2].State)

	notices := rec.notices()
	require.Len(t, notices, 3)
	assert.False(t, notices[0].Error)
	assert.True(t, notices[1].Error)
	assert.True(t, notices[2].Error)
}

func TestViewClosed(t *testing.T) {
	s, factory, _ := newTestShell(t)
	require.NoError(t, s.Open([]string{"https://a.example", "https://b.example"}))
	first := factory.Views()[0]

	s.ViewClosed(first)

	snap := s.Snapshot()
	require.Len(t, snap.Tabs, 1)
	assert.Equal(t, "https://b.example", snap.Tabs[0].URL)
	assert.Equal(t, "https://b.example", snap.State.Address)

	s.ViewClosed(first)
	s.ViewClosed(enginetest.NewView())
	assert.Len(t, s.Snapshot().Tabs, 1, "unknown views are ignored")
}

func TestViewClosed_LastTabReplacedByHome(t *testing.T) {
	s, factory, _ := newTestShell(t)
	require.NoError(t, s.Open([]string{"https://a.example"}))
	page := factory.Last()
	require.NoError(t, s.OpenDevTools())
	inspector := factory.Last()

	s.ViewClosed(page)

	snap := s.Snapshot()
	require.Len(t, snap.Tabs, 1)
	assert.Equal(t, home, snap.Tabs[0].URL)
	assert.False(t, snap.Tabs[0].DevTools)
	assert.True(t, inspector.Closed(), "the inspector goes with its page")
}

func TestViewClosed_AfterShellClose(t *testing.T) {
	s, factory, _ := newTestShell(t)
	require.NoError(t, s.Open(nil))
	view := factory.Last()
	require.NoError(t, s.Close(false))

	s.ViewClosed(view)

	assert.Len(t, factory.Views(), 1, "no replacement tab after close")
}
