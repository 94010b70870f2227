package shell

import (
	"os"
	"testing"
	"time"

	"github.com/entrhq/flow/pkg/download"
	"github.com/entrhq/flow/pkg/engine/enginetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_SaveAndRestore(t *testing.T) {
	root := t.TempDir()

	s, _, _ := newTestShellAt(t, root)
	require.NoError(t, s.Open([]string{"https://a.example", "https://b.example"}))
	require.NoError(t, s.SelectTab(1))
	require.NoError(t, s.OpenDevTools())
	require.NoError(t, s.Close(true))
	assert.Empty(t, s.Snapshot().Tabs)

	restored, factory, _ := newTestShellAt(t, root)
	require.NoError(t, restored.Restore())

	snap := restored.Snapshot()
	require.Len(t, snap.Tabs, 2, "inspector tabs are not restored")
	assert.Equal(t, []string{"https://a.example"}, factory.Views()[0].Loads())
	assert.Equal(t, []string{"https://b.example"}, factory.Views()[1].Loads())
	assert.Equal(t, 1, snap.Active, "an active inspector restores as its page")
}

func TestRestore_WithoutSession(t *testing.T) {
	s, factory, _ := newTestShell(t)

	require.NoError(t, s.Restore())

	require.Len(t, factory.Views(), 1)
	assert.Equal(t, []string{home}, factory.Last().Loads())
}

func TestRestore_CorruptSessionOpensHome(t *testing.T) {
	s, factory, _ := newTestShell(t)
	require.NoError(t, os.WriteFile(s.profile.Paths.Session, []byte("tabs: [unclosed"), 0o644))

	require.NoError(t, s.Restore())

	assert.Equal(t, []string{home}, factory.Last().Loads())
}

func TestClose_Idempotent(t *testing.T) {
	s, factory, _ := newTestShell(t)
	require.NoError(t, s.Open(nil))

	require.NoError(t, s.Close(false))
	require.NoError(t, s.Close(true))

	assert.True(t, factory.Last().Closed())
	_, err := os.Stat(s.profile.Paths.Session)
	assert.True(t, os.IsNotExist(err), "session is only saved when asked")
}

func TestFinishDownloads_WaitsForRunningSaves(t *testing.T) {
	s, factory, _ := newTestShell(t)
	require.NoError(t, s.Open(nil))

	d := &enginetest.Download{
		Src:       "https://a.example/files/tool.zip",
		Suggested: "tool.zip",
		Body:      []byte("PK"),
		Block:     make(chan struct{}),
	}
	s.DownloadRequested(factory.Last(), d)

	go func() {
		time.Sleep(5 * time.Millisecond)
		close(d.Block)
	}()
	s.FinishDownloads(time.Second)

	records := s.Downloads()
	require.Len(t, records, 1)
	assert.Equal(t, download.StateCompleted, records[0].State)
	assert.False(t, d.Cancelled())
}

func TestFinishDownloads_CancelsAfterGrace(t *testing.T) {
	s, factory, _ := newTestShell(t)
	require.NoError(t, s.Open(nil))

	d := &enginetest.Download{
		Src:       "https://a.example/files/big.iso",
		Suggested: "big.iso",
		Block:     make(chan struct{}),
	}
	s.DownloadRequested(factory.Last(), d)
	go func() {
		for !d.Cancelled() {
			time.Sleep(time.Millisecond)
		}
		close(d.Block)
	}()

	s.FinishDownloads(10 * time.Millisecond)

	records := s.Downloads()
	require.Len(t, records, 1)
	assert.Equal(t, download.StateCancelled, records[0].State)
}
