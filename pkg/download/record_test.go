package download

import (
	"testing"

	"github.com/entrhq/flow/pkg/engine/enginetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestList_AddAndSnapshot(t *testing.T) {
	l := NewList()
	id := l.add(&Record{Filename: "a.zip"})
	assert.NotEmpty(t, id)

	snap := l.Snapshot()
	require.Len(t, snap, 1)
	snap[0].Filename = "changed"

	r, ok := l.Get(id)
	require.True(t, ok)
	assert.Equal(t, "a.zip", r.Filename, "snapshots are copies")
}

func TestList_UpdateInPlace(t *testing.T) {
	l := NewList()
	id := l.add(&Record{Filename: "a.zip", State: StateInProgress})

	refreshed := 0
	l.Attach(func() { refreshed++ })

	ok := l.update(id, func(r *Record) {
		r.Received = 10
		r.State = StateCompleted
	})
	assert.True(t, ok)
	assert.Equal(t, 1, refreshed)

	r, _ := l.Get(id)
	assert.Equal(t, int64(10), r.Received)
	assert.Equal(t, StateCompleted, r.State)

	assert.False(t, l.update("missing", func(*Record) {}))
	assert.Equal(t, 1, refreshed)
}

func TestList_Remove(t *testing.T) {
	l := NewList()
	done := &enginetest.Download{}
	l.add(&Record{Filename: "done", transport: done, Done: true, State: StateCompleted})
	l.add(&Record{Filename: "bridge"})

	require.NoError(t, l.Remove(0))
	assert.False(t, done.Cancelled(), "finished transports are not cancelled")
	assert.Equal(t, "bridge", l.Snapshot()[0].Filename)

	assert.Error(t, l.Remove(3))
	assert.Error(t, l.Remove(-1))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "in progress", StateInProgress.String())
	assert.Equal(t, "completed", StateCompleted.String())
	assert.Equal(t, "cancelled", StateCancelled.String())
	assert.Equal(t, "interrupted", StateInterrupted.String())
	assert.Equal(t, "State(9)", State(9).String())
	assert.Equal(t, "force-download", ForceDownload.String())
}
