package tabs

import (
	"errors"
	"testing"

	"github.com/entrhq/flow/pkg/engine/enginetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const home = "https://home.example"

func newTestRegistry(t *testing.T) (*Registry, *enginetest.Factory) {
	t.Helper()
	factory := enginetest.NewFactory()
	return NewRegistry(factory, home, nil), factory
}

func TestCreateTab(t *testing.T) {
	r, factory := newTestRegistry(t)

	first, err := r.CreateTab("https://a.example", None)
	require.NoError(t, err)
	second, err := r.CreateTab("", first)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, second, r.Active().Handle, "new tab becomes active")
	assert.Equal(t, 1, r.ActiveIndex())

	views := factory.Views()
	require.Len(t, views, 2)
	assert.Equal(t, []string{"https://a.example"}, views[0].Loads())
	assert.Equal(t, []string{home}, views[1].Loads(), "empty url loads the home page")

	tab, ok := r.Lookup(second)
	require.True(t, ok)
	assert.Equal(t, first, tab.Opener)
	assert.Equal(t, DefaultSaveShortcut, tab.SaveShortcut)
}

func TestCreateTab_FactoryError(t *testing.T) {
	r, factory := newTestRegistry(t)
	factory.Fail(errors.New("engine gone"))

	_, err := r.CreateTab("https://a.example", None)
	assert.Error(t, err)
	assert.Equal(t, 0, r.Len())
}

func TestCloseTab_LastTabIsNoOp(t *testing.T) {
	r, factory := newTestRegistry(t)
	_, err := r.CreateTab("", None)
	require.NoError(t, err)

	err = r.CloseTab(0)
	assert.ErrorIs(t, err, ErrLastTab)
	assert.Equal(t, 1, r.Len())
	assert.False(t, factory.Last().Closed())
}

func TestCloseTab_OutOfRange(t *testing.T) {
	r, _ := newTestRegistry(t)
	_, _ = r.CreateTab("", None)
	_, _ = r.CreateTab("", None)

	assert.ErrorIs(t, r.CloseTab(5), ErrNoSuchTab)
	assert.ErrorIs(t, r.CloseTab(-1), ErrNoSuchTab)
	assert.Equal(t, 2, r.Len())
}

func TestCloseTab_ActivatesRightNeighbour(t *testing.T) {
	r, _ := newTestRegistry(t)
	a, _ := r.CreateTab("", None)
	b, _ := r.CreateTab("", None)
	c, _ := r.CreateTab("", None)

	require.NoError(t, r.Activate(b))
	require.NoError(t, r.CloseTab(1))

	assert.Equal(t, c, r.Active().Handle)
	assert.Equal(t, []Handle{a, c}, handles(r))

	// Closing the rightmost active tab falls back to the new last tab
	require.NoError(t, r.CloseTab(1))
	assert.Equal(t, a, r.Active().Handle)
}

func TestCloseTab_InactiveKeepsActive(t *testing.T) {
	r, _ := newTestRegistry(t)
	_, _ = r.CreateTab("", None)
	b, _ := r.CreateTab("", None)

	require.NoError(t, r.CloseTab(0))
	assert.Equal(t, b, r.Active().Handle)
	assert.Equal(t, 0, r.ActiveIndex())
}

func TestCloseTab_CascadesToDevTools(t *testing.T) {
	r, factory := newTestRegistry(t)
	a, _ := r.CreateTab("", None)
	b, _ := r.CreateTab("", None)

	companion, err := r.OpenDevTools(b)
	require.NoError(t, err)
	require.Equal(t, 3, r.Len())

	require.NoError(t, r.CloseTab(r.IndexOf(b)))

	assert.Equal(t, []Handle{a}, handles(r))
	_, ok := r.Lookup(companion)
	assert.False(t, ok, "companion must be closed with its page")

	for _, v := range factory.Views()[1:] {
		assert.True(t, v.Closed())
	}
}

func TestCloseTab_CompanionLeftOfPage(t *testing.T) {
	r, _ := newTestRegistry(t)
	a, _ := r.CreateTab("", None)
	b, _ := r.CreateTab("", None)
	c, _ := r.CreateTab("", None)
	d, _ := r.CreateTab("", None)

	companion, err := r.OpenDevTools(b)
	require.NoError(t, err)
	require.NoError(t, r.Move(r.IndexOf(companion), 1))
	require.Equal(t, []Handle{a, companion, b, c, d}, handles(r))
	require.NoError(t, r.Activate(b))

	require.NoError(t, r.CloseTab(r.IndexOf(b)))

	assert.Equal(t, []Handle{a, c, d}, handles(r))
	assert.Equal(t, c, r.Active().Handle, "right neighbour of the closed page")
}

func TestCloseTab_CompanionDetachesFromInspected(t *testing.T) {
	r, _ := newTestRegistry(t)
	a, _ := r.CreateTab("", None)

	companion, err := r.OpenDevTools(a)
	require.NoError(t, err)

	require.NoError(t, r.CloseTab(r.IndexOf(companion)))

	tab, _ := r.Lookup(a)
	assert.Equal(t, None, tab.DevTools)
	assert.Equal(t, 1, r.Len())

	// A fresh companion can be opened again
	again, err := r.OpenDevTools(a)
	require.NoError(t, err)
	assert.NotEqual(t, companion, again)
}

func TestCloseTab_CascadeNeverEmptiesRegistry(t *testing.T) {
	r, _ := newTestRegistry(t)
	a, _ := r.CreateTab("", None)
	_, err := r.OpenDevTools(a)
	require.NoError(t, err)

	assert.ErrorIs(t, r.CloseTab(0), ErrLastTab)
	assert.Equal(t, 2, r.Len())
}

func TestOpenDevTools(t *testing.T) {
	r, factory := newTestRegistry(t)
	a, _ := r.CreateTab("", None)
	r.SetTitle(a, "Example")

	companion, err := r.OpenDevTools(a)
	require.NoError(t, err)

	tab, _ := r.Lookup(a)
	dev, _ := r.Lookup(companion)
	assert.Equal(t, companion, tab.DevTools)
	assert.Equal(t, a, dev.Inspected)
	assert.True(t, dev.IsDevTools())
	assert.Equal(t, "Inspect: Example", dev.Title)
	assert.Equal(t, companion, r.Active().Handle)
	assert.Equal(t, tab.View, factory.Last().Inspects)

	t.Run("idempotent", func(t *testing.T) {
		require.NoError(t, r.Activate(a))
		again, err := r.OpenDevTools(a)
		require.NoError(t, err)
		assert.Equal(t, companion, again)
		assert.Equal(t, 2, r.Len())
		assert.Equal(t, companion, r.Active().Handle)
	})

	t.Run("on a companion activates it", func(t *testing.T) {
		same, err := r.OpenDevTools(companion)
		require.NoError(t, err)
		assert.Equal(t, companion, same)
		assert.Equal(t, 2, r.Len())
	})

	t.Run("unknown handle", func(t *testing.T) {
		_, err := r.OpenDevTools(Handle(99))
		assert.ErrorIs(t, err, ErrNoSuchTab)
	})
}

func TestSetTitle_SyncsCompanion(t *testing.T) {
	r, _ := newTestRegistry(t)
	a, _ := r.CreateTab("", None)
	companion, _ := r.OpenDevTools(a)

	r.SetTitle(a, "Renamed")
	dev, _ := r.Lookup(companion)
	assert.Equal(t, "Inspect: Renamed", dev.Title)

	// The inspector's own title never overrides the derived one
	r.SetTitle(companion, "DevTools - example")
	assert.Equal(t, "Inspect: Renamed", dev.Title)
}

func TestAdopt(t *testing.T) {
	r, _ := newTestRegistry(t)
	a, _ := r.CreateTab("", None)

	popup := enginetest.NewView()
	h := r.Adopt(popup, a)

	assert.Equal(t, h, r.Active().Handle)
	assert.True(t, r.IsActiveView(popup))
	assert.Equal(t, h, r.Adopt(popup, a), "adopting twice returns the same tab")
	assert.Equal(t, 2, r.Len())

	tab, ok := r.FindByView(popup)
	require.True(t, ok)
	assert.Equal(t, a, tab.Opener)

	require.NoError(t, r.CloseTab(r.IndexOf(a)))
	tab, _ = r.Lookup(h)
	assert.Equal(t, None, tab.Opener, "opener reference dropped when opener closes")
}

func TestAdopt_UnknownOpener(t *testing.T) {
	r, _ := newTestRegistry(t)
	h := r.Adopt(enginetest.NewView(), Handle(42))
	tab, _ := r.Lookup(h)
	assert.Equal(t, None, tab.Opener)
}

func TestIsActiveView(t *testing.T) {
	r, factory := newTestRegistry(t)
	_, _ = r.CreateTab("", None)
	_, _ = r.CreateTab("", None)

	views := factory.Views()
	assert.False(t, r.IsActiveView(views[0]))
	assert.True(t, r.IsActiveView(views[1]))
	assert.False(t, r.IsActiveView(nil))
}

func TestSetActive(t *testing.T) {
	r, _ := newTestRegistry(t)
	a, _ := r.CreateTab("", None)
	_, _ = r.CreateTab("", None)

	require.NoError(t, r.SetActive(0))
	assert.Equal(t, a, r.Active().Handle)
	assert.ErrorIs(t, r.SetActive(2), ErrNoSuchTab)
	assert.ErrorIs(t, r.Activate(Handle(77)), ErrNoSuchTab)
}

func TestMove(t *testing.T) {
	r, _ := newTestRegistry(t)
	a, _ := r.CreateTab("", None)
	b, _ := r.CreateTab("", None)
	c, _ := r.CreateTab("", None)

	require.NoError(t, r.Move(0, 2))
	assert.Equal(t, []Handle{b, c, a}, handles(r))
	assert.Equal(t, c, r.Active().Handle)

	require.NoError(t, r.Move(2, 0))
	assert.Equal(t, []Handle{a, b, c}, handles(r))

	assert.ErrorIs(t, r.Move(0, 3), ErrNoSuchTab)
}

func TestTabsReturnsCopies(t *testing.T) {
	r, _ := newTestRegistry(t)
	a, _ := r.CreateTab("", None)
	r.SetTitle(a, "Original")

	snapshot := r.Tabs()
	snapshot[0].Title = "Changed"

	tab, _ := r.Lookup(a)
	assert.Equal(t, "Original", tab.Title)
}

func TestCloseAll(t *testing.T) {
	r, factory := newTestRegistry(t)
	_, _ = r.CreateTab("", None)
	_, _ = r.CreateTab("", None)

	r.CloseAll()
	assert.Equal(t, 0, r.Len())
	assert.Nil(t, r.Active())
	assert.Equal(t, -1, r.ActiveIndex())
	for _, v := range factory.Views() {
		assert.True(t, v.Closed())
	}
}

func handles(r *Registry) []Handle {
	var hs []Handle
	for _, tab := range r.Tabs() {
		hs = append(hs, tab.Handle)
	}
	return hs
}
