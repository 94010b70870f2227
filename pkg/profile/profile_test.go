package profile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/entrhq/flow/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPaths(t *testing.T) {
	p := NewPaths("/tmp/flow-profile")

	assert.Equal(t, "/tmp/flow-profile/config.json", p.Config)
	assert.Equal(t, "/tmp/flow-profile/bookmarks", p.Bookmarks)
	assert.Equal(t, "/tmp/flow-profile/cookies.json", p.Cookies)
	assert.Equal(t, "/tmp/flow-profile/session.yaml", p.Session)
	assert.Equal(t, "/tmp/flow-profile/logs", p.Logs)
}

func TestOpen(t *testing.T) {
	root := filepath.Join(t.TempDir(), "profile")

	ctx, err := Open(root)
	require.NoError(t, err)
	defer ctx.Close()

	info, err := os.Stat(root)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	assert.Equal(t, config.ThemeDark, ctx.Theme())
	assert.Equal(t, config.DefaultHomeURL, ctx.Browser.Snapshot().HomeURL)
	assert.NotEmpty(t, ctx.Logger.LogPath())
}

func TestSetTheme_Persists(t *testing.T) {
	root := t.TempDir()

	ctx, err := Open(root)
	require.NoError(t, err)
	require.NoError(t, ctx.SetTheme(config.ThemeLight))
	assert.Error(t, ctx.SetTheme("sepia"))
	require.NoError(t, ctx.Close())

	reopened, err := Open(root)
	require.NoError(t, err)
	defer reopened.Close()
	assert.Equal(t, config.ThemeLight, reopened.Theme())
}

func TestOpen_InvalidConfig(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "config.json"), []byte("{broken"), 0o644))

	_, err := Open(root)
	assert.Error(t, err)
}

func TestInMemory(t *testing.T) {
	store, err := config.NewFileStore(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)

	manager := config.NewManager(store)
	_, err = InMemory(t.TempDir(), manager)
	assert.Error(t, err, "sections must be registered")

	require.NoError(t, manager.RegisterSection(config.NewBrowserSection()))
	require.NoError(t, manager.RegisterSection(config.NewUISection()))

	ctx, err := InMemory(t.TempDir(), manager)
	require.NoError(t, err)
	assert.Equal(t, config.ThemeDark, ctx.Theme())
}
