package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCookieStore_SaveLoad(t *testing.T) {
	s := CookieStore{Path: filepath.Join(t.TempDir(), "profile", "cookies.json")}

	jar := Jar{}
	jar["example.com"] = []Cookie{{Name: "session", Value: "abc", Expires: 1700000000}}
	jar["café.example"] = []Cookie{{Name: "greeting", Value: "héllo <b>", Expires: -1}}
	require.NoError(t, s.Save(jar))

	raw, err := os.ReadFile(s.Path)
	require.NoError(t, err)
	text := string(raw)
	assert.Contains(t, text, "héllo <b>", "non-ASCII and HTML characters are written as-is")
	assert.Contains(t, text, "\n    \"", "output is indented")

	loaded, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, jar, loaded)
}

func TestCookieStore_Load(t *testing.T) {
	t.Run("missing file is empty", func(t *testing.T) {
		jar, err := CookieStore{Path: filepath.Join(t.TempDir(), "none.json")}.Load()
		require.NoError(t, err)
		assert.Empty(t, jar)
	})

	t.Run("malformed file is empty with error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cookies.json")
		require.NoError(t, os.WriteFile(path, []byte("{oops"), 0o644))

		jar, err := CookieStore{Path: path}.Load()
		assert.ErrorIs(t, err, ErrMalformedCookies)
		assert.NotNil(t, jar)
		assert.Empty(t, jar)
	})

	t.Run("null document is empty", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cookies.json")
		require.NoError(t, os.WriteFile(path, []byte("null"), 0o644))

		jar, err := CookieStore{Path: path}.Load()
		require.NoError(t, err)
		assert.NotNil(t, jar)
	})
}

func TestCookieStore_Persist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))
	s := CookieStore{Path: path}

	require.NoError(t, s.Persist("example.com", []Cookie{{Name: "a", Value: "1"}}))
	require.NoError(t, s.Persist("other.org", []Cookie{{Name: "b", Value: "2"}}))

	jar, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"example.com", "other.org"}, jar.Domains())

	require.NoError(t, s.Persist("example.com", nil))
	jar, err = s.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"other.org"}, jar.Domains())
}

func TestCookieStore_ForSite(t *testing.T) {
	s := CookieStore{Path: filepath.Join(t.TempDir(), "cookies.json")}
	require.NoError(t, s.Save(Jar{
		".example.co.uk":    {{Name: "a"}},
		"www.example.co.uk": {{Name: "b"}},
		"example.com":       {{Name: "c"}},
		"other.example.com": {{Name: "d"}},
		"localhost":         {{Name: "e"}},
		"attacker.co.uk":    {{Name: "f"}},
	}))

	jar, err := s.ForSite("https://shop.example.co.uk/cart")
	require.NoError(t, err)
	assert.Equal(t, []string{".example.co.uk", "www.example.co.uk"}, jar.Domains())

	jar, err = s.ForSite("http://localhost:8080/")
	require.NoError(t, err)
	assert.Equal(t, []string{"localhost"}, jar.Domains())

	_, err = s.ForSite("about:blank")
	assert.Error(t, err)
}

func TestSite(t *testing.T) {
	site, err := Site("https://a.b.example.com/x")
	require.NoError(t, err)
	assert.Equal(t, "example.com", site)

	site, err = Site("https://WWW.Example.CO.UK")
	require.NoError(t, err)
	assert.Equal(t, "example.co.uk", strings.ToLower(site))
}
