package download

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/gobwas/glob"
)

// keywordPattern matches paths and queries that announce a download.
const keywordPattern = "*download*"

// Heuristic decides whether a URL names a file rather than a page.
type Heuristic struct {
	extensions []glob.Glob
	keyword    glob.Glob
}

// NewHeuristic compiles one pattern per extension. Extensions are given
// without the leading dot and matched case-insensitively.
func NewHeuristic(extensions []string) (*Heuristic, error) {
	h := &Heuristic{}

	for _, ext := range extensions {
		ext = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
		if ext == "" {
			continue
		}
		g, err := glob.Compile("*." + glob.QuoteMeta(ext))
		if err != nil {
			return nil, fmt.Errorf("invalid download extension %q: %w", ext, err)
		}
		h.extensions = append(h.extensions, g)
	}

	keyword, err := glob.Compile(keywordPattern)
	if err != nil {
		return nil, fmt.Errorf("invalid keyword pattern: %w", err)
	}
	h.keyword = keyword

	return h, nil
}

// Matches reports whether target looks like a file download: its path ends
// in a listed extension, or its path or query mentions "download".
func (h *Heuristic) Matches(target string) bool {
	u, err := url.Parse(target)
	if err != nil {
		return false
	}

	path := strings.ToLower(u.Path)
	query := strings.ToLower(u.RawQuery)

	for _, g := range h.extensions {
		if g.Match(path) {
			return true
		}
	}

	return h.keyword.Match(path) || h.keyword.Match(query)
}

// IsObjectURL reports whether target is an origin-scoped object reference
// that the engine's network stack cannot fetch.
func IsObjectURL(target string) bool {
	return strings.HasPrefix(strings.ToLower(target), "blob:")
}
