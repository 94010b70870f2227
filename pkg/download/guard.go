package download

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutsideDir is returned for destinations that escape the downloads directory.
var ErrOutsideDir = errors.New("path is outside the downloads directory")

// Guard keeps download destinations inside one directory. Filenames come from
// servers and page script, so every destination is resolved and checked
// before anything is written.
type Guard struct {
	dir string // absolute, symlinks evaluated
}

// NewGuard creates the downloads directory if needed and returns a guard for it.
func NewGuard(dir string) (*Guard, error) {
	if dir == "" {
		return nil, fmt.Errorf("downloads directory cannot be empty")
	}

	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve downloads directory: %w", err)
	}

	if err := os.MkdirAll(absPath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create downloads directory: %w", err)
	}

	// Evaluate symlinks so comparisons are stable (/var -> /private/var on macOS)
	evalPath, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate downloads directory symlinks: %w", err)
	}

	return &Guard{dir: evalPath}, nil
}

// Dir returns the guarded directory.
func (g *Guard) Dir() string {
	return g.dir
}

// Resolve joins name onto the downloads directory and checks the result stays
// inside it.
func (g *Guard) Resolve(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("filename cannot be empty")
	}

	path := filepath.Clean(filepath.Join(g.dir, name))
	if !g.Contains(path) {
		return "", fmt.Errorf("%q: %w", name, ErrOutsideDir)
	}
	return path, nil
}

// Contains reports whether path is strictly inside the downloads directory.
// Existing symlinks are followed, so a link pointing elsewhere is rejected.
func (g *Guard) Contains(path string) bool {
	evalPath := resolveSymlinks(filepath.Clean(path))
	if evalPath == g.dir {
		return false
	}
	return strings.HasPrefix(evalPath, g.dir+string(filepath.Separator))
}

// resolveSymlinks evaluates symlinks in the longest existing prefix of path
// and re-appends the remaining components.
func resolveSymlinks(path string) string {
	var rest []string
	current := path

	for {
		if resolved, err := filepath.EvalSymlinks(current); err == nil {
			for i := len(rest) - 1; i >= 0; i-- {
				resolved = filepath.Join(resolved, rest[i])
			}
			return resolved
		}

		parent := filepath.Dir(current)
		if parent == current {
			return path
		}
		rest = append(rest, filepath.Base(current))
		current = parent
	}
}
