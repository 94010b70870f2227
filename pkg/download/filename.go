package download

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// fallbackName is used when a proposed name sanitizes to nothing.
const fallbackName = "download"

// Sanitize replaces characters that are not allowed in filenames with "_" and
// strips trailing dots and spaces.
func Sanitize(name string) string {
	name = strings.Map(func(r rune) rune {
		switch {
		case r < 0x20, r == 0x7f:
			return '_'
		case strings.ContainsRune(`<>:"/\|?*`, r):
			return '_'
		}
		return r
	}, name)

	name = strings.TrimRight(name, ". ")
	if name == "" {
		return fallbackName
	}
	return name
}

// UniqueName returns a sanitized name for proposed that does not exist in dir.
// A taken "name.ext" becomes "name (1).ext", then "name (2).ext" and so on.
func UniqueName(dir, proposed string) string {
	name := Sanitize(proposed)
	if !exists(filepath.Join(dir, name)) {
		return name
	}

	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	if base == "" {
		// Dotfiles like ".bashrc" have no extension to preserve
		base, ext = name, ""
	}

	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s (%d)%s", base, i, ext)
		if !exists(filepath.Join(dir, candidate)) {
			return candidate
		}
	}
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
