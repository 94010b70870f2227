package store

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// bookmarkFile matches numbered bookmark files.
var bookmarkFile = regexp.MustCompile(`^bk(\d+)\.txt$`)

// Bookmark is one saved page.
type Bookmark struct {
	Title string
	URL   string
}

// BookmarkStore keeps bookmarks as bk1.txt .. bkN.txt in Dir, one URL per file.
type BookmarkStore struct {
	Dir string
}

// Load reads the numbered files in numeric order. Empty files are skipped and
// titles are derived from the position in the result ("bk1", "bk2", ...). A
// missing directory holds no bookmarks.
func (s BookmarkStore) Load() ([]Bookmark, error) {
	numbered, err := s.numberedFiles()
	if err != nil {
		return nil, err
	}

	var bookmarks []Bookmark
	for _, nf := range numbered {
		data, err := os.ReadFile(filepath.Join(s.Dir, nf.name))
		if err != nil {
			return nil, fmt.Errorf("failed to read bookmark %s: %w", nf.name, err)
		}

		url := strings.TrimSpace(string(data))
		if url == "" {
			continue
		}

		bookmarks = append(bookmarks, Bookmark{
			Title: fmt.Sprintf("bk%d", len(bookmarks)+1),
			URL:   url,
		})
	}
	return bookmarks, nil
}

// Save replaces every numbered file with bookmarks, numbered 1..N in order.
func (s BookmarkStore) Save(bookmarks []Bookmark) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create bookmark directory: %w", err)
	}

	numbered, err := s.numberedFiles()
	if err != nil {
		return err
	}
	for _, nf := range numbered {
		if err := os.Remove(filepath.Join(s.Dir, nf.name)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove bookmark %s: %w", nf.name, err)
		}
	}

	for i, b := range bookmarks {
		name := fmt.Sprintf("bk%d.txt", i+1)
		if err := os.WriteFile(filepath.Join(s.Dir, name), []byte(b.URL+"\n"), 0o644); err != nil {
			return fmt.Errorf("failed to write bookmark %s: %w", name, err)
		}
	}
	return nil
}

type numberedFile struct {
	name string
	n    int
}

func (s BookmarkStore) numberedFiles() ([]numberedFile, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read bookmark directory: %w", err)
	}

	var files []numberedFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m := bookmarkFile.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		files = append(files, numberedFile{name: entry.Name(), n: n})
	}

	slices.SortFunc(files, func(a, b numberedFile) int { return a.n - b.n })
	return files, nil
}

// Bookmarks is the in-memory bookmark list, kept in lockstep with its store:
// every change rewrites the files, and a failed write leaves the list as it was.
type Bookmarks struct {
	store BookmarkStore
	items []Bookmark
}

// OpenBookmarks loads the bookmarks held by store.
func OpenBookmarks(store BookmarkStore) (*Bookmarks, error) {
	items, err := store.Load()
	if err != nil {
		return nil, err
	}
	return &Bookmarks{store: store, items: items}, nil
}

// EmptyBookmarks returns an empty list backed by store. The store's files are
// not touched until the first change.
func EmptyBookmarks(store BookmarkStore) *Bookmarks {
	return &Bookmarks{store: store}
}

// Add appends a bookmark and rewrites the store.
func (b *Bookmarks) Add(title, url string) error {
	if strings.TrimSpace(url) == "" {
		return fmt.Errorf("bookmark URL cannot be empty")
	}

	next := append(slices.Clone(b.items), Bookmark{Title: title, URL: url})
	if err := b.store.Save(next); err != nil {
		return err
	}
	b.items = next
	return nil
}

// Remove deletes the bookmark at index and rewrites the store.
func (b *Bookmarks) Remove(index int) error {
	if index < 0 || index >= len(b.items) {
		return fmt.Errorf("no bookmark at index %d", index)
	}

	next := slices.Delete(slices.Clone(b.items), index, index+1)
	if err := b.store.Save(next); err != nil {
		return err
	}
	b.items = next
	return nil
}

// Get returns the bookmark at index.
func (b *Bookmarks) Get(index int) (Bookmark, bool) {
	if index < 0 || index >= len(b.items) {
		return Bookmark{}, false
	}
	return b.items[index], true
}

// List returns a copy of the bookmarks in order.
func (b *Bookmarks) List() []Bookmark {
	return slices.Clone(b.items)
}

// Len returns the number of bookmarks.
func (b *Bookmarks) Len() int {
	return len(b.items)
}
