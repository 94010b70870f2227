package chrome

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/entrhq/flow/pkg/download"
	"github.com/entrhq/flow/pkg/store"
)

var (
	openKey = key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "open"),
	)
	removeKey = key.NewBinding(
		key.WithKeys("d", "delete"),
		key.WithHelp("d", "remove"),
	)
)

func (m *model) bookmarksOverlay() *listOverlay {
	load := func() (string, []entry) {
		bookmarks := m.browser.Bookmarks()
		rows := make([]entry, len(bookmarks))
		for i, b := range bookmarks {
			rows[i] = entry{title: b.Title, desc: b.URL}
		}
		return "Bookmarks", rows
	}

	return newListOverlay(m.theme, m.width, m.bodyHeight(), load,
		listAction{binding: openKey, run: func(i int) (bool, tea.Cmd) {
			if err := m.browser.OpenBookmark(i); err != nil {
				return false, noticeCmd(err.Error(), true)
			}
			return true, nil
		}},
		listAction{binding: removeKey, run: func(i int) (bool, tea.Cmd) {
			_ = m.browser.RemoveBookmark(i)
			return false, nil
		}},
	)
}

func (m *model) historyOverlay() *listOverlay {
	load := func() (string, []entry) {
		history := m.browser.History()
		rows := make([]entry, len(history))
		for i, h := range history {
			title := h.Title
			if title == "" {
				title = h.URL
			}
			rows[i] = entry{title: title, desc: h.Timestamp() + "  " + h.URL}
		}
		return "History", rows
	}

	clearAll := key.NewBinding(
		key.WithKeys("C"),
		key.WithHelp("C", "clear all"),
	)

	return newListOverlay(m.theme, m.width, m.bodyHeight(), load,
		listAction{binding: openKey, run: func(i int) (bool, tea.Cmd) {
			if err := m.browser.OpenHistory(i); err != nil {
				return false, noticeCmd(err.Error(), true)
			}
			return true, nil
		}},
		listAction{binding: clearAll, any: true, run: func(int) (bool, tea.Cmd) {
			m.browser.ClearHistory()
			return false, nil
		}},
	)
}

// downloadsOverlay follows the download list live until it is closed.
func (m *model) downloadsOverlay() *listOverlay {
	load := func() (string, []entry) {
		records := m.browser.Downloads()
		rows := make([]entry, len(records))
		for i, r := range records {
			rows[i] = entry{title: r.Filename, desc: describeDownload(r)}
		}
		return fmt.Sprintf("Downloads (%s)", m.snap.DownloadsDir), rows
	}

	openDir := key.NewBinding(
		key.WithKeys("o"),
		key.WithHelp("o", "open folder"),
	)

	o := newListOverlay(m.theme, m.width, m.bodyHeight(), load,
		listAction{binding: removeKey, run: func(i int) (bool, tea.Cmd) {
			if err := m.browser.RemoveDownload(i); err != nil {
				return false, noticeCmd(err.Error(), true)
			}
			return false, nil
		}},
		listAction{binding: openDir, any: true, run: func(int) (bool, tea.Cmd) {
			if err := m.browser.OpenDownloadsDir(); err != nil {
				return false, noticeCmd(err.Error(), true)
			}
			return false, nil
		}},
	)

	m.browser.WatchDownloads()
	o.onClose = m.browser.UnwatchDownloads
	return o
}

func describeDownload(r download.Record) string {
	var parts []string
	switch {
	case r.State == download.StateInProgress && r.Total > 0:
		parts = append(parts, fmt.Sprintf("%s of %s", formatBytes(r.Received), formatBytes(r.Total)))
	case r.State == download.StateInProgress:
		parts = append(parts, r.State.String())
	case r.Status != "":
		parts = append(parts, r.Status)
	default:
		parts = append(parts, r.State.String())
	}
	if r.Reason != "" {
		parts = append(parts, r.Reason)
	}
	if r.Path != "" {
		parts = append(parts, r.Path)
	} else {
		parts = append(parts, r.URL)
	}
	return strings.Join(parts, " • ")
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// cookiesOverlay lists stored cookies for the current site, or every site.
func (m *model) cookiesOverlay() *listOverlay {
	siteOnly := true

	load := func() (string, []entry) {
		jar, err := m.browser.Cookies(siteOnly)
		title := "Cookies for this site"
		if !siteOnly {
			title = "All cookies"
		}
		if err != nil {
			return title + " (" + err.Error() + ")", nil
		}
		return title, cookieRows(jar)
	}

	scope := key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "site/all"),
	)
	save := key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "save from page"),
	)

	return newListOverlay(m.theme, m.width, m.bodyHeight(), load,
		listAction{binding: scope, any: true, run: func(int) (bool, tea.Cmd) {
			siteOnly = !siteOnly
			return false, nil
		}},
		listAction{binding: save, any: true, run: func(int) (bool, tea.Cmd) {
			_ = m.browser.SaveCookies()
			return false, nil
		}},
	)
}

func cookieRows(jar store.Jar) []entry {
	var rows []entry
	for _, domain := range jar.Domains() {
		for _, c := range jar[domain] {
			desc := domain
			if c.Expires > 0 {
				desc += " • expires " + time.Unix(int64(c.Expires), 0).Format(store.TimestampFormat)
			} else {
				desc += " • session"
			}
			rows = append(rows, entry{title: c.Name + "=" + c.Value, desc: desc})
		}
	}
	return rows
}
