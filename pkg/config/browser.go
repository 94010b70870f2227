package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

const (
	// SectionIDBrowser is the identifier for the browser settings section
	SectionIDBrowser = "browser"

	// DefaultHomeURL is loaded by new tabs and the Home action
	DefaultHomeURL = "https://www.startpage.com"

	// DefaultSearchURL receives address-bar queries appended verbatim
	DefaultSearchURL = "https://www.startpage.com/do/search?q="

	defaultDevToolsPort = 9222
)

// DefaultDownloadExtensions are file extensions whose URLs are saved instead of loaded.
var DefaultDownloadExtensions = []string{
	"zip", "rar", "7z", "tar", "gz", "tgz", "bz2", "xz", "zst",
	"exe", "msi", "dmg", "pkg", "deb", "rpm", "appimage", "apk",
	"iso", "img", "pdf", "jar", "torrent",
}

// BrowserSection holds engine and navigation settings.
type BrowserSection struct {
	HomeURL            string   `json:"home_url"`
	SearchURL          string   `json:"search_url"`
	DownloadsDir       string   `json:"downloads_dir"`
	Headless           bool     `json:"headless"`
	DevToolsPort       int      `json:"devtools_port"`
	DownloadExtensions []string `json:"download_extensions"`
	mu                 sync.RWMutex
}

// NewBrowserSection creates a browser section with default settings.
func NewBrowserSection() *BrowserSection {
	s := &BrowserSection{}
	s.Reset()
	return s
}

// ID returns the section identifier.
func (s *BrowserSection) ID() string {
	return SectionIDBrowser
}

// Title returns the section title.
func (s *BrowserSection) Title() string {
	return "Browser"
}

// Description returns the section description.
func (s *BrowserSection) Description() string {
	return "Home page, search endpoint, downloads directory and engine launch options."
}

// Data returns the current configuration data.
func (s *BrowserSection) Data() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	extensions := make([]any, 0, len(s.DownloadExtensions))
	for _, ext := range s.DownloadExtensions {
		extensions = append(extensions, ext)
	}

	return map[string]any{
		"home_url":            s.HomeURL,
		"search_url":          s.SearchURL,
		"downloads_dir":       s.DownloadsDir,
		"headless":            s.Headless,
		"devtools_port":       s.DevToolsPort,
		"download_extensions": extensions,
	}
}

// SetData updates the configuration from the provided data.
//
//nolint:gocyclo
func (s *BrowserSection) SetData(data map[string]any) error {
	if data == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range data {
		switch key {
		case "home_url", "search_url", "downloads_dir":
			str, ok := value.(string)
			if !ok {
				return fmt.Errorf("invalid value type for %s: expected string, got %T", key, value)
			}
			switch key {
			case "home_url":
				s.HomeURL = str
			case "search_url":
				s.SearchURL = str
			default:
				s.DownloadsDir = expandHome(str)
			}

		case "headless":
			enabled, ok := value.(bool)
			if !ok {
				return fmt.Errorf("invalid value type for headless: expected bool, got %T", value)
			}
			s.Headless = enabled

		case "devtools_port":
			// JSON numbers come as float64
			switch v := value.(type) {
			case float64:
				s.DevToolsPort = int(v)
			case int:
				s.DevToolsPort = v
			default:
				return fmt.Errorf("invalid value type for devtools_port: expected number, got %T", value)
			}

		case "download_extensions":
			list, ok := value.([]any)
			if !ok {
				return fmt.Errorf("invalid value type for download_extensions: expected list, got %T", value)
			}
			extensions := make([]string, 0, len(list))
			for _, item := range list {
				ext, ok := item.(string)
				if !ok {
					return fmt.Errorf("invalid download extension %v: expected string", item)
				}
				extensions = append(extensions, strings.TrimPrefix(strings.ToLower(ext), "."))
			}
			s.DownloadExtensions = extensions

		default:
			// Ignore unknown keys for forward compatibility
			continue
		}
	}

	return nil
}

// Validate validates the current configuration.
func (s *BrowserSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for name, raw := range map[string]string{"home_url": s.HomeURL, "search_url": s.SearchURL} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" {
			return fmt.Errorf("%s must be an absolute URL, got %q", name, raw)
		}
	}
	if s.DownloadsDir == "" {
		return fmt.Errorf("downloads_dir is required")
	}
	if s.DevToolsPort < 1024 || s.DevToolsPort > 65535 {
		return fmt.Errorf("devtools_port must be between 1024 and 65535, got %d", s.DevToolsPort)
	}
	return nil
}

// Reset resets the section to default configuration.
func (s *BrowserSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.HomeURL = DefaultHomeURL
	s.SearchURL = DefaultSearchURL
	s.DownloadsDir = defaultDownloadsDir()
	s.Headless = false
	s.DevToolsPort = defaultDevToolsPort
	s.DownloadExtensions = slices.Clone(DefaultDownloadExtensions)
}

// Snapshot returns a copy of the settings that is safe to read without locking.
func (s *BrowserSection) Snapshot() BrowserSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return BrowserSettings{
		HomeURL:            s.HomeURL,
		SearchURL:          s.SearchURL,
		DownloadsDir:       s.DownloadsDir,
		Headless:           s.Headless,
		DevToolsPort:       s.DevToolsPort,
		DownloadExtensions: slices.Clone(s.DownloadExtensions),
	}
}

// SetHomeURL changes the home page.
func (s *BrowserSection) SetHomeURL(home string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.HomeURL = home
}

// BrowserSettings is a point-in-time copy of BrowserSection.
type BrowserSettings struct {
	HomeURL            string
	SearchURL          string
	DownloadsDir       string
	Headless           bool
	DevToolsPort       int
	DownloadExtensions []string
}

func defaultDownloadsDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "Downloads"
	}
	return filepath.Join(homeDir, "Downloads")
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(homeDir, strings.TrimPrefix(path, "~"))
}
