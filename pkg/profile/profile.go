// Package profile holds the application context: where Flow keeps its files,
// the loaded configuration and the run's logger. It is constructed once in
// main and passed to every component that needs it.
package profile

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/entrhq/flow/pkg/config"
	"github.com/entrhq/flow/pkg/logging"
)

// Paths is the on-disk layout of a profile.
type Paths struct {
	Root      string
	Config    string
	Bookmarks string
	Cookies   string
	Session   string
	Logs      string
}

// NewPaths lays out a profile rooted at root.
func NewPaths(root string) Paths {
	return Paths{
		Root:      root,
		Config:    filepath.Join(root, "config.json"),
		Bookmarks: filepath.Join(root, "bookmarks"),
		Cookies:   filepath.Join(root, "cookies.json"),
		Session:   filepath.Join(root, "session.yaml"),
		Logs:      filepath.Join(root, "logs"),
	}
}

// DefaultRoot returns ~/.flow, or .flow in the working directory when the
// home directory is unknown.
func DefaultRoot() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".flow"
	}
	return filepath.Join(homeDir, ".flow")
}

// Context is the explicitly constructed application context.
type Context struct {
	Paths   Paths
	Config  *config.Manager
	Browser *config.BrowserSection
	UI      *config.UISection
	Logger  *logging.Logger
}

// Open creates the profile directory if needed, loads its configuration and
// starts the run's log file. A log file that cannot be opened is not fatal;
// the logger falls back to stderr.
func Open(root string) (*Context, error) {
	paths := NewPaths(root)

	if err := os.MkdirAll(paths.Root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create profile directory: %w", err)
	}

	logger, _ := logging.NewLogger(paths.Logs, "flow")

	manager, err := config.Open(paths.Config)
	if err != nil {
		logger.Close()
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return newContext(paths, manager, logger)
}

// InMemory returns a context over manager that logs nowhere. Paths are rooted
// at root but nothing is created.
func InMemory(root string, manager *config.Manager) (*Context, error) {
	return newContext(NewPaths(root), manager, logging.Discard("flow"))
}

func newContext(paths Paths, manager *config.Manager, logger *logging.Logger) (*Context, error) {
	browser, err := config.Browser(manager)
	if err != nil {
		return nil, err
	}
	ui, err := config.UI(manager)
	if err != nil {
		return nil, err
	}

	return &Context{
		Paths:   paths,
		Config:  manager,
		Browser: browser,
		UI:      ui,
		Logger:  logger,
	}, nil
}

// Theme returns the current chrome theme.
func (c *Context) Theme() string {
	return c.UI.GetTheme()
}

// SetTheme switches the chrome theme and saves the configuration.
func (c *Context) SetTheme(theme string) error {
	if err := c.UI.SetTheme(theme); err != nil {
		return err
	}
	return c.Save()
}

// Save validates and writes every configuration section.
func (c *Context) Save() error {
	if err := c.Config.SaveAll(); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}
	return nil
}

// Close flushes and closes the log file.
func (c *Context) Close() error {
	return c.Logger.Close()
}
