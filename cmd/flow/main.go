// Package main provides Flow, a tabbed browser driven from the terminal.
// Pages render in Chromium windows; tabs, the address bar, bookmarks,
// history, downloads and settings live in the terminal chrome.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/entrhq/flow/pkg/chrome"
	"github.com/entrhq/flow/pkg/download"
	"github.com/entrhq/flow/pkg/engine"
	"github.com/entrhq/flow/pkg/navigation"
	"github.com/entrhq/flow/pkg/profile"
	"github.com/entrhq/flow/pkg/shell"
)

const (
	version = "0.1.0"

	// downloadGrace is how long running downloads may finish after the chrome exits
	downloadGrace = 30 * time.Second
)

// Config holds the command line configuration
type Config struct {
	ProfileDir   string
	HomeURL      string
	Headless     bool
	DevToolsPort int
	Restore      bool
	NoSession    bool
	ShowVersion  bool
	Addresses    []string

	// explicit records the flags given on the command line
	explicit map[string]bool
}

func main() {
	config := parseFlags()

	if config.ShowVersion {
		fmt.Printf("Flow v%s\n", version)
		return
	}

	if err := config.validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, config); err != nil {
		stop()
		log.Fatalf("Application error: %v", err)
	}
}

// parseFlags parses command line flags and environment variables. Flags win
// over the environment, which wins over the saved configuration.
func parseFlags() *Config {
	config := &Config{}

	profileDir := os.Getenv("FLOW_PROFILE")
	if profileDir == "" {
		profileDir = profile.DefaultRoot()
	}

	flag.StringVar(&config.ProfileDir, "profile", profileDir, "Profile directory (or set FLOW_PROFILE env var)")
	flag.StringVar(&config.HomeURL, "home", os.Getenv("FLOW_HOME_URL"), "Home page for this run (or set FLOW_HOME_URL env var)")
	flag.BoolVar(&config.Headless, "headless", false, "Run Chromium without windows (default from config)")
	flag.IntVar(&config.DevToolsPort, "devtools-port", 0, "Remote debugging port used by developer tools tabs (default from config)")
	flag.BoolVar(&config.Restore, "restore", false, "Reopen the tabs of the last session")
	flag.BoolVar(&config.NoSession, "no-session", false, "Do not save the session on exit")
	flag.BoolVar(&config.ShowVersion, "version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Flow - a tabbed browser with a terminal chrome\n\n")
		fmt.Fprintf(os.Stderr, "Usage: flow [options] [address ...]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  FLOW_PROFILE       Profile directory\n")
		fmt.Fprintf(os.Stderr, "  FLOW_HOME_URL      Home page\n")
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  flow                                   # Open the home page\n")
		fmt.Fprintf(os.Stderr, "  flow example.com \"go generics\"         # One tab per address\n")
		fmt.Fprintf(os.Stderr, "  flow -restore\n")
		fmt.Fprintf(os.Stderr, "  flow -profile /tmp/flow -home https://example.com\n")
	}

	flag.Parse()
	config.Addresses = flag.Args()
	config.explicit = make(map[string]bool)
	flag.Visit(func(f *flag.Flag) {
		config.explicit[f.Name] = true
	})
	return config
}

// validate checks that the configuration is valid
func (c *Config) validate() error {
	if c.DevToolsPort < 0 || c.DevToolsPort > 65535 {
		return fmt.Errorf("devtools port must be between 1 and 65535, got %d", c.DevToolsPort)
	}
	if c.Restore && len(c.Addresses) > 0 {
		return fmt.Errorf("-restore cannot be combined with addresses")
	}
	return nil
}

// run wires the profile, engine, shell and chrome together and blocks until
// the chrome exits.
func run(ctx context.Context, config *Config) (err error) {
	pctx, err := profile.Open(config.ProfileDir)
	if err != nil {
		return err
	}
	defer pctx.Close()

	logger := pctx.Logger
	logger.Infof("Flow v%s starting (profile %s)", version, config.ProfileDir)

	if config.HomeURL != "" {
		home := navigation.ResolveAddress(config.HomeURL, pctx.Browser.Snapshot().SearchURL)
		if home == "" {
			return fmt.Errorf("invalid home page %q", config.HomeURL)
		}
		pctx.Browser.SetHomeURL(home)
	}

	settings := pctx.Browser.Snapshot()
	headless := settings.Headless
	if config.explicit["headless"] {
		headless = config.Headless
	}
	port := settings.DevToolsPort
	if config.DevToolsPort != 0 {
		port = config.DevToolsPort
	}

	eng := engine.New(engine.Options{
		Headless:     headless,
		DevToolsPort: port,
		DarkMode:     pctx.UI.GetWebDarkMode(),
		InitScripts:  []string{download.ClickHookScript},
		Logger:       logger.With("engine"),
	})

	sh, err := shell.New(pctx, eng)
	if err != nil {
		return err
	}

	if err := eng.Start(sh, sh); err != nil {
		return fmt.Errorf("failed to start browser engine: %w", err)
	}
	defer func() {
		// downloads belong to their pages, so they finish before tabs close
		sh.FinishDownloads(downloadGrace)
		// the shell releases its lock before the engine drains its callbacks
		if closeErr := sh.Close(!config.NoSession); closeErr != nil {
			logger.Warnf("failed to save session: %v", closeErr)
		}
		if shutdownErr := eng.Shutdown(); shutdownErr != nil && err == nil {
			err = fmt.Errorf("failed to stop browser engine: %w", shutdownErr)
		}
	}()

	if config.Restore {
		err = sh.Restore()
	} else {
		err = sh.Open(config.Addresses)
	}
	if err != nil {
		return err
	}

	return chrome.New(sh, logger.With("chrome")).Run(ctx)
}
