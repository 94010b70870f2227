package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Session is the set of tabs open when Flow last exited.
type Session struct {
	Tabs    []string  `yaml:"tabs"`
	Active  int       `yaml:"active"`
	SavedAt time.Time `yaml:"saved_at"`
}

// SessionFile stores a Session as YAML.
type SessionFile struct {
	Path string
}

// Save writes session, replacing any previous one.
func (f SessionFile) Save(session Session) error {
	if session.SavedAt.IsZero() {
		session.SavedAt = time.Now()
	}

	data, err := yaml.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(f.Path), 0o755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	if err := os.WriteFile(f.Path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// Load reads the saved session. A missing file is an empty session. Active is
// clamped to the restored tabs.
func (f SessionFile) Load() (Session, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return Session{}, nil
		}
		return Session{}, fmt.Errorf("failed to read session file: %w", err)
	}

	var session Session
	if err := yaml.Unmarshal(data, &session); err != nil {
		return Session{}, fmt.Errorf("failed to parse session file: %w", err)
	}

	if session.Active < 0 || session.Active >= len(session.Tabs) {
		session.Active = 0
	}
	return session, nil
}
