package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestNewFileStore(t *testing.T) {
	t.Run("creates store with custom path", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.json")

		store, err := NewFileStore(configPath)
		if err != nil {
			t.Fatalf("NewFileStore failed: %v", err)
		}

		if store.Path() != configPath {
			t.Errorf("Expected path %s, got %s", configPath, store.Path())
		}

		if store.IsModified() {
			t.Error("New store should not be modified")
		}
	})

	t.Run("loads existing config file", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.json")

		raw, _ := json.Marshal(map[string]interface{}{
			"version": "1.0",
			"sections": map[string]map[string]interface{}{
				"browser": {"home_url": "https://example.org"},
			},
		})
		if err := os.WriteFile(configPath, raw, 0644); err != nil {
			t.Fatalf("Failed to write test config: %v", err)
		}

		store, err := NewFileStore(configPath)
		if err != nil {
			t.Fatalf("NewFileStore failed: %v", err)
		}

		section, _ := store.GetSection("browser")
		if section["home_url"] != "https://example.org" {
			t.Errorf("Expected home_url to be loaded, got %v", section["home_url"])
		}
	})

	t.Run("rejects invalid JSON", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.json")
		if err := os.WriteFile(configPath, []byte("{not json"), 0644); err != nil {
			t.Fatalf("Failed to write test config: %v", err)
		}

		if _, err := NewFileStore(configPath); err == nil {
			t.Error("Expected error for invalid JSON")
		}
	})
}

func TestFileStore_SaveAndReload(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "config.json")

	store, err := NewFileStore(configPath)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}

	if err := store.SetSection("ui", map[string]interface{}{"theme": "light"}); err != nil {
		t.Fatalf("SetSection failed: %v", err)
	}
	if !store.IsModified() {
		t.Error("Store should be modified after SetSection")
	}

	if err := store.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if store.IsModified() {
		t.Error("Modified flag should be cleared after save")
	}
	if _, err := os.Stat(configPath + ".tmp"); !os.IsNotExist(err) {
		t.Error("Temp file should not remain after save")
	}

	reloaded, err := NewFileStore(configPath)
	if err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	section, _ := reloaded.GetSection("ui")
	if section["theme"] != "light" {
		t.Errorf("Expected theme 'light' after reload, got %v", section["theme"])
	}
}

func TestFileStore_Copies(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "config.json"))
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}

	t.Run("GetSection returns empty map for missing section", func(t *testing.T) {
		section, err := store.GetSection("missing")
		if err != nil {
			t.Fatalf("GetSection failed: %v", err)
		}
		if section == nil || len(section) != 0 {
			t.Errorf("Expected empty map, got %v", section)
		}
	})

	t.Run("SetSection stores a copy", func(t *testing.T) {
		data := map[string]interface{}{"key": "original"}
		store.SetSection("test", data)
		data["key"] = "changed"

		section, _ := store.GetSection("test")
		if section["key"] != "original" {
			t.Error("Store was affected by external modification")
		}
	})

	t.Run("GetAll returns deep copy", func(t *testing.T) {
		all, _ := store.GetAll()
		all["test"]["key"] = "changed"

		section, _ := store.GetSection("test")
		if section["key"] != "original" {
			t.Error("GetAll did not return a deep copy")
		}
	})

	t.Run("SetAll replaces sections", func(t *testing.T) {
		store.SetAll(map[string]map[string]interface{}{"only": {"a": 1.0}})

		all, _ := store.GetAll()
		if len(all) != 1 || all["only"]["a"] != 1.0 {
			t.Errorf("Unexpected sections after SetAll: %v", all)
		}
	})
}
