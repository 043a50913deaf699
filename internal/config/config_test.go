// Package config tests validate config loading behavior.
package config

import (
	"os"
	"path/filepath"
	"testing"
)

// TestLoadAppliesDefaults confirms defaults are applied on load.
func TestLoadAppliesDefaults(t *testing.T) {
	tmp := t.TempDir()
	p := filepath.Join(tmp, "shopkeeper.yaml")
	if err := os.WriteFile(p, []byte("log:\n  level: debug\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	c, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.API.BaseURL != "https://fakestoreapi.com" {
		t.Fatalf("expected default base URL, got %q", c.API.BaseURL)
	}
	if c.API.TimeoutSeconds != 20 {
		t.Fatalf("expected default timeout 20, got %d", c.API.TimeoutSeconds)
	}
	if c.Users.Backend != BackendRemote {
		t.Fatalf("expected remote backend default, got %q", c.Users.Backend)
	}
	if c.Credentials.Path == "" {
		t.Fatalf("expected credentials path default")
	}
	if c.Log.Level != "debug" {
		t.Fatalf("expected configured level to survive, got %q", c.Log.Level)
	}
}

// TestLoadEmptyPathIsPureDefaults allows running without a config file.
func TestLoadEmptyPathIsPureDefaults(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Log.Level != "info" {
		t.Fatalf("expected info default, got %q", c.Log.Level)
	}
}

// TestLoadRejectsUnknownBackend validates the users.backend enum.
func TestLoadRejectsUnknownBackend(t *testing.T) {
	tmp := t.TempDir()
	p := filepath.Join(tmp, "shopkeeper.yaml")
	if err := os.WriteFile(p, []byte("users:\n  backend: carrier-pigeon\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(p); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}

// TestLoadSeedRequiresLocalBackend rejects a seed file on the remote backend.
func TestLoadSeedRequiresLocalBackend(t *testing.T) {
	tmp := t.TempDir()
	p := filepath.Join(tmp, "shopkeeper.yaml")
	if err := os.WriteFile(p, []byte("users:\n  seed: ./users.json\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(p); err == nil {
		t.Fatalf("expected error for seed without local backend")
	}
}
