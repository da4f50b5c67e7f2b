package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load with missing file: %v", err)
	}
	if cfg.Addr() != "127.0.0.1:8080" {
		t.Errorf("Addr() = %q", cfg.Addr())
	}
	if cfg.PatreonAuthURL != defaultAuthURL || cfg.PatreonTokenURL != defaultTokenURL {
		t.Errorf("Patreon endpoint defaults not applied")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portal.yaml")
	data := []byte("port: \"9000\"\napp_origin: https://portal.example.com\npatreon_client_id: file-client\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9000" {
		t.Errorf("port = %q, want 9000", cfg.Port)
	}
	if cfg.AppOrigin != "https://portal.example.com" {
		t.Errorf("app origin = %q", cfg.AppOrigin)
	}
	if cfg.PatreonClientID != "file-client" {
		t.Errorf("client id = %q", cfg.PatreonClientID)
	}
	// Unset keys keep their defaults.
	if cfg.Host != "127.0.0.1" {
		t.Errorf("host = %q, want default", cfg.Host)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portal.yaml")
	if err := os.WriteFile(path, []byte("patreon_client_id: file-client\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("PATREON_CLIENT_ID", "env-client")
	t.Setenv("PATREON_CLIENT_SECRET", "env-secret")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PatreonClientID != "env-client" {
		t.Errorf("client id = %q, want env to win", cfg.PatreonClientID)
	}
	if cfg.PatreonClientSecret != "env-secret" {
		t.Errorf("client secret = %q", cfg.PatreonClientSecret)
	}
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portal.yaml")
	if err := os.WriteFile(path, []byte("port: [broken"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Errorf("expected parse error")
	}
}
