package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.Port != "8080" {
		t.Errorf("default port = %s, want 8080", cfg.Server.Port)
	}
	if cfg.Browsing.Buffer != 2 {
		t.Errorf("default buffer = %d, want 2", cfg.Browsing.Buffer)
	}
	if cfg.Browsing.DebounceMS != 100 {
		t.Errorf("default debounce = %d, want 100", cfg.Browsing.DebounceMS)
	}
	if cfg.Browsing.CacheFailures {
		t.Error("failure caching must default off (failed fetches stay retryable)")
	}
	if cfg.Origin.URL != "" {
		t.Errorf("origin must default disabled, got %q", cfg.Origin.URL)
	}
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("config file is empty")
	}

	// Refuses to clobber an existing file.
	if err := WriteDefault(path); err == nil {
		t.Error("expected error writing over existing config")
	}
}

func TestNewManager_LoadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("server:\n  host: 0.0.0.0\n  port: \"9999\"\nbrowsing:\n  buffer: 5\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	cm, err := NewManager(path)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	cfg := cm.Get()
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("host = %s, want 0.0.0.0", cfg.Server.Host)
	}
	if cfg.Server.Port != "9999" {
		t.Errorf("port = %s, want 9999", cfg.Server.Port)
	}
	if cfg.Browsing.Buffer != 5 {
		t.Errorf("buffer = %d, want 5", cfg.Browsing.Buffer)
	}
	// Values absent from the file fall back to defaults.
	if cfg.Browsing.PrefetchConcurrency != 16 {
		t.Errorf("prefetch_concurrency = %d, want default 16", cfg.Browsing.PrefetchConcurrency)
	}
}
