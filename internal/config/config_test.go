package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.HistoryPath != defaultHistoryPath {
		t.Fatalf("expected default history path, got %s", cfg.HistoryPath)
	}
	if cfg.FetchTimeout != 15*time.Second {
		t.Fatalf("expected 15s fetch timeout, got %s", cfg.FetchTimeout)
	}
	if cfg.Tail != defaultTail {
		t.Fatalf("expected default tail, got %d", cfg.Tail)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("HISTORY_PATH", "/tmp/h.csv")
	t.Setenv("FETCH_TIMEOUT", "3s")
	t.Setenv("HISTORY_TAIL", "12")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.HistoryPath != "/tmp/h.csv" {
		t.Fatalf("env override ignored: %s", cfg.HistoryPath)
	}
	if cfg.FetchTimeout != 3*time.Second {
		t.Fatalf("env override ignored: %s", cfg.FetchTimeout)
	}
	if cfg.Tail != 12 {
		t.Fatalf("env override ignored: %d", cfg.Tail)
	}
}

func TestInvalidFetchTimeoutFails(t *testing.T) {
	t.Setenv("FETCH_TIMEOUT", "soon")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid FETCH_TIMEOUT")
	}
}

func TestConfigFileProvidesBaseValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "history_path: /data/history.csv\nfetch_timeout: 30s\ntail: 3\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.HistoryPath != "/data/history.csv" || cfg.Tail != 3 {
		t.Fatalf("file values ignored: %+v", cfg)
	}
	if cfg.FetchTimeout != 30*time.Second {
		t.Fatalf("file fetch_timeout ignored: %s", cfg.FetchTimeout)
	}

	// Environment still wins over the file.
	t.Setenv("HISTORY_PATH", "/env/history.csv")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.HistoryPath != "/env/history.csv" {
		t.Fatalf("env should override file, got %s", cfg.HistoryPath)
	}
}
