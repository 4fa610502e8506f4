package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// withTempHome points the home directory at a temp dir for the test.
func withTempHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	withTempHome(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.URL != "http://localhost:8042" {
		t.Errorf("unexpected default server: %s", cfg.Server.URL)
	}
	if cfg.Server.TimeoutSeconds != 30 || cfg.Server.RequestsPerSecond != 10 {
		t.Errorf("unexpected server defaults: %+v", cfg.Server)
	}
	if cfg.Cache.PollSeconds != 60 {
		t.Errorf("unexpected cache defaults: %+v", cfg.Cache)
	}
}

func TestLoadHonorsServerEnv(t *testing.T) {
	withTempHome(t)
	t.Setenv("NEGWATCH_SERVER", "http://tournaments.example:9000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.URL != "http://tournaments.example:9000" {
		t.Errorf("env server not applied: %s", cfg.Server.URL)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	withTempHome(t)

	cfg := DefaultConfig()
	cfg.Server.URL = "http://negserver:8042"
	cfg.Server.TimeoutSeconds = 45
	cfg.UI.ShowJobsPanel = true
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Server.URL != "http://negserver:8042" {
		t.Errorf("server did not round trip: %s", loaded.Server.URL)
	}
	if loaded.Server.TimeoutSeconds != 45 {
		t.Errorf("timeout did not round trip: %d", loaded.Server.TimeoutSeconds)
	}
	if !loaded.UI.ShowJobsPanel {
		t.Error("jobs panel flag did not round trip")
	}
}

func TestLoadCorruptFileFallsBack(t *testing.T) {
	home := withTempHome(t)

	dir := filepath.Join(home, ".negwatch")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("a corrupt config must not fail startup: %v", err)
	}
	if cfg.Server.URL != "http://localhost:8042" {
		t.Errorf("expected defaults after corrupt config, got %s", cfg.Server.URL)
	}
}

func TestLoadFillsMissingFields(t *testing.T) {
	home := withTempHome(t)

	dir := filepath.Join(home, ".negwatch")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	// An older config file with only the server URL set.
	partial := []byte(`{"server":{"url":"http://old:8042"}}`)
	if err := os.WriteFile(filepath.Join(dir, "config.json"), partial, 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.URL != "http://old:8042" {
		t.Errorf("explicit value overwritten: %s", cfg.Server.URL)
	}
	if cfg.Server.TimeoutSeconds != 30 || cfg.Cache.PollSeconds != 60 {
		t.Errorf("zero fields not defaulted: %+v", cfg)
	}
}

func TestTimeout(t *testing.T) {
	cfg := Config{}
	if cfg.Timeout() != 30*time.Second {
		t.Errorf("zero timeout should default to 30s, got %v", cfg.Timeout())
	}
	cfg.Server.TimeoutSeconds = 5
	if cfg.Timeout() != 5*time.Second {
		t.Errorf("expected 5s, got %v", cfg.Timeout())
	}
}
