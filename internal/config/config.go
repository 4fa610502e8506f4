package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// Config is the persistent application configuration
type Config struct {
	// Server holds connection settings for the tournament server
	Server ServerConfig `json:"server"`

	// UI Preferences
	UI UIConfig `json:"ui"`

	// Cache holds scenario-cache maintenance preferences
	Cache CacheConfig `json:"cache"`
}

// ServerConfig holds tournament server connection settings
type ServerConfig struct {
	URL            string `json:"url"`
	TimeoutSeconds int    `json:"timeout_seconds"`
	// RequestsPerSecond caps client-side request rate against the server
	RequestsPerSecond float64 `json:"requests_per_second"`
}

// UIConfig holds UI preferences
type UIConfig struct {
	Theme         string `json:"theme"`
	ShowJobsPanel bool   `json:"show_jobs_panel"`
	ASCIIOnly     bool   `json:"ascii_only"`
}

// CacheConfig holds scenario cache polling preferences
type CacheConfig struct {
	PollSeconds int `json:"poll_seconds"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			URL:               "http://localhost:8042",
			TimeoutSeconds:    30,
			RequestsPerSecond: 10,
		},
		UI: UIConfig{
			Theme:         "dark",
			ShowJobsPanel: false,
		},
		Cache: CacheConfig{
			PollSeconds: 60,
		},
	}
}

// Timeout returns the server request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	if c.Server.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Server.TimeoutSeconds) * time.Second
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".negwatch", "config.json")
}

// DataDir returns the directory for local state (db, exports, logs)
func DataDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".negwatch")
}

// Load reads config from disk, or returns defaults
func Load() (*Config, error) {
	path := ConfigPath()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := DefaultConfig()
			cfg.AutoPopulateFromEnv()
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		// A corrupt config should never block startup
		return DefaultConfig(), nil
	}

	cfg.AutoPopulateFromEnv()
	cfg.applyDefaults()
	return &cfg, nil
}

// Save writes config to disk
func (c *Config) Save() error {
	path := ConfigPath()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// AutoPopulateFromEnv fills in settings from environment variables
func (c *Config) AutoPopulateFromEnv() {
	if url := os.Getenv("NEGWATCH_SERVER"); url != "" {
		c.Server.URL = url
	}
}

// applyDefaults fills zero values left by older config files.
func (c *Config) applyDefaults() {
	if c.Server.URL == "" {
		c.Server.URL = "http://localhost:8042"
	}
	if c.Server.TimeoutSeconds <= 0 {
		c.Server.TimeoutSeconds = 30
	}
	if c.Server.RequestsPerSecond <= 0 {
		c.Server.RequestsPerSecond = 10
	}
	if c.Cache.PollSeconds <= 0 {
		c.Cache.PollSeconds = 60
	}
	if c.UI.Theme == "" {
		c.UI.Theme = "dark"
	}
}
