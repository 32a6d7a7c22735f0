package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds runtime settings for the scansync CLI.
//
// Durations are time.Duration values (e.g., 10*time.Second). Sizes and
// concurrency are plain counts.
type Config struct {
	// ServiceBaseURL is the nutrition backend, e.g. "http://127.0.0.1:8080".
	ServiceBaseURL string

	// UserID tags committed diary entries.
	UserID string

	// DataDir holds the embedded database file.
	DataDir string

	LookupTimeout       time.Duration
	DebounceWindow      time.Duration
	CacheFreshFor       time.Duration
	CacheGCAfter        time.Duration
	FailedRetention     time.Duration
	OnlineCheckInterval time.Duration

	QueueMaxSize    int
	SyncConcurrency int

	// ForceOffline makes the network monitor report offline regardless of
	// actual reachability, for degradation drills.
	ForceOffline bool
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServiceBaseURL = "http://127.0.0.1:8080"
	c.UserID = "local"
	c.DataDir = defaultDataDir()
	c.LookupTimeout = 10 * time.Second
	c.DebounceWindow = 1500 * time.Millisecond
	c.CacheFreshFor = 5 * time.Minute
	c.CacheGCAfter = 30 * time.Minute
	c.FailedRetention = 7 * 24 * time.Hour
	c.OnlineCheckInterval = 30 * time.Second
	c.QueueMaxSize = 50
	c.SyncConcurrency = 3
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".scansync"
	}
	return filepath.Join(home, ".scansync")
}
