package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	// Meelo server connection
	Server ServerConfig `koanf:"server"`

	// Queue engine tuning
	Queue QueueConfig `koanf:"queue"`

	// Playlist reorder behavior
	Reorder ReorderConfig `koanf:"reorder"`

	// In-memory page cache of remote queries
	Cache CacheConfig `koanf:"cache"`

	Log LogConfig `koanf:"log"`

	// Local playlist database
	Database DatabaseConfig `koanf:"database"`

	// Playlist bound to the front end
	Playlist PlaylistConfig `koanf:"playlist"`

	// Desktop notifications
	Notify NotifyConfig `koanf:"notify"`
}

// ServerConfig holds the Meelo API connection settings.
type ServerConfig struct {
	URL            string `koanf:"url"`             // API root, e.g. "http://localhost:5000/api"
	Token          string `koanf:"token"`           // access token sent as Bearer
	PageSize       int    `koanf:"page_size"`       // entries per page (default: 35)
	TimeoutSeconds int    `koanf:"timeout_seconds"` // request timeout (default: 30)
}

// Timeout returns the request timeout as a duration.
func (s ServerConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// QueueConfig holds queue engine settings.
type QueueConfig struct {
	PrefetchThreshold *int `koanf:"prefetch_threshold"` // entries before the tail that trigger the next page (default: 2)
	HistorySize       int  `koanf:"history_size"`       // undo steps kept (default: 50)
}

// ReorderConfig holds reorder staging settings.
type ReorderConfig struct {
	RollbackOnFailure bool `koanf:"rollback_on_failure"` // restore the queue order if saving the playlist fails
}

// CacheConfig holds remote page cache settings.
type CacheConfig struct {
	Pages *int `koanf:"pages"` // cached pages, 0 disables the cache (default: 128)
}

// LogConfig holds logging settings.
type LogConfig struct {
	File  string `koanf:"file"`  // log file, empty disables logging
	Level string `koanf:"level"` // "debug", "info", "warn", "error" (default: "info")
}

// DatabaseConfig holds local database settings.
type DatabaseConfig struct {
	Path string `koanf:"path"` // empty means the XDG data directory
}

// PlaylistConfig selects the playlist played with "P".
type PlaylistConfig struct {
	ID    int64 `koanf:"id"`    // playlist id, 0 disables
	Local bool  `koanf:"local"` // read from the local database instead of the server
}

// NotifyConfig holds desktop notification settings.
type NotifyConfig struct {
	Enabled bool `koanf:"enabled"` // announce the playing entry over D-Bus
}

func Load() (*Config, error) {
	return load(getConfigPaths())
}

// LoadFile loads configuration from a single file.
func LoadFile(path string) (*Config, error) {
	return load([]string{expandPath(path)})
}

func load(configPaths []string) (*Config, error) {
	k := koanf.New(".")

	// Try config files in order of priority (last wins)
	for _, path := range configPaths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	// Normalize server URL (remove trailing slash)
	cfg.Server.URL = strings.TrimSuffix(cfg.Server.URL, "/")

	// Expand ~ in paths
	cfg.Log.File = expandPath(cfg.Log.File)
	cfg.Database.Path = expandPath(cfg.Database.Path)

	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/meeloq/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "meeloq", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// HasServer returns true if a Meelo server is configured.
func (c *Config) HasServer() bool {
	return c.Server.URL != ""
}

// GetServerConfig returns the server configuration with defaults applied.
func (c *Config) GetServerConfig() ServerConfig {
	cfg := c.Server
	if cfg.PageSize <= 0 {
		cfg.PageSize = 35
	}
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = 30
	}
	return cfg
}

// GetQueueConfig returns the queue configuration with defaults applied.
func (c *Config) GetQueueConfig() QueueConfig {
	cfg := c.Queue
	if cfg.PrefetchThreshold == nil || *cfg.PrefetchThreshold < 0 {
		threshold := 2
		cfg.PrefetchThreshold = &threshold
	}
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = 50
	}
	return cfg
}

// GetCachePages returns the number of cached pages, 0 meaning no cache.
func (c *Config) GetCachePages() int {
	if c.Cache.Pages == nil || *c.Cache.Pages < 0 {
		return 128
	}
	return *c.Cache.Pages
}

// GetLogConfig returns the logging configuration with defaults applied.
func (c *Config) GetLogConfig() LogConfig {
	cfg := c.Log
	switch cfg.Level {
	case "debug", "info", "warn", "error":
	default:
		cfg.Level = "info"
	}
	return cfg
}
