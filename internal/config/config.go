// ABOUTME: Haul configuration management with remote backend selection.
// ABOUTME: Handles settings, env overrides, and the remote store factory.

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/harperreed/haul/internal/remote"
	"github.com/harperreed/haul/internal/remote/charmstore"
	"github.com/harperreed/haul/internal/remote/supastore"
)

// DefaultDrivers is the household roster used when config names none.
var DefaultDrivers = []string{"ABRI", "HEINE"}

// Config stores haul tool configuration.
type Config struct {
	// Backend selects the remote store: "charm" (default) or "supabase".
	Backend string `json:"backend,omitempty"`

	// DataDir is the root directory for the local cache. Supports ~
	// expansion. Defaults to ~/.local/share/haul.
	DataDir string `json:"data_dir,omitempty"`

	// SupabaseURL and SupabaseKey configure the supabase backend. The
	// HAUL_SUPABASE_URL and HAUL_SUPABASE_KEY env vars override them.
	SupabaseURL string `json:"supabase_url,omitempty"`
	SupabaseKey string `json:"supabase_key,omitempty"`

	// Drivers is the household roster. Defaults to DefaultDrivers.
	Drivers []string `json:"drivers,omitempty"`
}

// GetBackend returns the configured backend, defaulting to "charm".
func (c *Config) GetBackend() string {
	if c.Backend == "" {
		return "charm"
	}
	return c.Backend
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return defaultDataDir()
	}
	return ExpandPath(c.DataDir)
}

// GetDrivers returns the configured roster, defaulting to DefaultDrivers.
func (c *Config) GetDrivers() []string {
	if len(c.Drivers) == 0 {
		return DefaultDrivers
	}
	return c.Drivers
}

// LocalStorePath is where the badger cache lives.
func (c *Config) LocalStorePath() string {
	return filepath.Join(c.GetDataDir(), "cache")
}

func defaultDataDir() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, _ := os.UserHomeDir()
		dataDir = filepath.Join(homeDir, ".local", "share")
	}
	return filepath.Join(dataDir, "haul")
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// OpenRemote creates a remote.Store implementation based on the configured
// backend.
func (c *Config) OpenRemote() (remote.Store, error) {
	switch c.GetBackend() {
	case "charm":
		return charmstore.Open()
	case "supabase":
		url := c.SupabaseURL
		if v := os.Getenv("HAUL_SUPABASE_URL"); v != "" {
			url = v
		}
		key := c.SupabaseKey
		if v := os.Getenv("HAUL_SUPABASE_KEY"); v != "" {
			key = v
		}
		return supastore.New(url, key)
	default:
		return nil, fmt.Errorf("unknown backend: %q", c.GetBackend())
	}
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "haul", "config.json")
}

// Load reads config from disk. A local .env file is folded into the
// environment first so the supabase overrides work without an export.
func Load() (*Config, error) {
	_ = godotenv.Load()

	path := GetConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes config to disk.
func (c *Config) Save() error {
	path := GetConfigPath()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
