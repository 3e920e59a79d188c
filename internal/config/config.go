package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/mai033/ai-chat-tool/internal/catalog"
)

// Config holds the client configuration.
type Config struct {
	ServerURL      string       `toml:"server_url"`
	RequestTimeout string       `toml:"request_timeout"` // duration string, "" = no timeout
	RateLimit      float64      `toml:"rate_limit"`      // requests per second, 0 = unlimited
	LogFile        string       `toml:"log_file"`
	Debug          bool         `toml:"debug"`
	Models         []ModelEntry `toml:"models"`
}

// ModelEntry is one allow-listed model.
type ModelEntry struct {
	ID       string `toml:"id"`
	Provider string `toml:"provider"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	models := make([]ModelEntry, 0, len(catalog.Default))
	for _, e := range catalog.Default {
		models = append(models, ModelEntry{ID: e.ID, Provider: string(e.Provider)})
	}
	return &Config{
		ServerURL: "http://127.0.0.1:5000",
		LogFile:   filepath.Join(StateDir(), "aichat.log"),
		Models:    models,
	}
}

// ConfigDir returns the directory holding config.toml.
func ConfigDir() string {
	if dir := os.Getenv("AICHAT_CONFIG_DIR"); dir != "" {
		return dir
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "aichat")
}

// StateDir returns the directory for logs.
func StateDir() string {
	if dir := os.Getenv("AICHAT_STATE_DIR"); dir != "" {
		return dir
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		return os.TempDir()
	}
	return filepath.Join(dir, "aichat")
}

// DefaultPath returns the default config file path.
func DefaultPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the TOML file at path on top of the defaults, then applies
// environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	// The file's model list replaces the built-in one rather than being
	// decoded over it element by element.
	defaults := cfg.Models
	cfg.Models = nil

	md, err := toml.DecodeFile(path, cfg)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err == nil {
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("config %s: unknown key %q", path, undecoded[0].String())
		}
	}
	if !md.IsDefined("models") {
		cfg.Models = defaults
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("AICHAT_SERVER_URL"); v != "" {
		c.ServerURL = v
	}
	if v := os.Getenv("AICHAT_LOG_FILE"); v != "" {
		c.LogFile = v
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	u, err := url.Parse(c.ServerURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid server_url %q: must be an http(s) URL", c.ServerURL)
	}
	if _, err := c.Timeout(); err != nil {
		return err
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("invalid rate_limit %v: must not be negative", c.RateLimit)
	}
	if len(c.Models) == 0 {
		return errors.New("models: at least one model is required")
	}
	seen := make(map[string]bool, len(c.Models))
	for i, m := range c.Models {
		if m.ID == "" {
			return fmt.Errorf("models[%d]: id is required", i)
		}
		if m.Provider == "" {
			return fmt.Errorf("models[%d] (%s): provider is required", i, m.ID)
		}
		if seen[m.ID] {
			return fmt.Errorf("models[%d]: duplicate id %q", i, m.ID)
		}
		seen[m.ID] = true
	}
	return nil
}

// Timeout parses RequestTimeout. Zero means requests are not bounded.
func (c *Config) Timeout() (time.Duration, error) {
	if c.RequestTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.RequestTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid request_timeout %q: %w", c.RequestTimeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid request_timeout %q: must not be negative", c.RequestTimeout)
	}
	return d, nil
}

// Table returns the configured allow-list.
func (c *Config) Table() catalog.Table {
	t := make(catalog.Table, 0, len(c.Models))
	for _, m := range c.Models {
		t = append(t, catalog.Entry{ID: m.ID, Provider: catalog.Provider(m.Provider)})
	}
	return t
}

// Save writes the configuration to path as TOML.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}
