// Package config loads pawhealth configuration from YAML, .env files and
// PAWHEALTH_* environment variables, in that order of precedence (lowest
// first). Command-line flags are applied by the caller on top.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-pawhealth/pkg/branding"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "PAWHEALTH_"

var (
	// ErrInvalid wraps configuration validation failures.
	ErrInvalid = errors.New("config: invalid configuration")
)

// Config holds all pawhealth configuration.
type Config struct {
	API      APIConfig         `yaml:"api"`
	Store    StoreConfig       `yaml:"store"`
	Server   ServerConfig      `yaml:"server"`
	Logging  LoggingConfig     `yaml:"logging"`
	Keyring  KeyringConfig     `yaml:"keyring"`
	Brand    branding.Settings `yaml:"brand"`
	Timezone string            `yaml:"timezone"`
}

// APIConfig configures the REST backend client.
type APIConfig struct {
	BaseURL   string `yaml:"base_url"`
	Timeout   string `yaml:"timeout"`
	UserAgent string `yaml:"user_agent"`
}

// StoreConfig configures the local state database.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig configures the preview server.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// KeyringConfig configures OS keychain token storage.
type KeyringConfig struct {
	Service  string `yaml:"service"`
	Disabled bool   `yaml:"disabled"`
}

// DefaultConfig returns the configuration used when nothing overrides it.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:   "http://localhost:8000",
			Timeout:   "30s",
			UserAgent: "pawhealth-cli",
		},
		Store:    StoreConfig{Path: defaultStorePath()},
		Server:   ServerConfig{Addr: ":8080"},
		Logging:  LoggingConfig{Level: "info", Format: "json"},
		Keyring:  KeyringConfig{Service: "pawhealth"},
		Brand:    branding.Defaults(),
		Timezone: "Local",
	}
}

func defaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "pawhealth", "state.db")
}

// Load reads path over the defaults, loads envFiles (".env" when none are
// given) and applies environment overrides. A missing config file or .env file
// is not an error.
func Load(path string, envFiles ...string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
		}
	}

	if err := loadEnvFiles(envFiles); err != nil {
		return nil, err
	}
	cfg.applyEnvOverrides()
	cfg.Brand = cfg.Brand.Normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadEnvFiles(files []string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("config: load %s: %w", file, err)
		}
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := env("API_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := env("API_TIMEOUT"); v != "" {
		c.API.Timeout = v
	}
	if v := env("DB"); v != "" {
		c.Store.Path = v
	}
	if v := env("ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := env("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := env("LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := env("KEYRING_SERVICE"); v != "" {
		c.Keyring.Service = v
	}
	if v := env("KEYRING_DISABLED"); v != "" {
		if disabled, err := strconv.ParseBool(v); err == nil {
			c.Keyring.Disabled = disabled
		}
	}
	if v := env("TIMEZONE"); v != "" {
		c.Timezone = v
	}
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(EnvPrefix + key))
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: api.base_url %q", ErrInvalid, c.API.BaseURL)
	}
	if _, err := c.APITimeout(); err != nil {
		return err
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	switch c.Logging.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("%w: logging.format %q", ErrInvalid, c.Logging.Format)
	}
	if strings.TrimSpace(c.Store.Path) == "" {
		return fmt.Errorf("%w: store.path is empty", ErrInvalid)
	}
	return nil
}

// APITimeout parses the API timeout. An empty value means no timeout.
func (c *Config) APITimeout() (time.Duration, error) {
	if strings.TrimSpace(c.API.Timeout) == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.API.Timeout)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%w: api.timeout %q", ErrInvalid, c.API.Timeout)
	}
	return d, nil
}

// Location resolves the timezone used for daily streaks.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: timezone %q: %v", ErrInvalid, c.Timezone, err)
	}
	return loc, nil
}

// Save writes c as YAML to path, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}
