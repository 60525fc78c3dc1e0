package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_MissingFilesUseDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(filepath.Join(dir, "missing.yaml"), filepath.Join(dir, "missing.env"))
	require.NoError(t, err)

	want := DefaultConfig()
	assert.Equal(t, want.API, cfg.API)
	assert.Equal(t, want.Server, cfg.Server)
	assert.Equal(t, "#f0f0ec", cfg.Brand.BgOffwhite)
}

func TestLoad_YAMLThenEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "pawhealth.yaml", `
api:
  base_url: https://api.example.test
  timeout: 5s
store:
  path: /tmp/from-yaml.db
logging:
  level: debug
  format: console
brand:
  bg_offwhite: abc
`)
	envFile := writeFile(t, dir, "test.env", "PAWHEALTH_DB=/tmp/from-dotenv.db\n")
	t.Setenv("PAWHEALTH_ADDR", ":9999")
	t.Setenv("PAWHEALTH_KEYRING_DISABLED", "true")
	t.Cleanup(func() { os.Unsetenv("PAWHEALTH_DB") })

	cfg, err := Load(path, envFile)
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.test", cfg.API.BaseURL)
	assert.Equal(t, "/tmp/from-dotenv.db", cfg.Store.Path)
	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.True(t, cfg.Keyring.Disabled)
	assert.Equal(t, "#abc", cfg.Brand.BgOffwhite)
	assert.Equal(t, "#373737", cfg.Brand.BgCharcoal)

	timeout, err := cfg.APITimeout()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, timeout)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"base url": func(c *Config) { c.API.BaseURL = "not a url" },
		"timeout":  func(c *Config) { c.API.Timeout = "soon" },
		"format":   func(c *Config) { c.Logging.Format = "xml" },
		"timezone": func(c *Config) { c.Timezone = "Mars/Olympus" },
		"store":    func(c *Config) { c.Store.Path = " " },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(cfg)
			err := cfg.Validate()
			assert.True(t, errors.Is(err, ErrInvalid), "got %v", err)
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "pawhealth.yaml")
	cfg := DefaultConfig()
	cfg.Server.Addr = "127.0.0.1:7000"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path, filepath.Join(t.TempDir(), "none.env"))
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:7000", loaded.Server.Addr)
}
