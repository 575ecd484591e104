package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/skilladmin/internal/errors"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, "file", cfg.Session.Backend)
	assert.Equal(t, 10, cfg.Defaults.PageSize)
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, cfg.API.BaseURL)
	assert.Empty(t, cfg.Path)
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", `
api:
  base_url: https://admin.example.test
  timeout: 5s
session:
  backend: redis
  redis:
    addr: localhost:6379
    db: 2
defaults:
  page_size: 20
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.Path)
	assert.Equal(t, "https://admin.example.test", cfg.API.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.Equal(t, "redis", cfg.Session.Backend)
	assert.Equal(t, "localhost:6379", cfg.Session.Redis.Addr)
	assert.Equal(t, 2, cfg.Session.Redis.DB)
	assert.Equal(t, "skilladmin:session:", cfg.Session.Redis.Prefix, "unset keys keep defaults")
	assert.Equal(t, 20, cfg.Defaults.PageSize)
	assert.Equal(t, "text", cfg.Defaults.Format)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", "api: [unterminated")

	_, err := Load(path)
	var adminErr *errors.AdminError
	require.True(t, stderrors.As(err, &adminErr))
	assert.Equal(t, errors.ErrCodeConfigRead, adminErr.Code)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", `
api:
  base_url: https://file.example.test
logging:
  level: info
`)
	t.Setenv("SKILLADMIN_API_URL", "https://env.example.test")
	t.Setenv("SKILLADMIN_SESSION_BACKEND", "sqlite")
	t.Setenv("SKILLADMIN_REDIS_ADDR", "redis:6379")
	t.Setenv("SKILLADMIN_API_TIMEOUT", "1m")
	t.Setenv("SKILLADMIN_PAGE_SIZE", "50")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://env.example.test", cfg.API.BaseURL)
	assert.Equal(t, "sqlite", cfg.Session.Backend)
	assert.Equal(t, "redis:6379", cfg.Session.Redis.Addr)
	assert.Equal(t, time.Minute, cfg.API.Timeout)
	assert.Equal(t, 50, cfg.Defaults.PageSize)
	assert.Equal(t, "info", cfg.Logging.Level, "file value survives when env is unset")
}

func TestLoadFileIgnoresEnv(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", "api:\n  base_url: https://file.example.test\n")
	t.Setenv("SKILLADMIN_API_URL", "https://env.example.test")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "https://file.example.test", cfg.API.BaseURL)
}

func TestInvalidEnvOverride(t *testing.T) {
	t.Setenv("SKILLADMIN_PAGE_SIZE", "many")

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	var adminErr *errors.AdminError
	require.True(t, stderrors.As(err, &adminErr))
	assert.Equal(t, errors.ErrCodeConfigInvalid, adminErr.Code)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := writeFile(t, dir, ".env", "SKILLADMIN_LOG_LEVEL=debug\n")
	t.Setenv("SKILLADMIN_LOG_LEVEL", "")
	require.NoError(t, os.Unsetenv("SKILLADMIN_LOG_LEVEL"))

	require.NoError(t, LoadDotEnv(envFile, filepath.Join(dir, "missing.env")))
	assert.Equal(t, "debug", os.Getenv("SKILLADMIN_LOG_LEVEL"))

	cfg, err := Load(filepath.Join(dir, "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad scheme", func(c *Config) { c.API.BaseURL = "ftp://x" }, "api.base_url"},
		{"no host", func(c *Config) { c.API.BaseURL = "https://" }, "api.base_url"},
		{"zero timeout", func(c *Config) { c.API.Timeout = 0 }, "api.timeout"},
		{"unknown backend", func(c *Config) { c.Session.Backend = "etcd" }, "session.backend"},
		{"redis without addr", func(c *Config) { c.Session.Backend = "redis" }, "session.redis.addr"},
		{"page size", func(c *Config) { c.Defaults.PageSize = 1001 }, "defaults.page_size"},
		{"format", func(c *Config) { c.Defaults.Format = "xml" }, "defaults.format"},
		{"log level", func(c *Config) { c.Logging.Level = "trace" }, "logging.level"},
		{"sample rate", func(c *Config) { c.Telemetry.SampleRate = 1.5 }, "telemetry.sample_rate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)

			var adminErr *errors.AdminError
			require.True(t, stderrors.As(err, &adminErr))
			assert.Equal(t, errors.ErrCodeConfigInvalid, adminErr.Code)
		})
	}
}

func TestGetSet(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Set("session.backend", "memory"))
	require.NoError(t, cfg.Set("api.timeout", "45s"))
	require.NoError(t, cfg.Set("defaults.no_color", "true"))
	require.NoError(t, cfg.Set("session.redis.db", "3"))
	require.NoError(t, cfg.Set("telemetry.sample_rate", "0.25"))

	tests := map[string]string{
		"session.backend":       "memory",
		"api.timeout":           "45s",
		"defaults.no_color":     "true",
		"session.redis.db":      "3",
		"telemetry.sample_rate": "0.25",
	}
	for k, want := range tests {
		got, err := cfg.Get(k)
		require.NoError(t, err, k)
		assert.Equal(t, want, got, k)
	}

	_, err := cfg.Get("nope")
	var adminErr *errors.AdminError
	require.True(t, stderrors.As(err, &adminErr))
	assert.Equal(t, errors.ErrCodeConfigKeyUnset, adminErr.Code)

	err = cfg.Set("defaults.page_size", "ten")
	require.True(t, stderrors.As(err, &adminErr))
	assert.Equal(t, errors.ErrCodeConfigInvalid, adminErr.Code)

	assert.Contains(t, Keys(), "api.base_url")
	assert.IsIncreasing(t, Keys())
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.API.BaseURL = "http://localhost:4000"
	cfg.API.Timeout = 10 * time.Second
	require.NoError(t, cfg.Save(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:4000", loaded.API.BaseURL)
	assert.Equal(t, 10*time.Second, loaded.API.Timeout)
}
