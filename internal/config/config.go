// Package config loads skilladmin settings.
//
// Values are layered: built-in defaults, then ~/.skilladmin/config.yaml (or
// --config), then SKILLADMIN_* environment variables, which may come from a
// .env file in the working directory. Command-line flags are applied last by
// the cmd package.
package config

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/skilladmin/internal/errors"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SKILLADMIN_"

// DefaultBaseURL is the admin API the dashboard was built against.
const DefaultBaseURL = "https://skillsworth-be-11s8.onrender.com"

// Config is the effective configuration.
type Config struct {
	API       APIConfig       `yaml:"api" json:"api"`
	Session   SessionConfig   `yaml:"session" json:"session"`
	Logging   LoggingConfig   `yaml:"logging" json:"logging"`
	Telemetry TelemetryConfig `yaml:"telemetry" json:"telemetry"`
	Metrics   MetricsConfig   `yaml:"metrics" json:"metrics"`
	Defaults  DefaultsConfig  `yaml:"defaults" json:"defaults"`

	// Path is the file the config was read from, if any.
	Path string `yaml:"-" json:"-"`
}

type APIConfig struct {
	BaseURL        string        `yaml:"base_url" json:"base_url" env:"API_URL"`
	Timeout        time.Duration `yaml:"timeout" json:"timeout" env:"API_TIMEOUT"`
	UserAgent      string        `yaml:"user_agent,omitempty" json:"user_agent,omitempty" env:"USER_AGENT"`
	StrictContract bool          `yaml:"strict_contract" json:"strict_contract" env:"STRICT_CONTRACT"`
}

type SessionConfig struct {
	Backend string       `yaml:"backend" json:"backend" env:"SESSION_BACKEND"`
	Path    string       `yaml:"path,omitempty" json:"path,omitempty" env:"SESSION_PATH"`
	Redis   RedisConfig  `yaml:"redis" json:"redis"`
	SQLite  SQLiteConfig `yaml:"sqlite" json:"sqlite"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr,omitempty" json:"addr,omitempty" env:"REDIS_ADDR"`
	Password string `yaml:"password,omitempty" json:"-" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" json:"db" env:"REDIS_DB"`
	Prefix   string `yaml:"prefix,omitempty" json:"prefix,omitempty" env:"REDIS_PREFIX"`
}

type SQLiteConfig struct {
	Path string `yaml:"path,omitempty" json:"path,omitempty" env:"SQLITE_PATH"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" json:"level" env:"LOG_LEVEL"`   // debug, info, warn, error
	Format string `yaml:"format" json:"format" env:"LOG_FORMAT"` // text, json
}

type TelemetryConfig struct {
	Enabled    bool    `yaml:"enabled" json:"enabled" env:"TELEMETRY_ENABLED"`
	Endpoint   string  `yaml:"endpoint,omitempty" json:"endpoint,omitempty" env:"TELEMETRY_ENDPOINT"`
	Insecure   bool    `yaml:"insecure,omitempty" json:"insecure,omitempty" env:"TELEMETRY_INSECURE"`
	SampleRate float64 `yaml:"sample_rate" json:"sample_rate" env:"TELEMETRY_SAMPLE_RATE"`
}

type MetricsConfig struct {
	Listen string `yaml:"listen,omitempty" json:"listen,omitempty" env:"METRICS_LISTEN"`
}

type DefaultsConfig struct {
	Format   string `yaml:"format" json:"format" env:"FORMAT"` // text, json, yaml
	PageSize int    `yaml:"page_size" json:"page_size" env:"PAGE_SIZE"`
	NoColor  bool   `yaml:"no_color" json:"no_color" env:"NO_COLOR"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: DefaultBaseURL,
			Timeout: 30 * time.Second,
		},
		Session: SessionConfig{
			Backend: "file",
			Redis:   RedisConfig{Prefix: "skilladmin:session:"},
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
		},
		Telemetry: TelemetryConfig{
			SampleRate: 1.0,
		},
		Defaults: DefaultsConfig{
			Format:   "text",
			PageSize: 10,
		},
	}
}

// Dir returns ~/.skilladmin, falling back to ./.skilladmin without a home directory.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".skilladmin"
	}
	return filepath.Join(home, ".skilladmin")
}

// DefaultPath returns ~/.skilladmin/config.yaml.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// LoadDotEnv loads variables from the given files (default ".env") without
// overriding ones already set. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
			return errors.Wrap(errors.ErrCodeConfigRead, fmt.Sprintf("failed to load %s", f), err)
		}
	}
	return nil
}

// Load reads path (DefaultPath when empty) over the defaults and then
// applies environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads path over the defaults without environment overrides.
// `config set` uses it so variables from the shell are not written back.
func LoadFile(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(errors.ErrCodeConfigRead, fmt.Sprintf("failed to parse %s", path), err).
				WithSuggestion("Fix the YAML syntax or remove the file to start from defaults")
		}
		cfg.Path = path
	case stderrors.Is(err, fs.ErrNotExist):
	default:
		return nil, errors.Wrap(errors.ErrCodeConfigRead, fmt.Sprintf("failed to read %s", path), err)
	}
	return cfg, nil
}

// ApplyEnv overlays SKILLADMIN_* variables. Unset variables keep the
// current values.
func (c *Config) ApplyEnv() error {
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return errors.Wrap(errors.ErrCodeConfigInvalid, "invalid environment override", err).
			WithSuggestion("Check the SKILLADMIN_* variables in your environment and .env file")
	}
	return nil
}

// Save writes c to path with owner-only permissions.
func (c *Config) Save(path string) error {
	if path == "" {
		path = DefaultPath()
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(errors.ErrCodeConfigWrite, "failed to marshal config", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return errors.Wrap(errors.ErrCodeConfigWrite, "failed to create config directory", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errors.Wrap(errors.ErrCodeConfigWrite, fmt.Sprintf("failed to write %s", path), err)
	}
	c.Path = path
	return nil
}

var (
	backends   = []string{"file", "memory", "redis", "sqlite"}
	formats    = []string{"text", "json", "yaml"}
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"text", "json"}
)

// Validate reports every problem found, joined into one error.
func (c *Config) Validate() error {
	var problems []string

	if u, err := url.Parse(c.API.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		problems = append(problems, fmt.Sprintf("api.base_url must be an http(s) URL, got %q", c.API.BaseURL))
	}
	if c.API.Timeout <= 0 {
		problems = append(problems, "api.timeout must be positive")
	}
	if !oneOf(c.Session.Backend, backends) {
		problems = append(problems, fmt.Sprintf("session.backend must be one of %s, got %q", strings.Join(backends, ", "), c.Session.Backend))
	}
	if strings.EqualFold(c.Session.Backend, "redis") && c.Session.Redis.Addr == "" {
		problems = append(problems, "session.redis.addr is required for the redis backend")
	}
	if c.Defaults.PageSize < 1 || c.Defaults.PageSize > 1000 {
		problems = append(problems, fmt.Sprintf("defaults.page_size must be between 1 and 1000, got %d", c.Defaults.PageSize))
	}
	if !oneOf(c.Defaults.Format, formats) {
		problems = append(problems, fmt.Sprintf("defaults.format must be one of %s, got %q", strings.Join(formats, ", "), c.Defaults.Format))
	}
	if !oneOf(c.Logging.Level, logLevels) {
		problems = append(problems, fmt.Sprintf("logging.level must be one of %s, got %q", strings.Join(logLevels, ", "), c.Logging.Level))
	}
	if !oneOf(c.Logging.Format, logFormats) {
		problems = append(problems, fmt.Sprintf("logging.format must be one of %s, got %q", strings.Join(logFormats, ", "), c.Logging.Format))
	}
	if c.Telemetry.SampleRate < 0 || c.Telemetry.SampleRate > 1 {
		problems = append(problems, fmt.Sprintf("telemetry.sample_rate must be between 0 and 1, got %g", c.Telemetry.SampleRate))
	}

	if len(problems) > 0 {
		return errors.NewConfigInvalidError(strings.Join(problems, "; "))
	}
	return nil
}

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return true
		}
	}
	return false
}
