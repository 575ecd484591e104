package config

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/felixgeelhaar/skilladmin/internal/errors"
)

type key struct {
	get func(*Config) string
	set func(*Config, string) error
}

func stringKey(field func(*Config) *string) key {
	return key{
		get: func(c *Config) string { return *field(c) },
		set: func(c *Config, v string) error { *field(c) = v; return nil },
	}
}

func boolKey(field func(*Config) *bool) key {
	return key{
		get: func(c *Config) string { return strconv.FormatBool(*field(c)) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return err
			}
			*field(c) = b
			return nil
		},
	}
}

func intKey(field func(*Config) *int) key {
	return key{
		get: func(c *Config) string { return strconv.Itoa(*field(c)) },
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return err
			}
			*field(c) = n
			return nil
		},
	}
}

var keys = map[string]key{
	"api.base_url":        stringKey(func(c *Config) *string { return &c.API.BaseURL }),
	"api.user_agent":      stringKey(func(c *Config) *string { return &c.API.UserAgent }),
	"api.strict_contract": boolKey(func(c *Config) *bool { return &c.API.StrictContract }),
	"api.timeout": {
		get: func(c *Config) string { return c.API.Timeout.String() },
		set: func(c *Config, v string) error {
			d, err := time.ParseDuration(v)
			if err != nil {
				return err
			}
			c.API.Timeout = d
			return nil
		},
	},
	"session.backend":        stringKey(func(c *Config) *string { return &c.Session.Backend }),
	"session.path":           stringKey(func(c *Config) *string { return &c.Session.Path }),
	"session.redis.addr":     stringKey(func(c *Config) *string { return &c.Session.Redis.Addr }),
	"session.redis.password": stringKey(func(c *Config) *string { return &c.Session.Redis.Password }),
	"session.redis.db":       intKey(func(c *Config) *int { return &c.Session.Redis.DB }),
	"session.redis.prefix":   stringKey(func(c *Config) *string { return &c.Session.Redis.Prefix }),
	"session.sqlite.path":    stringKey(func(c *Config) *string { return &c.Session.SQLite.Path }),
	"logging.level":          stringKey(func(c *Config) *string { return &c.Logging.Level }),
	"logging.format":         stringKey(func(c *Config) *string { return &c.Logging.Format }),
	"telemetry.enabled":      boolKey(func(c *Config) *bool { return &c.Telemetry.Enabled }),
	"telemetry.endpoint":     stringKey(func(c *Config) *string { return &c.Telemetry.Endpoint }),
	"telemetry.insecure":     boolKey(func(c *Config) *bool { return &c.Telemetry.Insecure }),
	"telemetry.sample_rate": {
		get: func(c *Config) string { return strconv.FormatFloat(c.Telemetry.SampleRate, 'g', -1, 64) },
		set: func(c *Config, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return err
			}
			c.Telemetry.SampleRate = f
			return nil
		},
	},
	"metrics.listen":     stringKey(func(c *Config) *string { return &c.Metrics.Listen }),
	"defaults.format":    stringKey(func(c *Config) *string { return &c.Defaults.Format }),
	"defaults.page_size": intKey(func(c *Config) *int { return &c.Defaults.PageSize }),
	"defaults.no_color":  boolKey(func(c *Config) *bool { return &c.Defaults.NoColor }),
}

// Keys lists the dotted keys accepted by Get and Set.
func Keys() []string {
	out := make([]string, 0, len(keys))
	for k := range keys {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func unknownKey(name string) error {
	return errors.New(errors.ErrCodeConfigKeyUnset, fmt.Sprintf("unknown configuration key: %s", name)).
		WithSuggestion("Run 'skilladmin config get --help' to list the supported keys")
}

// Get returns the value at a dotted key such as "session.backend".
func (c *Config) Get(name string) (string, error) {
	k, ok := keys[name]
	if !ok {
		return "", unknownKey(name)
	}
	return k.get(c), nil
}

// Set parses value into the dotted key. The result is not validated.
func (c *Config) Set(name, value string) error {
	k, ok := keys[name]
	if !ok {
		return unknownKey(name)
	}
	if err := k.set(c, value); err != nil {
		return errors.Wrap(errors.ErrCodeConfigInvalid, fmt.Sprintf("invalid value %q for %s", value, name), err)
	}
	return nil
}
