// Package config loads popgraph settings from a TOML file and the
// environment.
//
// Precedence, lowest to highest: built-in defaults, the config file,
// environment variables, command-line flags (applied by the CLI).
//
// Example config.toml:
//
//	[api]
//	account = "d1lg0my9c6y3j5iv5vkc6ayrd"
//	catalog = "dp4rtmme6tbhugpv6i59yiqmr"
//
//	[cache]
//	backend = "file"
//	ttl = "6h"
//
//	[log]
//	level = "debug"
package config

import (
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/popgraph/pkg/errors"
)

// Cache backends.
const (
	CacheNone  = "none"
	CacheFile  = "file"
	CacheRedis = "redis"
)

// Environment variables read by [Config.ApplyEnv].
const (
	EnvAccount   = "POPSHOPS_ACCOUNT"
	EnvCatalog   = "POPSHOPS_CATALOG"
	EnvBaseURL   = "POPSHOPS_BASE_URL"
	EnvCache     = "POPGRAPH_CACHE"
	EnvRedisAddr = "POPGRAPH_REDIS_ADDR"
	EnvRedisDB   = "POPGRAPH_REDIS_DB"
)

// Config is the full popgraph configuration.
type Config struct {
	API   APIConfig   `toml:"api"`
	Cache CacheConfig `toml:"cache"`
	Log   LogConfig   `toml:"log"`
}

// APIConfig holds PopShops credentials and endpoint.
type APIConfig struct {
	Account string `toml:"account"`
	Catalog string `toml:"catalog"`
	BaseURL string `toml:"base_url"`
}

// CacheConfig selects and configures the response cache.
type CacheConfig struct {
	Backend   string   `toml:"backend"`
	Dir       string   `toml:"dir"`
	TTL       Duration `toml:"ttl"`
	RedisAddr string   `toml:"redis_addr"`
	RedisDB   int      `toml:"redis_db"`
}

// LogConfig sets the log level (debug, info, warn, error).
type LogConfig struct {
	Level string `toml:"level"`
}

// Duration is a time.Duration read from a TOML string such as "90m".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in configuration: no cache, info logging and
// the public API endpoint (left empty so the client default applies).
func Default() Config {
	return Config{
		Cache: CacheConfig{
			Backend:   CacheNone,
			TTL:       Duration{time.Hour},
			RedisAddr: "localhost:6379",
		},
		Log: LogConfig{Level: "info"},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/popgraph/config.toml, falling back
// to ~/.config/popgraph/config.toml.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "popgraph", "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "popgraph", "config.toml"), nil
}

// Load reads the config file at path over the defaults and applies the
// environment. An empty path selects [DefaultPath]; a missing default file
// is not an error, a missing explicit file is.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, err
		}
		path = p
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
		}
	case stderrors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	}

	if err := cfg.ApplyEnv(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from the POPSHOPS_* and POPGRAPH_* variables.
func (c *Config) ApplyEnv() error {
	set := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	set(&c.API.Account, EnvAccount)
	set(&c.API.Catalog, EnvCatalog)
	set(&c.API.BaseURL, EnvBaseURL)
	set(&c.Cache.Backend, EnvCache)
	set(&c.Cache.RedisAddr, EnvRedisAddr)

	if v := os.Getenv(EnvRedisDB); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s", EnvRedisDB)
		}
		c.Cache.RedisDB = n
	}
	return nil
}

// Validate checks values that do not depend on the command being run.
// Credentials are checked when a call is created.
func (c Config) Validate() error {
	switch c.Cache.Backend {
	case CacheNone, CacheFile:
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache backend redis requires redis_addr")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q (want none, file or redis)", c.Cache.Backend)
	}
	if c.Cache.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache ttl must not be negative")
	}
	if c.Cache.RedisDB < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "redis_db must not be negative")
	}
	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown log level %q", c.Log.Level)
	}
	if c.API.BaseURL != "" {
		if err := errors.ValidateURL(c.API.BaseURL); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "api.base_url")
		}
	}
	return nil
}
