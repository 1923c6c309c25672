package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/popgraph/pkg/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvAccount, EnvCatalog, EnvBaseURL, EnvCache, EnvRedisAddr, EnvRedisDB} {
		t.Setenv(k, "")
	}
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
[api]
account = "acct"
catalog = "cat"
base_url = "https://example.com/v3"

[cache]
backend = "file"
dir = "/tmp/pg"
ttl = "90m"

[log]
level = "debug"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.API.Account != "acct" || cfg.API.Catalog != "cat" || cfg.API.BaseURL != "https://example.com/v3" {
		t.Errorf("api = %+v", cfg.API)
	}
	if cfg.Cache.Backend != CacheFile || cfg.Cache.Dir != "/tmp/pg" || cfg.Cache.TTL.Duration != 90*time.Minute {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Cache.RedisAddr != "localhost:6379" {
		t.Errorf("unset fields should keep defaults, redis_addr = %q", cfg.Cache.RedisAddr)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
}

func TestLoadDefaultPathMissingIsFine(t *testing.T) {
	clearEnv(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}
	if cfg.Cache.Backend != CacheNone {
		t.Errorf("backend = %q, want default none", cfg.Cache.Backend)
	}
}

func TestLoadExplicitMissingFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Load() error = %v, want INVALID_CONFIG", err)
	}
}

func TestLoadMalformed(t *testing.T) {
	path := writeConfig(t, "[api\naccount = ")
	if _, err := Load(path); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Load() error = %v, want INVALID_CONFIG", err)
	}
}

func TestLoadBadDuration(t *testing.T) {
	path := writeConfig(t, "[cache]\nttl = \"soon\"\n")
	if _, err := Load(path); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Load() error = %v, want INVALID_CONFIG", err)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "[api]\naccount = \"from-file\"\ncatalog = \"cat\"\n")
	t.Setenv(EnvAccount, "from-env")
	t.Setenv(EnvCache, "redis")
	t.Setenv(EnvRedisAddr, "cache:6380")
	t.Setenv(EnvRedisDB, "2")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.API.Account != "from-env" {
		t.Errorf("account = %q, want from-env", cfg.API.Account)
	}
	if cfg.API.Catalog != "cat" {
		t.Errorf("catalog = %q, want file value", cfg.API.Catalog)
	}
	if cfg.Cache.Backend != CacheRedis || cfg.Cache.RedisAddr != "cache:6380" || cfg.Cache.RedisDB != 2 {
		t.Errorf("cache = %+v", cfg.Cache)
	}
}

func TestEnvBadRedisDB(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvRedisDB, "two")
	cfg := Default()
	if err := cfg.ApplyEnv(); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("ApplyEnv() error = %v, want INVALID_CONFIG", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"file backend", func(c *Config) { c.Cache.Backend = CacheFile }, false},
		{"unknown backend", func(c *Config) { c.Cache.Backend = "memcached" }, true},
		{"redis without addr", func(c *Config) { c.Cache.Backend = CacheRedis; c.Cache.RedisAddr = "" }, true},
		{"negative ttl", func(c *Config) { c.Cache.TTL.Duration = -time.Second }, true},
		{"negative redis db", func(c *Config) { c.Cache.RedisDB = -1 }, true},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, true},
		{"bad base url", func(c *Config) { c.API.BaseURL = "api.popshops.com" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr && !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("Validate() error = %v, want INVALID_CONFIG", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate() unexpected error: %v", err)
			}
		})
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	p, err := DefaultPath()
	if err != nil {
		t.Fatal(err)
	}
	if p != filepath.Join("/xdg", "popgraph", "config.toml") {
		t.Errorf("DefaultPath() = %s", p)
	}
}
