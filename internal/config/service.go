package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes environment overrides, e.g. VERSIOND__HTTP__ADDR.
const EnvPrefix = "VERSIOND__"

type HTTPCfg struct {
	Addr string `koanf:"addr"`
	// RateLimit is requests per minute per client IP; zero disables it.
	RateLimit int `koanf:"rate_limit"`
}

type LogCfg struct {
	Level string `koanf:"level"`
	JSON  bool   `koanf:"json"`
}

type ResolverCfg struct {
	Cache    bool          `koanf:"cache"`
	CacheTTL time.Duration `koanf:"cache_ttl"`
}

// Config is the service configuration.
type Config struct {
	HTTP        HTTPCfg     `koanf:"http"`
	GRPCPort    int         `koanf:"grpc_port"`
	MetricsPort int         `koanf:"metrics_port"`
	Log         LogCfg      `koanf:"log"`
	Resolver    ResolverCfg `koanf:"resolver"`
	// Manifest is the resources file; relative paths resolve against the
	// config file.
	Manifest string `koanf:"manifest"`
}

// Load merges YAML (if present) with env-vars (prefix `VERSIOND__`,
// delimiter `__`) and applies defaults.
func Load(path string) (Config, error) {
	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil &&
			!errors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
	}
	sv := k.String("schema_version")
	if sv != "" && sv != SupportedSchema {
		return Config{}, fmt.Errorf("config schema_version %q not supported (want %s)", sv, SupportedSchema)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, err
	}
	applyDefaults(&cfg)
	cfg.Manifest = resolveRelative(path, cfg.Manifest)
	return cfg, nil
}

// envKey maps VERSIOND__HTTP__RATE_LIMIT to http.rate_limit.
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}

func applyDefaults(c *Config) {
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.GRPCPort == 0 {
		c.GRPCPort = 7070
	}
	if c.MetricsPort == 0 {
		c.MetricsPort = 9100
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Manifest == "" {
		c.Manifest = "resources.yml"
	}
}

func resolveRelative(base, p string) string {
	if base == "" || p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(filepath.Dir(base), p)
}
