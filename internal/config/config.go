// Package config loads tool settings from a TOML file, an optional .env file
// and CHAMP_* environment variables, in that order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Duration is a time.Duration written as a Go duration string ("10s", "72h").
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
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

type HTTPConfig struct {
	Timeout   Duration `toml:"timeout"`
	UserAgent string   `toml:"user_agent"`
}

type CacheConfig struct {
	// Dir holds cached pages when HTML caching is on.
	Dir    string   `toml:"dir"`
	MaxAge Duration `toml:"max_age"`
	HTML   bool     `toml:"html"`
}

type StoreConfig struct {
	Kind string `toml:"kind"`
	DSN  string `toml:"dsn"`
	Name string `toml:"name"`
}

type PatchConfig struct {
	GraceDays int `toml:"grace_days"`
	Count     int `toml:"count"`
	// Pin, when set, skips version discovery entirely.
	Pin string `toml:"pin"`
}

type SourcesConfig struct {
	Versions    string `toml:"versions"`
	Schedule    string `toml:"schedule"`
	CounterPage string `toml:"counter_page"`
	DDragon     string `toml:"ddragon"`
	Meraki      string `toml:"meraki"`
	CDragon     string `toml:"cdragon"`
}

type MetricsConfig struct {
	// Backend is "none" or "datadog".
	Backend    string   `toml:"backend"`
	Job        string   `toml:"job"`
	Tags       []string `toml:"tags"`
	FlushEvery Duration `toml:"flush_every"`
}

type Config struct {
	HTTP    HTTPConfig    `toml:"http"`
	Cache   CacheConfig   `toml:"cache"`
	Store   StoreConfig   `toml:"store"`
	Patch   PatchConfig   `toml:"patch"`
	Sources SourcesConfig `toml:"sources"`
	Metrics MetricsConfig `toml:"metrics"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		HTTP:  HTTPConfig{Timeout: Duration{10 * time.Second}},
		Cache: CacheConfig{Dir: "./cache", MaxAge: Duration{72 * time.Hour}},
		Store: StoreConfig{Kind: "file", DSN: "./cache"},
		Patch: PatchConfig{GraceDays: 3, Count: 2},
		Sources: SourcesConfig{
			Versions:    "https://ddragon.leagueoflegends.com/api/versions.json",
			Schedule:    "https://support-leagueoflegends.riotgames.com/hc/en-us/articles/360018987893-Patch-Schedule-League-of-Legends",
			CounterPage: "https://u.gg/lol/champions/%s/counter",
			DDragon:     "https://ddragon.leagueoflegends.com/cdn",
			Meraki:      "https://cdn.merakianalytics.com/riot/lol/resources/latest/en-US/champions",
			CDragon:     "https://raw.communitydragon.org/latest/plugins/rcp-be-lol-game-data/global/default/v1/champions",
		},
		Metrics: MetricsConfig{Backend: "none", Job: "champhelper", FlushEvery: Duration{10 * time.Second}},
	}
}

// Load reads path over Default. An empty path returns Default unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config file %q: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %q: %w", path, err)
	}
	return cfg, nil
}

// LoadEnvFile loads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. A missing file is not
// an error.
func LoadEnvFile(path string) error {
	if path == "" {
		path = ".env"
	}
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load env file %q: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides cfg with CHAMP_* variables read through getenv.
// Unparseable numeric or duration values are returned as an error and leave
// the field unchanged.
func ApplyEnv(cfg *Config, getenv func(string) string) error {
	var errs []error

	str := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	dur := func(key string, dst *Duration) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			if err := dst.UnmarshalText([]byte(v)); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
			}
		}
	}
	num := func(key string, dst *int) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}

	dur("CHAMP_HTTP_TIMEOUT", &cfg.HTTP.Timeout)
	str("CHAMP_USER_AGENT", &cfg.HTTP.UserAgent)
	str("CHAMP_CACHE_DIR", &cfg.Cache.Dir)
	dur("CHAMP_CACHE_MAX_AGE", &cfg.Cache.MaxAge)
	str("CHAMP_STORE_KIND", &cfg.Store.Kind)
	str("CHAMP_STORE_DSN", &cfg.Store.DSN)
	num("CHAMP_PATCH_GRACE_DAYS", &cfg.Patch.GraceDays)
	str("CHAMP_PATCH", &cfg.Patch.Pin)
	str("CHAMP_METRICS_BACKEND", &cfg.Metrics.Backend)
	if v := strings.TrimSpace(getenv("CHAMP_METRICS_TAGS")); v != "" {
		cfg.Metrics.Tags = splitList(v)
	}

	return errors.Join(errs...)
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Resolve is the usual startup sequence: .env file, TOML file, environment.
func Resolve(configPath, envPath string) (Config, error) {
	if err := LoadEnvFile(envPath); err != nil {
		return Config{}, err
	}
	cfg, err := Load(configPath)
	if err != nil {
		return cfg, err
	}
	if err := ApplyEnv(&cfg, os.Getenv); err != nil {
		return cfg, err
	}
	return cfg, nil
}
