package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/moffa90/go-aiecdo/internal/logging"
	"github.com/moffa90/go-aiecdo/loader"
	"github.com/moffa90/go-aiecdo/transform"
)

// SupportedSchema is the only schema_version Load accepts.
const SupportedSchema = "v1"

// EnvPrefix selects the environment overrides; "__" separates nested keys,
// e.g. AIECDO__ZERO_RUN__WINDOW_HIGH.
const EnvPrefix = "AIECDO__"

// ZeroRunConfig controls zero-run detection in the transform. The window
// bounds the low 20 bits of a DMA destination, exclusive at both ends.
type ZeroRunConfig struct {
	Enabled    bool   `koanf:"enabled" yaml:"enabled"`
	WindowLow  uint32 `koanf:"window_low" yaml:"window_low"`
	WindowHigh uint32 `koanf:"window_high" yaml:"window_high"`
}

// LogConfig selects the slog level and handler.
type LogConfig struct {
	Level string `koanf:"level" yaml:"level"`
	JSON  bool   `koanf:"json" yaml:"json"`
}

// MetricsConfig enables the /metrics endpoint on Port.
type MetricsConfig struct {
	Enabled bool `koanf:"enabled" yaml:"enabled"`
	Port    int  `koanf:"port" yaml:"port"`
}

// Config is the loader configuration read from YAML and the environment.
type Config struct {
	SchemaVersion     string        `koanf:"schema_version" yaml:"schema_version"`
	CacheCapacity     int           `koanf:"cache_capacity" yaml:"cache_capacity"`
	TrustZeroedMemory bool          `koanf:"trust_zeroed_memory" yaml:"trust_zeroed_memory"`
	ZeroRun           ZeroRunConfig `koanf:"zero_run" yaml:"zero_run"`
	Log               LogConfig     `koanf:"log" yaml:"log"`
	Metrics           MetricsConfig `koanf:"metrics" yaml:"metrics"`
}

// ---------------------------------------------------------------------------
// Loader
// ---------------------------------------------------------------------------

// Load merges defaults, YAML (if present) and env-vars
// (prefix `AIECDO__`, delimiter `__`), then validates the result.
func Load(path string) (Config, error) {
	k := koanf.New(".")
	for key, v := range defaults() {
		if err := k.Set(key, v); err != nil {
			return Config{}, err
		}
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil &&
			!errors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return Config{}, err
	}
	sv := k.String("schema_version")
	if sv != SupportedSchema {
		return Config{}, fmt.Errorf("config schema_version %q not supported (want %q)", sv, SupportedSchema)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}

// ---------------------------------------------------------------------------
// defaults
// ---------------------------------------------------------------------------

func defaults() map[string]any {
	return map[string]any{
		"schema_version":       SupportedSchema,
		"cache_capacity":       4096,
		"trust_zeroed_memory":  false,
		"zero_run.enabled":     true,
		"zero_run.window_low":  transform.DefaultDataMemoryLow,
		"zero_run.window_high": transform.DefaultDataMemoryHigh,
		"log.level":            "info",
		"log.json":             false,
		"metrics.enabled":      false,
		"metrics.port":         9464,
	}
}

// Default returns the configuration used when no file or env-vars are set.
func Default() Config {
	return Config{
		SchemaVersion: SupportedSchema,
		CacheCapacity: 4096,
		ZeroRun: ZeroRunConfig{
			Enabled:    true,
			WindowLow:  transform.DefaultDataMemoryLow,
			WindowHigh: transform.DefaultDataMemoryHigh,
		},
		Log:     LogConfig{Level: "info"},
		Metrics: MetricsConfig{Port: 9464},
	}
}

// Validate checks the schema version and value ranges.
func (c Config) Validate() error {
	if c.SchemaVersion != SupportedSchema {
		return fmt.Errorf("config schema_version %q not supported (want %q)", c.SchemaVersion, SupportedSchema)
	}
	if c.CacheCapacity < loader.MinCacheCapacity {
		return fmt.Errorf("cache_capacity %d is below the minimum of %d", c.CacheCapacity, loader.MinCacheCapacity)
	}
	if c.ZeroRun.WindowLow >= c.ZeroRun.WindowHigh {
		return fmt.Errorf("zero_run window [%#x, %#x] is empty", c.ZeroRun.WindowLow, c.ZeroRun.WindowHigh)
	}
	if c.Metrics.Enabled && (c.Metrics.Port <= 0 || c.Metrics.Port > 65535) {
		return fmt.Errorf("metrics port %d out of range", c.Metrics.Port)
	}
	return nil
}

// LoaderOptions converts the configuration into engine options. logger and
// metrics may be nil.
func (c Config) LoaderOptions(logger loader.Logger, metrics *loader.Metrics) []loader.Option {
	opts := []loader.Option{loader.WithTrustZeroedMemory(c.TrustZeroedMemory)}
	if logger != nil {
		opts = append(opts, loader.WithLogger(logger))
	}
	if metrics != nil {
		opts = append(opts, loader.WithMetrics(metrics))
	}
	return opts
}

// TransformOptions converts the configuration into encoder options. logger may be nil.
func (c Config) TransformOptions(logger transform.Logger) []transform.Option {
	opts := []transform.Option{
		transform.WithZeroRunDetection(c.ZeroRun.Enabled),
		transform.WithDataMemoryWindow(c.ZeroRun.WindowLow, c.ZeroRun.WindowHigh),
	}
	if logger != nil {
		opts = append(opts, transform.WithLogger(logger))
	}
	return opts
}

// Logging returns the logging options.
func (c Config) Logging() logging.Options {
	return logging.Options{Level: c.Log.Level, JSON: c.Log.JSON}
}

// YAML renders the effective configuration.
func (c Config) YAML() ([]byte, error) {
	return yamlv3.Marshal(c)
}
