package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all feedbrowse configuration.
type Config struct {
	Fetch    FetchConfig    `mapstructure:"fetch"`
	Skeleton SkeletonConfig `mapstructure:"skeleton"`
	Overlay  OverlayConfig  `mapstructure:"overlay"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Log      LogConfig      `mapstructure:"log"`
}

// FetchConfig controls the simulated feed source.
type FetchConfig struct {
	BatchSize  int           `mapstructure:"batch_size"`
	TotalItems int           `mapstructure:"total_items"`
	MinLatency time.Duration `mapstructure:"min_latency"`
	MaxLatency time.Duration `mapstructure:"max_latency"`

	// FailEvery makes every Nth fetch fail to exercise error handling.
	// 0 disables failures.
	FailEvery int `mapstructure:"fail_every"`
}

// SkeletonConfig controls placeholder visibility.
type SkeletonConfig struct {
	MinDuration time.Duration `mapstructure:"min_duration"`
	FadeOut     time.Duration `mapstructure:"fade_out"`
}

// OverlayConfig controls the navigation overlay.
type OverlayConfig struct {
	MinVisible time.Duration `mapstructure:"min_visible"`
	MaxVisible time.Duration `mapstructure:"max_visible"`
	FadeOut    time.Duration `mapstructure:"fade_out"`
}

// CacheConfig selects and tunes the page cache.
type CacheConfig struct {
	// Backend is "memory" or "redis".
	Backend string        `mapstructure:"backend"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// RedisConfig holds the Redis connection settings.
type RedisConfig struct {
	Addr string `mapstructure:"addr"`
}

// LogConfig holds logging configuration. Logs go to a file so they do
// not fight the TUI for the terminal; an empty file disables logging.
type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Fetch: FetchConfig{
			BatchSize:  20,
			TotalItems: 125,
			MinLatency: 150 * time.Millisecond,
			MaxLatency: 600 * time.Millisecond,
			FailEvery:  0,
		},
		Skeleton: SkeletonConfig{
			MinDuration: 200 * time.Millisecond,
			FadeOut:     150 * time.Millisecond,
		},
		Overlay: OverlayConfig{
			MinVisible: 1500 * time.Millisecond,
			MaxVisible: 10 * time.Second,
			FadeOut:    200 * time.Millisecond,
		},
		Cache: CacheConfig{
			Backend: "memory",
			TTL:     5 * time.Minute,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Log: LogConfig{
			File:  "",
			Level: "info",
		},
	}
}

// LoadConfig loads configuration from file and environment.
// Settings resolve in order: defaults, then feedbrowse.yaml, then
// FEEDBROWSE_* environment variables (e.g. FEEDBROWSE_FETCH_BATCH_SIZE).
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigName("feedbrowse")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath(defaultConfigPath())

	v.SetEnvPrefix("FEEDBROWSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, cfg)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can resolve it even
// without a config file.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("fetch.batch_size", cfg.Fetch.BatchSize)
	v.SetDefault("fetch.total_items", cfg.Fetch.TotalItems)
	v.SetDefault("fetch.min_latency", cfg.Fetch.MinLatency)
	v.SetDefault("fetch.max_latency", cfg.Fetch.MaxLatency)
	v.SetDefault("fetch.fail_every", cfg.Fetch.FailEvery)
	v.SetDefault("skeleton.min_duration", cfg.Skeleton.MinDuration)
	v.SetDefault("skeleton.fade_out", cfg.Skeleton.FadeOut)
	v.SetDefault("overlay.min_visible", cfg.Overlay.MinVisible)
	v.SetDefault("overlay.max_visible", cfg.Overlay.MaxVisible)
	v.SetDefault("overlay.fade_out", cfg.Overlay.FadeOut)
	v.SetDefault("cache.backend", cfg.Cache.Backend)
	v.SetDefault("cache.ttl", cfg.Cache.TTL)
	v.SetDefault("redis.addr", cfg.Redis.Addr)
	v.SetDefault("log.file", cfg.Log.File)
	v.SetDefault("log.level", cfg.Log.Level)
}

func (c *Config) validate() error {
	if c.Fetch.BatchSize <= 0 {
		return fmt.Errorf("fetch.batch_size must be positive, got %d", c.Fetch.BatchSize)
	}
	if c.Fetch.MaxLatency < c.Fetch.MinLatency {
		return fmt.Errorf("fetch.max_latency must be >= fetch.min_latency")
	}
	switch c.Cache.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("cache.backend must be memory or redis, got %q", c.Cache.Backend)
	}
	return nil
}

// defaultConfigPath returns the default config directory for the
// current OS.
func defaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "feedbrowse")
}
