package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration struct.  All fields have safe
// defaults so callers can start with Config{} and override only what they
// need.  Per-load options override the defaults configured here.
type Config struct {
	// Prefetch worker pool controls.
	WorkerCount int `yaml:"worker_count"` // default: runtime.NumCPU()
	QueueSize   int `yaml:"queue_size"`   // max queued prefetches; default: 256

	// Defaults for loads whose LoadOptions ask for the configured values
	// (the UseConfigDefault sentinel).  Explicit zeros in LoadOptions are
	// honored as zeros.
	Retries    int           `yaml:"retries"`
	RetryDelay time.Duration `yaml:"retry_delay"`
	TimeLimit  time.Duration `yaml:"time_limit"` // 0 = no wall-clock budget

	// Transport limits.
	ChunkSize       int   `yaml:"chunk_size"`        // body read granularity; default 32 KiB
	MaxPayloadBytes int64 `yaml:"max_payload_bytes"` // 0 = no limit

	// Raw-byte retention.
	RawCache RawCacheConfig `yaml:"raw_cache"`

	// Logging.
	LogLevel string `yaml:"log_level"` // "debug", "info", "warn", "error"
}

// RawCacheConfig controls the raw-byte stores.
type RawCacheConfig struct {
	MaxEntries int `yaml:"max_entries"` // in-memory cap; 0 = unbounded

	// DiskDir, when set, backs the raw cache with the filesystem store.
	DiskDir     string `yaml:"disk_dir"`
	Permissions uint32 `yaml:"permissions"` // default 0644
}

// Default returns a Config populated with sensible production defaults.
func Default() Config {
	return Config{
		WorkerCount: 0, // resolved at runtime to NumCPU
		QueueSize:   256,
		Retries:     3,
		RetryDelay:  200 * time.Millisecond,
		ChunkSize:   32 * 1024,
		RawCache:    RawCacheConfig{MaxEntries: 128},
		LogLevel:    "info",
	}
}

// UnmarshalYAML decodes a config document over the receiver's current
// values, so decoding into Default() layers the file on top of the defaults.
// Durations are Go duration strings ("200ms", "30s").
func (c *Config) UnmarshalYAML(node *yaml.Node) error {
	type rawConfig struct {
		WorkerCount     *int            `yaml:"worker_count"`
		QueueSize       *int            `yaml:"queue_size"`
		Retries         *int            `yaml:"retries"`
		RetryDelay      *string         `yaml:"retry_delay"`
		TimeLimit       *string         `yaml:"time_limit"`
		ChunkSize       *int            `yaml:"chunk_size"`
		MaxPayloadBytes *int64          `yaml:"max_payload_bytes"`
		RawCache        *RawCacheConfig `yaml:"raw_cache"`
		LogLevel        *string         `yaml:"log_level"`
	}
	var raw rawConfig
	if err := node.Decode(&raw); err != nil {
		return err
	}
	if raw.WorkerCount != nil {
		c.WorkerCount = *raw.WorkerCount
	}
	if raw.QueueSize != nil {
		c.QueueSize = *raw.QueueSize
	}
	if raw.Retries != nil {
		c.Retries = *raw.Retries
	}
	if raw.RetryDelay != nil {
		d, err := time.ParseDuration(*raw.RetryDelay)
		if err != nil {
			return fmt.Errorf("config: retry_delay: %w", err)
		}
		c.RetryDelay = d
	}
	if raw.TimeLimit != nil {
		d, err := time.ParseDuration(*raw.TimeLimit)
		if err != nil {
			return fmt.Errorf("config: time_limit: %w", err)
		}
		c.TimeLimit = d
	}
	if raw.ChunkSize != nil {
		c.ChunkSize = *raw.ChunkSize
	}
	if raw.MaxPayloadBytes != nil {
		c.MaxPayloadBytes = *raw.MaxPayloadBytes
	}
	if raw.RawCache != nil {
		c.RawCache = *raw.RawCache
	}
	if raw.LogLevel != nil {
		c.LogLevel = *raw.LogLevel
	}
	return nil
}

// Load reads a YAML config file, layering it over Default().
func Load(path string) (Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate returns an error if the configuration is inconsistent.
func Validate(c Config) error {
	if c.Retries < 0 {
		return errors.New("config: Retries must not be negative")
	}
	if c.RetryDelay < 0 {
		return errors.New("config: RetryDelay must not be negative")
	}
	if c.TimeLimit < 0 {
		return errors.New("config: TimeLimit must not be negative")
	}
	if c.ChunkSize <= 0 {
		return errors.New("config: ChunkSize must be positive")
	}
	if c.RawCache.MaxEntries < 0 {
		return errors.New("config: RawCache.MaxEntries must not be negative")
	}
	return nil
}
