package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultValidates(t *testing.T) {
	if err := Validate(Default()); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative retries", func(c *Config) { c.Retries = -1 }},
		{"negative retry delay", func(c *Config) { c.RetryDelay = -time.Second }},
		{"negative time limit", func(c *Config) { c.TimeLimit = -time.Second }},
		{"zero chunk size", func(c *Config) { c.ChunkSize = 0 }},
		{"negative raw cache cap", func(c *Config) { c.RawCache.MaxEntries = -1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			if err := Validate(cfg); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestLoadLayersOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "loader.yaml")
	doc := `
retries: 5
retry_delay: 1s
time_limit: 30s
raw_cache:
  max_entries: 16
  disk_dir: /var/cache/images
log_level: debug
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Retries != 5 || cfg.RetryDelay != time.Second || cfg.TimeLimit != 30*time.Second {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.RawCache.MaxEntries != 16 || cfg.RawCache.DiskDir != "/var/cache/images" {
		t.Fatalf("raw cache overrides not applied: %+v", cfg.RawCache)
	}
	// Untouched fields keep their defaults.
	if cfg.ChunkSize != Default().ChunkSize || cfg.QueueSize != Default().QueueSize {
		t.Fatalf("defaults lost: %+v", cfg)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadInvalidValuesRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("retries: -2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error from Load")
	}
}
