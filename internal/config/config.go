// Package config reads run defaults from the environment. Flags on the CLI
// override anything loaded here.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"simbench/domain/core"
)

// Config holds the batch defaults.
type Config struct {
	Seed         uint64
	Replications int
	SampleSizes  []int
	Alpha        float64
	Workers      int
	OutDir       string
	SnapshotDir  string
	DatabaseURL  string // optional; empty disables the Postgres sink
}

// Load reads configuration from environment variables and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		Seed:         42,
		Replications: 10000,
		SampleSizes:  []int{25, 50, 100},
		Alpha:        0.05,
		Workers:      0, // 0 means GOMAXPROCS
		OutDir:       "out",
		SnapshotDir:  "out/snapshots",
		DatabaseURL:  os.Getenv("DATABASE_URL"),
	}

	var err error
	if cfg.Seed, err = envUint("SIMBENCH_SEED", cfg.Seed); err != nil {
		return nil, err
	}
	if cfg.Replications, err = envInt("SIMBENCH_REPLICATIONS", cfg.Replications); err != nil {
		return nil, err
	}
	if cfg.Alpha, err = envFloat("SIMBENCH_ALPHA", cfg.Alpha); err != nil {
		return nil, err
	}
	if cfg.Workers, err = envInt("SIMBENCH_WORKERS", cfg.Workers); err != nil {
		return nil, err
	}
	if v := os.Getenv("SIMBENCH_OUT_DIR"); v != "" {
		cfg.OutDir = v
	}
	if v := os.Getenv("SIMBENCH_SNAPSHOT_DIR"); v != "" {
		cfg.SnapshotDir = v
	}
	if v := os.Getenv("SIMBENCH_SAMPLE_SIZES"); v != "" {
		sizes, err := ParseSampleSizes(v)
		if err != nil {
			return nil, err
		}
		cfg.SampleSizes = sizes
	}

	if cfg.Replications < 1 {
		return nil, core.NewConfigurationError("SIMBENCH_REPLICATIONS", "must be a positive integer")
	}
	if cfg.Alpha <= 0 || cfg.Alpha >= 1 {
		return nil, core.NewConfigurationError("SIMBENCH_ALPHA", "must be in (0, 1)")
	}
	return cfg, nil
}

// ParseSampleSizes parses a comma-separated size list like "25,50,100".
func ParseSampleSizes(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	sizes := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 1 {
			return nil, core.NewConfigurationError("sample_sizes", fmt.Sprintf("invalid size %q", part))
		}
		sizes = append(sizes, n)
	}
	return sizes, nil
}

func envInt(name string, fallback int) (int, error) {
	v := os.Getenv(name)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, core.NewConfigurationError(name, fmt.Sprintf("invalid integer %q", v))
	}
	return n, nil
}

func envUint(name string, fallback uint64) (uint64, error) {
	v := os.Getenv(name)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, core.NewConfigurationError(name, fmt.Sprintf("invalid unsigned integer %q", v))
	}
	return n, nil
}

func envFloat(name string, fallback float64) (float64, error) {
	v := os.Getenv(name)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, core.NewConfigurationError(name, fmt.Sprintf("invalid float %q", v))
	}
	return f, nil
}
