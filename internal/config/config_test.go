package config

import (
	"reflect"
	"testing"

	"simbench/domain/core"
)

func TestLoadDefaults(t *testing.T) {
	// Shadow anything the host environment may carry.
	for _, key := range []string{
		"SIMBENCH_SEED", "SIMBENCH_REPLICATIONS", "SIMBENCH_ALPHA",
		"SIMBENCH_WORKERS", "SIMBENCH_SAMPLE_SIZES",
		"SIMBENCH_OUT_DIR", "SIMBENCH_SNAPSHOT_DIR", "DATABASE_URL",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Seed != 42 || cfg.Replications != 10000 || cfg.Alpha != 0.05 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.SampleSizes, []int{25, 50, 100}) {
		t.Errorf("default sizes = %v", cfg.SampleSizes)
	}
	if cfg.OutDir != "out" || cfg.SnapshotDir != "out/snapshots" {
		t.Errorf("unexpected dirs: %+v", cfg)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SIMBENCH_SEED", "7")
	t.Setenv("SIMBENCH_REPLICATIONS", "500")
	t.Setenv("SIMBENCH_ALPHA", "0.01")
	t.Setenv("SIMBENCH_WORKERS", "4")
	t.Setenv("SIMBENCH_SAMPLE_SIZES", "10, 20,40")
	t.Setenv("SIMBENCH_OUT_DIR", "/tmp/tables")
	t.Setenv("SIMBENCH_SNAPSHOT_DIR", "/tmp/snaps")
	t.Setenv("DATABASE_URL", "postgres://localhost/simbench")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Seed != 7 || cfg.Replications != 500 || cfg.Alpha != 0.01 || cfg.Workers != 4 {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.SampleSizes, []int{10, 20, 40}) {
		t.Errorf("sizes = %v, want [10 20 40]", cfg.SampleSizes)
	}
	if cfg.OutDir != "/tmp/tables" || cfg.SnapshotDir != "/tmp/snaps" {
		t.Errorf("dirs not applied: %+v", cfg)
	}
	if cfg.DatabaseURL != "postgres://localhost/simbench" {
		t.Errorf("database url = %q", cfg.DatabaseURL)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
	}{
		{"non-numeric seed", "SIMBENCH_SEED", "abc"},
		{"negative seed", "SIMBENCH_SEED", "-1"},
		{"non-numeric replications", "SIMBENCH_REPLICATIONS", "many"},
		{"zero replications", "SIMBENCH_REPLICATIONS", "0"},
		{"non-numeric alpha", "SIMBENCH_ALPHA", "five percent"},
		{"alpha out of range", "SIMBENCH_ALPHA", "1.5"},
		{"bad size list", "SIMBENCH_SAMPLE_SIZES", "25,zero"},
		{"non-positive size", "SIMBENCH_SAMPLE_SIZES", "25,0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			_, err := Load()
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !core.IsConfigurationError(err) {
				t.Errorf("expected configuration error, got %v", err)
			}
		})
	}
}

func TestParseSampleSizes(t *testing.T) {
	sizes, err := ParseSampleSizes("25,50,100")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(sizes, []int{25, 50, 100}) {
		t.Errorf("sizes = %v", sizes)
	}

	if _, err := ParseSampleSizes(""); err == nil {
		t.Error("empty spec should fail")
	}
	if _, err := ParseSampleSizes("25,,50"); err == nil {
		t.Error("empty element should fail")
	}
	if _, err := ParseSampleSizes("-5"); err == nil {
		t.Error("negative size should fail")
	}
}
