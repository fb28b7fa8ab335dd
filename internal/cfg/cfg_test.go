package cfg

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CONFIG_FILE", "DATA_PATH", "OUT_DIR", "MODEL_PATH",
		"SPLIT_SEED", "TEST_SIZE", "ALPHA", "L1_RATIO", "FETCH_TIMEOUT",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	s, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if s.DataPath != "data" {
		t.Errorf("DataPath = %q, want data", s.DataPath)
	}
	if s.OutDir != "outputs" {
		t.Errorf("OutDir = %q, want outputs", s.OutDir)
	}
	if s.ModelPath != "outputs/model.json" {
		t.Errorf("ModelPath = %q, want outputs/model.json", s.ModelPath)
	}
	if s.Seed != 42 {
		t.Errorf("Seed = %d, want 42", s.Seed)
	}
	if s.TestSize != 0.25 {
		t.Errorf("TestSize = %v, want 0.25", s.TestSize)
	}
	if s.Alpha != 0.05 {
		t.Errorf("Alpha = %v, want 0.05", s.Alpha)
	}
	if s.L1Ratio != 0.20 {
		t.Errorf("L1Ratio = %v, want 0.20", s.L1Ratio)
	}
	if s.FetchTimeout != 30*time.Second {
		t.Errorf("FetchTimeout = %v, want 30s", s.FetchTimeout)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATA_PATH", "/tmp/locations")
	t.Setenv("SPLIT_SEED", "7")
	t.Setenv("TEST_SIZE", "0.4")
	t.Setenv("FETCH_TIMEOUT", "5s")

	s, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if s.DataPath != "/tmp/locations" {
		t.Errorf("DataPath = %q", s.DataPath)
	}
	if s.Seed != 7 {
		t.Errorf("Seed = %d, want 7", s.Seed)
	}
	if s.TestSize != 0.4 {
		t.Errorf("TestSize = %v, want 0.4", s.TestSize)
	}
	if s.FetchTimeout != 5*time.Second {
		t.Errorf("FetchTimeout = %v, want 5s", s.FetchTimeout)
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	clearEnv(t)

	config := `
pipeline:
  dataPath: /var/lib/sitescout
  outDir: /var/lib/sitescout/out
  modelPath: /var/lib/sitescout/out/model.json
model:
  seed: 123
  testSize: 0.3
  alpha: 0.1
  l1Ratio: 0.5
system:
  fetchTimeout: 10s
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(config), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)

	s, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if s.DataPath != "/var/lib/sitescout" {
		t.Errorf("DataPath = %q", s.DataPath)
	}
	if s.Seed != 123 || s.TestSize != 0.3 || s.Alpha != 0.1 || s.L1Ratio != 0.5 {
		t.Errorf("model settings not loaded: %+v", s)
	}
	if s.FetchTimeout != 10*time.Second {
		t.Errorf("FetchTimeout = %v, want 10s", s.FetchTimeout)
	}
}

func TestLoad_YAMLZeroValues(t *testing.T) {
	clearEnv(t)

	// An explicit zero in the file is a setting, not an absent key.
	config := `
model:
  seed: 0
  alpha: 0
  l1Ratio: 0
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(config), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)

	s, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if s.Seed != 0 {
		t.Errorf("Seed = %d, want explicit 0", s.Seed)
	}
	if s.Alpha != 0 {
		t.Errorf("Alpha = %v, want explicit 0", s.Alpha)
	}
	if s.L1Ratio != 0 {
		t.Errorf("L1Ratio = %v, want explicit 0", s.L1Ratio)
	}
	// Absent keys still fall back to defaults.
	if s.TestSize != 0.25 {
		t.Errorf("TestSize = %v, want default 0.25", s.TestSize)
	}
}

func TestLoad_EnvBeatsYAML(t *testing.T) {
	clearEnv(t)

	config := "pipeline:\n  dataPath: /from/yaml\n"
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(config), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("DATA_PATH", "/from/env")

	s, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if s.DataPath != "/from/env" {
		t.Errorf("DataPath = %q, want env override", s.DataPath)
	}
}

func TestLoad_InvalidTestSize(t *testing.T) {
	clearEnv(t)
	t.Setenv("TEST_SIZE", "1.5")

	if _, err := Load(); err == nil {
		t.Error("expected validation error for test size 1.5")
	}
}

func TestLoad_InvalidL1Ratio(t *testing.T) {
	clearEnv(t)
	t.Setenv("L1_RATIO", "-0.2")

	if _, err := Load(); err == nil {
		t.Error("expected validation error for negative l1 ratio")
	}
}

func TestLoad_MissingYAMLFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))

	if _, err := Load(); err == nil {
		t.Error("expected error for missing config file")
	}
}
