// Package cfg loads pipeline settings from an optional YAML file with
// environment-variable overrides. Flags in each command override both.
package cfg

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Settings struct {
	DataPath     string        // directory holding the location database
	OutDir       string        // directory for metrics, predictions, charts
	ModelPath    string        // pipeline artifact location
	Seed         int64         // train/eval split seed
	TestSize     float64       // held-out fraction of the labeled set
	Alpha        float64       // elastic-net regularization strength
	L1Ratio      float64       // elastic-net L1/L2 mix
	FetchTimeout time.Duration // HTTP timeout for remote ingest sources
}

type ConfigFile struct {
	Pipeline struct {
		DataPath  string `yaml:"dataPath"`
		OutDir    string `yaml:"outDir"`
		ModelPath string `yaml:"modelPath"`
	} `yaml:"pipeline"`

	// Pointer fields distinguish an absent key from an explicit zero:
	// seed: 0, alpha: 0 and l1Ratio: 0 are all meaningful settings.
	Model struct {
		Seed     *int64   `yaml:"seed"`
		TestSize *float64 `yaml:"testSize"`
		Alpha    *float64 `yaml:"alpha"`
		L1Ratio  *float64 `yaml:"l1Ratio"`
	} `yaml:"model"`

	System struct {
		FetchTimeout string `yaml:"fetchTimeout"`
	} `yaml:"system"`
}

// Load reads settings from the file named by CONFIG_FILE when set, falling
// back to environment variables with working defaults otherwise.
func Load() (Settings, error) {
	if configPath := os.Getenv("CONFIG_FILE"); configPath != "" {
		return loadFromYAML(configPath)
	}
	return loadFromEnv()
}

func loadFromYAML(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Settings{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	fetchTimeout, err := time.ParseDuration(config.System.FetchTimeout)
	if err != nil {
		fetchTimeout = 30 * time.Second
	}

	settings := Settings{
		DataPath:     getEnvOrDefault("DATA_PATH", defaultStr(config.Pipeline.DataPath, "data")),
		OutDir:       getEnvOrDefault("OUT_DIR", defaultStr(config.Pipeline.OutDir, "outputs")),
		ModelPath:    getEnvOrDefault("MODEL_PATH", defaultStr(config.Pipeline.ModelPath, "outputs/model.json")),
		Seed:         getInt64FromEnvOrConfig("SPLIT_SEED", config.Model.Seed, 42),
		TestSize:     getFloatFromEnvOrConfig("TEST_SIZE", config.Model.TestSize, 0.25),
		Alpha:        getFloatFromEnvOrConfig("ALPHA", config.Model.Alpha, 0.05),
		L1Ratio:      getFloatFromEnvOrConfig("L1_RATIO", config.Model.L1Ratio, 0.20),
		FetchTimeout: fetchTimeout,
	}

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}
	return settings, nil
}

func loadFromEnv() (Settings, error) {
	settings := Settings{
		DataPath:     getEnvOrDefault("DATA_PATH", "data"),
		OutDir:       getEnvOrDefault("OUT_DIR", "outputs"),
		ModelPath:    getEnvOrDefault("MODEL_PATH", "outputs/model.json"),
		Seed:         getInt64OrDefault("SPLIT_SEED", 42),
		TestSize:     getFloatOrDefault("TEST_SIZE", 0.25),
		Alpha:        getFloatOrDefault("ALPHA", 0.05),
		L1Ratio:      getFloatOrDefault("L1_RATIO", 0.20),
		FetchTimeout: getDurationOrDefault("FETCH_TIMEOUT", 30*time.Second),
	}

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}
	return settings, nil
}

// validateSettings rejects values a run could not complete with.
func validateSettings(settings *Settings) error {
	if settings.DataPath == "" {
		return fmt.Errorf("data path is required")
	}
	if settings.OutDir == "" {
		return fmt.Errorf("output directory is required")
	}
	if settings.ModelPath == "" {
		return fmt.Errorf("model path is required")
	}
	if settings.TestSize <= 0 || settings.TestSize >= 1 {
		return fmt.Errorf("test size must be in (0, 1), got %v", settings.TestSize)
	}
	if settings.Alpha < 0 {
		return fmt.Errorf("alpha must be non-negative, got %v", settings.Alpha)
	}
	if settings.L1Ratio < 0 || settings.L1Ratio > 1 {
		return fmt.Errorf("l1 ratio must be in [0, 1], got %v", settings.L1Ratio)
	}
	if settings.FetchTimeout <= 0 {
		return fmt.Errorf("fetch timeout must be positive, got %v", settings.FetchTimeout)
	}
	return nil
}

func defaultStr(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}

func getInt64OrDefault(key string, defaultValue int64) int64 {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}

func getFloatOrDefault(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getInt64FromEnvOrConfig(key string, configValue *int64, defaultValue int64) int64 {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.ParseInt(env, 10, 64); err == nil {
			return val
		}
	}
	if configValue != nil {
		return *configValue
	}
	return defaultValue
}

func getFloatFromEnvOrConfig(key string, configValue *float64, defaultValue float64) float64 {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.ParseFloat(env, 64); err == nil {
			return val
		}
	}
	if configValue != nil {
		return *configValue
	}
	return defaultValue
}
