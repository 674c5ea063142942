package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is the configuration file looked up in the working
// directory when no path is given.
const DefaultFileName = "flowc.yaml"

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any errors.
// The configuration is not modified by environment variables; use LoadConfigWithEnvOverrides
// for that functionality.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention FLOWC_SECTION_FIELD (e.g., FLOWC_COMPILER_FORMAT).
// Environment variables always take precedence over file-based configuration.
//
// The loading sequence is:
// 1. Load YAML from file
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// Locate returns the file Load reads for path. An explicit path is returned
// as is. With no path, flowc.yaml in the working directory is used when it
// exists; otherwise Locate returns "" and the defaults apply.
func Locate(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	_, err := os.Stat(DefaultFileName)
	switch {
	case err == nil:
		return DefaultFileName, nil
	case errors.Is(err, fs.ErrNotExist):
		return "", nil
	default:
		return "", fmt.Errorf("failed to stat configuration file %q: %w", DefaultFileName, err)
	}
}

// Load is what the CLI uses. An explicit path must exist; with no path the
// file found by Locate is used, if any. Environment overrides apply in every
// case.
func Load(path string) (*Config, error) {
	source, err := Locate(path)
	if err != nil {
		return nil, err
	}
	if source != "" {
		return LoadConfigWithEnvOverrides(source)
	}

	cfg := Default()
	applyEnvOverrides(cfg)
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables use the format FLOWC_SECTION_FIELD. Values that do not
// parse are ignored.
func applyEnvOverrides(cfg *Config) {
	// Compiler overrides
	setString("FLOWC_COMPILER_VERSION", &cfg.Compiler.Version)
	setString("FLOWC_COMPILER_MODULES_DIR", &cfg.Compiler.ModulesDir)
	setString("FLOWC_COMPILER_FORMAT", &cfg.Compiler.Format)
	if val, ok := os.LookupEnv("FLOWC_COMPILER_INDENT"); ok {
		cfg.Compiler.Indent = val
	}
	if val := os.Getenv("FLOWC_COMPILER_MAX_FILE_SIZE"); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.Compiler.MaxFileSize = i
		}
	}
	if val := os.Getenv("FLOWC_COMPILER_AGENTS"); val != "" {
		for _, agent := range strings.Split(val, ",") {
			if agent = strings.TrimSpace(agent); agent != "" {
				cfg.Compiler.Agents = append(cfg.Compiler.Agents, agent)
			}
		}
	}
	if val := os.Getenv("FLOWC_COMPILER_VALIDATE"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Compiler.Validate = &b
		}
	}

	// Telemetry overrides
	setString("FLOWC_TELEMETRY_LOGGING_LEVEL", &cfg.Telemetry.Logging.Level)
	setString("FLOWC_TELEMETRY_LOGGING_FORMAT", &cfg.Telemetry.Logging.Format)
	setBool("FLOWC_TELEMETRY_METRICS_ENABLED", &cfg.Telemetry.Metrics.Enabled)
	setBool("FLOWC_TELEMETRY_TRACING_ENABLED", &cfg.Telemetry.Tracing.Enabled)
	setString("FLOWC_TELEMETRY_TRACING_ENDPOINT", &cfg.Telemetry.Tracing.Endpoint)
	setString("FLOWC_TELEMETRY_TRACING_SAMPLER", &cfg.Telemetry.Tracing.Sampler)
	if val := os.Getenv("FLOWC_TELEMETRY_TRACING_SAMPLE_RATIO"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Telemetry.Tracing.SampleRatio = f
		}
	}

	// Store overrides
	setBool("FLOWC_STORE_ENABLED", &cfg.Store.Enabled)
	setString("FLOWC_STORE_DRIVER", &cfg.Store.Driver)
	setString("FLOWC_STORE_PATH", &cfg.Store.Path)
	setDuration("FLOWC_STORE_RETENTION_MAX_AGE", &cfg.Store.Retention.MaxAge)
	setString("FLOWC_STORE_RETENTION_SCHEDULE", &cfg.Store.Retention.Schedule)
	if val := os.Getenv("FLOWC_STORE_RETENTION_MAX_ARTIFACTS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Store.Retention.MaxArtifacts = i
		}
	}

	// Watch overrides
	setDuration("FLOWC_WATCH_DEBOUNCE", &cfg.Watch.Debounce)
	setString("FLOWC_WATCH_METRICS_ADDR", &cfg.Watch.MetricsAddr)
	setString("FLOWC_WATCH_OUTPUT_DIR", &cfg.Watch.OutputDir)
}

func setString(key string, dst *string) {
	if val := os.Getenv(key); val != "" {
		*dst = val
	}
}

func setBool(key string, dst *bool) {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			*dst = b
		}
	}
}

func setDuration(key string, dst *time.Duration) {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			*dst = d
		}
	}
}
