package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/snow-ghost/wasminspect/pkg/logging"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultPath is where the release build of the escrow contract lands.
	DefaultPath = "target/wasm32-unknown-unknown/release/multi_condition_escrow.wasm"
	// DefaultConfigFile is read when no config path is given.
	DefaultConfigFile = "wasminspect.yaml"
)

// DefaultExpected are the escrow contract entry points.
var DefaultExpected = []string{"finish", "set_approval", "revoke_approval"}

const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config holds configuration for an inspection run
type Config struct {
	Paths       []string       `yaml:"paths"`
	Expected    []string       `yaml:"expected"`
	Engine      string         `yaml:"engine"`
	Format      string         `yaml:"format"`
	Strict      bool           `yaml:"strict"`
	Concurrency int            `yaml:"concurrency"`
	CacheSize   int            `yaml:"cache_size"`
	MetricsFile string         `yaml:"metrics_file"`
	Wazero      WazeroConfig   `yaml:"wazero"`
	Wasmtime    WasmtimeConfig `yaml:"wasmtime"`
	Log         logging.Config `yaml:"log"`
}

// WazeroConfig tunes the wazero engine
type WazeroConfig struct {
	Interpreter      bool   `yaml:"interpreter"`
	MemoryLimitPages uint32 `yaml:"memory_limit_pages"`
}

// WasmtimeConfig tunes the wasmtime engine
type WasmtimeConfig struct {
	Optimize bool `yaml:"optimize"`
}

// Default returns the configuration that reproduces the fixed-path check
func Default() *Config {
	return &Config{
		Paths:       []string{DefaultPath},
		Expected:    append([]string(nil), DefaultExpected...),
		Engine:      "wazero",
		Format:      FormatText,
		Concurrency: 4,
		CacheSize:   128,
		Wazero:      WazeroConfig{Interpreter: true},
		Log:         logging.DefaultConfig(),
	}
}

// Load reads the YAML file at path on top of the defaults, then applies
// environment overrides. An empty path falls back to WASMINSPECT_CONFIG and
// then DefaultConfigFile; a missing default file is not an error.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if configPath := os.Getenv("WASMINSPECT_CONFIG"); !explicit && configPath != "" {
		path = configPath
		explicit = true
	}
	if path == "" {
		path = DefaultConfigFile
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if cfg, err = LoadFromBytes(data); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// defaults only
	default:
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromBytes parses a YAML document on top of the defaults
func LoadFromBytes(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Engine = getEnv("WASMINSPECT_ENGINE", c.Engine)
	c.Format = getEnv("WASMINSPECT_FORMAT", c.Format)
	c.Log.Level = getEnv("WASMINSPECT_LOG_LEVEL", c.Log.Level)
	c.MetricsFile = getEnv("WASMINSPECT_METRICS_FILE", c.MetricsFile)
	if v := os.Getenv("WASMINSPECT_EXPECT"); v != "" {
		c.Expected = ParseCommaSeparated(v)
	}
	if v := os.Getenv("WASMINSPECT_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("WASMINSPECT_CONCURRENCY: %w", err)
		}
		c.Concurrency = n
	}
	return nil
}

// Validate checks if the configuration is usable
func (c *Config) Validate(engines []string) error {
	if len(c.Paths) == 0 {
		return fmt.Errorf("at least one path is required")
	}
	for _, p := range c.Paths {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("empty path")
		}
	}

	known := false
	for _, e := range engines {
		if c.Engine == e {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("unknown engine %q (want one of %s)", c.Engine, strings.Join(engines, ", "))
	}

	if c.Format != FormatText && c.Format != FormatJSON {
		return fmt.Errorf("unknown format %q (want %s or %s)", c.Format, FormatText, FormatJSON)
	}
	if c.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive, got %d", c.Concurrency)
	}
	if c.CacheSize <= 0 {
		return fmt.Errorf("cache_size must be positive, got %d", c.CacheSize)
	}
	if !logging.ValidLevel(c.Log.Level) {
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}
	return nil
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// ParseCommaSeparated parses a comma-separated string into a slice
func ParseCommaSeparated(value string) []string {
	if value == "" {
		return []string{}
	}

	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
