package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var engines = []string{"wazero", "wasmtime"}

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	chdirTemp(t)
	t.Setenv("WASMINSPECT_CONFIG", "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, []string{DefaultPath}, cfg.Paths)
	assert.Equal(t, []string{"finish", "set_approval", "revoke_approval"}, cfg.Expected)
	assert.Equal(t, "wazero", cfg.Engine)
	assert.Equal(t, FormatText, cfg.Format)
	assert.False(t, cfg.Strict)
	require.NoError(t, cfg.Validate(engines))
}

func TestLoad_YAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wasminspect.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
paths:
  - build/a.wasm
  - build/b.wasm
expected: [init, call]
engine: wasmtime
format: json
strict: true
concurrency: 2
wazero:
  memory_limit_pages: 256
log:
  level: debug
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"build/a.wasm", "build/b.wasm"}, cfg.Paths)
	assert.Equal(t, []string{"init", "call"}, cfg.Expected)
	assert.Equal(t, "wasmtime", cfg.Engine)
	assert.Equal(t, FormatJSON, cfg.Format)
	assert.True(t, cfg.Strict)
	assert.Equal(t, 2, cfg.Concurrency)
	assert.Equal(t, uint32(256), cfg.Wazero.MemoryLimitPages)
	assert.True(t, cfg.Wazero.Interpreter, "unset keys keep their defaults")
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 128, cfg.CacheSize)
}

func TestLoad_EnvOverrides(t *testing.T) {
	chdirTemp(t)
	t.Setenv("WASMINSPECT_CONFIG", "")
	t.Setenv("WASMINSPECT_ENGINE", "wasmtime")
	t.Setenv("WASMINSPECT_FORMAT", "json")
	t.Setenv("WASMINSPECT_EXPECT", " finish , ,set_approval")
	t.Setenv("WASMINSPECT_CONCURRENCY", "8")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "wasmtime", cfg.Engine)
	assert.Equal(t, FormatJSON, cfg.Format)
	assert.Equal(t, []string{"finish", "set_approval"}, cfg.Expected)
	assert.Equal(t, 8, cfg.Concurrency)

	t.Setenv("WASMINSPECT_CONCURRENCY", "many")
	_, err = Load("")
	assert.Error(t, err)
}

func TestLoad_ConfigEnvPath(t *testing.T) {
	dir := chdirTemp(t)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engine: wasmtime\n"), 0o644))
	t.Setenv("WASMINSPECT_CONFIG", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "wasmtime", cfg.Engine)
}

func TestLoad_Errors(t *testing.T) {
	t.Setenv("WASMINSPECT_CONFIG", "")

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err, "an explicitly named file must exist")

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("paths: [unterminated"), 0o644))
	_, err = Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
	assert.Contains(t, err.Error(), "failed to parse YAML config")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no paths", func(c *Config) { c.Paths = nil }},
		{"blank path", func(c *Config) { c.Paths = []string{" "} }},
		{"unknown engine", func(c *Config) { c.Engine = "wasmer" }},
		{"unknown format", func(c *Config) { c.Format = "yaml" }},
		{"zero concurrency", func(c *Config) { c.Concurrency = 0 }},
		{"negative cache", func(c *Config) { c.CacheSize = -1 }},
		{"bad log level", func(c *Config) { c.Log.Level = "verbose" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate(engines))
		})
	}
}

func TestParseCommaSeparated(t *testing.T) {
	assert.Equal(t, []string{}, ParseCommaSeparated(""))
	assert.Equal(t, []string{"a", "b"}, ParseCommaSeparated("a, b,,"))
}

func TestLoadFromBytes(t *testing.T) {
	cfg, err := LoadFromBytes([]byte("expected: [finish]\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"finish"}, cfg.Expected)
	assert.Equal(t, []string{DefaultPath}, cfg.Paths)
}
