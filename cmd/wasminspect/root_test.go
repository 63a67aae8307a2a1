package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/snow-ghost/wasminspect/config"
	"github.com/snow-ghost/wasminspect/core"
	"github.com/snow-ghost/wasminspect/interp/wasm/wasmtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("WASMINSPECT_CONFIG", "")

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func writeWasm(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestRoot_DefaultPath(t *testing.T) {
	dir := t.TempDir()
	writeWasm(t, dir, config.DefaultPath, wasmtest.Escrow())

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	out, err := execute(t)
	require.NoError(t, err)

	want := `=== Analyzing WASM binary ===

Binary size: 201 bytes

Exports:
  - memory (memory 1 16)
  - finish (func (result i32))
  - set_approval (func (result i32))
  - revoke_approval (func (result i32))
  - __indirect_function_table (table 1 funcref)
  - __data_end (global i32)

Imports:
  - host_lib.trace (func (param i32 i32) (result i32))
  - env.ledger_seq (global i32)

[FOUND] finish
[FOUND] set_approval
[FOUND] revoke_approval
`
	assert.Equal(t, want, out)
}

func TestRoot_MissingSymbols(t *testing.T) {
	path := writeWasm(t, t.TempDir(), "solve.wasm", wasmtest.Solve())

	out, err := execute(t, path)
	require.NoError(t, err, "missing exports alone do not fail the run")
	assert.Contains(t, out, "[MISSING] finish\n[MISSING] set_approval\n[MISSING] revoke_approval\n")

	_, err = execute(t, "--strict", path)
	var ee *exitError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, exitMissing, ee.code)
}

func TestRoot_Expect(t *testing.T) {
	path := writeWasm(t, t.TempDir(), "solve.wasm", wasmtest.Solve())

	out, err := execute(t, "--expect", "solve,memory", "--expect", "finish", path)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out, "[FOUND] solve\n[FOUND] memory\n[MISSING] finish\n"))
}

func TestRoot_JSON(t *testing.T) {
	dir := t.TempDir()
	a := writeWasm(t, dir, "a.wasm", wasmtest.ThreeExports())
	b := writeWasm(t, dir, "b.wasm", wasmtest.Imports())

	out, err := execute(t, "--format", "json", a, b)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)

	var ra, rb core.Report
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &ra))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &rb))
	assert.Equal(t, a, ra.Path)
	assert.True(t, ra.AllFound())
	assert.Equal(t, b, rb.Path)
	assert.Len(t, rb.Descriptor.Imports, 3)
}

func TestRoot_Failures(t *testing.T) {
	dir := t.TempDir()

	t.Run("nonexistent path", func(t *testing.T) {
		out, err := execute(t, filepath.Join(dir, "nope.wasm"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, os.ErrNotExist))
		assert.Equal(t, "=== Analyzing WASM binary ===\n\n", out)
	})

	t.Run("not a wasm file", func(t *testing.T) {
		path := writeWasm(t, dir, "notes.txt", []byte("plain text"))
		out, err := execute(t, path)
		require.Error(t, err)
		assert.ErrorIs(t, err, core.ErrInvalidModule)
		assert.Equal(t, "=== Analyzing WASM binary ===\n\nBinary size: 10 bytes\n", out)
	})

	t.Run("json prints nothing on failure", func(t *testing.T) {
		path := writeWasm(t, dir, "notes.txt", []byte("plain text"))
		out, err := execute(t, "--format", "json", path)
		require.Error(t, err)
		assert.Empty(t, out)
	})

	t.Run("unknown engine", func(t *testing.T) {
		_, err := execute(t, "--engine", "wasmer", filepath.Join(dir, "x.wasm"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown engine")
	})
}

func TestRoot_BatchStopsAtFailure(t *testing.T) {
	dir := t.TempDir()
	ok := writeWasm(t, dir, "solve.wasm", wasmtest.Solve())
	bad := writeWasm(t, dir, "notes.txt", []byte("plain text"))

	out, err := execute(t, "--expect", "solve", ok, bad)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidModule)

	want := "### " + ok + "\n" +
		"=== Analyzing WASM binary ===\n\n" +
		fmt.Sprintf("Binary size: %d bytes\n", len(wasmtest.Solve())) +
		"\nExports:\n  - memory (memory 1)\n  - solve (func (param i32 i32) (result i32 i32))\n" +
		"\nImports:\n" +
		"\n[FOUND] solve\n" +
		"\n### " + bad + "\n" +
		"=== Analyzing WASM binary ===\n\n" +
		"Binary size: 10 bytes\n"
	assert.Equal(t, want, out)
}

func TestRoot_MetricsFile(t *testing.T) {
	dir := t.TempDir()
	path := writeWasm(t, dir, "a.wasm", wasmtest.Escrow())
	prom := filepath.Join(dir, "wasminspect.prom")

	_, err := execute(t, "--metrics-file", prom, path)
	require.NoError(t, err)

	data, err := os.ReadFile(prom)
	require.NoError(t, err)
	assert.Contains(t, string(data), "wasminspect_inspections_total")
	assert.Contains(t, string(data), "wasminspect_binary_size_bytes")
}

func TestRoot_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := writeWasm(t, dir, "a.wasm", wasmtest.Solve())
	cfgPath := filepath.Join(dir, "wasminspect.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("paths: ["+path+"]\nexpected: [solve]\n"), 0o644))

	out, err := execute(t, "--config", cfgPath)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out, "\n[FOUND] solve\n"))
}
