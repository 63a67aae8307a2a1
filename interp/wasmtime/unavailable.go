//go:build !wasmtime

package wasmtime

import (
	"context"
	"fmt"

	"github.com/snow-ghost/wasminspect/core"
)

// Name is the engine name used in configuration and reports.
const Name = "wasmtime"

// Config tunes the wasmtime engine.
type Config struct {
	Optimize bool
}

// Engine stands in for the wasmtime engine in builds without the wasmtime tag.
type Engine struct{}

// NewEngine reports that wasmtime support was not compiled in.
func NewEngine(cfg Config) (*Engine, error) {
	return nil, fmt.Errorf("%w: %s (rebuild with -tags wasmtime)", core.ErrEngineUnavailable, Name)
}

func (e *Engine) Name() string { return Name }

func (e *Engine) Inspect(ctx context.Context, wasm []byte) (*core.Descriptor, error) {
	return nil, core.ErrEngineUnavailable
}

func (e *Engine) Close(ctx context.Context) error { return nil }
