// Package interp builds the engine selected by configuration.
package interp

import (
	"context"
	"fmt"

	"github.com/snow-ghost/wasminspect/core"
	"github.com/snow-ghost/wasminspect/interp/wasm"
	"github.com/snow-ghost/wasminspect/interp/wasmtime"
)

// Config selects and tunes an engine.
type Config struct {
	Engine   string
	Wazero   wasm.Config
	Wasmtime wasmtime.Config
}

// Names lists the engine names New accepts.
var Names = []string{wasm.Name, wasmtime.Name}

// New returns the engine named in cfg. An empty name selects wazero.
func New(ctx context.Context, cfg Config) (core.Engine, error) {
	switch cfg.Engine {
	case "", wasm.Name:
		return wasm.NewEngine(ctx, cfg.Wazero), nil
	case wasmtime.Name:
		e, err := wasmtime.NewEngine(cfg.Wasmtime)
		if err != nil {
			return nil, err
		}
		return e, nil
	default:
		return nil, fmt.Errorf("%w: %q", core.ErrUnknownEngine, cfg.Engine)
	}
}
