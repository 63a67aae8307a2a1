//go:build wasmtime

// Package wasmtime describes modules with the wasmtime engine through its
// cgo bindings. Build with -tags wasmtime to enable it.
package wasmtime

import (
	"context"
	"fmt"

	"github.com/bytecodealliance/wasmtime-go/v14"
	"github.com/snow-ghost/wasminspect/core"
)

// Name is the engine name used in configuration and reports.
const Name = "wasmtime"

// Config tunes the wasmtime engine.
type Config struct {
	// Optimize turns on Cranelift optimizations. Inspection never runs code,
	// so they are off unless asked for.
	Optimize bool
}

// Engine implements core.Engine with wasmtime.
type Engine struct {
	engine *wasmtime.Engine
}

// NewEngine creates a wasmtime-backed engine.
func NewEngine(cfg Config) (*Engine, error) {
	wcfg := wasmtime.NewConfig()
	wcfg.SetStrategy(wasmtime.StrategyCranelift)
	if cfg.Optimize {
		wcfg.SetCraneliftOptLevel(wasmtime.OptLevelSpeed)
	} else {
		wcfg.SetCraneliftOptLevel(wasmtime.OptLevelNone)
	}
	return &Engine{engine: wasmtime.NewEngineWithConfig(wcfg)}, nil
}

func (e *Engine) Name() string { return Name }

// Inspect validates and compiles the module, then reads its import and
// export types. wasmtime reports them in binary order.
func (e *Engine) Inspect(ctx context.Context, wasm []byte) (*core.Descriptor, error) {
	if len(wasm) == 0 {
		return nil, core.ErrEmptyBinary
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	module, err := wasmtime.NewModule(e.engine, wasm)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrInvalidModule, err)
	}

	imports := module.Imports()
	exports := module.Exports()
	d := &core.Descriptor{
		Engine:  Name,
		Imports: make([]core.Import, 0, len(imports)),
		Exports: make([]core.Export, 0, len(exports)),
	}

	for _, imp := range imports {
		name := ""
		if n := imp.Name(); n != nil {
			name = *n
		}
		typ, err := externType(imp.Type())
		if err != nil {
			return nil, fmt.Errorf("import %s.%s: %w", imp.Module(), name, err)
		}
		d.Imports = append(d.Imports, core.Import{Module: imp.Module(), Name: name, Type: typ})
	}

	for _, exp := range exports {
		typ, err := externType(exp.Type())
		if err != nil {
			return nil, fmt.Errorf("export %s: %w", exp.Name(), err)
		}
		d.Exports = append(d.Exports, core.Export{Name: exp.Name(), Type: typ})
	}

	return d, nil
}

func externType(et *wasmtime.ExternType) (core.ExternType, error) {
	if ft := et.FuncType(); ft != nil {
		return core.ExternType{
			Kind:    core.KindFunc,
			Params:  valueTypes(ft.Params()),
			Results: valueTypes(ft.Results()),
		}, nil
	}
	if mt := et.MemoryType(); mt != nil {
		limits := &core.Limits{Min: mt.Minimum()}
		if ok, hi := mt.Maximum(); ok {
			limits.Max = &hi
		}
		return core.ExternType{Kind: core.KindMemory, Limits: limits, Memory64: mt.Is64()}, nil
	}
	if tt := et.TableType(); tt != nil {
		limits := &core.Limits{Min: uint64(tt.Minimum())}
		if ok, hi := tt.Maximum(); ok {
			v := uint64(hi)
			limits.Max = &v
		}
		return core.ExternType{Kind: core.KindTable, Limits: limits, Element: valueType(tt.Element())}, nil
	}
	if gt := et.GlobalType(); gt != nil {
		return core.ExternType{Kind: core.KindGlobal, Value: valueType(gt.Content()), Mutable: gt.Mutable()}, nil
	}
	return core.ExternType{}, fmt.Errorf("unsupported extern type")
}

func valueTypes(in []*wasmtime.ValType) []core.ValueType {
	if len(in) == 0 {
		return nil
	}
	out := make([]core.ValueType, len(in))
	for i, vt := range in {
		out[i] = valueType(vt)
	}
	return out
}

func valueType(vt *wasmtime.ValType) core.ValueType {
	switch vt.Kind() {
	case wasmtime.KindI32:
		return core.ValueTypeI32
	case wasmtime.KindI64:
		return core.ValueTypeI64
	case wasmtime.KindF32:
		return core.ValueTypeF32
	case wasmtime.KindF64:
		return core.ValueTypeF64
	case wasmtime.KindFuncref:
		return core.ValueTypeFuncref
	case wasmtime.KindExternref:
		return core.ValueTypeExternref
	}
	return core.ValueType(vt.Kind().String())
}

// Close is a no-op; wasmtime objects are released by finalizers.
func (e *Engine) Close(ctx context.Context) error {
	return nil
}
