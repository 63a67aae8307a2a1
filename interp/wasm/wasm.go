package wasm

import (
	"context"
	"fmt"

	"github.com/snow-ghost/wasminspect/core"
	"github.com/snow-ghost/wasminspect/interp/wasm/section"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
)

// Name is the engine name used in configuration and reports.
const Name = "wazero"

// Config tunes the wazero runtime used for compilation.
type Config struct {
	// Interpreter selects the interpreter backend instead of the platform compiler.
	Interpreter bool
	// MemoryLimitPages caps the memory size wazero accepts. Zero keeps the default
	// of 65536 pages.
	MemoryLimitPages uint32
}

// Engine implements core.Engine with the wazero runtime
type Engine struct {
	runtime wazero.Runtime
}

// NewEngine creates a wazero-backed engine
func NewEngine(ctx context.Context, cfg Config) *Engine {
	var rc wazero.RuntimeConfig
	if cfg.Interpreter {
		rc = wazero.NewRuntimeConfigInterpreter()
	} else {
		rc = wazero.NewRuntimeConfig()
	}
	if cfg.MemoryLimitPages > 0 {
		rc = rc.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}

	return &Engine{
		runtime: wazero.NewRuntimeWithConfig(ctx, rc),
	}
}

func (e *Engine) Name() string { return Name }

// Inspect compiles the module, which validates it, and describes its imports
// and exports. The module is never instantiated.
func (e *Engine) Inspect(ctx context.Context, wasm []byte) (*core.Descriptor, error) {
	if len(wasm) == 0 {
		return nil, core.ErrEmptyBinary
	}

	compiled, err := e.runtime.CompileModule(ctx, wasm)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrInvalidModule, err)
	}
	defer compiled.Close(ctx)

	secs, err := section.Read(wasm)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrInvalidModule, err)
	}

	return describe(compiled, secs)
}

// describe merges wazero's function definitions with the section read,
// which keeps binary order and covers tables and globals.
func describe(compiled wazero.CompiledModule, secs *section.Module) (*core.Descriptor, error) {
	d := &core.Descriptor{
		Engine:  Name,
		Imports: make([]core.Import, 0, len(secs.Imports)),
		Exports: make([]core.Export, 0, len(secs.Exports)),
	}

	importedFuncs := compiled.ImportedFunctions()
	for i, imp := range secs.Imports {
		typ := imp.Type
		if k := secs.ImportedFuncIndex(i); k >= 0 {
			if k >= len(importedFuncs) {
				return nil, fmt.Errorf("function import %s.%s not reported by wazero", imp.Module, imp.Name)
			}
			typ = funcType(importedFuncs[k])
		}
		d.Imports = append(d.Imports, core.Import{Module: imp.Module, Name: imp.Name, Type: typ})
	}

	exportedFuncs := compiled.ExportedFunctions()
	for _, exp := range secs.Exports {
		var typ core.ExternType
		switch exp.Kind {
		case core.KindFunc:
			def, ok := exportedFuncs[exp.Name]
			if !ok {
				return nil, fmt.Errorf("function export %q not reported by wazero", exp.Name)
			}
			typ = funcType(def)
		default:
			var err error
			if typ, err = secs.Resolve(exp); err != nil {
				return nil, err
			}
		}
		d.Exports = append(d.Exports, core.Export{Name: exp.Name, Type: typ})
	}

	return d, nil
}

func funcType(def api.FunctionDefinition) core.ExternType {
	return core.ExternType{
		Kind:    core.KindFunc,
		Params:  valueTypes(def.ParamTypes()),
		Results: valueTypes(def.ResultTypes()),
	}
}

// valueTypes names wazero's value types. api.ValueType is the binary
// encoding, which section.ValueType maps including v128 and funcref.
func valueTypes(in []api.ValueType) []core.ValueType {
	if len(in) == 0 {
		return nil
	}
	out := make([]core.ValueType, len(in))
	for i, vt := range in {
		out[i] = section.ValueType(vt)
	}
	return out
}

// Close releases the runtime and everything compiled by it
func (e *Engine) Close(ctx context.Context) error {
	return e.runtime.Close(ctx)
}
