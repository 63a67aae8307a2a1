// Package section lists the interface of a WebAssembly binary: imports and
// exports in binary order, with the types of tables, memories and globals.
//
// Decoding is done by wabin, which is not a full validator. Callers are
// expected to have compiled the bytes with an engine first.
package section

import (
	"errors"
	"fmt"

	"github.com/snow-ghost/wasminspect/core"
	"github.com/tetratelabs/wabin/binary"
	"github.com/tetratelabs/wabin/wasm"
)

// ErrMalformed is wrapped by every decoding error.
var ErrMalformed = errors.New("malformed wasm binary")

// features matches the 2.0 feature set wazero compiles by default.
const features = wasm.CoreFeaturesV2

// Import is one entry of the import section. Type is complete for tables,
// memories and globals, and carries only the kind for functions.
type Import struct {
	Module string
	Name   string
	Type   core.ExternType
}

// Export is one entry of the export section.
type Export struct {
	Name  string
	Kind  core.Kind
	Index uint32
}

// Module holds the decoded interface.
type Module struct {
	Imports  []Import
	Exports  []Export
	Tables   []core.ExternType // defined, not imported
	Memories []core.ExternType
	Globals  []core.ExternType
}

// Read decodes b and collects its imports, definitions and exports.
func Read(b []byte) (*Module, error) {
	decoded, err := binary.DecodeModule(b, features)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	m := &Module{
		Imports: make([]Import, 0, len(decoded.ImportSection)),
		Exports: make([]Export, 0, len(decoded.ExportSection)),
	}

	for _, imp := range decoded.ImportSection {
		typ, err := importType(imp)
		if err != nil {
			return nil, fmt.Errorf("import %s.%s: %w", imp.Module, imp.Name, err)
		}
		m.Imports = append(m.Imports, Import{Module: imp.Module, Name: imp.Name, Type: typ})
	}

	for _, t := range decoded.TableSection {
		m.Tables = append(m.Tables, tableType(t))
	}
	if decoded.MemorySection != nil {
		m.Memories = append(m.Memories, memoryType(decoded.MemorySection))
	}
	for _, g := range decoded.GlobalSection {
		m.Globals = append(m.Globals, globalType(g.Type))
	}

	for _, e := range decoded.ExportSection {
		kind, err := externKind(e.Type)
		if err != nil {
			return nil, fmt.Errorf("export %q: %w", e.Name, err)
		}
		m.Exports = append(m.Exports, Export{Name: e.Name, Kind: kind, Index: e.Index})
	}
	return m, nil
}

// ImportedFuncIndex returns the position of the i-th import among the
// imported functions, or -1 if it is not a function import.
func (m *Module) ImportedFuncIndex(i int) int {
	if m.Imports[i].Type.Kind != core.KindFunc {
		return -1
	}
	n := 0
	for _, imp := range m.Imports[:i] {
		if imp.Type.Kind == core.KindFunc {
			n++
		}
	}
	return n
}

// Resolve returns the type of the table, memory or global an export refers to.
func (m *Module) Resolve(e Export) (core.ExternType, error) {
	var defined []core.ExternType
	switch e.Kind {
	case core.KindTable:
		defined = m.Tables
	case core.KindMemory:
		defined = m.Memories
	case core.KindGlobal:
		defined = m.Globals
	default:
		return core.ExternType{}, fmt.Errorf("cannot resolve %s export %q from sections", e.Kind, e.Name)
	}

	// index spaces start with the imports of the same kind
	idx := int(e.Index)
	for _, imp := range m.Imports {
		if imp.Type.Kind != e.Kind {
			continue
		}
		if idx == 0 {
			return imp.Type, nil
		}
		idx--
	}
	if idx >= len(defined) {
		return core.ExternType{}, fmt.Errorf("%w: export %q: %s index %d out of range", ErrMalformed, e.Name, e.Kind, e.Index)
	}
	return defined[idx], nil
}

// ValueType maps a binary value type encoding to its text name.
func ValueType(vt wasm.ValueType) core.ValueType {
	switch vt {
	case wasm.ValueTypeI32:
		return core.ValueTypeI32
	case wasm.ValueTypeI64:
		return core.ValueTypeI64
	case wasm.ValueTypeF32:
		return core.ValueTypeF32
	case wasm.ValueTypeF64:
		return core.ValueTypeF64
	case wasm.ValueTypeV128:
		return core.ValueTypeV128
	case wasm.ValueTypeFuncref:
		return core.ValueTypeFuncref
	case wasm.ValueTypeExternref:
		return core.ValueTypeExternref
	}
	return core.ValueType(wasm.ValueTypeName(vt))
}

func importType(imp *wasm.Import) (core.ExternType, error) {
	switch imp.Type {
	case wasm.ExternTypeFunc:
		return core.ExternType{Kind: core.KindFunc}, nil
	case wasm.ExternTypeTable:
		return tableType(imp.DescTable), nil
	case wasm.ExternTypeMemory:
		return memoryType(imp.DescMem), nil
	case wasm.ExternTypeGlobal:
		return globalType(imp.DescGlobal), nil
	}
	return core.ExternType{}, fmt.Errorf("%w: unknown descriptor 0x%02x", ErrMalformed, imp.Type)
}

func externKind(et wasm.ExternType) (core.Kind, error) {
	switch et {
	case wasm.ExternTypeFunc:
		return core.KindFunc, nil
	case wasm.ExternTypeTable:
		return core.KindTable, nil
	case wasm.ExternTypeMemory:
		return core.KindMemory, nil
	case wasm.ExternTypeGlobal:
		return core.KindGlobal, nil
	}
	return "", fmt.Errorf("%w: unknown descriptor 0x%02x", ErrMalformed, et)
}

func tableType(t *wasm.Table) core.ExternType {
	l := &core.Limits{Min: uint64(t.Min)}
	if t.Max != nil {
		hi := uint64(*t.Max)
		l.Max = &hi
	}
	return core.ExternType{Kind: core.KindTable, Limits: l, Element: ValueType(t.Type)}
}

func memoryType(mem *wasm.Memory) core.ExternType {
	l := &core.Limits{Min: uint64(mem.Min)}
	if mem.IsMaxEncoded {
		hi := uint64(mem.Max)
		l.Max = &hi
	}
	return core.ExternType{Kind: core.KindMemory, Limits: l}
}

func globalType(g *wasm.GlobalType) core.ExternType {
	return core.ExternType{Kind: core.KindGlobal, Value: ValueType(g.ValType), Mutable: g.Mutable}
}
