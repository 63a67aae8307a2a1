package core

import (
	"sort"
	"strconv"
	"strings"
)

// Kind is the kind of an imported or exported item.
type Kind string

const (
	KindFunc   Kind = "func"
	KindTable  Kind = "table"
	KindMemory Kind = "memory"
	KindGlobal Kind = "global"
	KindTag    Kind = "tag"
)

// ValueType is a WebAssembly value or reference type in text format.
type ValueType string

const (
	ValueTypeI32       ValueType = "i32"
	ValueTypeI64       ValueType = "i64"
	ValueTypeF32       ValueType = "f32"
	ValueTypeF64       ValueType = "f64"
	ValueTypeV128      ValueType = "v128"
	ValueTypeFuncref   ValueType = "funcref"
	ValueTypeExternref ValueType = "externref"
)

// Limits bounds a memory (in pages) or a table (in elements).
type Limits struct {
	Min uint64  `json:"min"`
	Max *uint64 `json:"max,omitempty"`
}

// ExternType is the type signature of an import or export.
type ExternType struct {
	Kind Kind `json:"kind"`

	// func and tag
	Params  []ValueType `json:"params,omitempty"`
	Results []ValueType `json:"results,omitempty"`

	// memory and table
	Limits   *Limits `json:"limits,omitempty"`
	Shared   bool    `json:"shared,omitempty"`
	Memory64 bool    `json:"memory64,omitempty"`

	// table
	Element ValueType `json:"element,omitempty"`

	// global
	Value   ValueType `json:"value,omitempty"`
	Mutable bool      `json:"mutable,omitempty"`
}

// String renders the type the way the text format would write it.
func (t ExternType) String() string {
	var b strings.Builder
	b.WriteString(string(t.Kind))

	switch t.Kind {
	case KindFunc, KindTag:
		writeValueTypes(&b, "param", t.Params)
		writeValueTypes(&b, "result", t.Results)
	case KindMemory:
		if t.Memory64 {
			b.WriteString(" i64")
		}
		writeLimits(&b, t.Limits)
		if t.Shared {
			b.WriteString(" shared")
		}
	case KindTable:
		writeLimits(&b, t.Limits)
		if t.Element != "" {
			b.WriteByte(' ')
			b.WriteString(string(t.Element))
		}
	case KindGlobal:
		b.WriteByte(' ')
		if t.Mutable {
			b.WriteString("(mut ")
			b.WriteString(string(t.Value))
			b.WriteByte(')')
		} else {
			b.WriteString(string(t.Value))
		}
	}
	return b.String()
}

func writeValueTypes(b *strings.Builder, label string, types []ValueType) {
	if len(types) == 0 {
		return
	}
	b.WriteString(" (")
	b.WriteString(label)
	for _, vt := range types {
		b.WriteByte(' ')
		b.WriteString(string(vt))
	}
	b.WriteByte(')')
}

func writeLimits(b *strings.Builder, l *Limits) {
	if l == nil {
		return
	}
	b.WriteByte(' ')
	b.WriteString(strconv.FormatUint(l.Min, 10))
	if l.Max != nil {
		b.WriteByte(' ')
		b.WriteString(strconv.FormatUint(*l.Max, 10))
	}
}

// Export is an item a module makes available to its host.
type Export struct {
	Name string     `json:"name"`
	Type ExternType `json:"type"`
}

// Import is an item a module requires its host to supply.
type Import struct {
	Module string     `json:"module"`
	Name   string     `json:"name"`
	Type   ExternType `json:"type"`
}

// Descriptor is the structural summary of a compiled module.
// Exports and Imports keep the order they have in the binary.
type Descriptor struct {
	Engine  string   `json:"engine"`
	Exports []Export `json:"exports"`
	Imports []Import `json:"imports"`
}

// ExportNames returns the set of export names.
func (d *Descriptor) ExportNames() map[string]struct{} {
	names := make(map[string]struct{}, len(d.Exports))
	for _, e := range d.Exports {
		names[e.Name] = struct{}{}
	}
	return names
}

// ExportsOfKind returns the exports of kind k in binary order.
func (d *Descriptor) ExportsOfKind(k Kind) []Export {
	var out []Export
	for _, e := range d.Exports {
		if e.Type.Kind == k {
			out = append(out, e)
		}
	}
	return out
}

// ImportModules returns the distinct module names imported from, sorted.
func (d *Descriptor) ImportModules() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, imp := range d.Imports {
		if _, ok := seen[imp.Module]; ok {
			continue
		}
		seen[imp.Module] = struct{}{}
		out = append(out, imp.Module)
	}
	sort.Strings(out)
	return out
}

// SymbolStatus is the presence check result for one expected export.
type SymbolStatus struct {
	Name  string `json:"name"`
	Found bool   `json:"found"`
}

// Status returns "FOUND" or "MISSING".
func (s SymbolStatus) Status() string {
	if s.Found {
		return "FOUND"
	}
	return "MISSING"
}

// Report is the outcome of inspecting one binary.
type Report struct {
	Path       string         `json:"path"`
	Size       int            `json:"size"`
	SHA256     string         `json:"sha256"`
	Descriptor *Descriptor    `json:"descriptor"`
	Symbols    []SymbolStatus `json:"symbols"`
}

// CheckSymbols tests each expected name for membership in the descriptor's exports.
// The result keeps the order of expected.
func CheckSymbols(d *Descriptor, expected []string) []SymbolStatus {
	names := d.ExportNames()
	out := make([]SymbolStatus, 0, len(expected))
	for _, name := range expected {
		_, found := names[name]
		out = append(out, SymbolStatus{Name: name, Found: found})
	}
	return out
}

// AllFound reports whether every expected symbol is exported.
func (r *Report) AllFound() bool {
	return len(r.Missing()) == 0
}

// Missing returns the names of expected symbols that are not exported.
func (r *Report) Missing() []string {
	var missing []string
	for _, s := range r.Symbols {
		if !s.Found {
			missing = append(missing, s.Name)
		}
	}
	return missing
}
