// Package wasmtest holds hand-assembled WebAssembly binaries for tests.
package wasmtest

// escrowModule mirrors the layout of a no_std escrow contract: one host
// import, a table, a memory, a global and the three escrow entry points.
var escrowModule = []byte{
	0x00, 0x61, 0x73, 0x6d, // magic
	0x01, 0x00, 0x00, 0x00, // version
	// type section: () -> i32, (i32 i32) -> i32
	0x01, 0x0b, 0x02, 0x60, 0x00, 0x01, 0x7f, 0x60, 0x02, 0x7f, 0x7f, 0x01,
	0x7f,
	// import section: host_lib.trace func type 1, env.ledger_seq global i32
	0x02, 0x24, 0x02, 0x08, 0x68, 0x6f, 0x73, 0x74, 0x5f, 0x6c, 0x69, 0x62,
	0x05, 0x74, 0x72, 0x61, 0x63, 0x65, 0x00, 0x01, 0x03, 0x65, 0x6e, 0x76,
	0x0a, 0x6c, 0x65, 0x64, 0x67, 0x65, 0x72, 0x5f, 0x73, 0x65, 0x71, 0x03,
	0x7f, 0x00,
	// function section: three functions of type 0
	0x03, 0x04, 0x03, 0x00, 0x00, 0x00,
	// table section: funcref min 1
	0x04, 0x04, 0x01, 0x70, 0x00, 0x01,
	// memory section: min 1 max 16
	0x05, 0x04, 0x01, 0x01, 0x01, 0x10,
	// global section: i32 const 1048576
	0x06, 0x09, 0x01, 0x7f, 0x00, 0x41, 0x80, 0x80, 0xc0, 0x00, 0x0b,
	// export section
	0x07, 0x5d, 0x06, 0x06, 0x6d, 0x65, 0x6d, 0x6f, 0x72, 0x79, 0x02, 0x00,
	0x06, 0x66, 0x69, 0x6e, 0x69, 0x73, 0x68, 0x00, 0x01, 0x0c, 0x73, 0x65,
	0x74, 0x5f, 0x61, 0x70, 0x70, 0x72, 0x6f, 0x76, 0x61, 0x6c, 0x00, 0x02,
	0x0f, 0x72, 0x65, 0x76, 0x6f, 0x6b, 0x65, 0x5f, 0x61, 0x70, 0x70, 0x72,
	0x6f, 0x76, 0x61, 0x6c, 0x00, 0x03, 0x19, 0x5f, 0x5f, 0x69, 0x6e, 0x64,
	0x69, 0x72, 0x65, 0x63, 0x74, 0x5f, 0x66, 0x75, 0x6e, 0x63, 0x74, 0x69,
	0x6f, 0x6e, 0x5f, 0x74, 0x61, 0x62, 0x6c, 0x65, 0x01, 0x00, 0x0a, 0x5f,
	0x5f, 0x64, 0x61, 0x74, 0x61, 0x5f, 0x65, 0x6e, 0x64, 0x03, 0x01,
	// code section: each body returns i32.const 1
	0x0a, 0x10, 0x03, 0x04, 0x00, 0x41, 0x01, 0x0b, 0x04, 0x00, 0x41, 0x01,
	0x0b, 0x04, 0x00, 0x41, 0x01, 0x0b,
}

// threeExportsModule exports exactly finish, set_approval and revoke_approval.
var threeExportsModule = []byte{
	0x00, 0x61, 0x73, 0x6d, // magic
	0x01, 0x00, 0x00, 0x00, // version
	// type section: () -> i32
	0x01, 0x05, 0x01, 0x60, 0x00, 0x01, 0x7f,
	// function section: three functions of type 0
	0x03, 0x04, 0x03, 0x00, 0x00, 0x00,
	// export section: finish, set_approval, revoke_approval
	0x07, 0x2b, 0x03, 0x06, 0x66, 0x69, 0x6e, 0x69, 0x73, 0x68, 0x00, 0x00,
	0x0c, 0x73, 0x65, 0x74, 0x5f, 0x61, 0x70, 0x70, 0x72, 0x6f, 0x76, 0x61,
	0x6c, 0x00, 0x01, 0x0f, 0x72, 0x65, 0x76, 0x6f, 0x6b, 0x65, 0x5f, 0x61,
	0x70, 0x70, 0x72, 0x6f, 0x76, 0x61, 0x6c, 0x00, 0x02,
	// code section
	0x0a, 0x10, 0x03, 0x04, 0x00, 0x41, 0x01, 0x0b, 0x04, 0x00, 0x41, 0x01,
	0x0b, 0x04, 0x00, 0x41, 0x01, 0x0b,
}

// importsModule imports a memory, a table and a mutable global and
// re-exports the memory and the global.
var importsModule = []byte{
	0x00, 0x61, 0x73, 0x6d, // magic
	0x01, 0x00, 0x00, 0x00, // version
	// import section: env.memory, env.table, env.counter (mut i64)
	0x02, 0x2d, 0x03, 0x03, 0x65, 0x6e, 0x76, 0x06, 0x6d, 0x65, 0x6d, 0x6f,
	0x72, 0x79, 0x02, 0x01, 0x01, 0x02, 0x03, 0x65, 0x6e, 0x76, 0x05, 0x74,
	0x61, 0x62, 0x6c, 0x65, 0x01, 0x70, 0x00, 0x01, 0x03, 0x65, 0x6e, 0x76,
	0x07, 0x63, 0x6f, 0x75, 0x6e, 0x74, 0x65, 0x72, 0x03, 0x7e, 0x01,
	// export section: re-export the imported memory and global
	0x07, 0x14, 0x02, 0x06, 0x6d, 0x65, 0x6d, 0x6f, 0x72, 0x79, 0x02, 0x00,
	0x07, 0x63, 0x6f, 0x75, 0x6e, 0x74, 0x65, 0x72, 0x03, 0x00,
}

// memoryNamedFinishModule exports its memory under the name "finish".
var memoryNamedFinishModule = []byte{
	0x00, 0x61, 0x73, 0x6d, // magic
	0x01, 0x00, 0x00, 0x00, // version
	// memory section: min 1
	0x05, 0x03, 0x01, 0x00, 0x01,
	// export section: memory exported as finish
	0x07, 0x0a, 0x01, 0x06, 0x66, 0x69, 0x6e, 0x69, 0x73, 0x68, 0x02, 0x00,
}

// solveModule exports a memory and a solve function
// (func $solve (param i32 i32) (result i32 i32)) that returns its inputs.
var solveModule = []byte{
	0x00, 0x61, 0x73, 0x6d, // magic
	0x01, 0x00, 0x00, 0x00, // version
	// type section
	0x01, 0x08, // section id, section size (8 bytes)
	0x01,                                     // number of types
	0x60, 0x02, 0x7f, 0x7f, 0x02, 0x7f, 0x7f, // (func (param i32 i32) (result i32 i32))
	// function section
	0x03, 0x02, // section id, section size
	0x01, // number of functions
	0x00, // function 0, type 0
	// memory section
	0x05, 0x03, // section id, section size
	0x01,       // number of memories
	0x00, 0x01, // memory 0: min=1 page
	// export section
	0x07, 0x12, // section id, section size (18 bytes)
	0x02,                                                 // number of exports
	0x06, 0x6d, 0x65, 0x6d, 0x6f, 0x72, 0x79, 0x02, 0x00, // export "memory"
	0x05, 0x73, 0x6f, 0x6c, 0x76, 0x65, 0x00, 0x00, // export "solve"
	// code section
	0x0a, 0x08, // section id, section size (8 bytes)
	0x01,       // number of functions
	0x06,       // function body size (6 bytes)
	0x00,       // number of local declarations
	0x20, 0x00, // local.get 0
	0x20, 0x01, // local.get 1
	0x0b, // end
}

// emptyModule is the smallest valid module: header only.
var emptyModule = []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

// Escrow returns a copy of the escrow contract fixture.
func Escrow() []byte { return clone(escrowModule) }

// ThreeExports returns a module exporting only the three escrow entry points.
func ThreeExports() []byte { return clone(threeExportsModule) }

// Imports returns a module that imports one memory, table and global each.
func Imports() []byte { return clone(importsModule) }

// MemoryNamedFinish returns a module whose only export is a memory named "finish".
func MemoryNamedFinish() []byte { return clone(memoryNamedFinishModule) }

// Solve returns a module exporting memory and solve, none of the escrow symbols.
func Solve() []byte { return clone(solveModule) }

// Empty returns a module with no sections.
func Empty() []byte { return clone(emptyModule) }

// EscrowSymbols are the entry points the escrow fixtures export.
var EscrowSymbols = []string{"finish", "set_approval", "revoke_approval"}

func clone(b []byte) []byte {
	return append([]byte(nil), b...)
}
