package core

import "context"

// Engine obtains module descriptors from a WebAssembly engine.
// Implementations must be safe for concurrent use.
type Engine interface {
	Name() string
	// Inspect validates the binary and describes its interface. It never
	// instantiates or runs the module.
	Inspect(ctx context.Context, wasm []byte) (*Descriptor, error)
	Close(ctx context.Context) error
}
