package core

import "errors"

var (
	// ErrEmptyBinary is returned for a zero-length input.
	ErrEmptyBinary = errors.New("empty wasm binary")
	// ErrInvalidModule wraps the engine's diagnostic when a binary fails to compile.
	ErrInvalidModule = errors.New("invalid wasm module")
	// ErrUnknownEngine is returned for an engine name no backend is registered under.
	ErrUnknownEngine = errors.New("unknown engine")
	// ErrEngineUnavailable is returned for a known engine left out of this build.
	ErrEngineUnavailable = errors.New("engine not available in this build")
)
