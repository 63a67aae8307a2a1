package wasm

import (
	"context"
	"testing"

	"github.com/snow-ghost/wasminspect/core"
	"github.com/snow-ghost/wasminspect/interp/wasm/wasmtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_Inspect(t *testing.T) {
	ctx := context.Background()
	engine := NewEngine(ctx, Config{Interpreter: true})
	defer engine.Close(ctx)

	t.Run("escrow module", func(t *testing.T) {
		d, err := engine.Inspect(ctx, wasmtest.Escrow())
		require.NoError(t, err)
		assert.Equal(t, Name, d.Engine)

		require.Len(t, d.Exports, 6)
		got := make(map[string]string, len(d.Exports))
		order := make([]string, 0, len(d.Exports))
		for _, e := range d.Exports {
			got[e.Name] = e.Type.String()
			order = append(order, e.Name)
		}
		assert.Equal(t, []string{"memory", "finish", "set_approval", "revoke_approval", "__indirect_function_table", "__data_end"}, order)
		assert.Equal(t, "memory 1 16", got["memory"])
		assert.Equal(t, "func (result i32)", got["finish"])
		assert.Equal(t, "func (result i32)", got["set_approval"])
		assert.Equal(t, "func (result i32)", got["revoke_approval"])
		assert.Equal(t, "table 1 funcref", got["__indirect_function_table"])
		assert.Equal(t, "global i32", got["__data_end"])

		require.Len(t, d.Imports, 2)
		assert.Equal(t, core.Import{
			Module: "host_lib",
			Name:   "trace",
			Type: core.ExternType{
				Kind:    core.KindFunc,
				Params:  []core.ValueType{core.ValueTypeI32, core.ValueTypeI32},
				Results: []core.ValueType{core.ValueTypeI32},
			},
		}, d.Imports[0])
		assert.Equal(t, "global i32", d.Imports[1].Type.String())
	})

	t.Run("multi-value function", func(t *testing.T) {
		d, err := engine.Inspect(ctx, wasmtest.Solve())
		require.NoError(t, err)
		require.Len(t, d.Exports, 2)
		assert.Equal(t, "solve", d.Exports[1].Name)
		assert.Equal(t, "func (param i32 i32) (result i32 i32)", d.Exports[1].Type.String())
		assert.Empty(t, d.Imports)
	})

	t.Run("imported memory table and global", func(t *testing.T) {
		d, err := engine.Inspect(ctx, wasmtest.Imports())
		require.NoError(t, err)
		require.Len(t, d.Imports, 3)
		assert.Equal(t, "memory 1 2", d.Imports[0].Type.String())
		assert.Equal(t, "table 1 funcref", d.Imports[1].Type.String())
		assert.Equal(t, "global (mut i64)", d.Imports[2].Type.String())

		require.Len(t, d.Exports, 2)
		assert.Equal(t, "memory 1 2", d.Exports[0].Type.String())
		assert.Equal(t, "global (mut i64)", d.Exports[1].Type.String())
	})

	t.Run("empty module", func(t *testing.T) {
		d, err := engine.Inspect(ctx, wasmtest.Empty())
		require.NoError(t, err)
		assert.Empty(t, d.Exports)
		assert.Empty(t, d.Imports)
	})

	t.Run("invalid wasm module", func(t *testing.T) {
		_, err := engine.Inspect(ctx, []byte("invalid wasm"))
		require.Error(t, err)
		assert.ErrorIs(t, err, core.ErrInvalidModule)
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := engine.Inspect(ctx, nil)
		assert.ErrorIs(t, err, core.ErrEmptyBinary)
	})
}

func TestEngine_ConcurrentInspect(t *testing.T) {
	ctx := context.Background()
	engine := NewEngine(ctx, Config{Interpreter: true})
	defer engine.Close(ctx)

	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func() {
			_, err := engine.Inspect(ctx, wasmtest.Escrow())
			errs <- err
		}()
	}
	for i := 0; i < 8; i++ {
		require.NoError(t, <-errs)
	}
}
