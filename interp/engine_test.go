package interp

import (
	"context"
	"testing"

	"github.com/snow-ghost/wasminspect/core"
	"github.com/snow-ghost/wasminspect/interp/wasm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	ctx := context.Background()

	t.Run("default is wazero", func(t *testing.T) {
		e, err := New(ctx, Config{})
		require.NoError(t, err)
		defer e.Close(ctx)
		assert.Equal(t, wasm.Name, e.Name())
	})

	t.Run("unknown engine", func(t *testing.T) {
		_, err := New(ctx, Config{Engine: "wasmer"})
		assert.ErrorIs(t, err, core.ErrUnknownEngine)
	})
}
