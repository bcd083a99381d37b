package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestID(t *testing.T) {
	t.Run("Should generate unique non-zero ids", func(t *testing.T) {
		a := MustNewID()
		b := MustNewID()
		assert.False(t, a.IsZero())
		assert.NotEqual(t, a, b)
	})
	t.Run("Should report the zero value", func(t *testing.T) {
		var id ID
		assert.True(t, id.IsZero())
	})
}

func TestError(t *testing.T) {
	t.Run("Should unwrap to the cause", func(t *testing.T) {
		cause := errors.New("boom")
		err := NewError(cause, "NOT_FOUND", map[string]any{"workflow_id": "wf-1"})
		require.ErrorIs(t, err, cause)
		assert.Contains(t, err.Error(), "NOT_FOUND")
	})
	t.Run("Should render without a cause", func(t *testing.T) {
		err := NewError(nil, "BAD_REQUEST", nil)
		assert.Contains(t, err.Error(), "BAD_REQUEST")
	})
}

func TestInput_AsOutput(t *testing.T) {
	t.Run("Should copy into an independent output map", func(t *testing.T) {
		in := Input{"k": "v"}
		out := in.AsOutput()
		out["k"] = "changed"
		assert.Equal(t, "v", in["k"])
	})
	t.Run("Should pass nil through", func(t *testing.T) {
		var in Input
		assert.Nil(t, in.AsOutput())
	})
}
