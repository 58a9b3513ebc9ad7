package gqlcodegen_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/syssam/gqlcodegen"
)

func TestNotRegistered(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		assert.Equal(t, "GraphQL is not registered in the server instance!", gqlcodegen.ErrGraphQLNotRegistered.Error())
	})

	t.Run("IsNotRegistered", func(t *testing.T) {
		assert.True(t, gqlcodegen.IsNotRegistered(gqlcodegen.ErrGraphQLNotRegistered))

		// Wrapped error
		wrapped := fmt.Errorf("startup: %w", gqlcodegen.ErrGraphQLNotRegistered)
		assert.True(t, gqlcodegen.IsNotRegistered(wrapped))

		// Non-matching error
		assert.False(t, gqlcodegen.IsNotRegistered(errors.New("other error")))
		assert.False(t, gqlcodegen.IsNotRegistered(nil))
	})
}

func TestTaskError(t *testing.T) {
	inner := errors.New("disk full")

	t.Run("Error", func(t *testing.T) {
		err := gqlcodegen.NewTaskError("write", "src/generated.ts", inner)
		assert.Equal(t, "gqlcodegen: write src/generated.ts: disk full", err.Error())

		err = gqlcodegen.NewTaskError("generate", "", inner)
		assert.Equal(t, "gqlcodegen: generate: disk full", err.Error())
	})

	t.Run("Unwrap", func(t *testing.T) {
		err := gqlcodegen.NewTaskError("write", "out.ts", inner)
		assert.ErrorIs(t, err, inner)
	})

	t.Run("IsTaskError", func(t *testing.T) {
		err := gqlcodegen.NewTaskError("output schema", "schema.gql", inner)
		assert.True(t, gqlcodegen.IsTaskError(err))
		assert.True(t, gqlcodegen.IsTaskError(fmt.Errorf("wrapper: %w", err)))
		assert.False(t, gqlcodegen.IsTaskError(inner))
		assert.False(t, gqlcodegen.IsTaskError(nil))
	})
}
