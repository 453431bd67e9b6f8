package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()

	_, ok, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "greeting", "hello"))
	value, ok, err := c.Get(ctx, "greeting")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "hello", value)

	require.NoError(t, c.Set(ctx, "greeting", "goodbye"))
	value, _, _ = c.Get(ctx, "greeting")
	assert.Equal(t, "goodbye", value)

	require.NoError(t, c.Delete(ctx, "greeting"))
	_, ok, err = c.Get(ctx, "greeting")
	require.NoError(t, err)
	assert.False(t, ok)

	// Deleting an absent key is a no-op.
	require.NoError(t, c.Delete(ctx, "greeting"))
}
