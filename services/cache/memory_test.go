package cachesvc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	_, ok, err := c.Get(ctx, "dashboard")
	assert.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, c.Set(ctx, "dashboard", []byte(`{"a":1}`)))
	assert.NoError(t, c.Set(ctx, "course:1", []byte(`{"b":2}`)))

	data, ok, err := c.Get(ctx, "dashboard")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"a":1}`, string(data))

	assert.NoError(t, c.Invalidate(ctx, "dashboard", "unknown"))
	_, ok, _ = c.Get(ctx, "dashboard")
	assert.False(t, ok)
	_, ok, _ = c.Get(ctx, "course:1")
	assert.True(t, ok)

	assert.NoError(t, c.Invalidate(ctx))
}
