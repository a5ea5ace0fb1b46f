package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryGetSetDel(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Set(ctx, "k", map[string]int{"a": 1}, 0))

	var got map[string]int
	assert.True(t, m.Get(ctx, "k", &got))
	assert.Equal(t, 1, got["a"])

	require.NoError(t, m.Del(ctx, "k"))
	assert.False(t, m.Get(ctx, "k", &got))
}

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	m := NewMemory()
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "k", "v", time.Minute))
	var s string
	assert.True(t, m.Get(ctx, "k", &s))

	now = now.Add(2 * time.Minute)
	assert.False(t, m.Get(ctx, "k", &s))
}

func TestRemember(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	calls := 0
	load := func() ([]string, error) {
		calls++
		return []string{"x"}, nil
	}

	v, hit, err := Remember(ctx, m, "list", time.Minute, load)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, []string{"x"}, v)

	v, hit, err = Remember(ctx, m, "list", time.Minute, load)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []string{"x"}, v)
	assert.Equal(t, 1, calls)

	boom := errors.New("boom")
	_, _, err = Remember(ctx, m, "other", time.Minute, func() (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)
}
