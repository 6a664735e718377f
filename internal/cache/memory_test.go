package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, found, err := m.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	ok, err := m.Set(ctx, "k", "v", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	val, found, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v", val)

	n, err := m.Delete(ctx, "k")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = m.Delete(ctx, "k")
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)
}

func TestMemory_Expiry(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	now := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	_, err := m.Set(ctx, "k", "v", time.Hour)
	require.NoError(t, err)

	now = now.Add(59 * time.Minute)
	_, found, _ := m.Get(ctx, "k")
	assert.True(t, found)

	now = now.Add(time.Minute)
	_, found, _ = m.Get(ctx, "k")
	assert.False(t, found, "entry should expire exactly at its ttl")
}

func TestMemory_SetOverwritesExpiry(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	now := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	_, _ = m.Set(ctx, "k", "old", time.Hour)
	now = now.Add(50 * time.Minute)
	_, _ = m.Set(ctx, "k", "new", time.Hour)
	now = now.Add(30 * time.Minute)

	val, found, _ := m.Get(ctx, "k")
	assert.True(t, found)
	assert.Equal(t, "new", val)
}
