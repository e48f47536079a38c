package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryStore_SetGet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	store.Set(ctx, "a", []byte("1"), 0)
	val, ok := store.Get(ctx, "a")
	require.True(t, ok)
	require.Equal(t, []byte("1"), val)

	_, ok = store.Get(ctx, "missing")
	require.False(t, ok)
}

func TestMemoryStore_TTLExpiry(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	now := time.Now()
	store.SetClock(func() time.Time { return now })
	store.Set(ctx, "a", []byte("1"), 5*time.Minute)

	_, ok := store.Get(ctx, "a")
	require.True(t, ok)

	store.SetClock(func() time.Time { return now.Add(6 * time.Minute) })
	_, ok = store.Get(ctx, "a")
	require.False(t, ok, "entry should expire after its TTL")
}

func TestMemoryStore_DeleteByPrefix(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	store.Set(ctx, Key("access", "p1", "agency", "1"), []byte("x"), 0)
	store.Set(ctx, Key("access", "p1", "agency", "2"), []byte("y"), 0)
	store.Set(ctx, Key("access", "p2", "agency", "1"), []byte("z"), 0)

	store.DeleteByPrefix(ctx, Key("access", "p1"))

	_, ok := store.Get(ctx, Key("access", "p1", "agency", "1"))
	require.False(t, ok)
	_, ok = store.Get(ctx, Key("access", "p1", "agency", "2"))
	require.False(t, ok)
	_, ok = store.Get(ctx, Key("access", "p2", "agency", "1"))
	require.True(t, ok, "other principals keep their entries")
}
