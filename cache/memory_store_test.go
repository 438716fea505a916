package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ now time.Time }

func (f *fakeClock) Now() time.Time          { return f.now }
func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

func TestMemoryStore_GetSet(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)}
	store := NewMemoryStore(clock)
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		entry, err := store.Get(ctx, "fuel:combined:u1:30d:all")
		require.NoError(t, err)
		assert.Nil(t, entry)
	})

	t.Run("stored value is returned until expiry", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "k", Entry{
			Value:     []byte(`{"a":1}`),
			CreatedAt: clock.Now(),
			ExpiresAt: clock.Now().Add(5 * time.Minute),
		}))

		entry, err := store.Get(ctx, "k")
		require.NoError(t, err)
		require.NotNil(t, entry)
		assert.Equal(t, []byte(`{"a":1}`), entry.Value)

		clock.Advance(4*time.Minute + 59*time.Second)
		entry, _ = store.Get(ctx, "k")
		assert.NotNil(t, entry)

		clock.Advance(time.Second)
		entry, _ = store.Get(ctx, "k")
		assert.Nil(t, entry)
	})

	t.Run("last write wins", func(t *testing.T) {
		exp := clock.Now().Add(time.Minute)
		require.NoError(t, store.Set(ctx, "w", Entry{Value: []byte("1"), ExpiresAt: exp}))
		require.NoError(t, store.Set(ctx, "w", Entry{Value: []byte("2"), ExpiresAt: exp}))

		entry, err := store.Get(ctx, "w")
		require.NoError(t, err)
		assert.Equal(t, []byte("2"), entry.Value)
	})
}

func TestMemoryStore_Sweep(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)}
	store := NewMemoryStore(clock)
	ctx := context.Background()

	_ = store.Set(ctx, "short", Entry{ExpiresAt: clock.Now().Add(time.Minute)})
	_ = store.Set(ctx, "long", Entry{ExpiresAt: clock.Now().Add(time.Hour)})

	assert.Equal(t, 0, store.Sweep())
	clock.Advance(2 * time.Minute)
	assert.Equal(t, 1, store.Sweep())
	assert.Equal(t, 1, store.Len())
}

func TestMemoryStore_DeletePrefix(t *testing.T) {
	store := NewMemoryStore(nil)
	ctx := context.Background()
	exp := time.Now().Add(time.Hour)

	_ = store.Set(ctx, "fuel:combined:u1:30d:all", Entry{ExpiresAt: exp})
	_ = store.Set(ctx, "fuel:efficiency:u1:7d:m1", Entry{ExpiresAt: exp})
	_ = store.Set(ctx, "fuel:combined:u2:30d:all", Entry{ExpiresAt: exp})

	n, err := store.DeletePrefix(ctx, "fuel:combined:u1:")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 2, store.Len())
}
