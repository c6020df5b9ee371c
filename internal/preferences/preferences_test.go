package preferences

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"menu-planner/internal/shared"
	"menu-planner/internal/testutil"
)

func stores(t *testing.T) map[string]KeyValueStore {
	return map[string]KeyValueStore{
		"memory": NewMemoryStore(),
		"sqlite": NewSQLiteStore(testutil.SetupDB(t)),
	}
}

func TestKeyValueStore(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := store.Get(ctx, "ns", "k")
			require.ErrorIs(t, err, shared.ErrNotFound)

			require.NoError(t, store.Set(ctx, "ns", "k", "v1"))
			require.NoError(t, store.Set(ctx, "ns", "k", "v2"))
			v, err := store.Get(ctx, "ns", "k")
			require.NoError(t, err)
			assert.Equal(t, "v2", v)

			_, err = store.Get(ctx, "other", "k")
			assert.ErrorIs(t, err, shared.ErrNotFound)

			require.NoError(t, store.Delete(ctx, "ns", "k"))
			require.NoError(t, store.Delete(ctx, "ns", "k"))
			_, err = store.Get(ctx, "ns", "k")
			assert.ErrorIs(t, err, shared.ErrNotFound)
		})
	}
}

func TestFavorites(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			fav := NewFavorites(store)

			ids, err := fav.List(ctx, "dana")
			require.NoError(t, err)
			assert.Empty(t, ids)

			require.NoError(t, fav.Add(ctx, "dana", 3))
			require.NoError(t, fav.Add(ctx, "dana", 1))
			require.NoError(t, fav.Add(ctx, "dana", 3))
			require.NoError(t, fav.Add(ctx, "omer", 9))

			ids, err = fav.List(ctx, "dana")
			require.NoError(t, err)
			assert.Equal(t, []int64{3, 1}, ids)

			require.NoError(t, fav.Remove(ctx, "dana", 3))
			ids, err = fav.List(ctx, "dana")
			require.NoError(t, err)
			assert.Equal(t, []int64{1}, ids)
		})
	}
}

func TestHistory(t *testing.T) {
	ctx := context.Background()
	h := NewHistory(NewMemoryStore())

	for id := int64(1); id <= HistoryLimit+5; id++ {
		require.NoError(t, h.Record(ctx, "dana", id))
	}
	require.NoError(t, h.Record(ctx, "dana", 10))

	recent, err := h.Recent(ctx, "dana")
	require.NoError(t, err)
	require.Len(t, recent, HistoryLimit)
	assert.Equal(t, int64(10), recent[0])
	assert.Equal(t, int64(HistoryLimit+5), recent[1])
	assert.NotContains(t, recent[1:], int64(10))

	require.NoError(t, h.Clear(ctx, "dana"))
	recent, err = h.Recent(ctx, "dana")
	require.NoError(t, err)
	assert.Empty(t, recent)
}

func TestLoadIDs_Corrupt(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Set(ctx, favoritesNamespace, "dana", "not json"))

	_, err := NewFavorites(store).List(ctx, "dana")
	assert.Error(t, err)
}
