package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"menu-planner/internal/recipe"
)

func TestRecipeStore(t *testing.T) {
	tempDir := filepath.Join(t.TempDir(), "archive")
	store, err := NewRecipeStore(tempDir)
	require.NoError(t, err)

	v1 := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)
	rec := recipe.Recipe{
		ID:           7,
		Title:        "Test Recipe",
		Ingredients:  "1 cup of testing",
		Instructions: "Write a test.",
		UpdatedAt:    v1,
	}

	t.Run("CheckExists-False", func(t *testing.T) {
		assert.False(t, store.Exists(rec.ID, v1))
	})

	t.Run("Save", func(t *testing.T) {
		require.NoError(t, store.Save(rec))
		_, err := os.Stat(filepath.Join(tempDir, "7_2024-03-01T10-30-00Z.json"))
		assert.NoError(t, err)
		assert.True(t, store.Exists(rec.ID, v1))
	})

	t.Run("Load", func(t *testing.T) {
		loaded, err := store.Load(rec.ID, v1)
		require.NoError(t, err)
		assert.Equal(t, rec.Title, loaded.Title)
		assert.Equal(t, "1 cup of testing", loaded.Ingredients)
	})

	t.Run("NewVersionReplacesOld", func(t *testing.T) {
		v2 := v1.Add(time.Hour)
		next := rec
		next.Title = "Better Recipe"
		next.UpdatedAt = v2
		require.NoError(t, store.Save(next))

		assert.False(t, store.Exists(rec.ID, v1))
		assert.True(t, store.Exists(rec.ID, v2))
	})

	t.Run("LoadAll", func(t *testing.T) {
		require.NoError(t, store.Save(recipe.Recipe{ID: 8, Title: "Other", UpdatedAt: v1}))
		all, err := store.LoadAll()
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "Better Recipe", all[0].Title)
		assert.Equal(t, "Other", all[1].Title)
	})

	t.Run("Load-NotFound", func(t *testing.T) {
		_, err := store.Load(99, v1)
		assert.Error(t, err)
	})

	t.Run("LoadAll-Corrupt", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(tempDir, "9_bad.json"), []byte("{"), 0o644))
		_, err := store.LoadAll()
		assert.Error(t, err)
	})
}
