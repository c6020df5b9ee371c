package preferences

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"menu-planner/internal/shared"
)

const (
	favoritesNamespace = "favorites"
	historyNamespace   = "history"

	// HistoryLimit is how many recently viewed recipes are remembered.
	HistoryLimit = 20
)

func loadIDs(ctx context.Context, store KeyValueStore, namespace, user string) ([]int64, error) {
	raw, err := store.Get(ctx, namespace, user)
	if errors.Is(err, shared.ErrNotFound) {
		return []int64{}, nil
	}
	if err != nil {
		return nil, err
	}
	var ids []int64
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, fmt.Errorf("failed to decode %s of %s: %w", namespace, user, err)
	}
	if ids == nil {
		ids = []int64{}
	}
	return ids, nil
}

func saveIDs(ctx context.Context, store KeyValueStore, namespace, user string, ids []int64) error {
	if len(ids) == 0 {
		return store.Delete(ctx, namespace, user)
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", namespace, err)
	}
	return store.Set(ctx, namespace, user, string(raw))
}

func without(ids []int64, id int64) []int64 {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// Favorites tracks favourite recipes per user.
type Favorites struct {
	store KeyValueStore
}

// NewFavorites creates a Favorites tracker.
func NewFavorites(store KeyValueStore) *Favorites {
	return &Favorites{store: store}
}

// Add marks a recipe as favourite. Adding twice is a no-op.
func (f *Favorites) Add(ctx context.Context, user string, recipeID int64) error {
	ids, err := loadIDs(ctx, f.store, favoritesNamespace, user)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if id == recipeID {
			return nil
		}
	}
	return saveIDs(ctx, f.store, favoritesNamespace, user, append(ids, recipeID))
}

// Remove unmarks a recipe.
func (f *Favorites) Remove(ctx context.Context, user string, recipeID int64) error {
	ids, err := loadIDs(ctx, f.store, favoritesNamespace, user)
	if err != nil {
		return err
	}
	return saveIDs(ctx, f.store, favoritesNamespace, user, without(ids, recipeID))
}

// List returns the favourite recipe ids in the order they were added.
func (f *Favorites) List(ctx context.Context, user string) ([]int64, error) {
	return loadIDs(ctx, f.store, favoritesNamespace, user)
}

// History remembers the recipes a user looked at most recently.
type History struct {
	store KeyValueStore
}

// NewHistory creates a History tracker.
func NewHistory(store KeyValueStore) *History {
	return &History{store: store}
}

// Record puts recipeID at the front of the user's history.
func (h *History) Record(ctx context.Context, user string, recipeID int64) error {
	ids, err := loadIDs(ctx, h.store, historyNamespace, user)
	if err != nil {
		return err
	}
	ids = append([]int64{recipeID}, without(ids, recipeID)...)
	if len(ids) > HistoryLimit {
		ids = ids[:HistoryLimit]
	}
	return saveIDs(ctx, h.store, historyNamespace, user, ids)
}

// Recent returns the history, most recent first.
func (h *History) Recent(ctx context.Context, user string) ([]int64, error) {
	return loadIDs(ctx, h.store, historyNamespace, user)
}

// Clear forgets the user's history.
func (h *History) Clear(ctx context.Context, user string) error {
	return h.store.Delete(ctx, historyNamespace, user)
}
