package shopping

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"menu-planner/internal/menu"
	"menu-planner/internal/recipe"
	"menu-planner/internal/shared"
	"menu-planner/internal/testutil"
)

type fixture struct {
	db      *sql.DB
	svc     *Service
	menus   *menu.Repository
	recipes *recipe.Repository
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db := testutil.SetupDB(t)
	menus := menu.NewRepository(db)
	return fixture{
		db:      db,
		svc:     NewService(NewRepository(db), menus, zap.NewNop()),
		menus:   menus,
		recipes: recipe.NewRepository(db),
	}
}

// menuWith creates a menu with one meal holding the given recipes.
func (f fixture) menuWith(t *testing.T, recs ...recipe.Recipe) int64 {
	t.Helper()
	ctx := context.Background()
	m, err := f.menus.Create(ctx, "Week", "")
	require.NoError(t, err)
	meal, err := f.menus.AddMeal(ctx, m.ID, "Dinner")
	require.NoError(t, err)
	for _, r := range recs {
		created, err := f.recipes.Create(ctx, r)
		require.NoError(t, err)
		_, err = f.menus.AttachRecipe(ctx, meal.ID, created.ID, "")
		require.NoError(t, err)
	}
	return m.ID
}

var ignoreGenerated = cmpopts.IgnoreFields(Item{}, "ID", "CreatedAt")

func TestService_RegenerateScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	menuID := f.menuWith(t,
		recipe.Recipe{Title: "A", Ingredients: "2 cups flour\n1 tsp salt"},
		recipe.Recipe{Title: "B", Ingredients: "1 cup flour\n2 eggs"},
	)

	got, err := f.svc.Regenerate(ctx, menuID)
	require.NoError(t, err)
	require.Equal(t, 3, got.Count())

	for name, qty := range map[string]string{"flour": "3 cups", "salt": "1 tsp", "eggs": "2"} {
		it, ok := got.Find(name)
		require.True(t, ok, name)
		assert.Equal(t, qty, it.Quantity, name)
		assert.False(t, it.IsChecked, name)
		assert.NotZero(t, it.ID, name)
		assert.Equal(t, menuID, it.MenuID)
	}

	fetched, err := f.svc.Fetch(ctx, menuID)
	require.NoError(t, err)
	if diff := cmp.Diff(got, fetched, cmpopts.IgnoreFields(Item{}, "CreatedAt")); diff != "" {
		t.Errorf("Fetch differs from Regenerate (-want +got):\n%s", diff)
	}
}

func TestService_RegenerateIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	menuID := f.menuWith(t,
		recipe.Recipe{Title: "Shakshuka", Ingredients: "4 עגבניות\n2 ביצים\nמלח לפי הטעם"},
		recipe.Recipe{Title: "Cake", Ingredients: "2 cups flour\n200 g flour\n2 eggs"},
	)

	first, err := f.svc.Regenerate(ctx, menuID)
	require.NoError(t, err)
	second, err := f.svc.Regenerate(ctx, menuID)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second, ignoreGenerated); diff != "" {
		t.Errorf("second regeneration differs (-first +second):\n%s", diff)
	}

	var rows int
	require.NoError(t, f.db.QueryRow(`SELECT COUNT(*) FROM shopping_list_items WHERE menu_id = ?`, menuID).Scan(&rows))
	assert.Equal(t, first.Count(), rows, "old items must be gone")
}

func TestService_RegenerateResetsEdits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	menuID := f.menuWith(t, recipe.Recipe{Title: "A", Ingredients: "1 cup rice"})

	list, err := f.svc.Regenerate(ctx, menuID)
	require.NoError(t, err)
	rice, _ := list.Find("rice")

	checked := true
	_, err = f.svc.UpdateItem(ctx, rice.ID, ItemUpdate{IsChecked: &checked})
	require.NoError(t, err)

	list, err = f.svc.Regenerate(ctx, menuID)
	require.NoError(t, err)
	rice, _ = list.Find("rice")
	assert.False(t, rice.IsChecked)
}

func TestService_EmptyMenu(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	menuID := f.menuWith(t)

	got, err := f.svc.Regenerate(ctx, menuID)
	require.NoError(t, err)
	assert.Zero(t, got.Count())

	fetched, err := f.svc.Fetch(ctx, menuID)
	require.NoError(t, err)
	assert.Empty(t, fetched)
}

func TestService_MissingMenu(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Regenerate(ctx, 404)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	_, err = f.svc.Fetch(ctx, 404)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	_, err = f.svc.AddItem(ctx, 404, NewItem{IngredientName: "milk"})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestService_ItemEdits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	menuID := f.menuWith(t, recipe.Recipe{Title: "A", Ingredients: "2 cups flour"})

	_, err := f.svc.Regenerate(ctx, menuID)
	require.NoError(t, err)

	added, err := f.svc.AddItem(ctx, menuID, NewItem{IngredientName: " milk ", Quantity: "1 l"})
	require.NoError(t, err)
	assert.Equal(t, "milk", added.IngredientName)
	assert.Equal(t, "מוצרי חלב וביצים", added.Category)

	_, err = f.svc.AddItem(ctx, menuID, NewItem{IngredientName: ""})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	qty, notes := "2 l", "low fat"
	updated, err := f.svc.UpdateItem(ctx, added.ID, ItemUpdate{Quantity: &qty, Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, "2 l", updated.Quantity)
	assert.Equal(t, "milk", updated.IngredientName)

	blank := ""
	_, err = f.svc.UpdateItem(ctx, added.ID, ItemUpdate{IngredientName: &blank})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = f.svc.UpdateItem(ctx, 9999, ItemUpdate{Notes: &notes})
	assert.ErrorIs(t, err, shared.ErrNotFound)

	list, err := f.svc.Fetch(ctx, menuID)
	require.NoError(t, err)
	milk, ok := list.Find("milk")
	require.True(t, ok)
	assert.Equal(t, "low fat", milk.Notes)

	require.NoError(t, f.svc.DeleteItem(ctx, added.ID))
	assert.ErrorIs(t, f.svc.DeleteItem(ctx, added.ID), shared.ErrNotFound)
}

func TestService_DeletingMenuDropsItems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	menuID := f.menuWith(t, recipe.Recipe{Title: "A", Ingredients: "2 eggs"})

	_, err := f.svc.Regenerate(ctx, menuID)
	require.NoError(t, err)
	require.NoError(t, f.menus.Delete(ctx, menuID))

	var rows int
	require.NoError(t, f.db.QueryRow(`SELECT COUNT(*) FROM shopping_list_items`).Scan(&rows))
	assert.Zero(t, rows)
}
