package menu

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"menu-planner/internal/recipe"
	"menu-planner/internal/shared"
	"menu-planner/internal/testutil"
)

func seedRecipe(t *testing.T, db *sql.DB, title, ingredients string) recipe.Recipe {
	t.Helper()
	rec, err := recipe.NewRepository(db).Create(context.Background(), recipe.Recipe{Title: title, Ingredients: ingredients})
	require.NoError(t, err)
	return rec
}

func TestRepository_MenuLifecycle(t *testing.T) {
	db := testutil.SetupDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	pancakes := seedRecipe(t, db, "Pancakes", "2 cups flour")
	salad := seedRecipe(t, db, "Salad", "3 tomatoes")

	m, err := repo.Create(ctx, "Weekend", "family brunch")
	require.NoError(t, err)
	assert.NotZero(t, m.ID)

	brunch, err := repo.AddMeal(ctx, m.ID, "Brunch")
	require.NoError(t, err)
	assert.Equal(t, 0, brunch.Position)
	dinner, err := repo.AddMeal(ctx, m.ID, "Dinner")
	require.NoError(t, err)
	assert.Equal(t, 1, dinner.Position)

	_, err = repo.AttachRecipe(ctx, brunch.ID, pancakes.ID, "main")
	require.NoError(t, err)
	ref, err := repo.AttachRecipe(ctx, brunch.ID, salad.ID, "side")
	require.NoError(t, err)
	assert.Equal(t, 1, ref.Position)
	assert.Equal(t, "Salad", ref.Title)

	got, err := repo.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Weekend", got.Name)
	require.Len(t, got.Meals, 2)
	require.Len(t, got.Meals[0].Recipes, 2)
	assert.Equal(t, "Pancakes", got.Meals[0].Recipes[0].Title)
	assert.Empty(t, got.Meals[1].Recipes)
	assert.NotNil(t, got.Meals[1].Recipes)

	require.NoError(t, repo.DetachRecipe(ctx, ref.ID))
	assert.ErrorIs(t, repo.DetachRecipe(ctx, ref.ID), shared.ErrNotFound)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 2, list[0].MealCount)

	require.NoError(t, repo.Delete(ctx, m.ID))
	_, err = repo.Get(ctx, m.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, m.ID), shared.ErrNotFound)

	var meals int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM meals`).Scan(&meals))
	assert.Zero(t, meals)
}

func TestRepository_Validation(t *testing.T) {
	db := testutil.SetupDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, "  ", "")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = repo.AddMeal(ctx, 42, "Lunch")
	assert.ErrorIs(t, err, shared.ErrNotFound)

	m, err := repo.Create(ctx, "Week", "")
	require.NoError(t, err)
	_, err = repo.AddMeal(ctx, m.ID, "")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	meal, err := repo.AddMeal(ctx, m.ID, "Lunch")
	require.NoError(t, err)
	_, err = repo.AttachRecipe(ctx, meal.ID, 404, "")
	assert.ErrorIs(t, err, shared.ErrNotFound)
	_, err = repo.AttachRecipe(ctx, 404, 1, "")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestRepository_RecipesForMenu(t *testing.T) {
	db := testutil.SetupDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	a := seedRecipe(t, db, "A", "2 cups flour\n1 tsp salt")
	b := seedRecipe(t, db, "B", "1 cup flour\n2 eggs")

	m, err := repo.Create(ctx, "Week", "")
	require.NoError(t, err)
	first, err := repo.AddMeal(ctx, m.ID, "Monday")
	require.NoError(t, err)
	second, err := repo.AddMeal(ctx, m.ID, "Tuesday")
	require.NoError(t, err)

	_, err = repo.AttachRecipe(ctx, second.ID, a.ID, "")
	require.NoError(t, err)
	_, err = repo.AttachRecipe(ctx, first.ID, b.ID, "")
	require.NoError(t, err)
	_, err = repo.AttachRecipe(ctx, first.ID, a.ID, "")
	require.NoError(t, err)

	recipes, err := repo.RecipesForMenu(ctx, m.ID)
	require.NoError(t, err)
	titles := make([]string, len(recipes))
	for i, r := range recipes {
		titles[i] = r.Title
	}
	assert.Equal(t, []string{"B", "A", "A"}, titles)

	empty, err := repo.Create(ctx, "Empty", "")
	require.NoError(t, err)
	recipes, err = repo.RecipesForMenu(ctx, empty.ID)
	require.NoError(t, err)
	assert.Empty(t, recipes)

	_, err = repo.RecipesForMenu(ctx, 999)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	ok, err := repo.Exists(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}
