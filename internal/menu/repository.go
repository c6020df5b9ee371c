package menu

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"menu-planner/internal/recipe"
	"menu-planner/internal/shared"
)

// Repository persists menus, meals and their recipe references.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new menu repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

// Create inserts a menu without meals.
func (r *Repository) Create(ctx context.Context, name, description string) (Menu, error) {
	if err := validateName("menu", name); err != nil {
		return Menu{}, err
	}
	m := Menu{Name: strings.TrimSpace(name), Description: description, Meals: []Meal{}, CreatedAt: time.Now().UTC()}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO menus (name, description, created_at) VALUES (?, ?, ?)`,
		m.Name, m.Description, m.CreatedAt)
	if err != nil {
		return Menu{}, fmt.Errorf("failed to insert menu: %w", err)
	}
	if m.ID, err = res.LastInsertId(); err != nil {
		return Menu{}, fmt.Errorf("failed to read menu id: %w", err)
	}
	return m, nil
}

// Exists reports whether a menu with the id is stored.
func (r *Repository) Exists(ctx context.Context, id int64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM menus WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check menu: %w", err)
	}
	return true, nil
}

// Get loads a menu with its meals and recipe references.
func (r *Repository) Get(ctx context.Context, id int64) (Menu, error) {
	var m Menu
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, description, created_at FROM menus WHERE id = ?`, id).
		Scan(&m.ID, &m.Name, &m.Description, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Menu{}, fmt.Errorf("menu %d: %w", id, shared.ErrNotFound)
	}
	if err != nil {
		return Menu{}, fmt.Errorf("failed to get menu: %w", err)
	}

	meals, err := r.meals(ctx, id)
	if err != nil {
		return Menu{}, err
	}
	m.Meals = meals
	return m, nil
}

func (r *Repository) meals(ctx context.Context, menuID int64) ([]Meal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT m.id, m.name, m.position, mr.id, mr.recipe_id, rc.title, mr.course, mr.position
		FROM meals m
		LEFT JOIN meal_recipes mr ON mr.meal_id = m.id
		LEFT JOIN recipes rc ON rc.id = mr.recipe_id
		WHERE m.menu_id = ?
		ORDER BY m.position, m.id, mr.position, mr.id`, menuID)
	if err != nil {
		return nil, fmt.Errorf("failed to list meals: %w", err)
	}
	defer rows.Close()

	meals := []Meal{}
	for rows.Next() {
		var (
			mealID          int64
			mealName        string
			mealPos         int
			refID, recipeID sql.NullInt64
			title, course   sql.NullString
			refPos          sql.NullInt64
		)
		if err := rows.Scan(&mealID, &mealName, &mealPos, &refID, &recipeID, &title, &course, &refPos); err != nil {
			return nil, fmt.Errorf("failed to scan meal: %w", err)
		}
		if len(meals) == 0 || meals[len(meals)-1].ID != mealID {
			meals = append(meals, Meal{ID: mealID, MenuID: menuID, Name: mealName, Position: mealPos, Recipes: []MealRecipe{}})
		}
		if refID.Valid {
			last := &meals[len(meals)-1]
			last.Recipes = append(last.Recipes, MealRecipe{
				ID:       refID.Int64,
				RecipeID: recipeID.Int64,
				Title:    title.String,
				Course:   course.String,
				Position: int(refPos.Int64),
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate meals: %w", err)
	}
	return meals, nil
}

// List returns all menus, newest first.
func (r *Repository) List(ctx context.Context) ([]Summary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT mn.id, mn.name, mn.description, mn.created_at, COUNT(ml.id)
		FROM menus mn
		LEFT JOIN meals ml ON ml.menu_id = mn.id
		GROUP BY mn.id
		ORDER BY mn.created_at DESC, mn.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list menus: %w", err)
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.CreatedAt, &s.MealCount); err != nil {
			return nil, fmt.Errorf("failed to scan menu: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Delete removes a menu. Meals and shopping items go with it.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM menus WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete menu: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("menu %d: %w", id, shared.ErrNotFound)
	}
	return nil
}

// AddMeal appends a meal at the end of the menu.
func (r *Repository) AddMeal(ctx context.Context, menuID int64, name string) (Meal, error) {
	if err := validateName("meal", name); err != nil {
		return Meal{}, err
	}
	ok, err := r.Exists(ctx, menuID)
	if err != nil {
		return Meal{}, err
	}
	if !ok {
		return Meal{}, fmt.Errorf("menu %d: %w", menuID, shared.ErrNotFound)
	}

	meal := Meal{MenuID: menuID, Name: strings.TrimSpace(name), Recipes: []MealRecipe{}}
	err = r.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position) + 1, 0) FROM meals WHERE menu_id = ?`, menuID).Scan(&meal.Position)
	if err != nil {
		return Meal{}, fmt.Errorf("failed to compute meal position: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO meals (menu_id, name, position) VALUES (?, ?, ?)`, menuID, meal.Name, meal.Position)
	if err != nil {
		return Meal{}, fmt.Errorf("failed to insert meal: %w", err)
	}
	if meal.ID, err = res.LastInsertId(); err != nil {
		return Meal{}, fmt.Errorf("failed to read meal id: %w", err)
	}
	return meal, nil
}

// AttachRecipe adds a recipe reference to the end of a meal. The same
// recipe may be attached more than once.
func (r *Repository) AttachRecipe(ctx context.Context, mealID, recipeID int64, course string) (MealRecipe, error) {
	ref := MealRecipe{RecipeID: recipeID, Course: strings.TrimSpace(course)}

	var mealExists, recipeExists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM meals WHERE id = ?), EXISTS(SELECT 1 FROM recipes WHERE id = ?)`,
		mealID, recipeID).Scan(&mealExists, &recipeExists)
	if err != nil {
		return MealRecipe{}, fmt.Errorf("failed to check meal and recipe: %w", err)
	}
	if !mealExists {
		return MealRecipe{}, fmt.Errorf("meal %d: %w", mealID, shared.ErrNotFound)
	}
	if !recipeExists {
		return MealRecipe{}, fmt.Errorf("recipe %d: %w", recipeID, shared.ErrNotFound)
	}

	err = r.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(mr.position) + 1, 0), (SELECT title FROM recipes WHERE id = ?)
		FROM meal_recipes mr WHERE mr.meal_id = ?`, recipeID, mealID).Scan(&ref.Position, &ref.Title)
	if err != nil {
		return MealRecipe{}, fmt.Errorf("failed to compute recipe position: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO meal_recipes (meal_id, recipe_id, course, position) VALUES (?, ?, ?, ?)`,
		mealID, recipeID, ref.Course, ref.Position)
	if err != nil {
		return MealRecipe{}, fmt.Errorf("failed to attach recipe: %w", err)
	}
	if ref.ID, err = res.LastInsertId(); err != nil {
		return MealRecipe{}, fmt.Errorf("failed to read meal recipe id: %w", err)
	}
	return ref, nil
}

// DetachRecipe removes one recipe reference from a meal.
func (r *Repository) DetachRecipe(ctx context.Context, mealRecipeID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM meal_recipes WHERE id = ?`, mealRecipeID)
	if err != nil {
		return fmt.Errorf("failed to detach recipe: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("meal recipe %d: %w", mealRecipeID, shared.ErrNotFound)
	}
	return nil
}

// RecipesForMenu returns every recipe referenced by the menu, ordered by
// meal then by position inside the meal. A recipe used twice appears twice.
func (r *Repository) RecipesForMenu(ctx context.Context, menuID int64) ([]recipe.Recipe, error) {
	ok, err := r.Exists(ctx, menuID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("menu %d: %w", menuID, shared.ErrNotFound)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT mr.recipe_id
		FROM meal_recipes mr
		JOIN meals m ON m.id = mr.meal_id
		WHERE m.menu_id = ?
		ORDER BY m.position, m.id, mr.position, mr.id`, menuID)
	if err != nil {
		return nil, fmt.Errorf("failed to list menu recipes: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan recipe id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate menu recipes: %w", err)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}

	unique, err := recipe.NewRepository(r.db).GetByIDs(ctx, dedupe(ids))
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]recipe.Recipe, len(unique))
	for _, rec := range unique {
		byID[rec.ID] = rec
	}

	out := make([]recipe.Recipe, 0, len(ids))
	for _, id := range ids {
		if rec, ok := byID[id]; ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
