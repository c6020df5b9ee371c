package recipe

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"menu-planner/internal/shared"
)

// Repository is a database-backed repository for recipes.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new Repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

const recipeColumns = `id, title, description, category, ingredients, instructions,
	prep_time, servings, source, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanRecipe(s scanner) (Recipe, error) {
	var rec Recipe
	err := s.Scan(&rec.ID, &rec.Title, &rec.Description, &rec.Category, &rec.Ingredients,
		&rec.Instructions, &rec.PrepTime, &rec.Servings, &rec.Source, &rec.CreatedAt, &rec.UpdatedAt)
	return rec, err
}

// Create inserts a new recipe and returns it with its id and timestamps.
func (r *Repository) Create(ctx context.Context, rec Recipe) (Recipe, error) {
	if err := rec.Validate(); err != nil {
		return Recipe{}, err
	}
	now := time.Now().UTC()
	rec.CreatedAt, rec.UpdatedAt = now, now

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO recipes (title, description, category, ingredients, instructions,
			prep_time, servings, source, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Title, rec.Description, rec.Category, rec.Ingredients, rec.Instructions,
		rec.PrepTime, rec.Servings, rec.Source, rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return Recipe{}, fmt.Errorf("failed to insert recipe: %w", err)
	}
	if rec.ID, err = res.LastInsertId(); err != nil {
		return Recipe{}, fmt.Errorf("failed to read recipe id: %w", err)
	}
	return rec, nil
}

// Get retrieves a recipe by its ID.
func (r *Repository) Get(ctx context.Context, id int64) (Recipe, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+recipeColumns+` FROM recipes WHERE id = ?`, id)
	rec, err := scanRecipe(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Recipe{}, fmt.Errorf("recipe %d: %w", id, shared.ErrNotFound)
	}
	if err != nil {
		return Recipe{}, fmt.Errorf("failed to get recipe by ID: %w", err)
	}
	return rec, nil
}

// GetByIDs retrieves the recipes with the given ids in the order asked for.
// Missing ids are skipped.
func (r *Repository) GetByIDs(ctx context.Context, ids []int64) ([]Recipe, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+recipeColumns+` FROM recipes WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get recipes by IDs: %w", err)
	}
	defer rows.Close()

	byID := make(map[int64]Recipe, len(ids))
	for rows.Next() {
		rec, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recipe: %w", err)
		}
		byID[rec.ID] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recipes: %w", err)
	}

	out := make([]Recipe, 0, len(ids))
	for _, id := range ids {
		if rec, ok := byID[id]; ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Update overwrites the editable fields of an existing recipe.
func (r *Repository) Update(ctx context.Context, rec Recipe) (Recipe, error) {
	if err := rec.Validate(); err != nil {
		return Recipe{}, err
	}
	rec.UpdatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx, `
		UPDATE recipes SET title = ?, description = ?, category = ?, ingredients = ?,
			instructions = ?, prep_time = ?, servings = ?, source = ?, updated_at = ?
		WHERE id = ?`,
		rec.Title, rec.Description, rec.Category, rec.Ingredients, rec.Instructions,
		rec.PrepTime, rec.Servings, rec.Source, rec.UpdatedAt, rec.ID)
	if err != nil {
		return Recipe{}, fmt.Errorf("failed to update recipe: %w", err)
	}
	if err := expectOneRow(res, "recipe", rec.ID); err != nil {
		return Recipe{}, err
	}
	return r.Get(ctx, rec.ID)
}

// Delete removes a recipe. Menus referencing it lose the reference.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM recipes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}
	return expectOneRow(res, "recipe", id)
}

// UpsertBySource inserts a recipe or updates the one already imported from
// the same source. The bool reports whether a new row was created.
func (r *Repository) UpsertBySource(ctx context.Context, rec Recipe) (Recipe, bool, error) {
	if rec.Source == "" {
		return Recipe{}, false, fmt.Errorf("%w: recipe source is required for upsert", shared.ErrInvalidInput)
	}

	var id int64
	err := r.db.QueryRowContext(ctx, `SELECT id FROM recipes WHERE source = ?`, rec.Source).Scan(&id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		created, err := r.Create(ctx, rec)
		return created, true, err
	case err != nil:
		return Recipe{}, false, fmt.Errorf("failed to look up recipe by source: %w", err)
	}

	rec.ID = id
	updated, err := r.Update(ctx, rec)
	return updated, false, err
}

// List returns a page of recipes ordered by title. Query matches title or
// ingredients; Category matches exactly.
func (r *Repository) List(ctx context.Context, opts ListOptions) (Page, error) {
	opts = opts.normalized()

	var (
		where []string
		args  []any
	)
	if opts.Query != "" {
		like := "%" + escapeLike(opts.Query) + "%"
		where = append(where, `(title LIKE ? ESCAPE '\' OR ingredients LIKE ? ESCAPE '\')`)
		args = append(args, like, like)
	}
	if opts.Category != "" {
		where = append(where, `category = ?`)
		args = append(args, opts.Category)
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	page := Page{Items: []Recipe{}, Page: opts.Page, PageSize: opts.PageSize}
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM recipes`+clause, args...).Scan(&page.Total); err != nil {
		return Page{}, fmt.Errorf("failed to count recipes: %w", err)
	}

	offset := (opts.Page - 1) * opts.PageSize
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+recipeColumns+` FROM recipes`+clause+` ORDER BY title COLLATE NOCASE, id LIMIT ? OFFSET ?`,
		append(args, opts.PageSize, offset)...)
	if err != nil {
		return Page{}, fmt.Errorf("failed to list recipes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		rec, err := scanRecipe(rows)
		if err != nil {
			return Page{}, fmt.Errorf("failed to scan recipe: %w", err)
		}
		page.Items = append(page.Items, rec)
	}
	if err := rows.Err(); err != nil {
		return Page{}, fmt.Errorf("failed to iterate recipes: %w", err)
	}
	return page, nil
}

// Categories lists the distinct non-empty recipe categories.
func (r *Repository) Categories(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT category FROM recipes WHERE category <> '' ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipe categories: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func expectOneRow(res sql.Result, what string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", what, id, shared.ErrNotFound)
	}
	return nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
