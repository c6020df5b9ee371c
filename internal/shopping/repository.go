package shopping

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"menu-planner/internal/database"
	"menu-planner/internal/shared"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Repository handles persistence of shopping list items.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new shopping list repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

const itemColumns = `id, menu_id, ingredient_name, quantity, category, is_checked, notes, created_at`

func scanItem(s interface{ Scan(...any) error }) (Item, error) {
	var it Item
	err := s.Scan(&it.ID, &it.MenuID, &it.IngredientName, &it.Quantity, &it.Category, &it.IsChecked, &it.Notes, &it.CreatedAt)
	return it, err
}

// ReplaceForMenu deletes every item of the menu and inserts entries as
// unchecked items, in one transaction.
func (r *Repository) ReplaceForMenu(ctx context.Context, menuID int64, entries []Entry) ([]Item, error) {
	items := make([]Item, 0, len(entries))
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM shopping_list_items WHERE menu_id = ?`, menuID); err != nil {
			return fmt.Errorf("failed to clear shopping list: %w", err)
		}
		now := time.Now().UTC()
		for _, e := range entries {
			it, err := insertItem(ctx, tx, Item{
				MenuID:         menuID,
				IngredientName: e.IngredientName,
				Quantity:       e.Quantity,
				Category:       e.Category,
				Notes:          e.Notes,
				CreatedAt:      now,
			})
			if err != nil {
				return err
			}
			items = append(items, it)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Insert stores a single item.
func (r *Repository) Insert(ctx context.Context, it Item) (Item, error) {
	if it.CreatedAt.IsZero() {
		it.CreatedAt = time.Now().UTC()
	}
	return insertItem(ctx, r.db, it)
}

func insertItem(ctx context.Context, q dbtx, it Item) (Item, error) {
	res, err := q.ExecContext(ctx, `
		INSERT INTO shopping_list_items (menu_id, ingredient_name, quantity, category, is_checked, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		it.MenuID, it.IngredientName, it.Quantity, it.Category, it.IsChecked, it.Notes, it.CreatedAt)
	if err != nil {
		return Item{}, fmt.Errorf("failed to insert shopping item: %w", err)
	}
	if it.ID, err = res.LastInsertId(); err != nil {
		return Item{}, fmt.Errorf("failed to read shopping item id: %w", err)
	}
	return it, nil
}

// ListByMenu returns the items of a menu in insertion order.
func (r *Repository) ListByMenu(ctx context.Context, menuID int64) ([]Item, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM shopping_list_items WHERE menu_id = ? ORDER BY id`, menuID)
	if err != nil {
		return nil, fmt.Errorf("failed to list shopping items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan shopping item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate shopping items: %w", err)
	}
	return items, nil
}

// Get retrieves an item by id.
func (r *Repository) Get(ctx context.Context, id int64) (Item, error) {
	it, err := scanItem(r.db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM shopping_list_items WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Item{}, fmt.Errorf("shopping item %d: %w", id, shared.ErrNotFound)
	}
	if err != nil {
		return Item{}, fmt.Errorf("failed to get shopping item: %w", err)
	}
	return it, nil
}

// Update writes every editable field of the item.
func (r *Repository) Update(ctx context.Context, it Item) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE shopping_list_items
		SET ingredient_name = ?, quantity = ?, category = ?, is_checked = ?, notes = ?
		WHERE id = ?`,
		it.IngredientName, it.Quantity, it.Category, it.IsChecked, it.Notes, it.ID)
	if err != nil {
		return fmt.Errorf("failed to update shopping item: %w", err)
	}
	return expectOneRow(res, it.ID)
}

// Delete removes an item.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM shopping_list_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete shopping item: %w", err)
	}
	return expectOneRow(res, id)
}

func expectOneRow(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("shopping item %d: %w", id, shared.ErrNotFound)
	}
	return nil
}
