package shopping

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"menu-planner/internal/ingredient"
	"menu-planner/internal/recipe"
	"menu-planner/internal/shared"
)

// MenuReader is the part of the menu store the shopping list needs.
type MenuReader interface {
	Exists(ctx context.Context, menuID int64) (bool, error)
	RecipesForMenu(ctx context.Context, menuID int64) ([]recipe.Recipe, error)
}

// Service builds shopping lists from menus and edits their items.
type Service struct {
	repo   *Repository
	menus  MenuReader
	logger *zap.Logger
}

// NewService creates a shopping list service.
func NewService(repo *Repository, menus MenuReader, logger *zap.Logger) *Service {
	return &Service{repo: repo, menus: menus, logger: logger}
}

// Regenerate rebuilds the menu's shopping list from its recipes. Existing
// items, including their checked state, are replaced.
func (s *Service) Regenerate(ctx context.Context, menuID int64) (Grouped, error) {
	recipes, err := s.menus.RecipesForMenu(ctx, menuID)
	if err != nil {
		return nil, err
	}

	entries := Aggregate(recipes)
	items, err := s.repo.ReplaceForMenu(ctx, menuID, entries)
	if err != nil {
		return nil, fmt.Errorf("failed to regenerate shopping list: %w", err)
	}

	s.logger.Info("shopping list regenerated",
		zap.Int64("menu_id", menuID),
		zap.Int("recipes", len(recipes)),
		zap.Int("items", len(items)))
	return GroupItems(items), nil
}

// Fetch returns the stored shopping list of a menu without recomputing it.
func (s *Service) Fetch(ctx context.Context, menuID int64) (Grouped, error) {
	if err := s.requireMenu(ctx, menuID); err != nil {
		return nil, err
	}
	items, err := s.repo.ListByMenu(ctx, menuID)
	if err != nil {
		return nil, err
	}
	return GroupItems(items), nil
}

// UpdateItem applies a partial update to one item.
func (s *Service) UpdateItem(ctx context.Context, itemID int64, upd ItemUpdate) (Item, error) {
	item, err := s.repo.Get(ctx, itemID)
	if err != nil {
		return Item{}, err
	}
	if err := upd.apply(&item); err != nil {
		return Item{}, err
	}
	if err := s.repo.Update(ctx, item); err != nil {
		return Item{}, err
	}
	return item, nil
}

// DeleteItem removes one item.
func (s *Service) DeleteItem(ctx context.Context, itemID int64) error {
	return s.repo.Delete(ctx, itemID)
}

// AddItem adds a manual item to a menu's list. Without a category one is
// derived from the name.
func (s *Service) AddItem(ctx context.Context, menuID int64, in NewItem) (Item, error) {
	name := strings.TrimSpace(in.IngredientName)
	if name == "" {
		return Item{}, fmt.Errorf("%w: ingredient_name must not be empty", shared.ErrInvalidInput)
	}
	if err := s.requireMenu(ctx, menuID); err != nil {
		return Item{}, err
	}

	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = ingredient.Categorize(name)
	}
	return s.repo.Insert(ctx, Item{
		MenuID:         menuID,
		IngredientName: name,
		Quantity:       strings.TrimSpace(in.Quantity),
		Category:       category,
		Notes:          in.Notes,
	})
}

func (s *Service) requireMenu(ctx context.Context, menuID int64) error {
	ok, err := s.menus.Exists(ctx, menuID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("menu %d: %w", menuID, shared.ErrNotFound)
	}
	return nil
}
