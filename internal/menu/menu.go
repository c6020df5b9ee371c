// Package menu stores menus: named sets of meals, each meal referencing
// recipes from the catalog.
package menu

import (
	"fmt"
	"strings"
	"time"

	"menu-planner/internal/shared"
)

// Menu is a named collection of meals.
type Menu struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Meals       []Meal    `json:"meals"`
	CreatedAt   time.Time `json:"created_at"`
}

// Meal groups the recipes served together, e.g. "Friday dinner".
type Meal struct {
	ID       int64        `json:"id"`
	MenuID   int64        `json:"menu_id"`
	Name     string       `json:"name"`
	Position int          `json:"position"`
	Recipes  []MealRecipe `json:"recipes"`
}

// MealRecipe is a reference from a meal to a catalog recipe.
type MealRecipe struct {
	ID       int64  `json:"id"`
	RecipeID int64  `json:"recipe_id"`
	Title    string `json:"title"`
	Course   string `json:"course,omitempty"`
	Position int    `json:"position"`
}

// Summary is a menu without its meals, used for listings.
type Summary struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	MealCount   int       `json:"meal_count"`
	CreatedAt   time.Time `json:"created_at"`
}

func validateName(what, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: %s name is required", shared.ErrInvalidInput, what)
	}
	return nil
}
