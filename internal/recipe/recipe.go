// Package recipe holds the recipe catalog: the model, its SQLite
// repository and the importers that turn web pages into recipes.
package recipe

import (
	"fmt"
	"strings"
	"time"

	"menu-planner/internal/shared"
)

// Recipe is a single catalog entry. Ingredients are stored as free text,
// one ingredient per line.
type Recipe struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Category     string    `json:"category"`
	Ingredients  string    `json:"ingredients"`
	Instructions string    `json:"instructions"`
	PrepTime     string    `json:"prep_time"`
	Servings     string    `json:"servings"`
	Source       string    `json:"source,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Validate checks the fields a recipe cannot live without.
func (r Recipe) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("%w: recipe title is required", shared.ErrInvalidInput)
	}
	return nil
}

// IngredientLines splits the ingredients text into lines. Blank lines are
// kept out; normalization happens later.
func (r Recipe) IngredientLines() []string {
	var lines []string
	for _, line := range strings.Split(strings.ReplaceAll(r.Ingredients, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// ListOptions filters and paginates List.
type ListOptions struct {
	Query    string
	Category string
	Page     int
	PageSize int
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

func (o ListOptions) normalized() ListOptions {
	if o.Page < 1 {
		o.Page = 1
	}
	if o.PageSize < 1 {
		o.PageSize = DefaultPageSize
	}
	if o.PageSize > MaxPageSize {
		o.PageSize = MaxPageSize
	}
	o.Query = strings.TrimSpace(o.Query)
	o.Category = strings.TrimSpace(o.Category)
	return o
}

// Page is one page of List results.
type Page struct {
	Items    []Recipe `json:"items"`
	Total    int      `json:"total"`
	Page     int      `json:"page"`
	PageSize int      `json:"page_size"`
}
