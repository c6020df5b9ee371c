// Package shopping builds and maintains the shopping list of a menu.
package shopping

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"menu-planner/internal/ingredient"
	"menu-planner/internal/shared"
)

// Item is one persisted shopping-list line.
type Item struct {
	ID             int64     `json:"id"`
	MenuID         int64     `json:"-"`
	IngredientName string    `json:"ingredient_name"`
	Quantity       string    `json:"quantity"`
	Category       string    `json:"-"`
	IsChecked      bool      `json:"is_checked"`
	Notes          string    `json:"notes"`
	CreatedAt      time.Time `json:"-"`
}

// ItemUpdate carries the fields to change on an item. Nil fields are left
// as they are.
type ItemUpdate struct {
	IngredientName *string `json:"ingredient_name"`
	Quantity       *string `json:"quantity"`
	Category       *string `json:"category"`
	IsChecked      *bool   `json:"is_checked"`
	Notes          *string `json:"notes"`
}

func (u ItemUpdate) apply(item *Item) error {
	if u.IngredientName != nil {
		name := strings.TrimSpace(*u.IngredientName)
		if name == "" {
			return fmt.Errorf("%w: ingredient_name must not be empty", shared.ErrInvalidInput)
		}
		item.IngredientName = name
	}
	if u.Quantity != nil {
		item.Quantity = strings.TrimSpace(*u.Quantity)
	}
	if u.Category != nil {
		item.Category = strings.TrimSpace(*u.Category)
		if item.Category == "" {
			item.Category = ingredient.Categorize(item.IngredientName)
		}
	}
	if u.IsChecked != nil {
		item.IsChecked = *u.IsChecked
	}
	if u.Notes != nil {
		item.Notes = *u.Notes
	}
	return nil
}

// NewItem is a manually added item.
type NewItem struct {
	IngredientName string `json:"ingredient_name"`
	Quantity       string `json:"quantity"`
	Category       string `json:"category"`
	Notes          string `json:"notes"`
}

// Group is one category of a shopping list with its items in display order.
type Group struct {
	Category string
	Items    []Item
}

// Grouped is a shopping list split by category. It marshals to a JSON
// object whose keys keep the group order.
type Grouped []Group

// Count is the number of items over all groups.
func (g Grouped) Count() int {
	n := 0
	for _, grp := range g {
		n += len(grp.Items)
	}
	return n
}

// Find returns the item with the given ingredient name, compared by
// canonical key.
func (g Grouped) Find(name string) (Item, bool) {
	key := ingredient.CanonicalKey(name)
	for _, grp := range g {
		for _, it := range grp.Items {
			if ingredient.CanonicalKey(it.IngredientName) == key {
				return it, true
			}
		}
	}
	return Item{}, false
}

// MarshalJSON writes {"category": [items...], ...} in group order.
func (g Grouped) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, grp := range g {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(grp.Category)
		if err != nil {
			return nil, err
		}
		items := grp.Items
		if items == nil {
			items = []Item{}
		}
		val, err := json.Marshal(items)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads the object form back, keeping key order.
func (g *Grouped) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("shopping list must be a JSON object")
	}

	out := Grouped{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		category, _ := tok.(string)
		var items []Item
		if err := dec.Decode(&items); err != nil {
			return fmt.Errorf("category %q: %w", category, err)
		}
		for i := range items {
			items[i].Category = category
		}
		out = append(out, Group{Category: category, Items: items})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*g = out
	return nil
}

// GroupItems sorts items by category priority and name and splits them
// into groups.
func GroupItems(items []Item) Grouped {
	sorted := make([]Item, len(items))
	copy(sorted, items)

	coll := ingredient.NewCollation()
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if c := coll.CompareCategories(categoryOf(a), categoryOf(b)); c != 0 {
			return c < 0
		}
		if c := coll.CompareNames(a.IngredientName, b.IngredientName); c != 0 {
			return c < 0
		}
		return a.ID < b.ID
	})

	out := Grouped{}
	for _, it := range sorted {
		it.Category = categoryOf(it)
		if n := len(out); n > 0 && out[n-1].Category == it.Category {
			out[n-1].Items = append(out[n-1].Items, it)
			continue
		}
		out = append(out, Group{Category: it.Category, Items: []Item{it}})
	}
	return out
}

func categoryOf(it Item) string {
	if it.Category == "" {
		return ingredient.DefaultCategory
	}
	return it.Category
}
