package shopping

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"menu-planner/internal/ingredient"
	"menu-planner/internal/recipe"
)

// Entry is an aggregated shopping-list line before it is persisted.
type Entry struct {
	IngredientName string
	Quantity       string
	Category       string
	Notes          string
}

// QuantitySeparator joins quantities that could not be summed.
const QuantitySeparator = " + "

type unitSum struct {
	unit ingredient.Unit
	sum  decimal.Decimal
}

// accumulator collects every occurrence of one canonical ingredient.
type accumulator struct {
	name      string
	sums      []unitSum
	texts     []string
	seenTexts map[string]struct{}
	recipes   []string
	seenRecs  map[string]struct{}
}

func newAccumulator(name string) *accumulator {
	return &accumulator{
		name:      name,
		seenTexts: make(map[string]struct{}),
		seenRecs:  make(map[string]struct{}),
	}
}

func (a *accumulator) add(line ingredient.Line, recipeTitle string) {
	switch {
	case line.Quantity != nil:
		a.addAmount(line.Unit, *line.Quantity)
	case line.QuantityText != "":
		key := ingredient.CanonicalKey(line.QuantityText)
		if _, ok := a.seenTexts[key]; !ok {
			a.seenTexts[key] = struct{}{}
			a.texts = append(a.texts, line.QuantityText)
		}
	}
	if _, ok := a.seenRecs[recipeTitle]; !ok && recipeTitle != "" {
		a.seenRecs[recipeTitle] = struct{}{}
		a.recipes = append(a.recipes, recipeTitle)
	}
}

func (a *accumulator) addAmount(unit ingredient.Unit, qty decimal.Decimal) {
	for i := range a.sums {
		if a.sums[i].unit.ID == unit.ID {
			a.sums[i].sum = a.sums[i].sum.Add(qty)
			return
		}
	}
	a.sums = append(a.sums, unitSum{unit: unit, sum: qty})
}

func (a *accumulator) parts() []string {
	parts := make([]string, 0, len(a.sums)+len(a.texts))
	for _, s := range a.sums {
		parts = append(parts, ingredient.FormatQuantity(s.sum, s.unit))
	}
	return append(parts, a.texts...)
}

func (a *accumulator) entry() Entry {
	parts := a.parts()
	e := Entry{
		IngredientName: a.name,
		Quantity:       strings.Join(parts, QuantitySeparator),
		Category:       ingredient.Categorize(a.name),
	}
	if len(parts) > 1 {
		e.Notes = strings.Join(a.recipes, ", ")
	}
	return e
}

// Aggregate merges the ingredient lines of all recipes into one entry per
// canonical ingredient. Amounts in the same unit are summed exactly; other
// amounts are kept side by side. The result is sorted for display.
func Aggregate(recipes []recipe.Recipe) []Entry {
	byKey := make(map[string]*accumulator)
	var order []*accumulator

	for _, rec := range recipes {
		for _, raw := range rec.IngredientLines() {
			line, ok := ingredient.Parse(raw)
			if !ok {
				continue
			}
			acc, ok := byKey[line.Key]
			if !ok {
				acc = newAccumulator(line.Name)
				byKey[line.Key] = acc
				order = append(order, acc)
			}
			acc.add(line, rec.Title)
		}
	}

	entries := make([]Entry, 0, len(order))
	for _, acc := range order {
		entries = append(entries, acc.entry())
	}
	sortEntries(entries)
	return entries
}

func sortEntries(entries []Entry) {
	coll := ingredient.NewCollation()
	sort.SliceStable(entries, func(i, j int) bool {
		if c := coll.CompareCategories(entries[i].Category, entries[j].Category); c != 0 {
			return c < 0
		}
		return coll.CompareNames(entries[i].IngredientName, entries[j].IngredientName) < 0
	})
}

// GroupEntries groups unsaved entries the same way persisted items are
// grouped. Items in the result have no id.
func GroupEntries(entries []Entry) Grouped {
	items := make([]Item, len(entries))
	for i, e := range entries {
		items[i] = Item{IngredientName: e.IngredientName, Quantity: e.Quantity, Category: e.Category, Notes: e.Notes}
	}
	return GroupItems(items)
}
