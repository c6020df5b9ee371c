package ingredient

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Unit is a measuring unit from the known vocabulary. The zero Unit means
// "no unit" (a bare count such as "2 eggs").
type Unit struct {
	ID       string
	Singular string
	Plural   string
}

// IsZero reports whether u is the empty unit.
func (u Unit) IsZero() bool { return u.ID == "" }

// Display returns the unit word to print next to qty.
func (u Unit) Display(qty decimal.Decimal) string {
	if qty.Equal(decimal.NewFromInt(1)) {
		return u.Singular
	}
	return u.Plural
}

type unitDef struct {
	unit    Unit
	aliases []string
	// textual units may stand without a number ("a pinch", "קורט").
	textual bool
}

var unitDefs = []unitDef{
	{unit: Unit{"cup", "cup", "cups"}, aliases: []string{"cup", "cups", "c"}},
	{unit: Unit{"tbsp", "tbsp", "tbsp"}, aliases: []string{"tbsp", "tbs", "tablespoon", "tablespoons"}},
	{unit: Unit{"tsp", "tsp", "tsp"}, aliases: []string{"tsp", "teaspoon", "teaspoons"}},
	{unit: Unit{"g", "g", "g"}, aliases: []string{"g", "gr", "gram", "grams", "gramme", "grammes"}},
	{unit: Unit{"kg", "kg", "kg"}, aliases: []string{"kg", "kilo", "kilos", "kilogram", "kilograms"}},
	{unit: Unit{"ml", "ml", "ml"}, aliases: []string{"ml", "milliliter", "milliliters", "millilitre", "millilitres"}},
	{unit: Unit{"l", "l", "l"}, aliases: []string{"l", "liter", "liters", "litre", "litres"}},
	{unit: Unit{"clove", "clove", "cloves"}, aliases: []string{"clove", "cloves"}},
	{unit: Unit{"can", "can", "cans"}, aliases: []string{"can", "cans", "tin", "tins"}},
	{unit: Unit{"package", "package", "packages"}, aliases: []string{"package", "packages", "pack", "packs", "pkg"}},
	{unit: Unit{"bunch", "bunch", "bunches"}, aliases: []string{"bunch", "bunches"}},
	{unit: Unit{"piece", "piece", "pieces"}, aliases: []string{"piece", "pieces", "pc", "pcs"}},
	{unit: Unit{"pinch", "pinch", "pinches"}, aliases: []string{"pinch", "pinches"}, textual: true},
	{unit: Unit{"handful", "handful", "handfuls"}, aliases: []string{"handful", "handfuls"}, textual: true},

	{unit: Unit{"כוס", "כוס", "כוסות"}, aliases: []string{"כוס", "כוסות"}},
	{unit: Unit{"כף", "כף", "כפות"}, aliases: []string{"כף", "כפות"}},
	{unit: Unit{"כפית", "כפית", "כפיות"}, aliases: []string{"כפית", "כפיות"}},
	{unit: Unit{"גרם", "גרם", "גרם"}, aliases: []string{"גרם", "גר'", "ג'"}},
	{unit: Unit{"ק\"ג", "ק\"ג", "ק\"ג"}, aliases: []string{"ק\"ג", "ק״ג", "קילו", "קילוגרם"}},
	{unit: Unit{"מ\"ל", "מ\"ל", "מ\"ל"}, aliases: []string{"מ\"ל", "מ״ל", "מיליליטר"}},
	{unit: Unit{"ליטר", "ליטר", "ליטר"}, aliases: []string{"ליטר", "ליטרים"}},
	{unit: Unit{"שן", "שן", "שיני"}, aliases: []string{"שן", "שיני", "שיניים"}},
	{unit: Unit{"קופסה", "קופסה", "קופסאות"}, aliases: []string{"קופסה", "קופסא", "קופסאות", "פחית", "פחיות"}},
	{unit: Unit{"חבילה", "חבילה", "חבילות"}, aliases: []string{"חבילה", "חבילות", "שקית", "שקיות"}},
	{unit: Unit{"צרור", "צרור", "צרורות"}, aliases: []string{"צרור", "צרורות"}},
	{unit: Unit{"יחידה", "יחידה", "יחידות"}, aliases: []string{"יחידה", "יחידות"}},
	{unit: Unit{"קורט", "קורט", "קורט"}, aliases: []string{"קורט"}, textual: true},
	{unit: Unit{"חופן", "חופן", "חופנים"}, aliases: []string{"חופן", "חופנים"}, textual: true},
}

var unitIndex = buildUnitIndex()

func buildUnitIndex() map[string]unitDef {
	idx := make(map[string]unitDef)
	for _, def := range unitDefs {
		for _, alias := range def.aliases {
			idx[alias] = def
		}
	}
	return idx
}

func lookupUnit(token string) (unitDef, bool) {
	t := strings.ToLower(strings.TrimRight(token, ".,"))
	def, ok := unitIndex[t]
	return def, ok
}
