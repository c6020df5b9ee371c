package ingredient

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

var vulgarFractions = map[rune]decimal.Decimal{
	'½': decimal.RequireFromString("0.5"),
	'⅓': decimal.NewFromInt(1).Div(decimal.NewFromInt(3)),
	'⅔': decimal.NewFromInt(2).Div(decimal.NewFromInt(3)),
	'¼': decimal.RequireFromString("0.25"),
	'¾': decimal.RequireFromString("0.75"),
	'⅛': decimal.RequireFromString("0.125"),
}

var numberWords = map[string]decimal.Decimal{
	"half":    decimal.RequireFromString("0.5"),
	"quarter": decimal.RequireFromString("0.25"),
	"חצי":     decimal.RequireFromString("0.5"),
	"רבע":     decimal.RequireFromString("0.25"),
}

// leadingQuantity reads a numeric quantity from the first tokens. It
// returns the value, a unit when the number was glued to one ("200g"), and
// how many tokens were consumed.
func leadingQuantity(tokens []string) (decimal.Decimal, *unitDef, int, bool) {
	if len(tokens) == 0 {
		return decimal.Zero, nil, 0, false
	}
	first := tokens[0]

	if v, ok := numberWords[strings.ToLower(first)]; ok {
		return v, nil, 1, true
	}

	qty, ok := parseNumber(first)
	if !ok {
		prefix, rest := splitNumericPrefix(first)
		if prefix == "" || rest == "" {
			return decimal.Zero, nil, 0, false
		}
		def, isUnit := lookupUnit(rest)
		if !isUnit {
			return decimal.Zero, nil, 0, false
		}
		if qty, ok = parseNumber(prefix); !ok {
			return decimal.Zero, nil, 0, false
		}
		return qty, &def, 1, true
	}

	// Mixed numbers: "1 1/2", "1 ½".
	if len(tokens) > 1 && qty.IsInteger() && !strings.ContainsAny(first, "/.,") {
		if frac, ok := parseFraction(tokens[1]); ok {
			return qty.Add(frac), nil, 2, true
		}
	}
	return qty, nil, 1, true
}

// parseNumber accepts integers, decimals ("1.5", "1,5"), simple fractions,
// unicode vulgar fractions optionally after a whole number ("1½") and
// ranges ("2-3", lower bound).
func parseNumber(s string) (decimal.Decimal, bool) {
	if s == "" {
		return decimal.Zero, false
	}
	if i := strings.IndexAny(s, "-–"); i > 0 {
		return parseNumber(s[:i])
	}
	if v, ok := parseFraction(s); ok {
		return v, true
	}
	last, size := utf8.DecodeLastRuneInString(s)
	if frac, ok := vulgarFractions[last]; ok {
		whole, ok := parsePlain(s[:len(s)-size])
		if !ok {
			return decimal.Zero, false
		}
		return whole.Add(frac), true
	}
	return parsePlain(s)
}

func parseFraction(s string) (decimal.Decimal, bool) {
	if r, size := utf8.DecodeRuneInString(s); size == len(s) {
		if v, ok := vulgarFractions[r]; ok {
			return v, true
		}
	}
	num, den, found := strings.Cut(s, "/")
	if !found {
		return decimal.Zero, false
	}
	n, ok := parsePlain(num)
	if !ok {
		return decimal.Zero, false
	}
	d, ok := parsePlain(den)
	if !ok || d.IsZero() {
		return decimal.Zero, false
	}
	return n.Div(d), true
}

// parsePlain parses digits with at most one decimal separator.
func parsePlain(s string) (decimal.Decimal, bool) {
	s = strings.Replace(s, ",", ".", 1)
	if s == "" || strings.Count(s, ".") > 1 || s == "." {
		return decimal.Zero, false
	}
	for _, r := range s {
		if r != '.' && !unicode.IsDigit(r) {
			return decimal.Zero, false
		}
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return v, true
}

func splitNumericPrefix(s string) (string, string) {
	for i, r := range s {
		if unicode.IsDigit(r) || r == '.' || r == ',' || r == '/' {
			continue
		}
		if _, ok := vulgarFractions[r]; ok {
			continue
		}
		return s[:i], s[i:]
	}
	return s, ""
}

// FormatQuantity renders qty with the unit word, e.g. "3 cups" or "2".
func FormatQuantity(qty decimal.Decimal, unit Unit) string {
	rounded := qty.Round(2)
	if unit.IsZero() {
		return rounded.String()
	}
	return rounded.String() + " " + unit.Display(rounded)
}
