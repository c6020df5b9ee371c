// Package ingredient turns free-text ingredient lines into structured
// quantities, canonical keys and shopping categories.
package ingredient

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
)

// Line is one parsed ingredient line.
type Line struct {
	Raw  string
	Name string
	// Key is the canonical matching key of Name.
	Key string

	// Quantity is nil when the line carries no numeric amount.
	Quantity     *decimal.Decimal
	QuantityText string
	Unit         Unit
}

// HasQuantity reports whether the line carries a numeric or textual amount.
func (l Line) HasQuantity() bool {
	return l.Quantity != nil || l.QuantityText != ""
}

// QuantityString renders the amount as it would appear on a shopping list.
func (l Line) QuantityString() string {
	if l.Quantity != nil {
		return FormatQuantity(*l.Quantity, l.Unit)
	}
	return l.QuantityText
}

var trailingPhrases = []string{
	"to taste",
	"as needed",
	"לפי הטעם",
	"לפי הצורך",
}

// Parse normalizes a single ingredient line. Blank lines report ok == false.
func Parse(line string) (Line, bool) {
	raw := strings.TrimSpace(line)
	raw = strings.TrimSpace(strings.TrimLeft(raw, "-*•·"))
	if raw == "" {
		return Line{}, false
	}

	l := Line{Raw: raw}
	tokens := splitSizeSuffix(strings.Fields(raw))
	rest := tokens

	if qty, glued, n, ok := leadingQuantity(tokens); ok {
		l.Quantity = &qty
		rest = tokens[n:]
		if glued != nil {
			l.Unit = glued.unit
		} else if len(rest) > 0 {
			if def, ok := lookupUnit(rest[0]); ok {
				l.Unit = def.unit
				rest = rest[1:]
			}
		}
		rest = dropOf(rest)
	} else if n, ok := leadingTextQuantity(tokens); ok {
		l.QuantityText = strings.Join(tokens[:n], " ")
		rest = dropOf(tokens[n:])
	}

	name := strings.Join(rest, " ")
	if stripped, phrase, ok := cutTrailingPhrase(name); ok {
		name = stripped
		if !l.HasQuantity() {
			l.QuantityText = phrase
		}
	}

	if name == "" {
		return Line{Raw: raw, Name: raw, Key: CanonicalKey(raw)}, true
	}
	l.Name = name
	l.Key = CanonicalKey(name)
	return l, true
}

// CanonicalKey folds case and collapses whitespace. Two names with the same
// key are treated as the same ingredient.
func CanonicalKey(name string) string {
	folded := cases.Fold().String(name)
	return strings.Join(strings.Fields(folded), " ")
}

// leadingTextQuantity matches "a pinch", "an handful" or a bare textual
// unit such as "קורט".
func leadingTextQuantity(tokens []string) (int, bool) {
	if len(tokens) == 0 {
		return 0, false
	}
	article := strings.ToLower(tokens[0])
	if (article == "a" || article == "an") && len(tokens) > 1 {
		if _, ok := lookupUnit(tokens[1]); ok {
			return 2, true
		}
		return 0, false
	}
	if def, ok := lookupUnit(tokens[0]); ok && def.textual {
		return 1, true
	}
	return 0, false
}

func cutTrailingPhrase(name string) (string, string, bool) {
	for _, phrase := range trailingPhrases {
		cut := len(name) - len(phrase)
		if cut < 0 || !strings.EqualFold(name[cut:], phrase) {
			continue
		}
		// The phrase must start a word: "tomato taste" keeps its name.
		if cut > 0 && name[cut-1] != ' ' && name[cut-1] != ',' {
			continue
		}
		stripped := strings.TrimRight(strings.TrimSpace(name[:cut]), ",;")
		return strings.TrimSpace(stripped), name[cut:], true
	}
	return "", "", false
}

// splitSizeSuffix separates a size word hyphenated onto one of the
// leading numbers: "2 1/2-inch ginger" reads as "2 1/2 inch ginger".
// Ranges such as "2-3" are left alone.
func splitSizeSuffix(tokens []string) []string {
	out := make([]string, 0, len(tokens)+1)
	for i, tok := range tokens {
		if i < 2 {
			if num, word, ok := strings.Cut(tok, "-"); ok && num != "" && word != "" {
				r, _ := utf8.DecodeRuneInString(word)
				if _, isNum := parseNumber(num); isNum && unicode.IsLetter(r) {
					out = append(out, num, word)
					continue
				}
			}
		}
		out = append(out, tok)
	}
	return out
}

func dropOf(tokens []string) []string {
	if len(tokens) > 1 && strings.EqualFold(tokens[0], "of") {
		return tokens[1:]
	}
	return tokens
}
