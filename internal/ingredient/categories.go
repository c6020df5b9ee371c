package ingredient

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// DefaultCategory is used when no rule matches.
const DefaultCategory = "אחר"

// fuzzyMinRunes is the shortest keyword that may match with one typo.
const fuzzyMinRunes = 5

// CategoryRule maps keywords to a shopping category.
type CategoryRule struct {
	Category string
	Keywords []string
}

// categoryRules is evaluated top to bottom. Its order is also the display
// order of the categories on a shopping list.
var categoryRules = []CategoryRule{
	{
		Category: "ירקות ופירות",
		Keywords: []string{
			"עגבניה", "עגבניות", "בצל", "בצלים", "שום", "גזר", "מלפפון", "מלפפונים",
			"תפוח אדמה", "תפוחי אדמה", "בטטה", "קישוא", "קישואים", "חציל", "פלפל אדום",
			"פלפל ירוק", "פלפל צהוב", "פטרוזיליה", "כוסברה", "שמיר", "נענע", "חסה",
			"לימון", "לימונים", "תפוח", "תפוחים", "בננה", "בננות", "אבוקדו", "פטריות",
			"פלפלים", "גזרים", "חצילים", "בטטות", "פטרייה", "קולורבי", "סלרי",
			"tomato", "tomatoes", "onion", "garlic", "carrot", "cucumber", "potato",
			"potatoes", "zucchini", "eggplant", "bell pepper", "red pepper", "green pepper",
			"parsley", "cilantro", "coriander leaves", "dill", "mint", "lettuce", "spinach",
			"lemon", "lime", "apple", "banana", "avocado", "mushroom", "celery", "ginger",
		},
	},
	{
		Category: "בשר, עוף ודגים",
		Keywords: []string{
			"עוף", "חזה עוף", "פרגיות", "בשר", "בשר טחון", "בקר", "כבש", "הודו",
			"דג", "דגים", "סלמון", "טונה", "נקניק",
			"chicken", "beef", "ground beef", "lamb", "turkey", "pork", "fish",
			"salmon", "tuna", "shrimp", "sausage", "bacon",
		},
	},
	{
		Category: "מוצרי חלב וביצים",
		Keywords: []string{
			"חלב", "ביצה", "ביצים", "חמאה", "גבינה", "גבינה צהובה", "גבינה לבנה",
			"שמנת", "שמנת מתוקה", "יוגורט", "לבנה", "פרמזן", "מוצרלה",
			"milk", "egg", "eggs", "butter", "cheese", "cream", "sour cream",
			"yogurt", "yoghurt", "parmesan", "mozzarella", "feta",
		},
	},
	{
		Category: "לחם ודגנים",
		Keywords: []string{
			"לחם", "פיתה", "פיתות", "אורז", "פסטה", "ספגטי", "קוסקוס", "בורגול",
			"קינואה", "שיבולת שועל", "עדשים", "חומוס", "שעועית", "פירורי לחם",
			"bread", "pita", "rice", "pasta", "spaghetti", "noodles", "couscous",
			"bulgur", "quinoa", "oats", "lentils", "chickpeas", "beans", "breadcrumbs",
			"tortilla",
		},
	},
	{
		Category: "אפייה ומתוקים",
		Keywords: []string{
			"קמח", "סוכר", "סוכר חום", "אבקת אפייה", "סודה לשתייה", "שמרים",
			"וניל", "תמצית וניל", "שוקולד", "קקאו", "דבש", "סילאן",
			"flour", "sugar", "brown sugar", "baking powder", "baking soda", "yeast",
			"vanilla", "chocolate", "cocoa", "honey", "maple syrup",
		},
	},
	{
		Category: "תבלינים",
		Keywords: []string{
			"מלח", "פלפל שחור", "פלפל", "כמון", "פפריקה", "כורכום", "קינמון",
			"אורגנו", "טימין", "זעתר", "הל", "ציפורן", "אגוז מוסקט", "תבלין",
			"salt", "black pepper", "pepper", "cumin", "paprika", "turmeric",
			"cinnamon", "oregano", "thyme", "nutmeg", "cardamom", "chili flakes",
		},
	},
	{
		Category: "שימורים, שמנים ורטבים",
		Keywords: []string{
			"שמן", "שמן זית", "חומץ", "רוטב סויה", "סויה", "טחינה", "קטשופ",
			"מיונז", "חרדל", "רסק עגבניות", "רסק", "רוטב", "ציר", "אבקת מרק", "זיתים",
			"oil", "olive oil", "vinegar", "soy sauce", "tahini", "ketchup",
			"mayonnaise", "mustard", "tomato paste", "paste", "sauce", "stock", "broth", "olives",
		},
	},
}

// Categories returns the category names in display priority order,
// DefaultCategory last.
func Categories() []string {
	out := make([]string, 0, len(categoryRules)+1)
	for _, rule := range categoryRules {
		out = append(out, rule.Category)
	}
	return append(out, DefaultCategory)
}

// Categorize assigns a shopping category to an ingredient name. Multi-word
// keywords are tried across all rules first so that "tomato paste" beats
// "tomato", then exact tokens, then single-typo tokens.
func Categorize(name string) string {
	key := CanonicalKey(name)
	if key == "" {
		return DefaultCategory
	}
	tokens := strings.Fields(key)

	for _, rule := range categoryRules {
		for _, kw := range rule.Keywords {
			if strings.Contains(kw, " ") && strings.Contains(key, kw) {
				return rule.Category
			}
		}
	}
	for _, rule := range categoryRules {
		for _, kw := range rule.Keywords {
			for _, tok := range tokens {
				if tok == kw {
					return rule.Category
				}
			}
		}
	}
	for _, rule := range categoryRules {
		for _, kw := range rule.Keywords {
			if strings.Contains(kw, " ") || utf8.RuneCountInString(kw) < fuzzyMinRunes {
				continue
			}
			for _, tok := range tokens {
				if utf8.RuneCountInString(tok) >= fuzzyMinRunes && levenshtein.ComputeDistance(tok, kw) <= 1 {
					return rule.Category
				}
			}
		}
	}
	return DefaultCategory
}

// CategoryRank is the display position of a category. Unknown categories
// share the rank after DefaultCategory.
func CategoryRank(category string) int {
	for i, rule := range categoryRules {
		if rule.Category == category {
			return i
		}
	}
	if category == DefaultCategory {
		return len(categoryRules)
	}
	return len(categoryRules) + 1
}

// Collation orders names and categories for display. A Collation wraps a
// collate.Collator and must not be shared between goroutines.
type Collation struct {
	c *collate.Collator
}

// NewCollation returns a Hebrew collation that ignores case.
func NewCollation() *Collation {
	return &Collation{c: collate.New(language.Hebrew, collate.IgnoreCase)}
}

// CompareCategories orders by priority, then alphabetically for
// categories outside the rule table.
func (o *Collation) CompareCategories(a, b string) int {
	ra, rb := CategoryRank(a), CategoryRank(b)
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	return o.CompareNames(a, b)
}

// CompareNames orders ingredient names by their canonical key, falling back
// to a byte comparison so the order is total.
func (o *Collation) CompareNames(a, b string) int {
	if c := o.c.CompareString(CanonicalKey(a), CanonicalKey(b)); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}
