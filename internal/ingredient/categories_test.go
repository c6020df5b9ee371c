package ingredient

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategorize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want string
	}{
		{"flour", "אפייה ומתוקים"},
		{"salt", "תבלינים"},
		{"eggs", "מוצרי חלב וביצים"},
		{"Onions", "ירקות ופירות"},
		{"עגבנייה", "ירקות ופירות"},
		{"tomato paste", "שימורים, שמנים ורטבים"},
		{"fresh tomatoes", "ירקות ופירות"},
		{"red pepper", "ירקות ופירות"},
		{"black pepper", "תבלינים"},
		{"פלפל אדום", "ירקות ופירות"},
		{"פלפל שחור", "תבלינים"},
		{"חזה עוף", "בשר, עוף ודגים"},
		{"פלפלים אדומים", "ירקות ופירות"},
		{"גזרים", "ירקות ופירות"},
		{"inch ginger", "ירקות ופירות"},
		{"extra virgin olive oil", "שימורים, שמנים ורטבים"},
		{"unobtainium", DefaultCategory},
		{"", DefaultCategory},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, Categorize(tc.name))
		})
	}
}

func TestCategories(t *testing.T) {
	t.Parallel()

	cats := Categories()
	assert.Len(t, cats, len(categoryRules)+1)
	assert.Equal(t, DefaultCategory, cats[len(cats)-1])
	for i, c := range cats {
		assert.Equal(t, i, CategoryRank(c))
	}
	assert.Equal(t, len(categoryRules)+1, CategoryRank("unknown"))
}

func TestCollation_CompareCategories(t *testing.T) {
	t.Parallel()

	coll := NewCollation()
	got := []string{DefaultCategory, "zeta", "תבלינים", "alpha", "ירקות ופירות"}
	sort.SliceStable(got, func(i, j int) bool { return coll.CompareCategories(got[i], got[j]) < 0 })

	assert.Equal(t, []string{"ירקות ופירות", "תבלינים", DefaultCategory, "alpha", "zeta"}, got)
}

func TestCollation_CompareNames(t *testing.T) {
	t.Parallel()

	coll := NewCollation()
	assert.Negative(t, coll.CompareNames("אורז", "בצל"))
	assert.Positive(t, coll.CompareNames("תפוח", "בצל"))
	assert.Negative(t, coll.CompareNames("apple", "Banana"))
	assert.Zero(t, coll.CompareNames("salt", "salt"))
	assert.NotZero(t, coll.CompareNames("Salt", "salt"))
}
