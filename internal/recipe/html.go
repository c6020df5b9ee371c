package recipe

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	ingredientHeadings  = []string{"ingredients", "מצרכים", "רכיבים", "החומרים"}
	instructionHeadings = []string{"instructions", "directions", "method", "preparation", "אופן הכנה", "אופן ההכנה", "הוראות הכנה", "הכנה"}
)

// ParseHTML extracts a recipe from a page. It reports false when the page
// has no recognisable recipe.
func ParseHTML(r io.Reader) (Recipe, bool) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return Recipe{}, false
	}
	return ParseDocument(doc)
}

// ParseDocument looks for schema.org JSON-LD first and falls back to an
// "ingredients" heading followed by a list.
func ParseDocument(doc *goquery.Document) (Recipe, bool) {
	if rec, ok := parseJSONLD(doc); ok {
		return rec, true
	}
	return parseHeadings(doc)
}

// PageText returns the visible text of the page with scripts, navigation
// and ads removed.
func PageText(doc *goquery.Document) string {
	body := doc.Find("body").Clone()
	body.Find("script, style, nav, footer, iframe, noscript, .ads, #ads").Remove()
	return strings.Join(strings.Fields(body.Text()), " ")
}

func parseJSONLD(doc *goquery.Document) (Recipe, bool) {
	var (
		found Recipe
		ok    bool
	)
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var data any
		if err := json.Unmarshal([]byte(s.Text()), &data); err != nil {
			return true
		}
		if node := findRecipeNode(data); node != nil {
			found, ok = recipeFromLD(node)
		}
		return !ok
	})
	return found, ok
}

func findRecipeNode(data any) map[string]any {
	switch v := data.(type) {
	case []any:
		for _, item := range v {
			if node := findRecipeNode(item); node != nil {
				return node
			}
		}
	case map[string]any:
		if isRecipeType(v["@type"]) {
			return v
		}
		if graph, ok := v["@graph"]; ok {
			return findRecipeNode(graph)
		}
	}
	return nil
}

func isRecipeType(t any) bool {
	for _, s := range stringList(t) {
		if s == "Recipe" {
			return true
		}
	}
	return false
}

func recipeFromLD(node map[string]any) (Recipe, bool) {
	rec := Recipe{
		Title:        strings.TrimSpace(firstString(node["name"])),
		Description:  strings.TrimSpace(firstString(node["description"])),
		Category:     strings.TrimSpace(firstString(node["recipeCategory"])),
		Ingredients:  strings.Join(cleanLines(stringList(node["recipeIngredient"])), "\n"),
		Instructions: strings.Join(instructionSteps(node["recipeInstructions"]), "\n"),
		Servings:     strings.TrimSpace(firstString(node["recipeYield"])),
	}
	prep := firstString(node["totalTime"])
	if prep == "" {
		prep = firstString(node["prepTime"])
	}
	rec.PrepTime = formatISODuration(prep)

	if rec.Title == "" || rec.Ingredients == "" {
		return Recipe{}, false
	}
	return rec, true
}

func instructionSteps(v any) []string {
	switch t := v.(type) {
	case string:
		return cleanLines(strings.Split(t, "\n"))
	case []any:
		var steps []string
		for _, item := range t {
			steps = append(steps, instructionSteps(item)...)
		}
		return steps
	case map[string]any:
		if list, ok := t["itemListElement"]; ok {
			return instructionSteps(list)
		}
		return instructionSteps(t["text"])
	}
	return nil
}

// stringList flattens a JSON-LD value that may be a string, a number or a
// list of them.
func stringList(v any) []string {
	switch t := v.(type) {
	case string:
		return []string{t}
	case float64:
		return []string{fmt.Sprint(t)}
	case []any:
		var out []string
		for _, item := range t {
			out = append(out, stringList(item)...)
		}
		return out
	}
	return nil
}

func firstString(v any) string {
	if list := stringList(v); len(list) > 0 {
		return list[0]
	}
	return ""
}

var isoDuration = regexp.MustCompile(`^P(?:\d+D)?T?(?:(\d+)H)?(?:(\d+)M)?`)

// formatISODuration turns "PT1H30M" into "1 h 30 min". Anything it does
// not understand is returned unchanged.
func formatISODuration(s string) string {
	s = strings.TrimSpace(s)
	m := isoDuration.FindStringSubmatch(s)
	if m == nil || (m[1] == "" && m[2] == "") {
		return s
	}
	var parts []string
	if m[1] != "" && m[1] != "0" {
		parts = append(parts, m[1]+" h")
	}
	if m[2] != "" && m[2] != "0" {
		parts = append(parts, m[2]+" min")
	}
	return strings.Join(parts, " ")
}

func parseHeadings(doc *goquery.Document) (Recipe, bool) {
	ingredients := listAfterHeading(doc, ingredientHeadings)
	if len(ingredients) == 0 {
		return Recipe{}, false
	}

	title := strings.TrimSpace(doc.Find("h1").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	if title == "" {
		return Recipe{}, false
	}

	return Recipe{
		Title:        title,
		Ingredients:  strings.Join(ingredients, "\n"),
		Instructions: strings.Join(listAfterHeading(doc, instructionHeadings), "\n"),
	}, true
}

func listAfterHeading(doc *goquery.Document, keywords []string) []string {
	var items []string
	doc.Find("h1, h2, h3, h4, strong").EachWithBreak(func(_ int, h *goquery.Selection) bool {
		text := strings.ToLower(strings.TrimSpace(h.Text()))
		if !containsAny(text, keywords) {
			return true
		}
		anchor := h
		if goquery.NodeName(h) == "strong" {
			anchor = h.Parent()
		}
		list := anchor.NextAllFiltered("ul, ol").First()
		list.Find("li").Each(func(_ int, li *goquery.Selection) {
			items = append(items, li.Text())
		})
		items = cleanLines(items)
		return len(items) == 0
	})
	return items
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func cleanLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		l = strings.Join(strings.Fields(l), " ")
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}
