// Package clipper imports a recipe from any web page into the catalog.
package clipper

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"menu-planner/internal/ghost"
	"menu-planner/internal/metrics"
	"menu-planner/internal/recipe"
	"menu-planner/internal/shared"
)

// ClippedTag marks Ghost posts created by the clipper so the Ghost import
// does not read them back.
const ClippedTag = "clipped"

// ErrNoRecipe is returned when a page holds no recognisable recipe and no
// AI extractor is configured.
var ErrNoRecipe = errors.New("no recipe found on page")

// Method tells how a recipe was extracted.
type Method string

const (
	MethodStructured Method = "structured"
	MethodAI         Method = "ai"
)

// Result describes one clipped page.
type Result struct {
	Recipe  recipe.Recipe
	Created bool
	Method  Method
	Post    *ghost.Post
}

// Clipper handles fetching and extracting recipes from URLs.
type Clipper struct {
	httpClient   *http.Client
	recipes      *recipe.Repository
	extractor    *recipe.Extractor
	ghostClient  ghost.Client
	metricsStore *metrics.Store
	logger       *zap.Logger
}

// NewClipper creates a new Clipper. extractor, ghostClient and
// metricsStore may be nil.
func NewClipper(
	recipes *recipe.Repository,
	extractor *recipe.Extractor,
	ghostClient ghost.Client,
	metricsStore *metrics.Store,
	logger *zap.Logger,
) *Clipper {
	return &Clipper{
		httpClient:   &http.Client{Timeout: 15 * time.Second},
		recipes:      recipes,
		extractor:    extractor,
		ghostClient:  ghostClient,
		metricsStore: metricsStore,
		logger:       logger,
	}
}

// ClipURL fetches the page, extracts the recipe and stores it keyed by the
// URL. Clipping the same URL again updates the stored recipe.
func (c *Clipper) ClipURL(ctx context.Context, rawURL string) (Result, error) {
	pageURL, err := validateURL(rawURL)
	if err != nil {
		return Result{}, err
	}

	doc, err := c.fetch(ctx, pageURL)
	if err != nil {
		return Result{}, fmt.Errorf("failed to fetch content: %w", err)
	}

	rec, method, err := c.extract(ctx, pageURL, doc)
	if err != nil {
		return Result{}, err
	}
	rec.Source = pageURL

	saved, created, err := c.recipes.UpsertBySource(ctx, rec)
	if err != nil {
		return Result{}, fmt.Errorf("failed to save recipe: %w", err)
	}
	c.logger.Info("recipe clipped",
		zap.String("url", pageURL),
		zap.Int64("recipe_id", saved.ID),
		zap.String("method", string(method)),
		zap.Bool("created", created))

	res := Result{Recipe: saved, Created: created, Method: method}
	if c.ghostClient != nil && created {
		post, err := c.ghostClient.CreatePost(ctx, saved.Title, formatToHTML(saved), []string{ClippedTag}, true)
		if err != nil {
			c.logger.Warn("failed to publish clipped recipe to ghost", zap.Error(err), zap.Int64("recipe_id", saved.ID))
		} else {
			res.Post = post
		}
	}
	return res, nil
}

func (c *Clipper) extract(ctx context.Context, pageURL string, doc *goquery.Document) (recipe.Recipe, Method, error) {
	if rec, ok := recipe.ParseDocument(doc); ok {
		return rec, MethodStructured, nil
	}
	if c.extractor == nil {
		return recipe.Recipe{}, "", ErrNoRecipe
	}

	res, err := c.extractor.Extract(ctx, recipe.PageData{
		URL:   pageURL,
		Title: strings.TrimSpace(doc.Find("title").First().Text()),
		Text:  recipe.PageText(doc),
	})
	if c.metricsStore != nil {
		if mErr := c.metricsStore.RecordUsage(ctx, res.Meta); mErr != nil {
			c.logger.Warn("failed to record metrics", zap.Error(mErr))
		}
	}
	if err != nil {
		return recipe.Recipe{}, "", fmt.Errorf("ai extraction failed: %w", err)
	}
	return res.Recipe, MethodAI, nil
}

func (c *Clipper) fetch(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "menu-planner/1.0 (+recipe clipper)")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch URL: status %d", resp.StatusCode)
	}
	return goquery.NewDocumentFromReader(resp.Body)
}

func validateURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%w: %q is not an http(s) URL", shared.ErrInvalidInput, raw)
	}
	return u.String(), nil
}

func formatToHTML(r recipe.Recipe) string {
	var sb strings.Builder
	src := html.EscapeString(r.Source)
	fmt.Fprintf(&sb, `<p><i>Imported from: <a href="%s">%s</a></i></p>`, src, src)

	sb.WriteString("<h2>Ingredients</h2><ul>")
	for _, ing := range r.IngredientLines() {
		fmt.Fprintf(&sb, "<li>%s</li>", html.EscapeString(ing))
	}
	sb.WriteString("</ul>")

	if steps := strings.TrimSpace(r.Instructions); steps != "" {
		sb.WriteString("<h2>Instructions</h2><ol>")
		for _, step := range strings.Split(steps, "\n") {
			if step = strings.TrimSpace(step); step != "" {
				fmt.Fprintf(&sb, "<li>%s</li>", html.EscapeString(step))
			}
		}
		sb.WriteString("</ol>")
	}

	sb.WriteString("<hr>")
	fmt.Fprintf(&sb, "<p><strong>Prep Time:</strong> %s | <strong>Servings:</strong> %s</p>",
		html.EscapeString(r.PrepTime), html.EscapeString(r.Servings))

	return sb.String()
}
