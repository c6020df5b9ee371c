package app

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"menu-planner/internal/clipper"
	"menu-planner/internal/ghost"
	"menu-planner/internal/metrics"
	"menu-planner/internal/recipe"
)

// defaultAIDelay keeps AI extraction under the Gemini free-tier rate limit
// (15 requests per minute).
const defaultAIDelay = 5 * time.Second

// ImportReport summarises one Ghost import run.
type ImportReport struct {
	Fetched int `json:"fetched"`
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// Importer copies recipe posts from Ghost into the catalog.
type Importer struct {
	ghostClient  ghost.Client
	recipes      *recipe.Repository
	extractor    *recipe.Extractor
	metricsStore *metrics.Store
	logger       *zap.Logger
	aiDelay      time.Duration
}

// NewImporter creates an Importer. extractor may be nil, in which case
// posts without structured ingredients are counted as failed.
func NewImporter(
	ghostClient ghost.Client,
	recipes *recipe.Repository,
	extractor *recipe.Extractor,
	metricsStore *metrics.Store,
	logger *zap.Logger,
) *Importer {
	return &Importer{
		ghostClient:  ghostClient,
		recipes:      recipes,
		extractor:    extractor,
		metricsStore: metricsStore,
		logger:       logger,
		aiDelay:      defaultAIDelay,
	}
}

// ImportGhostRecipes fetches every post and upserts it as a recipe keyed by
// the post URL. Posts the clipper published are skipped. A failing post is
// logged and counted; only a failed fetch or a cancelled context aborts.
func (i *Importer) ImportGhostRecipes(ctx context.Context) (ImportReport, error) {
	var report ImportReport

	posts, err := i.ghostClient.FetchRecipes(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to fetch recipes from ghost: %w", err)
	}
	report.Fetched = len(posts)
	i.logger.Info("fetched recipe posts from ghost", zap.Int("count", len(posts)))

	for _, post := range posts {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if hasTag(post, clipper.ClippedTag) {
			report.Skipped++
			continue
		}

		rec, usedAI, err := i.extract(ctx, post)
		if err != nil {
			report.Failed++
			i.logger.Warn("failed to extract recipe", zap.String("post", post.Title), zap.Error(err))
			continue
		}

		_, created, err := i.recipes.UpsertBySource(ctx, rec)
		if err != nil {
			report.Failed++
			i.logger.Warn("failed to save recipe", zap.String("post", post.Title), zap.Error(err))
			continue
		}
		if created {
			report.Created++
		} else {
			report.Updated++
		}

		if usedAI && i.aiDelay > 0 {
			select {
			case <-ctx.Done():
				return report, ctx.Err()
			case <-time.After(i.aiDelay):
			}
		}
	}

	i.logger.Info("ghost import complete",
		zap.Int("created", report.Created),
		zap.Int("updated", report.Updated),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed))
	return report, nil
}

func (i *Importer) extract(ctx context.Context, post ghost.Post) (recipe.Recipe, bool, error) {
	// Ghost keeps the title outside the post body.
	page := "<h1>" + html.EscapeString(post.Title) + "</h1>" + post.HTML
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return recipe.Recipe{}, false, fmt.Errorf("failed to parse post html: %w", err)
	}

	source := post.URL
	if source == "" {
		source = "ghost:" + post.ID
	}

	if rec, ok := recipe.ParseDocument(doc); ok {
		rec.Source = source
		if len(post.Tags) > 0 && rec.Category == "" {
			rec.Category = post.Tags[0].Name
		}
		return rec, false, nil
	}
	if i.extractor == nil {
		return recipe.Recipe{}, false, errors.New("no structured ingredients and AI extraction is disabled")
	}

	res, err := i.extractor.Extract(ctx, recipe.PageData{URL: source, Title: post.Title, Text: recipe.PageText(doc)})
	if i.metricsStore != nil {
		if mErr := i.metricsStore.RecordUsage(ctx, res.Meta); mErr != nil {
			i.logger.Warn("failed to record metrics", zap.Error(mErr))
		}
	}
	if err != nil {
		return recipe.Recipe{}, true, err
	}
	res.Recipe.Source = source
	return res.Recipe, true, nil
}

func hasTag(post ghost.Post, name string) bool {
	for _, t := range post.Tags {
		if strings.EqualFold(t.Name, name) {
			return true
		}
	}
	return false
}
