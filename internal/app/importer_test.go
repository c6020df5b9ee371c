package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"menu-planner/internal/ghost"
	"menu-planner/internal/llm"
	"menu-planner/internal/metrics"
	"menu-planner/internal/recipe"
	"menu-planner/internal/shared"
	"menu-planner/internal/testutil"
)

type mockGhostClient struct {
	posts []ghost.Post
	err   error
}

func (m *mockGhostClient) FetchRecipes(ctx context.Context) ([]ghost.Post, error) {
	return m.posts, m.err
}

func (m *mockGhostClient) CreatePost(ctx context.Context, title, html string, tags []string, publish bool) (*ghost.Post, error) {
	return nil, errors.New("not implemented")
}

type mockTextGenerator struct {
	responses map[string]string
}

func (m *mockTextGenerator) GenerateContent(ctx context.Context, prompt string) (llm.ContentResponse, error) {
	for marker, resp := range m.responses {
		if strings.Contains(prompt, marker) {
			return llm.ContentResponse{Content: resp, Usage: shared.TokenUsage{PromptTokens: 7, CompletionTokens: 3}}, nil
		}
	}
	return llm.ContentResponse{}, errors.New("LLM error")
}

func newImporter(t *testing.T, posts []ghost.Post, gen llm.TextGenerator) (*Importer, *recipe.Repository) {
	db := testutil.SetupDB(t)
	repo := recipe.NewRepository(db)
	var extractor *recipe.Extractor
	if gen != nil {
		extractor = recipe.NewExtractor(gen)
	}
	imp := NewImporter(&mockGhostClient{posts: posts}, repo, extractor, metrics.NewStore(db), zap.NewNop())
	imp.aiDelay = 0
	return imp, repo
}

func TestImportGhostRecipes(t *testing.T) {
	ctx := context.Background()
	posts := []ghost.Post{
		{
			ID: "1", Title: "Hummus", URL: "https://blog.test/hummus/",
			HTML: `<h2>Ingredients</h2><ul><li>2 cups chickpeas</li><li>3 tbsp tahini</li></ul>`,
			Tags: []ghost.Tag{{Name: "Dips"}},
		},
		{
			ID: "2", Title: "Clipped Soup", URL: "https://blog.test/soup/",
			HTML: `<h2>Ingredients</h2><ul><li>1 onion</li></ul>`,
			Tags: []ghost.Tag{{Name: "clipped"}},
		},
		{ID: "3", Title: "Grandma Cake", HTML: `<p>MARKER-CAKE flour sugar eggs</p>`},
		{ID: "4", Title: "Mystery", HTML: `<p>nothing structured</p>`},
	}
	gen := &mockTextGenerator{responses: map[string]string{
		"MARKER-CAKE": `{"title":"Grandma Cake","ingredients":["2 cups flour","1 cup sugar"]}`,
	}}
	imp, repo := newImporter(t, posts, gen)

	report, err := imp.ImportGhostRecipes(ctx)
	require.NoError(t, err)
	assert.Equal(t, ImportReport{Fetched: 4, Created: 2, Skipped: 1, Failed: 1}, report)

	page, err := repo.List(ctx, recipe.ListOptions{})
	require.NoError(t, err)
	require.Equal(t, 2, page.Total)
	assert.Equal(t, "Grandma Cake", page.Items[0].Title)
	assert.Equal(t, "ghost:3", page.Items[0].Source)
	assert.Equal(t, "Hummus", page.Items[1].Title)
	assert.Equal(t, "Dips", page.Items[1].Category)
	assert.Equal(t, "2 cups chickpeas\n3 tbsp tahini", page.Items[1].Ingredients)

	t.Run("SecondRunUpdates", func(t *testing.T) {
		report, err := imp.ImportGhostRecipes(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, report.Created)
		assert.Equal(t, 2, report.Updated)
	})
}

func TestImportGhostRecipes_WithoutAI(t *testing.T) {
	imp, _ := newImporter(t, []ghost.Post{{ID: "1", Title: "Plain", HTML: "<p>text</p>"}}, nil)

	report, err := imp.ImportGhostRecipes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Failed)
}

func TestImportGhostRecipes_FetchError(t *testing.T) {
	db := testutil.SetupDB(t)
	imp := NewImporter(&mockGhostClient{err: errors.New("down")}, recipe.NewRepository(db), nil, nil, zap.NewNop())

	_, err := imp.ImportGhostRecipes(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch recipes from ghost")
}

func TestImportGhostRecipes_Cancelled(t *testing.T) {
	imp, _ := newImporter(t, []ghost.Post{{ID: "1", Title: "A", HTML: "<p>x</p>"}}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := imp.ImportGhostRecipes(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
