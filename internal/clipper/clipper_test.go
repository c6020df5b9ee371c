package clipper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
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

// --- Mocks ---
type MockGhostClient struct {
	CreatedPost *ghost.Post
	Tags        []string
	ShouldError bool
}

func (m *MockGhostClient) FetchRecipes(ctx context.Context) ([]ghost.Post, error) {
	return nil, nil
}

func (m *MockGhostClient) CreatePost(ctx context.Context, title, html string, tags []string, publish bool) (*ghost.Post, error) {
	if m.ShouldError {
		return nil, fmt.Errorf("mock error")
	}
	m.Tags = tags
	m.CreatedPost = &ghost.Post{ID: "123", Title: title, HTML: html}
	return m.CreatedPost, nil
}

type MockTextGenerator struct {
	Response    string
	ShouldError bool
	Calls       int
}

func (m *MockTextGenerator) GenerateContent(ctx context.Context, prompt string) (llm.ContentResponse, error) {
	m.Calls++
	if m.ShouldError {
		return llm.ContentResponse{}, fmt.Errorf("mock ai error")
	}
	return llm.ContentResponse{
		Content: m.Response,
		Usage:   shared.TokenUsage{PromptTokens: 100, CompletionTokens: 20, Model: "mock"},
	}, nil
}

// --- Helpers ---

type deps struct {
	repo    *recipe.Repository
	metrics *metrics.Store
}

func newDeps(t *testing.T) deps {
	db := testutil.SetupDB(t)
	return deps{repo: recipe.NewRepository(db), metrics: metrics.NewStore(db)}
}

func serve(t *testing.T, body string) *httptest.Server {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	t.Cleanup(ts.Close)
	return ts
}

const structuredPage = `<html><head><script type="application/ld+json">
{"@type":"Recipe","name":"Lentil Soup","recipeIngredient":["1 cup lentils","1 onion"],"recipeInstructions":"Boil."}
</script></head><body><h1>Lentil Soup</h1></body></html>`

// --- Tests ---

func TestClipURL_Structured(t *testing.T) {
	d := newDeps(t)
	mockGhost := &MockGhostClient{}
	mockAI := &MockTextGenerator{}
	c := NewClipper(d.repo, recipe.NewExtractor(mockAI), mockGhost, d.metrics, zap.NewNop())
	ts := serve(t, structuredPage)

	res, err := c.ClipURL(context.Background(), ts.URL)
	require.NoError(t, err)
	assert.Equal(t, MethodStructured, res.Method)
	assert.True(t, res.Created)
	assert.Equal(t, "Lentil Soup", res.Recipe.Title)
	assert.Equal(t, ts.URL, res.Recipe.Source)
	assert.Zero(t, mockAI.Calls, "structured data must not call the model")

	require.NotNil(t, mockGhost.CreatedPost)
	assert.Contains(t, mockGhost.CreatedPost.HTML, "<li>1 cup lentils</li>")
	assert.Equal(t, []string{ClippedTag}, mockGhost.Tags)

	again, err := c.ClipURL(context.Background(), ts.URL)
	require.NoError(t, err)
	assert.False(t, again.Created)
	assert.Equal(t, res.Recipe.ID, again.Recipe.ID)
}

func TestClipURL_AIFallback(t *testing.T) {
	d := newDeps(t)
	mockAI := &MockTextGenerator{Response: `{"title": "Mock Pie", "ingredients": ["Apple"], "instructions": ["Bake"], "prep_time": "1h", "servings": "8"}`}
	c := NewClipper(d.repo, recipe.NewExtractor(mockAI), nil, d.metrics, zap.NewNop())
	ts := serve(t, "<html><head><title>Pie</title></head><body>Some Content</body></html>")

	res, err := c.ClipURL(context.Background(), ts.URL)
	require.NoError(t, err)
	assert.Equal(t, MethodAI, res.Method)
	assert.Equal(t, "Mock Pie", res.Recipe.Title)
	assert.Equal(t, "Apple", res.Recipe.Ingredients)
	assert.Nil(t, res.Post)

	usage, err := d.metrics.GetDailyUsage(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, usage, 1)
	assert.Equal(t, 100, usage[0].PromptTokens)
}

func TestClipURL_Errors(t *testing.T) {
	d := newDeps(t)
	ctx := context.Background()

	t.Run("InvalidURL", func(t *testing.T) {
		c := NewClipper(d.repo, nil, nil, nil, zap.NewNop())
		_, err := c.ClipURL(ctx, "ftp://example.com/x")
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
		_, err = c.ClipURL(ctx, "not a url")
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("NoRecipeWithoutAI", func(t *testing.T) {
		c := NewClipper(d.repo, nil, nil, nil, zap.NewNop())
		_, err := c.ClipURL(ctx, serve(t, "<html><body>news</body></html>").URL)
		assert.True(t, errors.Is(err, ErrNoRecipe))
	})

	t.Run("AIError", func(t *testing.T) {
		c := NewClipper(d.repo, recipe.NewExtractor(&MockTextGenerator{ShouldError: true}), nil, nil, zap.NewNop())
		_, err := c.ClipURL(ctx, serve(t, "<html><body>news</body></html>").URL)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ai extraction failed")
	})

	t.Run("HTTPStatus", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		}))
		defer ts.Close()
		c := NewClipper(d.repo, nil, nil, nil, zap.NewNop())
		_, err := c.ClipURL(ctx, ts.URL)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 404")
	})

	t.Run("GhostFailureIsNotFatal", func(t *testing.T) {
		c := NewClipper(d.repo, nil, &MockGhostClient{ShouldError: true}, nil, zap.NewNop())
		res, err := c.ClipURL(ctx, serve(t, structuredPage).URL)
		require.NoError(t, err)
		assert.Nil(t, res.Post)
	})
}

func TestFormatToHTML(t *testing.T) {
	html := formatToHTML(recipe.Recipe{
		Title:        "Pancakes",
		Ingredients:  "Flour\nMilk <fresh>",
		Instructions: "Mix\n\nFry",
		PrepTime:     "10m",
		Servings:     "2",
		Source:       "http://test.com",
	})

	expectedSubstrings := []string{
		"Imported from: <a href=\"http://test.com\">http://test.com</a>",
		"<li>Flour</li>",
		"<li>Milk &lt;fresh&gt;</li>",
		"<li>Mix</li>",
		"<strong>Prep Time:</strong> 10m",
	}
	for _, sub := range expectedSubstrings {
		assert.True(t, strings.Contains(html, sub), "expected HTML to contain %q", sub)
	}
	assert.Equal(t, 2, strings.Count(html, "<li>Mix</li>")+strings.Count(html, "<li>Fry</li>"))
}
