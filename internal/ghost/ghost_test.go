package ghost

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"menu-planner/internal/config"
)

const adminSecret = "a1b2c3d4e5f60718"

func TestFetchRecipes(t *testing.T) {
	t.Run("FollowsPagination", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "test_key", r.URL.Query().Get("key"))
			assert.Equal(t, "tags", r.URL.Query().Get("include"))

			switch r.URL.Query().Get("page") {
			case "1":
				fmt.Fprintln(w, `{"posts":[{"id":"1","title":"Recipe 1","html":"<h1>Recipe 1</h1>"}],
					"meta":{"pagination":{"page":1,"pages":2,"next":2}}}`)
			case "2":
				fmt.Fprintln(w, `{"posts":[{"id":"2","title":"Recipe 2","html":"<h1>Recipe 2</h1>","tags":[{"name":"soup"}]}],
					"meta":{"pagination":{"page":2,"pages":2,"next":null}}}`)
			default:
				t.Errorf("unexpected page %q", r.URL.Query().Get("page"))
			}
		}))
		defer server.Close()

		client := NewClient(&config.Config{GhostURL: server.URL, GhostContentKey: "test_key"})

		posts, err := client.FetchRecipes(context.Background())
		require.NoError(t, err)
		require.Len(t, posts, 2)
		assert.Equal(t, "Recipe 2", posts[1].Title)
		assert.Equal(t, "soup", posts[1].Tags[0].Name)
	})

	t.Run("ServerError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		defer server.Close()

		client := NewClient(&config.Config{GhostURL: server.URL, GhostContentKey: "test_key"})

		_, err := client.FetchRecipes(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 500")
	})
}

func TestCreatePost(t *testing.T) {
	var gotAuth string
	var gotBody map[string][]map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "html", r.URL.Query().Get("source"))
		gotAuth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusCreated)
		fmt.Fprintln(w, `{"posts":[{"id":"99","title":"Cake","url":"https://blog.test/cake/"}]}`)
	}))
	defer server.Close()

	client := NewClient(&config.Config{GhostURL: server.URL, GhostAdminKey: "kid123:" + adminSecret})

	post, err := client.CreatePost(context.Background(), "Cake", "<p>yum</p>", []string{"clipped"}, true)
	require.NoError(t, err)
	assert.Equal(t, "99", post.ID)
	assert.Equal(t, "published", gotBody["posts"][0]["status"])

	require.True(t, strings.HasPrefix(gotAuth, "Ghost "))
	secret, _ := hex.DecodeString(adminSecret)
	token, err := jwt.Parse(strings.TrimPrefix(gotAuth, "Ghost "), func(tok *jwt.Token) (any, error) {
		assert.Equal(t, "kid123", tok.Header["kid"])
		return secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithAudience("/admin/"))
	require.NoError(t, err)
	assert.True(t, token.Valid)
}

func TestCreateAdminToken_BadKey(t *testing.T) {
	for _, key := range []string{"", "nocolon", "id:not-hex"} {
		c := &ghostClient{config: &config.Config{GhostAdminKey: key}}
		_, err := c.createAdminToken(time.Now())
		assert.Error(t, err, key)
	}
}
