// Package api exposes the catalog, menus and shopping lists over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"menu-planner/internal/app"
	"menu-planner/internal/clipper"
	"menu-planner/internal/logging"
	"menu-planner/internal/metrics"
	"menu-planner/internal/recipe"
	"menu-planner/internal/shared"
)

// WebhookPath is where the Telegram webhook is mounted.
const WebhookPath = "/telegram/webhook"

// NewRouter wires up all routes. webhook may be nil when Telegram is not
// configured.
func NewRouter(a *app.App, webhook http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(logging.Middleware(a.Logger.Named("http")))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", handleHealth)

	r.Route("/recipes", func(r chi.Router) {
		r.Get("/", handleListRecipes(a))
		r.Post("/", handleCreateRecipe(a))
		r.Get("/categories", handleRecipeCategories(a))
		r.Post("/clip", handleClip(a))
		r.Get("/{id}", handleGetRecipe(a))
		r.Put("/{id}", handleUpdateRecipe(a))
		r.Delete("/{id}", handleDeleteRecipe(a))
	})

	r.Route("/menus", func(r chi.Router) {
		r.Get("/", handleListMenus(a))
		r.Post("/", handleCreateMenu(a))
		r.Get("/{id}", handleGetMenu(a))
		r.Delete("/{id}", handleDeleteMenu(a))
		r.Post("/{id}/meals", handleAddMeal(a))
		r.Get("/{id}/shopping-list", handleFetchShoppingList(a))
		r.Post("/{id}/shopping-list", handleRegenerateShoppingList(a))
		r.Post("/{id}/shopping-list/items", handleAddShoppingItem(a))
	})
	r.Post("/meals/{mealID}/recipes", handleAttachRecipe(a))
	r.Delete("/meal-recipes/{id}", handleDetachRecipe(a))

	r.Patch("/shopping-list/items/{itemID}", handleUpdateShoppingItem(a))
	r.Delete("/shopping-list/items/{itemID}", handleDeleteShoppingItem(a))

	r.Route("/users/{user}", func(r chi.Router) {
		r.Get("/favorites", handleListFavorites(a))
		r.Put("/favorites/{recipeID}", handleAddFavorite(a))
		r.Delete("/favorites/{recipeID}", handleRemoveFavorite(a))
		r.Get("/history", handleListHistory(a))
		r.Post("/history", handleRecordHistory(a))
		r.Delete("/history", handleClearHistory(a))
	})

	r.Get("/metrics", handleMetrics(a))

	if webhook != nil {
		r.Method(http.MethodPost, WebhookPath, webhook)
	}

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("ok")) //nolint:errcheck
}

// --- recipes ---

func handleListRecipes(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		opts := recipe.ListOptions{
			Query:    q.Get("q"),
			Category: q.Get("category"),
		}
		var err error
		if opts.Page, err = intParam(q.Get("page")); err != nil {
			jsonError(w, a.Logger, "page must be a number", http.StatusBadRequest)
			return
		}
		if opts.PageSize, err = intParam(q.Get("page_size")); err != nil {
			jsonError(w, a.Logger, "page_size must be a number", http.StatusBadRequest)
			return
		}

		page, err := a.Recipes.List(r.Context(), opts)
		if err != nil {
			serviceError(w, a.Logger, "failed to list recipes", err)
			return
		}
		if page.Items == nil {
			page.Items = []recipe.Recipe{}
		}
		jsonOK(w, page)
	}
}

func handleCreateRecipe(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rec recipe.Recipe
		if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
			jsonError(w, a.Logger, "invalid request body", http.StatusBadRequest)
			return
		}
		rec.ID = 0
		created, err := a.Recipes.Create(r.Context(), rec)
		if err != nil {
			serviceError(w, a.Logger, "failed to create recipe", err)
			return
		}
		jsonCreated(w, created)
	}
}

func handleGetRecipe(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := shared.ParseID(chi.URLParam(r, "id"))
		if err != nil {
			serviceError(w, a.Logger, "", err)
			return
		}
		rec, err := a.Recipes.Get(r.Context(), id)
		if err != nil {
			serviceError(w, a.Logger, "failed to get recipe", err)
			return
		}
		jsonOK(w, rec)
	}
}

func handleUpdateRecipe(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := shared.ParseID(chi.URLParam(r, "id"))
		if err != nil {
			serviceError(w, a.Logger, "", err)
			return
		}
		var rec recipe.Recipe
		if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
			jsonError(w, a.Logger, "invalid request body", http.StatusBadRequest)
			return
		}
		rec.ID = id
		updated, err := a.Recipes.Update(r.Context(), rec)
		if err != nil {
			serviceError(w, a.Logger, "failed to update recipe", err)
			return
		}
		jsonOK(w, updated)
	}
}

func handleDeleteRecipe(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := shared.ParseID(chi.URLParam(r, "id"))
		if err != nil {
			serviceError(w, a.Logger, "", err)
			return
		}
		if err := a.Recipes.Delete(r.Context(), id); err != nil {
			serviceError(w, a.Logger, "failed to delete recipe", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleRecipeCategories(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cats, err := a.Recipes.Categories(r.Context())
		if err != nil {
			serviceError(w, a.Logger, "failed to list categories", err)
			return
		}
		if cats == nil {
			cats = []string{}
		}
		jsonOK(w, cats)
	}
}

// --- clip ---

type clipRequest struct {
	URL string `json:"url"`
}

type clipResponse struct {
	Recipe  recipe.Recipe `json:"recipe"`
	Created bool          `json:"created"`
	Method  string        `json:"method"`
	PostURL string        `json:"post_url,omitempty"`
}

func handleClip(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req clipRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			jsonError(w, a.Logger, "invalid request body", http.StatusBadRequest)
			return
		}
		res, err := a.Clipper.ClipURL(r.Context(), req.URL)
		if errors.Is(err, clipper.ErrNoRecipe) {
			jsonError(w, a.Logger, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		if err != nil {
			serviceError(w, a.Logger, "failed to clip recipe", err)
			return
		}

		resp := clipResponse{Recipe: res.Recipe, Created: res.Created, Method: string(res.Method)}
		if res.Post != nil {
			resp.PostURL = res.Post.URL
		}
		if res.Created {
			jsonCreated(w, resp)
			return
		}
		jsonOK(w, resp)
	}
}

// --- metrics ---

type metricsResponse struct {
	Usage  []metrics.DailyUsage `json:"usage"`
	Health metrics.SysHealth    `json:"health"`
}

func handleMetrics(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		days := 7
		if raw := r.URL.Query().Get("days"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				jsonError(w, a.Logger, "days must be a positive number", http.StatusBadRequest)
				return
			}
			days = n
		}
		usage, err := a.Metrics.GetDailyUsage(r.Context(), days)
		if err != nil {
			serviceError(w, a.Logger, "failed to load usage", err)
			return
		}
		jsonOK(w, metricsResponse{
			Usage:  usage,
			Health: metrics.GetSysHealth(filepath.Dir(a.Config.DatabasePath)),
		})
	}
}

// --- helpers ---

func intParam(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

// serviceError maps domain errors to status codes. msg is what clients see
// for unexpected failures.
func serviceError(w http.ResponseWriter, logger *zap.Logger, msg string, err error) {
	switch {
	case errors.Is(err, shared.ErrInvalidInput):
		jsonError(w, logger, err.Error(), http.StatusBadRequest)
	case errors.Is(err, shared.ErrNotFound):
		jsonError(w, logger, err.Error(), http.StatusNotFound)
	default:
		jsonError(w, logger, msg, http.StatusInternalServerError, err)
	}
}

func jsonOK(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonError(w http.ResponseWriter, logger *zap.Logger, msg string, status int, errs ...error) {
	if status >= 500 && len(errs) > 0 {
		logger.Error(msg, zap.Int("status", status), zap.Error(errs[0]))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg}) //nolint:errcheck
}
