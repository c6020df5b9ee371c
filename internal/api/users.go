package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"menu-planner/internal/app"
	"menu-planner/internal/shared"
)

type recipeIDsResponse struct {
	User      string  `json:"user"`
	RecipeIDs []int64 `json:"recipe_ids"`
}

func idsResponse(user string, ids []int64) recipeIDsResponse {
	if ids == nil {
		ids = []int64{}
	}
	return recipeIDsResponse{User: user, RecipeIDs: ids}
}

// requireRecipe keeps unknown recipes out of the per-user lists.
func requireRecipe(ctx context.Context, a *app.App, raw string) (int64, error) {
	id, err := shared.ParseID(raw)
	if err != nil {
		return 0, err
	}
	if _, err := a.Recipes.Get(ctx, id); err != nil {
		return 0, err
	}
	return id, nil
}

func handleListFavorites(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := chi.URLParam(r, "user")
		ids, err := a.Favorites.List(r.Context(), user)
		if err != nil {
			serviceError(w, a.Logger, "failed to load favorites", err)
			return
		}
		jsonOK(w, idsResponse(user, ids))
	}
}

func handleAddFavorite(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := chi.URLParam(r, "user")
		recipeID, err := requireRecipe(r.Context(), a, chi.URLParam(r, "recipeID"))
		if err != nil {
			serviceError(w, a.Logger, "failed to check recipe", err)
			return
		}
		if err := a.Favorites.Add(r.Context(), user, recipeID); err != nil {
			serviceError(w, a.Logger, "failed to add favorite", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleRemoveFavorite(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := chi.URLParam(r, "user")
		recipeID, err := shared.ParseID(chi.URLParam(r, "recipeID"))
		if err != nil {
			serviceError(w, a.Logger, "", err)
			return
		}
		if err := a.Favorites.Remove(r.Context(), user, recipeID); err != nil {
			serviceError(w, a.Logger, "failed to remove favorite", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleListHistory(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := chi.URLParam(r, "user")
		ids, err := a.History.Recent(r.Context(), user)
		if err != nil {
			serviceError(w, a.Logger, "failed to load history", err)
			return
		}
		jsonOK(w, idsResponse(user, ids))
	}
}

type recordHistoryRequest struct {
	RecipeID json.Number `json:"recipe_id"`
}

func handleRecordHistory(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := chi.URLParam(r, "user")
		var req recordHistoryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			jsonError(w, a.Logger, "invalid request body", http.StatusBadRequest)
			return
		}
		recipeID, err := requireRecipe(r.Context(), a, req.RecipeID.String())
		if err != nil {
			serviceError(w, a.Logger, "failed to check recipe", err)
			return
		}
		if err := a.History.Record(r.Context(), user, recipeID); err != nil {
			serviceError(w, a.Logger, "failed to record history", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleClearHistory(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := a.History.Clear(r.Context(), chi.URLParam(r, "user")); err != nil {
			serviceError(w, a.Logger, "failed to clear history", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
