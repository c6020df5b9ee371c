package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"menu-planner/internal/app"
	"menu-planner/internal/menu"
	"menu-planner/internal/shared"
	"menu-planner/internal/shopping"
)

type createMenuRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func handleListMenus(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		menus, err := a.Menus.List(r.Context())
		if err != nil {
			serviceError(w, a.Logger, "failed to list menus", err)
			return
		}
		if menus == nil {
			menus = []menu.Summary{}
		}
		jsonOK(w, menus)
	}
}

func handleCreateMenu(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createMenuRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			jsonError(w, a.Logger, "invalid request body", http.StatusBadRequest)
			return
		}
		m, err := a.Menus.Create(r.Context(), req.Name, req.Description)
		if err != nil {
			serviceError(w, a.Logger, "failed to create menu", err)
			return
		}
		jsonCreated(w, m)
	}
}

func handleGetMenu(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := shared.ParseID(chi.URLParam(r, "id"))
		if err != nil {
			serviceError(w, a.Logger, "", err)
			return
		}
		m, err := a.Menus.Get(r.Context(), id)
		if err != nil {
			serviceError(w, a.Logger, "failed to get menu", err)
			return
		}
		jsonOK(w, m)
	}
}

func handleDeleteMenu(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := shared.ParseID(chi.URLParam(r, "id"))
		if err != nil {
			serviceError(w, a.Logger, "", err)
			return
		}
		if err := a.Menus.Delete(r.Context(), id); err != nil {
			serviceError(w, a.Logger, "failed to delete menu", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type addMealRequest struct {
	Name string `json:"name"`
}

func handleAddMeal(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		menuID, err := shared.ParseID(chi.URLParam(r, "id"))
		if err != nil {
			serviceError(w, a.Logger, "", err)
			return
		}
		var req addMealRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			jsonError(w, a.Logger, "invalid request body", http.StatusBadRequest)
			return
		}
		meal, err := a.Menus.AddMeal(r.Context(), menuID, req.Name)
		if err != nil {
			serviceError(w, a.Logger, "failed to add meal", err)
			return
		}
		jsonCreated(w, meal)
	}
}

type attachRecipeRequest struct {
	RecipeID int64  `json:"recipe_id"`
	Course   string `json:"course"`
}

func handleAttachRecipe(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mealID, err := shared.ParseID(chi.URLParam(r, "mealID"))
		if err != nil {
			serviceError(w, a.Logger, "", err)
			return
		}
		var req attachRecipeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			jsonError(w, a.Logger, "invalid request body", http.StatusBadRequest)
			return
		}
		if req.RecipeID <= 0 {
			jsonError(w, a.Logger, "recipe_id is required", http.StatusBadRequest)
			return
		}
		ref, err := a.Menus.AttachRecipe(r.Context(), mealID, req.RecipeID, req.Course)
		if err != nil {
			serviceError(w, a.Logger, "failed to attach recipe", err)
			return
		}
		jsonCreated(w, ref)
	}
}

func handleDetachRecipe(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := shared.ParseID(chi.URLParam(r, "id"))
		if err != nil {
			serviceError(w, a.Logger, "", err)
			return
		}
		if err := a.Menus.DetachRecipe(r.Context(), id); err != nil {
			serviceError(w, a.Logger, "failed to detach recipe", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// --- shopping list ---

func handleFetchShoppingList(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		menuID, err := shared.ParseID(chi.URLParam(r, "id"))
		if err != nil {
			serviceError(w, a.Logger, "", err)
			return
		}
		list, err := a.Shopping.Fetch(r.Context(), menuID)
		if err != nil {
			serviceError(w, a.Logger, "failed to load shopping list", err)
			return
		}
		jsonOK(w, list)
	}
}

func handleRegenerateShoppingList(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		menuID, err := shared.ParseID(chi.URLParam(r, "id"))
		if err != nil {
			serviceError(w, a.Logger, "", err)
			return
		}
		list, err := a.Shopping.Regenerate(r.Context(), menuID)
		if err != nil {
			serviceError(w, a.Logger, "failed to generate shopping list", err)
			return
		}
		jsonOK(w, list)
	}
}

func handleAddShoppingItem(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		menuID, err := shared.ParseID(chi.URLParam(r, "id"))
		if err != nil {
			serviceError(w, a.Logger, "", err)
			return
		}
		var req shopping.NewItem
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			jsonError(w, a.Logger, "invalid request body", http.StatusBadRequest)
			return
		}
		item, err := a.Shopping.AddItem(r.Context(), menuID, req)
		if err != nil {
			serviceError(w, a.Logger, "failed to add item", err)
			return
		}
		jsonCreated(w, item)
	}
}

func handleUpdateShoppingItem(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := shared.ParseID(chi.URLParam(r, "itemID"))
		if err != nil {
			serviceError(w, a.Logger, "", err)
			return
		}
		var upd shopping.ItemUpdate
		if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
			jsonError(w, a.Logger, "invalid request body", http.StatusBadRequest)
			return
		}
		item, err := a.Shopping.UpdateItem(r.Context(), itemID, upd)
		if err != nil {
			serviceError(w, a.Logger, "failed to update item", err)
			return
		}
		jsonOK(w, item)
	}
}

func handleDeleteShoppingItem(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := shared.ParseID(chi.URLParam(r, "itemID"))
		if err != nil {
			serviceError(w, a.Logger, "", err)
			return
		}
		if err := a.Shopping.DeleteItem(r.Context(), itemID); err != nil {
			serviceError(w, a.Logger, "failed to delete item", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func jsonCreated(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}
