package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/smartkitchen/internal/model"
	"github.com/dukerupert/smartkitchen/internal/store"
)

type RecipeHandler struct {
	recipeStore     *store.RecipeStore
	menuStore       *store.MenuItemStore
	ingredientStore *store.IngredientStore
	logger          *slog.Logger
}

func NewRecipeHandler(rs *store.RecipeStore, ms *store.MenuItemStore, is *store.IngredientStore, logger *slog.Logger) *RecipeHandler {
	return &RecipeHandler{recipeStore: rs, menuStore: ms, ingredientStore: is, logger: logger}
}

type recipeLine struct {
	IngredientID     int64   `json:"ingredient_id"`
	QuantityRequired float64 `json:"quantity_required"`
}

type recipeRequest struct {
	MenuItemID int64 `json:"menu_item_id"`
	recipeLine
}

type recipeBatchRequest struct {
	MenuItemID  int64        `json:"menu_item_id"`
	Ingredients []recipeLine `json:"ingredients"`
}

// List handles GET /api/recipes
func (h *RecipeHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.recipeStore.ListDetails()
	if err != nil {
		h.logger.Error("list recipes", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list recipes")
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(list))
}

// ByMenuItem handles GET /api/recipes/menu-item/{id}
func (h *RecipeHandler) ByMenuItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	list, err := h.recipeStore.ListDetailsByMenuItem(id)
	if err != nil {
		h.logger.Error("list recipes by menu item", "menu_item_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list recipes")
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(list))
}

// checkRefs returns a client-facing message when a referenced row is missing.
func (h *RecipeHandler) checkRefs(menuItemID int64, lines []recipeLine) (string, error) {
	m, err := h.menuStore.GetByID(menuItemID)
	if err != nil {
		return "", err
	}
	if m == nil {
		return "menu item not found", nil
	}
	for _, l := range lines {
		if l.QuantityRequired <= 0 {
			return "quantity required must be greater than zero", nil
		}
		ing, err := h.ingredientStore.GetByID(l.IngredientID)
		if err != nil {
			return "", err
		}
		if ing == nil {
			return "ingredient not found", nil
		}
	}
	return "", nil
}

// Create handles POST /api/recipes
func (h *RecipeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req recipeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	msg, err := h.checkRefs(req.MenuItemID, []recipeLine{req.recipeLine})
	if err != nil {
		h.logger.Error("check recipe refs", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create recipe")
		return
	}
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	rec, err := h.recipeStore.Create(req.MenuItemID, req.IngredientID, req.QuantityRequired)
	if err != nil {
		h.logger.Error("create recipe", "menu_item_id", req.MenuItemID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create recipe")
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// CreateBatch handles POST /api/recipes/batch
func (h *RecipeHandler) CreateBatch(w http.ResponseWriter, r *http.Request) {
	var req recipeBatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if len(req.Ingredients) == 0 {
		writeError(w, http.StatusBadRequest, "ingredients are required")
		return
	}

	msg, err := h.checkRefs(req.MenuItemID, req.Ingredients)
	if err != nil {
		h.logger.Error("check recipe refs", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create recipes")
		return
	}
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	lines := make([]model.Recipe, len(req.Ingredients))
	for i, l := range req.Ingredients {
		lines[i] = model.Recipe{IngredientID: l.IngredientID, QuantityRequired: l.QuantityRequired}
	}
	list, err := h.recipeStore.CreateBatch(req.MenuItemID, lines)
	if err != nil {
		h.logger.Error("create recipe batch", "menu_item_id", req.MenuItemID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create recipes")
		return
	}
	writeJSON(w, http.StatusCreated, list)
}

// Delete handles DELETE /api/recipes/{id}
func (h *RecipeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.recipeStore.Delete(id); err != nil {
		h.logger.Error("delete recipe", "recipe_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete recipe")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteByMenuItem handles DELETE /api/recipes/menu-item/{id}
func (h *RecipeHandler) DeleteByMenuItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	n, err := h.recipeStore.DeleteByMenuItem(id)
	if err != nil {
		h.logger.Error("delete recipes by menu item", "menu_item_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete recipes")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": n})
}
