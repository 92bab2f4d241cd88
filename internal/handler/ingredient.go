package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/smartkitchen/internal/inventory"
	"github.com/dukerupert/smartkitchen/internal/model"
	"github.com/dukerupert/smartkitchen/internal/store"
)

type IngredientHandler struct {
	ingredientStore *store.IngredientStore
	logger          *slog.Logger
}

func NewIngredientHandler(is *store.IngredientStore, logger *slog.Logger) *IngredientHandler {
	return &IngredientHandler{ingredientStore: is, logger: logger}
}

type ingredientRequest struct {
	Name              string   `json:"name"`
	Type              string   `json:"ingredient_type"`
	Unit              string   `json:"unit"`
	CurrentQuantity   *float64 `json:"current_quantity"`
	MaxQuantity       *float64 `json:"max_quantity"`
	ThresholdQuantity *float64 `json:"threshold_quantity"`
	IsActive          *bool    `json:"is_active"`
}

// apply copies the fields that were sent onto i.
func (req ingredientRequest) apply(i *model.Ingredient) string {
	if name := strings.TrimSpace(req.Name); name != "" {
		i.Name = name
	}
	if t := strings.TrimSpace(req.Type); t != "" {
		i.Type = t
	}
	if u := strings.TrimSpace(req.Unit); u != "" {
		i.Unit = u
	}
	if req.CurrentQuantity != nil {
		i.CurrentQuantity = *req.CurrentQuantity
	}
	if req.MaxQuantity != nil {
		i.MaxQuantity = *req.MaxQuantity
	}
	if req.ThresholdQuantity != nil {
		i.ThresholdQuantity = *req.ThresholdQuantity
	}
	if req.IsActive != nil {
		i.IsActive = *req.IsActive
	}

	switch {
	case i.Name == "":
		return "name is required"
	case i.Unit == "":
		return "unit is required"
	case i.CurrentQuantity < 0:
		return "current quantity cannot be negative"
	case i.ThresholdQuantity < 0:
		return "threshold quantity cannot be negative"
	case i.MaxQuantity < 0:
		return "max quantity cannot be negative"
	}
	return ""
}

// List handles GET /api/ingredients
func (h *IngredientHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.ingredientStore.List()
	if err != nil {
		h.logger.Error("list ingredients", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list ingredients")
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(list))
}

// Create handles POST /api/ingredients. A missing type is suggested from the name.
func (h *IngredientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ingredientRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	ing := model.Ingredient{IsActive: true}
	if msg := req.apply(&ing); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	if ing.Type == "" {
		ing.Type = inventory.SuggestCategory(ing.Name)
	}

	created, err := h.ingredientStore.Create(ing)
	if err != nil {
		h.logger.Error("create ingredient", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create ingredient")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// Update handles PUT /api/ingredients/{id}
func (h *IngredientHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.ingredientStore.GetByID(id)
	if err != nil {
		h.logger.Error("get ingredient", "ingredient_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get ingredient")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "ingredient not found")
		return
	}

	var req ingredientRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := req.apply(existing); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	updated, err := h.ingredientStore.Update(*existing)
	if err != nil {
		h.logger.Error("update ingredient", "ingredient_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update ingredient")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Types handles GET /api/ingredients/types
func (h *IngredientHandler) Types(w http.ResponseWriter, r *http.Request) {
	types, err := h.ingredientStore.ListTypes()
	if err != nil {
		h.logger.Error("list ingredient types", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list ingredient types")
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(types))
}

// Percentages handles GET /api/ingredients/calc/percentages
func (h *IngredientHandler) Percentages(w http.ResponseWriter, r *http.Request) {
	list, err := h.ingredientStore.List()
	if err != nil {
		h.logger.Error("list ingredients", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list ingredients")
		return
	}
	levels := make([]model.IngredientLevel, 0, len(list))
	for _, i := range list {
		levels = append(levels, model.IngredientLevel{
			ID:              i.ID,
			Name:            i.Name,
			CurrentQuantity: i.CurrentQuantity,
			MaxQuantity:     i.MaxQuantity,
			Percentage:      i.StockPercentage(),
		})
	}
	writeJSON(w, http.StatusOK, levels)
}

// LowStock handles GET /api/inventory/low-stock
func (h *IngredientHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	list, err := h.ingredientStore.ListLowStock()
	if err != nil {
		h.logger.Error("list low stock", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list low stock ingredients")
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(list))
}
