package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/smartkitchen/internal/auth"
	"github.com/dukerupert/smartkitchen/internal/model"
	"github.com/dukerupert/smartkitchen/internal/store"
	"github.com/shopspring/decimal"
)

type MenuHandler struct {
	menuStore *store.MenuItemStore
	logger    *slog.Logger
}

func NewMenuHandler(ms *store.MenuItemStore, logger *slog.Logger) *MenuHandler {
	return &MenuHandler{menuStore: ms, logger: logger}
}

type menuItemRequest struct {
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price"`
	Category        string          `json:"category"`
	IsVeg           bool            `json:"is_veg"`
	PrepMinutes     int             `json:"prep_minutes"`
	PackMinutes     int             `json:"pack_minutes"`
	DeliveryMinutes int             `json:"delivery_minutes"`
	ImageURL        string          `json:"image_url"`
	IsAvailable     *bool           `json:"is_available"`
}

func (req menuItemRequest) validate() string {
	switch {
	case strings.TrimSpace(req.Name) == "":
		return "name is required"
	case !req.Price.IsPositive():
		return "price must be greater than zero"
	case req.PrepMinutes < 0 || req.PackMinutes < 0 || req.DeliveryMinutes < 0:
		return "times cannot be negative"
	}
	return ""
}

func (req menuItemRequest) apply(m *model.MenuItem) {
	m.Name = strings.TrimSpace(req.Name)
	m.Description = req.Description
	m.Price = req.Price
	m.Category = strings.TrimSpace(req.Category)
	m.IsVeg = req.IsVeg
	m.PrepMinutes = req.PrepMinutes
	m.PackMinutes = req.PackMinutes
	m.DeliveryMinutes = req.DeliveryMinutes
	m.ImageURL = req.ImageURL
	if req.IsAvailable != nil {
		m.IsAvailable = *req.IsAvailable
	}
}

// List handles GET /api/menu?category=
func (h *MenuHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.menuStore.List(strings.TrimSpace(r.URL.Query().Get("category")))
	if err != nil {
		h.logger.Error("list menu", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list menu")
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(items))
}

// Create handles POST /api/menu
func (h *MenuHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req menuItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	ownerID := auth.UserID(r.Context())
	item := model.MenuItem{OwnerID: &ownerID, IsAvailable: true}
	req.apply(&item)

	created, err := h.menuStore.Create(item)
	if err != nil {
		h.logger.Error("create menu item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create menu item")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// Update handles PUT /api/menu/{id}
func (h *MenuHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.menuStore.GetByID(id)
	if err != nil {
		h.logger.Error("get menu item", "menu_item_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get menu item")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "menu item not found")
		return
	}

	var req menuItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	req.apply(existing)

	updated, err := h.menuStore.Update(*existing)
	if err != nil {
		h.logger.Error("update menu item", "menu_item_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update menu item")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/menu/{id}
func (h *MenuHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.menuStore.GetByID(id)
	if err != nil {
		h.logger.Error("get menu item", "menu_item_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get menu item")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "menu item not found")
		return
	}

	if err := h.menuStore.Delete(id); err != nil {
		h.logger.Error("delete menu item", "menu_item_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete menu item")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
