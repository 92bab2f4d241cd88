package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/smartkitchen/internal/auth"
	"github.com/dukerupert/smartkitchen/internal/model"
	"github.com/dukerupert/smartkitchen/internal/store"
)

type RestaurantHandler struct {
	restaurantStore *store.RestaurantStore
	logger          *slog.Logger
}

func NewRestaurantHandler(rs *store.RestaurantStore, logger *slog.Logger) *RestaurantHandler {
	return &RestaurantHandler{restaurantStore: rs, logger: logger}
}

type restaurantRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Address     string `json:"address"`
	Phone       string `json:"phone"`
	CuisineType string `json:"cuisine_type"`
	ImageURL    string `json:"image_url"`
	IsOpen      *bool  `json:"is_open"`
}

func (req restaurantRequest) apply(r *model.Restaurant) {
	r.Name = strings.TrimSpace(req.Name)
	r.Description = req.Description
	r.Address = req.Address
	r.Phone = req.Phone
	r.CuisineType = req.CuisineType
	r.ImageURL = req.ImageURL
	if req.IsOpen != nil {
		r.IsOpen = *req.IsOpen
	}
}

// List handles GET /api/restaurants
func (h *RestaurantHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.restaurantStore.List()
	if err != nil {
		h.logger.Error("list restaurants", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list restaurants")
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(list))
}

// ListOpen handles GET /api/restaurants/open
func (h *RestaurantHandler) ListOpen(w http.ResponseWriter, r *http.Request) {
	list, err := h.restaurantStore.ListOpen()
	if err != nil {
		h.logger.Error("list open restaurants", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list restaurants")
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(list))
}

// Search handles GET /api/restaurants/search?name=
func (h *RestaurantHandler) Search(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	list, err := h.restaurantStore.Search(name)
	if err != nil {
		h.logger.Error("search restaurants", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to search restaurants")
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(list))
}

// Mine handles GET /api/owner/restaurant
func (h *RestaurantHandler) Mine(w http.ResponseWriter, r *http.Request) {
	rest, err := h.restaurantStore.GetByOwner(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("get owner restaurant", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get restaurant")
		return
	}
	if rest == nil {
		writeError(w, http.StatusNotFound, "restaurant not found")
		return
	}
	writeJSON(w, http.StatusOK, rest)
}

// Create handles POST /api/owner/restaurant
func (h *RestaurantHandler) Create(w http.ResponseWriter, r *http.Request) {
	ownerID := auth.UserID(r.Context())

	var req restaurantRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	rest := model.Restaurant{OwnerID: ownerID, IsOpen: true}
	req.apply(&rest)
	if rest.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	existing, err := h.restaurantStore.GetByOwner(ownerID)
	if err != nil {
		h.logger.Error("get owner restaurant", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create restaurant")
		return
	}
	if existing != nil {
		writeError(w, http.StatusConflict, "owner already has a restaurant")
		return
	}

	created, err := h.restaurantStore.Create(rest)
	if err != nil {
		h.logger.Error("create restaurant", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create restaurant")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// Update handles PUT /api/owner/restaurant
func (h *RestaurantHandler) Update(w http.ResponseWriter, r *http.Request) {
	existing, err := h.restaurantStore.GetByOwner(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("get owner restaurant", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update restaurant")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "restaurant not found")
		return
	}

	var req restaurantRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.apply(existing)
	if existing.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	updated, err := h.restaurantStore.Update(*existing)
	if err != nil {
		h.logger.Error("update restaurant", "restaurant_id", existing.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update restaurant")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
