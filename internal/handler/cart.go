package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dukerupert/smartkitchen/internal/auth"
	"github.com/dukerupert/smartkitchen/internal/model"
	"github.com/dukerupert/smartkitchen/internal/store"
	"github.com/shopspring/decimal"
)

type CartHandler struct {
	cartStore *store.CartStore
	menuStore *store.MenuItemStore
	logger    *slog.Logger
}

func NewCartHandler(cs *store.CartStore, ms *store.MenuItemStore, logger *slog.Logger) *CartHandler {
	return &CartHandler{cartStore: cs, menuStore: ms, logger: logger}
}

type cartRequest struct {
	MenuItemID int64 `json:"menu_item_id"`
	Quantity   int   `json:"quantity"`
}

type cartResponse struct {
	*model.Cart
	Total decimal.Decimal `json:"total"`
}

func (h *CartHandler) respond(w http.ResponseWriter, c *model.Cart) {
	c.Items = emptyIfNil(c.Items)
	writeJSON(w, http.StatusOK, cartResponse{Cart: c, Total: c.Total()})
}

// Get handles GET /api/cart
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.cartStore.Get(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("get cart", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get cart")
		return
	}
	h.respond(w, c)
}

// Add handles POST /api/cart/add
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req cartRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 0 {
		writeError(w, http.StatusBadRequest, "quantity must be positive")
		return
	}

	item, err := h.menuStore.GetByID(req.MenuItemID)
	if err != nil {
		h.logger.Error("get menu item", "menu_item_id", req.MenuItemID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to add to cart")
		return
	}
	if item == nil {
		writeError(w, http.StatusNotFound, "menu item not found")
		return
	}
	if !item.IsAvailable {
		writeError(w, http.StatusBadRequest, item.Name+" is not available")
		return
	}

	c, err := h.cartStore.Add(auth.UserID(r.Context()), req.MenuItemID, req.Quantity)
	if err != nil {
		h.logger.Error("add to cart", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to add to cart")
		return
	}
	h.respond(w, c)
}

// Update handles PUT /api/cart/update. A quantity of zero removes the item.
func (h *CartHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req cartRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	c, err := h.cartStore.SetQuantity(auth.UserID(r.Context()), req.MenuItemID, req.Quantity)
	if err != nil {
		h.logger.Error("update cart", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update cart")
		return
	}
	h.respond(w, c)
}

// Remove handles DELETE /api/cart/remove?menu_item_id=
func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.URL.Query().Get("menu_item_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid menu_item_id")
		return
	}
	c, err := h.cartStore.Remove(auth.UserID(r.Context()), id)
	if err != nil {
		h.logger.Error("remove from cart", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to remove from cart")
		return
	}
	h.respond(w, c)
}
