package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dukerupert/smartkitchen/internal/auth"
	"github.com/dukerupert/smartkitchen/internal/inventory"
	"github.com/dukerupert/smartkitchen/internal/model"
	"github.com/dukerupert/smartkitchen/internal/store"
)

type OrderHandler struct {
	orderStore *store.OrderStore
	menuStore  *store.MenuItemStore
	userStore  *store.UserStore
	cartStore  *store.CartStore
	inventory  *inventory.Service
	notifier   *Notifier
	logger     *slog.Logger
}

func NewOrderHandler(
	ors *store.OrderStore,
	ms *store.MenuItemStore,
	us *store.UserStore,
	cs *store.CartStore,
	inv *inventory.Service,
	notifier *Notifier,
	logger *slog.Logger,
) *OrderHandler {
	return &OrderHandler{
		orderStore: ors,
		menuStore:  ms,
		userStore:  us,
		cartStore:  cs,
		inventory:  inv,
		notifier:   notifier,
		logger:     logger,
	}
}

type orderLineRequest struct {
	MenuItemID int64 `json:"menu_item_id"`
	Quantity   int   `json:"quantity"`
}

type createOrderRequest struct {
	Items []orderLineRequest `json:"items"`
	model.Address
}

type statusRequest struct {
	Status string `json:"status"`
}

type assignRequest struct {
	DeliveryPartnerID int64 `json:"delivery_partner_id"`
}

type deductResponse struct {
	Order  *model.Order      `json:"order"`
	Result *inventory.Result `json:"inventory"`
}

// List handles GET /api/orders
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orderStore.List()
	if err != nil {
		h.logger.Error("list orders", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(orders))
}

// Mine handles GET /api/orders/my. Delivery partners see the orders assigned to them.
func (h *OrderHandler) Mine(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	var orders []model.Order
	var err error
	if ac.Role == model.RoleDeliveryPartner {
		orders, err = h.orderStore.ListByPartner(ac.UserID)
	} else {
		orders, err = h.orderStore.ListByUser(ac.UserID)
	}
	if err != nil {
		h.logger.Error("list my orders", "user_id", ac.UserID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(orders))
}

// Get handles GET /api/orders/{id}
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	o, ok := h.loadOrder(w, r)
	if !ok {
		return
	}
	if !canView(r, o) {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func canView(r *http.Request, o *model.Order) bool {
	ac, _ := auth.FromContext(r.Context())
	switch {
	case ac.Role == model.RoleOwner:
		return true
	case o.UserID == ac.UserID:
		return true
	case o.DeliveryPartnerID != nil && *o.DeliveryPartnerID == ac.UserID:
		return true
	}
	return false
}

// Create handles POST /api/orders. Without items in the body the caller's cart
// is ordered. Prices come from the menu and the cart is emptied afterwards.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req createOrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if len(req.Items) == 0 {
		cart, err := h.cartStore.Get(userID)
		if err != nil {
			h.logger.Error("get cart", "user_id", userID, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to create order")
			return
		}
		for _, it := range cart.Items {
			req.Items = append(req.Items, orderLineRequest{MenuItemID: it.MenuItemID, Quantity: it.Quantity})
		}
	}
	if len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "order has no items")
		return
	}

	order := model.Order{UserID: userID, Address: req.Address}
	for _, line := range req.Items {
		if line.Quantity <= 0 {
			writeError(w, http.StatusBadRequest, "quantity must be positive")
			return
		}
		item, err := h.menuStore.GetByID(line.MenuItemID)
		if err != nil {
			h.logger.Error("get menu item", "menu_item_id", line.MenuItemID, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to create order")
			return
		}
		if item == nil {
			writeError(w, http.StatusBadRequest, "menu item "+strconv.FormatInt(line.MenuItemID, 10)+" not found")
			return
		}
		if !item.IsAvailable {
			writeError(w, http.StatusBadRequest, item.Name+" is not available")
			return
		}
		id := item.ID
		order.Items = append(order.Items, model.OrderItem{
			MenuItemID:  &id,
			ProductName: item.Name,
			Quantity:    line.Quantity,
			Price:       item.Price,
		})
	}

	if order.Address.Full == "" {
		user, err := h.userStore.GetByID(userID)
		if err != nil {
			h.logger.Error("get user", "user_id", userID, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to create order")
			return
		}
		if user != nil {
			order.Address = user.Address
		}
	}

	created, err := h.orderStore.Create(order)
	if err != nil {
		h.logger.Error("create order", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create order")
		return
	}
	if err := h.cartStore.Clear(userID); err != nil {
		h.logger.Warn("clear cart after order", "user_id", userID, "error", err)
	}

	h.logger.Info("order placed", "order_id", created.ID, "user_id", userID, "total", created.TotalAmount.String())
	h.notifier.OrderChanged(r.Context(), created)
	writeJSON(w, http.StatusCreated, created)
}

// UpdateStatus handles PUT /api/orders/{id}/status
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req statusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	next, err := model.ParseOrderStatus(req.Status)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	o, err := h.orderStore.UpdateStatus(id, next)
	if !h.writeStatusError(w, id, o, err) {
		return
	}
	h.logger.Info("order status changed", "order_id", id, "status", o.Status)
	h.notifier.OrderChanged(r.Context(), o)
	writeJSON(w, http.StatusOK, o)
}

// Assign handles PUT /api/orders/{id}/assign
func (h *OrderHandler) Assign(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req assignRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	partner, err := h.userStore.GetByID(req.DeliveryPartnerID)
	if err != nil {
		h.logger.Error("get delivery partner", "user_id", req.DeliveryPartnerID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to assign order")
		return
	}
	if partner == nil || partner.Role != model.RoleDeliveryPartner {
		writeError(w, http.StatusBadRequest, "delivery partner not found")
		return
	}

	o, err := h.orderStore.Assign(id, partner.ID)
	if !h.writeStatusError(w, id, o, err) {
		return
	}
	h.logger.Info("order assigned", "order_id", id, "delivery_partner_id", partner.ID)
	h.notifier.OrderChanged(r.Context(), o)
	writeJSON(w, http.StatusOK, o)
}

// writeStatusError reports whether the status change succeeded, writing the
// error response when it did not.
func (h *OrderHandler) writeStatusError(w http.ResponseWriter, id int64, o *model.Order, err error) bool {
	switch {
	case errors.Is(err, model.ErrInvalidTransition):
		writeError(w, http.StatusConflict, err.Error())
		return false
	case err != nil:
		h.logger.Error("update order", "order_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update order")
		return false
	case o == nil:
		writeError(w, http.StatusNotFound, "order not found")
		return false
	}
	return true
}

// UpdateInventory handles POST /api/orders/{id}/update-inventory
func (h *OrderHandler) UpdateInventory(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	res, err := h.inventory.Deduct(r.Context(), id)
	if err != nil {
		h.writeDeductError(w, id, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   "Inventory updated successfully",
		"inventory": res,
	})
}

// Accept handles POST /api/orders/{id}/accept: deducts stock and confirms the
// order in one transaction.
func (h *OrderHandler) Accept(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	res, err := h.inventory.Accept(r.Context(), id)
	if err != nil {
		h.writeDeductError(w, id, err)
		return
	}

	updated, err := h.orderStore.GetByID(id)
	if err != nil || updated == nil {
		h.logger.Error("get accepted order", "order_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get order")
		return
	}
	h.logger.Info("order accepted", "order_id", id, "ingredients", len(res.Changes))
	h.notifier.OrderChanged(r.Context(), updated)
	writeJSON(w, http.StatusOK, deductResponse{Order: updated, Result: res})
}

func (h *OrderHandler) writeDeductError(w http.ResponseWriter, orderID int64, err error) {
	var short *inventory.InsufficientError
	switch {
	case errors.Is(err, inventory.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, "order not found")
	case errors.Is(err, inventory.ErrEmptyOrder):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &short):
		h.logger.Info("order rejected for stock", "order_id", orderID, "ingredient_id", short.IngredientID,
			"need", short.Need, "have", short.Have)
		writeError(w, http.StatusBadRequest, short.Error())
	case errors.Is(err, inventory.ErrAlreadyDeducted), errors.Is(err, inventory.ErrConflict),
		errors.Is(err, inventory.ErrNotPlaced):
		writeError(w, http.StatusConflict, err.Error())
	default:
		h.logger.Error("deduct inventory", "order_id", orderID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update inventory")
	}
}

func (h *OrderHandler) loadOrder(w http.ResponseWriter, r *http.Request) (*model.Order, bool) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return nil, false
	}
	o, err := h.orderStore.GetByID(id)
	if err != nil {
		h.logger.Error("get order", "order_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get order")
		return nil, false
	}
	if o == nil {
		writeError(w, http.StatusNotFound, "order not found")
		return nil, false
	}
	return o, true
}

// BestSellers handles GET /api/best-sellers?limit=5
func (h *OrderHandler) BestSellers(w http.ResponseWriter, r *http.Request) {
	limit := 5
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 || n > 100 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	list, err := h.orderStore.BestSellers(limit)
	if err != nil {
		h.logger.Error("best sellers", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to compute best sellers")
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(list))
}
