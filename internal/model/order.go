package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidStatus     = errors.New("invalid order status")
	ErrInvalidTransition = errors.New("invalid order status transition")
)

type OrderStatus string

const (
	StatusPlaced    OrderStatus = "Placed"
	StatusConfirmed OrderStatus = "Confirmed"
	StatusPreparing OrderStatus = "Preparing"
	StatusReady     OrderStatus = "Ready"
	StatusAssigned  OrderStatus = "Assigned"
	StatusOnTheWay  OrderStatus = "OnTheWay"
	StatusDelivered OrderStatus = "Delivered"
	StatusCancelled OrderStatus = "Cancelled"
)

// statusRank orders the delivery sequence. Cancelled sits outside it.
var statusRank = map[OrderStatus]int{
	StatusPlaced:    0,
	StatusConfirmed: 1,
	StatusPreparing: 2,
	StatusReady:     3,
	StatusAssigned:  4,
	StatusOnTheWay:  5,
	StatusDelivered: 6,
}

// ParseOrderStatus accepts exactly the known status names.
func ParseOrderStatus(s string) (OrderStatus, error) {
	st := OrderStatus(s)
	if st == StatusCancelled {
		return st, nil
	}
	if _, ok := statusRank[st]; ok {
		return st, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// Terminal reports whether no further transitions are allowed.
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransitionTo allows forward moves along the delivery sequence and
// cancellation before a delivery partner has picked the order up.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s.Terminal() {
		return false
	}
	if next == StatusCancelled {
		return statusRank[s] <= statusRank[StatusReady]
	}
	nextRank, ok := statusRank[next]
	if !ok {
		return false
	}
	return nextRank > statusRank[s]
}

// UnmarshalText rejects unknown statuses so JSON decoding validates at the boundary.
func (s *OrderStatus) UnmarshalText(b []byte) error {
	st, err := ParseOrderStatus(string(b))
	if err != nil {
		return err
	}
	*s = st
	return nil
}

type Order struct {
	ID                  int64           `json:"id" db:"id"`
	UserID              int64           `json:"user_id" db:"user_id"`
	CustomerName        string          `json:"customer_name" db:"customer_name"`
	CustomerPhone       string          `json:"customer_phone" db:"customer_phone"`
	OrderTime           time.Time       `json:"order_time" db:"order_time"`
	Status              OrderStatus     `json:"status" db:"status"`
	TotalAmount         decimal.Decimal `json:"total_amount" db:"total_amount"`
	DeliveryPartnerID   *int64          `json:"delivery_partner_id" db:"delivery_partner_id"`
	AssignedAt          *time.Time      `json:"assigned_at" db:"assigned_at"`
	DeliveredAt         *time.Time      `json:"delivered_at" db:"delivered_at"`
	InventoryDeductedAt *time.Time      `json:"inventory_deducted_at" db:"inventory_deducted_at"`
	CreatedAt           time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at" db:"updated_at"`
	Address
	Items []OrderItem `json:"order_items" db:"-"`
}

// OrderItem is one line of an order. MenuItemID is nil once the menu item is deleted.
type OrderItem struct {
	ID           int64           `json:"id" db:"id"`
	OrderID      int64           `json:"order_id" db:"order_id"`
	MenuItemID   *int64          `json:"menu_item_id" db:"menu_item_id"`
	ProductName  string          `json:"product_name" db:"product_name"`
	Quantity     int             `json:"quantity" db:"quantity"`
	Price        decimal.Decimal `json:"price" db:"price"`
	MenuCategory string          `json:"menu_item_category" db:"menu_item_category"`
	MenuImageURL string          `json:"menu_item_image_url" db:"menu_item_image_url"`
	MenuIsVeg    *bool           `json:"menu_item_is_veg" db:"menu_item_is_veg"`
}
