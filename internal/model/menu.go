package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type MenuItem struct {
	ID              int64           `json:"id" db:"id"`
	OwnerID         *int64          `json:"owner_id" db:"owner_id"`
	Name            string          `json:"name" db:"name"`
	Description     string          `json:"description" db:"description"`
	Price           decimal.Decimal `json:"price" db:"price"`
	Category        string          `json:"category" db:"category"`
	IsVeg           bool            `json:"is_veg" db:"is_veg"`
	PrepMinutes     int             `json:"prep_minutes" db:"prep_minutes"`
	PackMinutes     int             `json:"pack_minutes" db:"pack_minutes"`
	DeliveryMinutes int             `json:"delivery_minutes" db:"delivery_minutes"`
	ImageURL        string          `json:"image_url" db:"image_url"`
	IsAvailable     bool            `json:"is_available" db:"is_available"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
}

// BestSeller aggregates order lines by product name.
type BestSeller struct {
	ProductName  string          `json:"product_name" db:"product_name"`
	TotalSold    int64           `json:"total_sold" db:"total_sold"`
	TotalRevenue decimal.Decimal `json:"total_revenue" db:"total_revenue"`
}
