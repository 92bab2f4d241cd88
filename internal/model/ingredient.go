package model

import "time"

// DefaultMaxQuantity is applied to new ingredients created without a capacity.
const DefaultMaxQuantity = 10000.0

type Ingredient struct {
	ID                int64     `json:"id" db:"id"`
	Name              string    `json:"name" db:"name"`
	Type              string    `json:"ingredient_type" db:"ingredient_type"`
	Unit              string    `json:"unit" db:"unit"`
	CurrentQuantity   float64   `json:"current_quantity" db:"current_quantity"`
	MaxQuantity       float64   `json:"max_quantity" db:"max_quantity"`
	ThresholdQuantity float64   `json:"threshold_quantity" db:"threshold_quantity"`
	IsActive          bool      `json:"is_active" db:"is_active"`
	Version           int64     `json:"version" db:"version"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}

// LowStock reports whether the ingredient is at or below its threshold.
func (i Ingredient) LowStock() bool {
	return i.CurrentQuantity <= i.ThresholdQuantity
}

// StockPercentage is nil when the ingredient has no usable capacity.
func (i Ingredient) StockPercentage() *float64 {
	if i.MaxQuantity <= 0 {
		return nil
	}
	p := i.CurrentQuantity / i.MaxQuantity * 100
	return &p
}

type IngredientLevel struct {
	ID              int64    `json:"ingredient_id"`
	Name            string   `json:"name"`
	CurrentQuantity float64  `json:"current_quantity"`
	MaxQuantity     float64  `json:"max_quantity"`
	Percentage      *float64 `json:"percentage"`
}
