package model

import "time"

type SupplierCategory struct {
	ID           int64     `json:"id" db:"id"`
	UserID       int64     `json:"user_id" db:"user_id"`
	CategoryName string    `json:"category_name" db:"category_name"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// SupplierMessage records one ingredient included in a successfully sent alert.
// A nil SupplierID means the alert went to the default number.
type SupplierMessage struct {
	ID             int64     `json:"id" db:"id"`
	SupplierID     *int64    `json:"supplier_id" db:"supplier_id"`
	IngredientName string    `json:"ingredient_name" db:"ingredient_name"`
	IngredientType string    `json:"ingredient_type" db:"ingredient_type"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}
