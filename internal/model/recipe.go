package model

import "time"

type Recipe struct {
	ID               int64     `json:"id" db:"id"`
	MenuItemID       int64     `json:"menu_item_id" db:"menu_item_id"`
	IngredientID     int64     `json:"ingredient_id" db:"ingredient_id"`
	QuantityRequired float64   `json:"quantity_required" db:"quantity_required"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// RecipeDetail is a recipe joined with its menu item and ingredient names.
type RecipeDetail struct {
	Recipe
	MenuItemName        string `json:"menu_item_name" db:"menu_item_name"`
	MenuItemCategory    string `json:"menu_item_category" db:"menu_item_category"`
	MenuItemDescription string `json:"menu_item_description" db:"menu_item_description"`
	IngredientName      string `json:"ingredient_name" db:"ingredient_name"`
	IngredientUnit      string `json:"ingredient_unit" db:"ingredient_unit"`
}
