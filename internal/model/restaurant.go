package model

import "time"

type Restaurant struct {
	ID          int64     `json:"id" db:"id"`
	OwnerID     int64     `json:"owner_id" db:"owner_id"`
	OwnerName   string    `json:"owner_name" db:"owner_name"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Address     string    `json:"address" db:"address"`
	Phone       string    `json:"phone" db:"phone"`
	CuisineType string    `json:"cuisine_type" db:"cuisine_type"`
	ImageURL    string    `json:"image_url" db:"image_url"`
	Rating      float64   `json:"rating" db:"rating"`
	IsOpen      bool      `json:"is_open" db:"is_open"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
