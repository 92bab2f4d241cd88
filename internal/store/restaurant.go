package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/smartkitchen/internal/model"
	"github.com/jmoiron/sqlx"
)

type RestaurantStore struct {
	db *sqlx.DB
}

func NewRestaurantStore(db *sql.DB) *RestaurantStore {
	return &RestaurantStore{db: wrap(db)}
}

const restaurantSelect = `SELECT r.id, r.owner_id, u.name AS owner_name, r.name, r.description,
	r.address, r.phone, r.cuisine_type, r.image_url, r.rating, r.is_open, r.created_at, r.updated_at
	FROM restaurants r JOIN users u ON u.id = r.owner_id`

// Create registers the owner's restaurant. An owner has at most one.
func (s *RestaurantStore) Create(r model.Restaurant) (*model.Restaurant, error) {
	result, err := s.db.Exec(
		`INSERT INTO restaurants (owner_id, name, description, address, phone, cuisine_type, image_url, is_open)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.OwnerID, r.Name, r.Description, r.Address, r.Phone, r.CuisineType, r.ImageURL, boolInt(r.IsOpen),
	)
	if err != nil {
		return nil, fmt.Errorf("insert restaurant: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *RestaurantStore) GetByID(id int64) (*model.Restaurant, error) {
	var r model.Restaurant
	err := s.db.Get(&r, restaurantSelect+` WHERE r.id = ?`, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get restaurant: %w", err)
	}
	return &r, nil
}

func (s *RestaurantStore) GetByOwner(ownerID int64) (*model.Restaurant, error) {
	var r model.Restaurant
	err := s.db.Get(&r, restaurantSelect+` WHERE r.owner_id = ?`, ownerID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get restaurant by owner: %w", err)
	}
	return &r, nil
}

func (s *RestaurantStore) List() ([]model.Restaurant, error) {
	var list []model.Restaurant
	if err := s.db.Select(&list, restaurantSelect+` ORDER BY r.name ASC`); err != nil {
		return nil, fmt.Errorf("list restaurants: %w", err)
	}
	return list, nil
}

func (s *RestaurantStore) ListOpen() ([]model.Restaurant, error) {
	var list []model.Restaurant
	if err := s.db.Select(&list, restaurantSelect+` WHERE r.is_open = 1 ORDER BY r.name ASC`); err != nil {
		return nil, fmt.Errorf("list open restaurants: %w", err)
	}
	return list, nil
}

// Search matches restaurant names by substring. LIKE is case-insensitive for ASCII.
func (s *RestaurantStore) Search(name string) ([]model.Restaurant, error) {
	var list []model.Restaurant
	err := s.db.Select(&list,
		restaurantSelect+` WHERE r.name LIKE '%' || ? || '%' ORDER BY r.name ASC`, name)
	if err != nil {
		return nil, fmt.Errorf("search restaurants: %w", err)
	}
	return list, nil
}

func (s *RestaurantStore) Update(r model.Restaurant) (*model.Restaurant, error) {
	_, err := s.db.Exec(
		`UPDATE restaurants SET name = ?, description = ?, address = ?, phone = ?, cuisine_type = ?,
		 image_url = ?, is_open = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		r.Name, r.Description, r.Address, r.Phone, r.CuisineType, r.ImageURL, boolInt(r.IsOpen), r.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update restaurant: %w", err)
	}
	return s.GetByID(r.ID)
}
