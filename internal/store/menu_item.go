package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/smartkitchen/internal/model"
	"github.com/jmoiron/sqlx"
)

type MenuItemStore struct {
	db *sqlx.DB
}

func NewMenuItemStore(db *sql.DB) *MenuItemStore {
	return &MenuItemStore{db: wrap(db)}
}

const menuItemCols = `id, owner_id, name, description, price, category, is_veg, prep_minutes,
	pack_minutes, delivery_minutes, image_url, is_available, created_at`

func (s *MenuItemStore) Create(m model.MenuItem) (*model.MenuItem, error) {
	result, err := s.db.Exec(
		`INSERT INTO menu_items (owner_id, name, description, price, category, is_veg,
		 prep_minutes, pack_minutes, delivery_minutes, image_url, is_available)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.OwnerID, m.Name, m.Description, m.Price.String(), m.Category, boolInt(m.IsVeg),
		m.PrepMinutes, m.PackMinutes, m.DeliveryMinutes, m.ImageURL, boolInt(m.IsAvailable),
	)
	if err != nil {
		return nil, fmt.Errorf("insert menu item: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *MenuItemStore) GetByID(id int64) (*model.MenuItem, error) {
	var m model.MenuItem
	err := s.db.Get(&m, `SELECT `+menuItemCols+` FROM menu_items WHERE id = ?`, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get menu item: %w", err)
	}
	return &m, nil
}

// List returns menu items, optionally narrowed to one category.
func (s *MenuItemStore) List(category string) ([]model.MenuItem, error) {
	var items []model.MenuItem
	var err error
	if category == "" {
		err = s.db.Select(&items, `SELECT `+menuItemCols+` FROM menu_items ORDER BY category ASC, name ASC`)
	} else {
		err = s.db.Select(&items,
			`SELECT `+menuItemCols+` FROM menu_items WHERE category = ? ORDER BY name ASC`, category)
	}
	if err != nil {
		return nil, fmt.Errorf("list menu items: %w", err)
	}
	return items, nil
}

func (s *MenuItemStore) Update(m model.MenuItem) (*model.MenuItem, error) {
	_, err := s.db.Exec(
		`UPDATE menu_items SET name = ?, description = ?, price = ?, category = ?, is_veg = ?,
		 prep_minutes = ?, pack_minutes = ?, delivery_minutes = ?, image_url = ?, is_available = ?
		 WHERE id = ?`,
		m.Name, m.Description, m.Price.String(), m.Category, boolInt(m.IsVeg),
		m.PrepMinutes, m.PackMinutes, m.DeliveryMinutes, m.ImageURL, boolInt(m.IsAvailable), m.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update menu item: %w", err)
	}
	return s.GetByID(m.ID)
}

// Delete removes the menu item. Its recipes cascade and past order lines keep their snapshot.
func (s *MenuItemStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM menu_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete menu item: %w", err)
	}
	return nil
}
