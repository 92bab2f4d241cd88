package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/smartkitchen/internal/model"
	"github.com/jmoiron/sqlx"
)

type CartStore struct {
	db *sqlx.DB
}

func NewCartStore(db *sql.DB) *CartStore {
	return &CartStore{db: wrap(db)}
}

// Get returns the user's cart with its items, creating an empty cart on first use.
func (s *CartStore) Get(userID int64) (*model.Cart, error) {
	_, err := s.db.Exec(`INSERT INTO carts (user_id) VALUES (?) ON CONFLICT(user_id) DO NOTHING`, userID)
	if err != nil {
		return nil, fmt.Errorf("ensure cart: %w", err)
	}

	var c model.Cart
	if err := s.db.Get(&c, `SELECT id, user_id, created_at FROM carts WHERE user_id = ?`, userID); err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	err = s.db.Select(&c.Items,
		`SELECT ci.id, ci.cart_id, ci.menu_item_id, m.name, m.price, ci.quantity
		 FROM cart_items ci JOIN menu_items m ON m.id = ci.menu_item_id
		 WHERE ci.cart_id = ? ORDER BY ci.id ASC`, c.ID)
	if err != nil {
		return nil, fmt.Errorf("list cart items: %w", err)
	}
	return &c, nil
}

// Add puts quantity units of the menu item in the cart, adding to any already there.
func (s *CartStore) Add(userID, menuItemID int64, quantity int) (*model.Cart, error) {
	c, err := s.Get(userID)
	if err != nil {
		return nil, err
	}
	_, err = s.db.Exec(
		`INSERT INTO cart_items (cart_id, menu_item_id, quantity) VALUES (?, ?, ?)
		 ON CONFLICT(cart_id, menu_item_id) DO UPDATE SET quantity = quantity + excluded.quantity`,
		c.ID, menuItemID, quantity,
	)
	if err != nil {
		return nil, fmt.Errorf("add cart item: %w", err)
	}
	return s.Get(userID)
}

// SetQuantity replaces an item's quantity. Zero or less removes it.
func (s *CartStore) SetQuantity(userID, menuItemID int64, quantity int) (*model.Cart, error) {
	if quantity <= 0 {
		return s.Remove(userID, menuItemID)
	}
	_, err := s.db.Exec(
		`UPDATE cart_items SET quantity = ?
		 WHERE menu_item_id = ? AND cart_id = (SELECT id FROM carts WHERE user_id = ?)`,
		quantity, menuItemID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("update cart item: %w", err)
	}
	return s.Get(userID)
}

func (s *CartStore) Remove(userID, menuItemID int64) (*model.Cart, error) {
	_, err := s.db.Exec(
		`DELETE FROM cart_items WHERE menu_item_id = ? AND cart_id = (SELECT id FROM carts WHERE user_id = ?)`,
		menuItemID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("remove cart item: %w", err)
	}
	return s.Get(userID)
}

func (s *CartStore) Clear(userID int64) error {
	_, err := s.db.Exec(`DELETE FROM cart_items WHERE cart_id = (SELECT id FROM carts WHERE user_id = ?)`, userID)
	if err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
