package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/dukerupert/smartkitchen/internal/model"
	"github.com/jmoiron/sqlx"
)

type UserStore struct {
	db *sqlx.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: wrap(db)}
}

const userCols = `id, name, email, password_hash, phone, role, restaurant_name,
	address_label, address_full, address_apartment, address_instructions,
	is_active, created_at, updated_at`

func (s *UserStore) Create(name, email, passwordHash, phone string, role model.Role) (*model.User, error) {
	result, err := s.db.Exec(
		`INSERT INTO users (name, email, password_hash, phone, role) VALUES (?, ?, ?, ?, ?)`,
		name, strings.ToLower(email), passwordHash, phone, role,
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *UserStore) GetByID(id int64) (*model.User, error) {
	var u model.User
	err := s.db.Get(&u, `SELECT `+userCols+` FROM users WHERE id = ?`, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func (s *UserStore) GetByEmail(email string) (*model.User, error) {
	var u model.User
	err := s.db.Get(&u, `SELECT `+userCols+` FROM users WHERE email = ?`, strings.ToLower(email))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return &u, nil
}

func (s *UserStore) ListByRole(role model.Role) ([]model.User, error) {
	var users []model.User
	err := s.db.Select(&users, `SELECT `+userCols+` FROM users WHERE role = ? ORDER BY name ASC`, role)
	if err != nil {
		return nil, fmt.Errorf("list users by role: %w", err)
	}
	return users, nil
}

// UpdateProfile replaces the editable profile fields. Email and role are fixed at signup.
func (s *UserStore) UpdateProfile(id int64, name, phone, restaurantName string, addr model.Address) (*model.User, error) {
	_, err := s.db.Exec(
		`UPDATE users SET name = ?, phone = ?, restaurant_name = ?,
		 address_label = ?, address_full = ?, address_apartment = ?, address_instructions = ?,
		 updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		name, phone, restaurantName, addr.Label, addr.Full, addr.Apartment, addr.Instructions, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return s.GetByID(id)
}

func (s *UserStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}
