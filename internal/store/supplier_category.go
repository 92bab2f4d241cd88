package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dukerupert/smartkitchen/internal/model"
	"github.com/jmoiron/sqlx"
)

type SupplierCategoryStore struct {
	db *sqlx.DB
}

func NewSupplierCategoryStore(db *sql.DB) *SupplierCategoryStore {
	return &SupplierCategoryStore{db: wrap(db)}
}

const supplierCategoryCols = `id, user_id, category_name, created_at, updated_at`

func (s *SupplierCategoryStore) List() ([]model.SupplierCategory, error) {
	var list []model.SupplierCategory
	if err := s.db.Select(&list, `SELECT `+supplierCategoryCols+` FROM supplier_categories ORDER BY category_name ASC`); err != nil {
		return nil, fmt.Errorf("list supplier categories: %w", err)
	}
	return list, nil
}

func (s *SupplierCategoryStore) ListByUser(userID int64) ([]model.SupplierCategory, error) {
	var list []model.SupplierCategory
	err := s.db.Select(&list,
		`SELECT `+supplierCategoryCols+` FROM supplier_categories WHERE user_id = ? ORDER BY category_name ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list supplier categories by user: %w", err)
	}
	return list, nil
}

// GetByCategory returns the assignment for a category, or nil if none exists.
func (s *SupplierCategoryStore) GetByCategory(category string) (*model.SupplierCategory, error) {
	var sc model.SupplierCategory
	err := s.db.Get(&sc, `SELECT `+supplierCategoryCols+` FROM supplier_categories WHERE category_name = ?`, category)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get supplier category: %w", err)
	}
	return &sc, nil
}

// Assign gives a category to a supplier. Assigning a category the supplier
// already holds is a no-op. A category held by someone else is ErrCategoryTaken.
func (s *SupplierCategoryStore) Assign(userID int64, category string) (*model.SupplierCategory, error) {
	tx, err := s.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := assignCategory(tx, userID, category); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return s.GetByCategory(strings.TrimSpace(category))
}

// ReplaceForUser sets the supplier's categories to exactly the given list.
func (s *SupplierCategoryStore) ReplaceForUser(userID int64, categories []string) ([]model.SupplierCategory, error) {
	tx, err := s.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM supplier_categories WHERE user_id = ?`, userID); err != nil {
		return nil, fmt.Errorf("delete supplier categories: %w", err)
	}
	for _, c := range categories {
		if err := assignCategory(tx, userID, c); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return s.ListByUser(userID)
}

func assignCategory(tx *sqlx.Tx, userID int64, category string) error {
	category = strings.TrimSpace(category)
	if category == "" {
		return errors.New("category name is required")
	}

	var owner int64
	err := tx.Get(&owner, `SELECT user_id FROM supplier_categories WHERE category_name = ?`, category)
	switch {
	case err == sql.ErrNoRows:
	case err != nil:
		return fmt.Errorf("get category owner: %w", err)
	case owner == userID:
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrCategoryTaken, category)
	}

	_, err = tx.Exec(`INSERT INTO supplier_categories (user_id, category_name) VALUES (?, ?)`, userID, category)
	if err != nil {
		return fmt.Errorf("insert supplier category: %w", err)
	}
	return nil
}

func (s *SupplierCategoryStore) DeleteCategory(category string) error {
	_, err := s.db.Exec(`DELETE FROM supplier_categories WHERE category_name = ?`, category)
	if err != nil {
		return fmt.Errorf("delete supplier category: %w", err)
	}
	return nil
}

func (s *SupplierCategoryStore) DeleteForUser(userID int64) error {
	_, err := s.db.Exec(`DELETE FROM supplier_categories WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("delete supplier categories: %w", err)
	}
	return nil
}
