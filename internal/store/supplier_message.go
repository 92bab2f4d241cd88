package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/smartkitchen/internal/model"
	"github.com/jmoiron/sqlx"
)

// SupplierMessageStore is the append-only ledger behind alert throttling.
type SupplierMessageStore struct {
	db *sqlx.DB
}

func NewSupplierMessageStore(db *sql.DB) *SupplierMessageStore {
	return &SupplierMessageStore{db: wrap(db)}
}

// Record writes one row per ingredient in a single transaction. A nil
// supplierID records a send to the default number.
func (s *SupplierMessageStore) Record(supplierID *int64, items []model.Ingredient, at time.Time) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, it := range items {
		_, err := tx.Exec(
			`INSERT INTO supplier_messages (supplier_id, ingredient_name, ingredient_type, created_at) VALUES (?, ?, ?, ?)`,
			supplierID, it.Name, it.Type, at.UTC(),
		)
		if err != nil {
			return fmt.Errorf("insert supplier message: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// WasSentSince reports whether the recipient was alerted about the ingredient
// strictly after since.
func (s *SupplierMessageStore) WasSentSince(supplierID *int64, ingredientName string, since time.Time) (bool, error) {
	var count int
	err := s.db.Get(&count,
		`SELECT COUNT(*) FROM supplier_messages
		 WHERE supplier_id IS ? AND ingredient_name = ? AND created_at > ?`,
		supplierID, ingredientName, since.UTC(),
	)
	if err != nil {
		return false, fmt.Errorf("check supplier message: %w", err)
	}
	return count > 0, nil
}

func (s *SupplierMessageStore) ListRecent(limit int) ([]model.SupplierMessage, error) {
	var list []model.SupplierMessage
	err := s.db.Select(&list,
		`SELECT id, supplier_id, ingredient_name, ingredient_type, created_at
		 FROM supplier_messages ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list supplier messages: %w", err)
	}
	return list, nil
}
