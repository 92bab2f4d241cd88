package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/smartkitchen/internal/model"
	"github.com/jmoiron/sqlx"
)

// StockStore runs inventory reads and writes inside one transaction.
type StockStore struct {
	db *sqlx.DB
}

func NewStockStore(db *sql.DB) *StockStore {
	return &StockStore{db: wrap(db)}
}

// StockTx is the view of the database available to an inventory transaction.
type StockTx struct {
	tx *sqlx.Tx
}

// InTx runs fn in a transaction and commits when fn returns nil.
func (s *StockStore) InTx(ctx context.Context, fn func(*StockTx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&StockTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// OrderLines returns the order's deduction timestamp and lines, or found=false.
func (t *StockTx) OrderLines(orderID int64) (deductedAt *time.Time, lines []model.OrderItem, found bool, err error) {
	err = t.tx.Get(&deductedAt, `SELECT inventory_deducted_at FROM orders WHERE id = ?`, orderID)
	if err == sql.ErrNoRows {
		return nil, nil, false, nil
	}
	if err != nil {
		return nil, nil, false, fmt.Errorf("get order: %w", err)
	}
	err = t.tx.Select(&lines,
		`SELECT id, order_id, menu_item_id, product_name, quantity, price
		 FROM order_items WHERE order_id = ? ORDER BY id ASC`, orderID)
	if err != nil {
		return nil, nil, false, fmt.Errorf("list order items: %w", err)
	}
	return deductedAt, lines, true, nil
}

func (t *StockTx) Recipes(menuItemID int64) ([]model.Recipe, error) {
	var list []model.Recipe
	err := t.tx.Select(&list,
		`SELECT `+recipeCols+` FROM recipes WHERE menu_item_id = ? ORDER BY ingredient_id ASC`, menuItemID)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	return list, nil
}

func (t *StockTx) Ingredient(id int64) (*model.Ingredient, error) {
	var i model.Ingredient
	err := t.tx.Get(&i, `SELECT `+ingredientCols+` FROM ingredients WHERE id = ?`, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get ingredient: %w", err)
	}
	return &i, nil
}

// SetQuantity writes qty only if the row is still at version. It reports
// false when another writer got there first.
func (t *StockTx) SetQuantity(id, version int64, qty float64) (bool, error) {
	if qty < 0 {
		qty = 0
	}
	result, err := t.tx.Exec(
		`UPDATE ingredients SET current_quantity = ?, version = version + 1, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND version = ?`,
		qty, id, version,
	)
	if err != nil {
		return false, fmt.Errorf("update ingredient quantity: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n == 1, nil
}

// OrderStatus returns the order's current status.
func (t *StockTx) OrderStatus(orderID int64) (model.OrderStatus, error) {
	var status model.OrderStatus
	if err := t.tx.Get(&status, `SELECT status FROM orders WHERE id = ?`, orderID); err != nil {
		return "", fmt.Errorf("get order status: %w", err)
	}
	return status, nil
}

// Confirm moves a Placed order to Confirmed. It reports false when the order
// was not Placed.
func (t *StockTx) Confirm(orderID int64) (bool, error) {
	result, err := t.tx.Exec(
		`UPDATE orders SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND status = ?`,
		model.StatusConfirmed, orderID, model.StatusPlaced,
	)
	if err != nil {
		return false, fmt.Errorf("confirm order: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n == 1, nil
}

func (t *StockTx) MarkDeducted(orderID int64, at time.Time) error {
	_, err := t.tx.Exec(
		`UPDATE orders SET inventory_deducted_at = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		at.UTC(), orderID,
	)
	if err != nil {
		return fmt.Errorf("mark order deducted: %w", err)
	}
	return nil
}
