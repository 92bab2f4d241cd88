package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/smartkitchen/internal/model"
	"github.com/jmoiron/sqlx"
)

type IngredientStore struct {
	db *sqlx.DB
}

func NewIngredientStore(db *sql.DB) *IngredientStore {
	return &IngredientStore{db: wrap(db)}
}

const ingredientCols = `id, name, ingredient_type, unit, current_quantity, max_quantity,
	threshold_quantity, is_active, version, created_at, updated_at`

func (s *IngredientStore) Create(i model.Ingredient) (*model.Ingredient, error) {
	if i.MaxQuantity <= 0 {
		i.MaxQuantity = model.DefaultMaxQuantity
	}
	result, err := s.db.Exec(
		`INSERT INTO ingredients (name, ingredient_type, unit, current_quantity, max_quantity, threshold_quantity, is_active)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		i.Name, i.Type, i.Unit, i.CurrentQuantity, i.MaxQuantity, i.ThresholdQuantity, boolInt(i.IsActive),
	)
	if err != nil {
		return nil, fmt.Errorf("insert ingredient: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *IngredientStore) GetByID(id int64) (*model.Ingredient, error) {
	var i model.Ingredient
	err := s.db.Get(&i, `SELECT `+ingredientCols+` FROM ingredients WHERE id = ?`, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get ingredient: %w", err)
	}
	return &i, nil
}

func (s *IngredientStore) List() ([]model.Ingredient, error) {
	var list []model.Ingredient
	if err := s.db.Select(&list, `SELECT `+ingredientCols+` FROM ingredients ORDER BY ingredient_type ASC, name ASC`); err != nil {
		return nil, fmt.Errorf("list ingredients: %w", err)
	}
	return list, nil
}

// ListLowStock returns active ingredients at or below their threshold.
func (s *IngredientStore) ListLowStock() ([]model.Ingredient, error) {
	var list []model.Ingredient
	err := s.db.Select(&list,
		`SELECT `+ingredientCols+` FROM ingredients
		 WHERE is_active = 1 AND current_quantity <= threshold_quantity
		 ORDER BY ingredient_type ASC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list low stock ingredients: %w", err)
	}
	return list, nil
}

func (s *IngredientStore) ListTypes() ([]string, error) {
	var types []string
	if err := s.db.Select(&types, `SELECT DISTINCT ingredient_type FROM ingredients ORDER BY ingredient_type ASC`); err != nil {
		return nil, fmt.Errorf("list ingredient types: %w", err)
	}
	return types, nil
}

// Update writes every editable field and bumps the version so an in-flight
// deduction that read the old row fails its compare-and-swap.
func (s *IngredientStore) Update(i model.Ingredient) (*model.Ingredient, error) {
	if i.CurrentQuantity < 0 {
		i.CurrentQuantity = 0
	}
	_, err := s.db.Exec(
		`UPDATE ingredients SET name = ?, ingredient_type = ?, unit = ?, current_quantity = ?,
		 max_quantity = ?, threshold_quantity = ?, is_active = ?, version = version + 1,
		 updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		i.Name, i.Type, i.Unit, i.CurrentQuantity, i.MaxQuantity, i.ThresholdQuantity, boolInt(i.IsActive), i.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update ingredient: %w", err)
	}
	return s.GetByID(i.ID)
}

func (s *IngredientStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM ingredients WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete ingredient: %w", err)
	}
	return nil
}
