package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/smartkitchen/internal/model"
	"github.com/jmoiron/sqlx"
)

type RecipeStore struct {
	db *sqlx.DB
}

func NewRecipeStore(db *sql.DB) *RecipeStore {
	return &RecipeStore{db: wrap(db)}
}

const recipeCols = `id, menu_item_id, ingredient_id, quantity_required, created_at, updated_at`

const recipeDetailSelect = `SELECT r.id, r.menu_item_id, r.ingredient_id, r.quantity_required,
	r.created_at, r.updated_at,
	m.name AS menu_item_name, m.category AS menu_item_category, m.description AS menu_item_description,
	i.name AS ingredient_name, i.unit AS ingredient_unit
	FROM recipes r
	JOIN menu_items m ON m.id = r.menu_item_id
	JOIN ingredients i ON i.id = r.ingredient_id`

// Create adds or replaces the quantity of one ingredient in a menu item.
func (s *RecipeStore) Create(menuItemID, ingredientID int64, quantity float64) (*model.Recipe, error) {
	if err := upsertRecipe(s.db, menuItemID, ingredientID, quantity); err != nil {
		return nil, err
	}
	var r model.Recipe
	err := s.db.Get(&r,
		`SELECT `+recipeCols+` FROM recipes WHERE menu_item_id = ? AND ingredient_id = ?`,
		menuItemID, ingredientID)
	if err != nil {
		return nil, fmt.Errorf("get recipe: %w", err)
	}
	return &r, nil
}

// CreateBatch inserts all recipes for a menu item in one transaction.
func (s *RecipeStore) CreateBatch(menuItemID int64, lines []model.Recipe) ([]model.Recipe, error) {
	tx, err := s.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, l := range lines {
		if err := upsertRecipe(tx, menuItemID, l.IngredientID, l.QuantityRequired); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return s.ListByMenuItem(menuItemID)
}

func upsertRecipe(e sqlx.Execer, menuItemID, ingredientID int64, quantity float64) error {
	_, err := e.Exec(
		`INSERT INTO recipes (menu_item_id, ingredient_id, quantity_required) VALUES (?, ?, ?)
		 ON CONFLICT(menu_item_id, ingredient_id) DO UPDATE SET
		 quantity_required = excluded.quantity_required, updated_at = CURRENT_TIMESTAMP`,
		menuItemID, ingredientID, quantity,
	)
	if err != nil {
		return fmt.Errorf("upsert recipe: %w", err)
	}
	return nil
}

func (s *RecipeStore) ListByMenuItem(menuItemID int64) ([]model.Recipe, error) {
	var list []model.Recipe
	err := s.db.Select(&list,
		`SELECT `+recipeCols+` FROM recipes WHERE menu_item_id = ? ORDER BY ingredient_id ASC`, menuItemID)
	if err != nil {
		return nil, fmt.Errorf("list recipes by menu item: %w", err)
	}
	return list, nil
}

func (s *RecipeStore) ListDetails() ([]model.RecipeDetail, error) {
	var list []model.RecipeDetail
	if err := s.db.Select(&list, recipeDetailSelect+` ORDER BY m.name ASC, i.name ASC`); err != nil {
		return nil, fmt.Errorf("list recipe details: %w", err)
	}
	return list, nil
}

func (s *RecipeStore) ListDetailsByMenuItem(menuItemID int64) ([]model.RecipeDetail, error) {
	var list []model.RecipeDetail
	err := s.db.Select(&list, recipeDetailSelect+` WHERE r.menu_item_id = ? ORDER BY i.name ASC`, menuItemID)
	if err != nil {
		return nil, fmt.Errorf("list recipe details by menu item: %w", err)
	}
	return list, nil
}

func (s *RecipeStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM recipes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}
	return nil
}

func (s *RecipeStore) DeleteByMenuItem(menuItemID int64) (int64, error) {
	result, err := s.db.Exec(`DELETE FROM recipes WHERE menu_item_id = ?`, menuItemID)
	if err != nil {
		return 0, fmt.Errorf("delete recipes by menu item: %w", err)
	}
	return result.RowsAffected()
}
