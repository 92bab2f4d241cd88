package store

import (
	"database/sql"
	"testing"

	"github.com/dukerupert/smartkitchen/internal/database"
	"github.com/dukerupert/smartkitchen/internal/model"
	"github.com/shopspring/decimal"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, db *sql.DB, email string, role model.Role) *model.User {
	t.Helper()
	u, err := NewUserStore(db).Create("Test "+string(role), email, "hash", "+15550001", role)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func createTestMenuItem(t *testing.T, db *sql.DB, name, price string) *model.MenuItem {
	t.Helper()
	m, err := NewMenuItemStore(db).Create(model.MenuItem{
		Name:        name,
		Price:       decimal.RequireFromString(price),
		Category:    "Mains",
		IsAvailable: true,
	})
	if err != nil {
		t.Fatalf("create menu item: %v", err)
	}
	return m
}

func createTestIngredient(t *testing.T, db *sql.DB, name, typ string, current, threshold float64) *model.Ingredient {
	t.Helper()
	i, err := NewIngredientStore(db).Create(model.Ingredient{
		Name:              name,
		Type:              typ,
		Unit:              "kg",
		CurrentQuantity:   current,
		ThresholdQuantity: threshold,
		IsActive:          true,
	})
	if err != nil {
		t.Fatalf("create ingredient: %v", err)
	}
	return i
}
