package store

import (
	"testing"

	"github.com/dukerupert/smartkitchen/internal/model"
)

func TestRecipeCreateUpserts(t *testing.T) {
	db := setupTestDB(t)
	rs := NewRecipeStore(db)
	m := createTestMenuItem(t, db, "Pizza", "12.50")
	flour := createTestIngredient(t, db, "Flour", "Dry", 10, 2)

	if _, err := rs.Create(m.ID, flour.ID, 0.5); err != nil {
		t.Fatalf("create recipe: %v", err)
	}
	r, err := rs.Create(m.ID, flour.ID, 0.75)
	if err != nil {
		t.Fatalf("upsert recipe: %v", err)
	}
	if r.QuantityRequired != 0.75 {
		t.Errorf("quantity = %v, want 0.75", r.QuantityRequired)
	}

	list, _ := rs.ListByMenuItem(m.ID)
	if len(list) != 1 {
		t.Errorf("got %d recipes, want 1", len(list))
	}
}

func TestRecipeCreateBatchAndDetails(t *testing.T) {
	db := setupTestDB(t)
	rs := NewRecipeStore(db)
	m := createTestMenuItem(t, db, "Pizza", "12.50")
	flour := createTestIngredient(t, db, "Flour", "Dry", 10, 2)
	cheese := createTestIngredient(t, db, "Cheese", "Dairy", 5, 1)

	created, err := rs.CreateBatch(m.ID, []model.Recipe{
		{IngredientID: flour.ID, QuantityRequired: 0.3},
		{IngredientID: cheese.ID, QuantityRequired: 0.2},
	})
	if err != nil {
		t.Fatalf("create batch: %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("got %d recipes, want 2", len(created))
	}

	details, err := rs.ListDetailsByMenuItem(m.ID)
	if err != nil {
		t.Fatalf("list details: %v", err)
	}
	if details[0].IngredientName != "Cheese" || details[0].MenuItemName != "Pizza" {
		t.Errorf("detail = %+v", details[0])
	}
}

func TestRecipeRejectsNonPositiveQuantity(t *testing.T) {
	db := setupTestDB(t)
	m := createTestMenuItem(t, db, "Pizza", "12.50")
	flour := createTestIngredient(t, db, "Flour", "Dry", 10, 2)

	if _, err := NewRecipeStore(db).Create(m.ID, flour.ID, 0); err == nil {
		t.Error("expected error for zero quantity")
	}
}

func TestRecipeCascadeOnMenuItemDelete(t *testing.T) {
	db := setupTestDB(t)
	rs := NewRecipeStore(db)
	m := createTestMenuItem(t, db, "Pizza", "12.50")
	flour := createTestIngredient(t, db, "Flour", "Dry", 10, 2)
	rs.Create(m.ID, flour.ID, 0.5)

	if err := NewMenuItemStore(db).Delete(m.ID); err != nil {
		t.Fatalf("delete menu item: %v", err)
	}
	list, _ := rs.ListByMenuItem(m.ID)
	if len(list) != 0 {
		t.Errorf("got %d recipes after cascade, want 0", len(list))
	}
}
