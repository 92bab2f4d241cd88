package store

import (
	"errors"
	"testing"

	"github.com/dukerupert/smartkitchen/internal/model"
)

func TestSupplierCategoryAssign(t *testing.T) {
	db := setupTestDB(t)
	scs := NewSupplierCategoryStore(db)
	s1 := createTestUser(t, db, "s1@example.com", model.RoleSupplier)
	s2 := createTestUser(t, db, "s2@example.com", model.RoleSupplier)

	sc, err := scs.Assign(s1.ID, " Dairy ")
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if sc.CategoryName != "Dairy" || sc.UserID != s1.ID {
		t.Errorf("got %+v", sc)
	}

	if _, err := scs.Assign(s1.ID, "Dairy"); err != nil {
		t.Errorf("reassign to same supplier: %v", err)
	}

	_, err = scs.Assign(s2.ID, "Dairy")
	if !errors.Is(err, ErrCategoryTaken) {
		t.Errorf("err = %v, want ErrCategoryTaken", err)
	}
}

func TestSupplierCategoryReplaceForUser(t *testing.T) {
	db := setupTestDB(t)
	scs := NewSupplierCategoryStore(db)
	s1 := createTestUser(t, db, "s1@example.com", model.RoleSupplier)
	s2 := createTestUser(t, db, "s2@example.com", model.RoleSupplier)

	scs.Assign(s1.ID, "Dairy")
	scs.Assign(s1.ID, "Dry")
	scs.Assign(s2.ID, "Meat")

	got, err := scs.ReplaceForUser(s1.ID, []string{"Dry", "Produce"})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if len(got) != 2 || got[0].CategoryName != "Dry" || got[1].CategoryName != "Produce" {
		t.Errorf("categories = %+v", got)
	}

	if _, err := scs.ReplaceForUser(s1.ID, []string{"Meat"}); !errors.Is(err, ErrCategoryTaken) {
		t.Errorf("err = %v, want ErrCategoryTaken", err)
	}
	after, _ := scs.ListByUser(s1.ID)
	if len(after) != 2 {
		t.Errorf("failed replace changed categories: %+v", after)
	}
}

func TestSupplierCategoryGetByCategoryMissing(t *testing.T) {
	scs := NewSupplierCategoryStore(setupTestDB(t))

	sc, err := scs.GetByCategory("Spices")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if sc != nil {
		t.Errorf("got %+v, want nil", sc)
	}
}
