package inventory

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/dukerupert/smartkitchen/internal/database"
	"github.com/dukerupert/smartkitchen/internal/model"
	"github.com/dukerupert/smartkitchen/internal/store"
	"github.com/shopspring/decimal"
)

type fixture struct {
	db          *sql.DB
	svc         *Service
	orders      *store.OrderStore
	menu        *store.MenuItemStore
	ingredients *store.IngredientStore
	recipes     *store.RecipeStore
	customerID  int64
}

func setupFixture(t *testing.T, path string) *fixture {
	t.Helper()
	db, err := database.Open(path)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	u, err := store.NewUserStore(db).Create("Customer", "c@example.com", "hash", "", model.RoleCustomer)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &fixture{
		db:          db,
		svc:         NewService(store.NewStockStore(db), logger),
		orders:      store.NewOrderStore(db),
		menu:        store.NewMenuItemStore(db),
		ingredients: store.NewIngredientStore(db),
		recipes:     store.NewRecipeStore(db),
		customerID:  u.ID,
	}
}

func (f *fixture) ingredient(t *testing.T, name string, qty float64) *model.Ingredient {
	t.Helper()
	i, err := f.ingredients.Create(model.Ingredient{Name: name, Type: "Dry", Unit: "kg", CurrentQuantity: qty, IsActive: true})
	if err != nil {
		t.Fatalf("create ingredient: %v", err)
	}
	return i
}

func (f *fixture) menuItem(t *testing.T, name string, recipe map[int64]float64) *model.MenuItem {
	t.Helper()
	m, err := f.menu.Create(model.MenuItem{Name: name, Price: decimal.NewFromInt(10), IsAvailable: true})
	if err != nil {
		t.Fatalf("create menu item: %v", err)
	}
	for ingID, q := range recipe {
		if _, err := f.recipes.Create(m.ID, ingID, q); err != nil {
			t.Fatalf("create recipe: %v", err)
		}
	}
	return m
}

func (f *fixture) order(t *testing.T, lines map[*model.MenuItem]int) *model.Order {
	t.Helper()
	o := model.Order{UserID: f.customerID}
	for m, qty := range lines {
		o.Items = append(o.Items, model.OrderItem{MenuItemID: &m.ID, ProductName: m.Name, Quantity: qty, Price: m.Price})
	}
	created, err := f.orders.Create(o)
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	return created
}

func (f *fixture) quantity(t *testing.T, id int64) float64 {
	t.Helper()
	i, err := f.ingredients.GetByID(id)
	if err != nil || i == nil {
		t.Fatalf("get ingredient %d: %v", id, err)
	}
	return i.CurrentQuantity
}

func TestDeductSufficientStock(t *testing.T) {
	f := setupFixture(t, ":memory:")
	flour := f.ingredient(t, "Flour", 10)
	cheese := f.ingredient(t, "Cheese", 5)
	pizza := f.menuItem(t, "Pizza", map[int64]float64{flour.ID: 0.5, cheese.ID: 0.25})
	o := f.order(t, map[*model.MenuItem]int{pizza: 2})

	res, err := f.svc.Deduct(context.Background(), o.ID)
	if err != nil {
		t.Fatalf("deduct: %v", err)
	}
	if len(res.Changes) != 2 {
		t.Fatalf("changes = %d, want 2", len(res.Changes))
	}
	if got := f.quantity(t, flour.ID); got != 9 {
		t.Errorf("flour = %v, want 9", got)
	}
	if got := f.quantity(t, cheese.ID); got != 4.5 {
		t.Errorf("cheese = %v, want 4.5", got)
	}

	got, _ := f.orders.GetByID(o.ID)
	if got.InventoryDeductedAt == nil {
		t.Error("expected inventory_deducted_at to be set")
	}
}

func TestDeductInsufficientNamesIngredient(t *testing.T) {
	f := setupFixture(t, ":memory:")
	x := f.ingredient(t, "X", 5)
	a := f.menuItem(t, "A", map[int64]float64{x.ID: 3})
	o := f.order(t, map[*model.MenuItem]int{a: 2})

	_, err := f.svc.Deduct(context.Background(), o.ID)
	var insufficient *InsufficientError
	if !errors.As(err, &insufficient) {
		t.Fatalf("err = %v, want InsufficientError", err)
	}
	if insufficient.Ingredient != "X" || insufficient.Need != 6 || insufficient.Have != 5 {
		t.Errorf("got %+v", insufficient)
	}
	if got := f.quantity(t, x.ID); got != 5 {
		t.Errorf("X = %v, want 5", got)
	}
}

func TestDeductShortfallLeavesEveryIngredientUntouched(t *testing.T) {
	f := setupFixture(t, ":memory:")
	plenty := f.ingredient(t, "Flour", 100)
	scarce := f.ingredient(t, "Yeast", 1)
	bread := f.menuItem(t, "Bread", map[int64]float64{plenty.ID: 1, scarce.ID: 2})
	o := f.order(t, map[*model.MenuItem]int{bread: 1})

	if _, err := f.svc.Deduct(context.Background(), o.ID); err == nil {
		t.Fatal("expected error")
	}
	if got := f.quantity(t, plenty.ID); got != 100 {
		t.Errorf("flour = %v, want 100", got)
	}
	got, _ := f.orders.GetByID(o.ID)
	if got.InventoryDeductedAt != nil {
		t.Error("failed deduction must not mark the order")
	}
}

func TestDeductSumsAcrossLines(t *testing.T) {
	f := setupFixture(t, ":memory:")
	x := f.ingredient(t, "X", 5)
	a := f.menuItem(t, "A", map[int64]float64{x.ID: 2})
	b := f.menuItem(t, "B", map[int64]float64{x.ID: 2})
	o := f.order(t, map[*model.MenuItem]int{a: 1, b: 2})

	var insufficient *InsufficientError
	if _, err := f.svc.Deduct(context.Background(), o.ID); !errors.As(err, &insufficient) {
		t.Fatalf("err = %v, want InsufficientError", err)
	}
	if insufficient.Need != 6 {
		t.Errorf("need = %v, want 6", insufficient.Need)
	}
}

func TestDeductExactStockReachesZero(t *testing.T) {
	f := setupFixture(t, ":memory:")
	x := f.ingredient(t, "X", 6)
	a := f.menuItem(t, "A", map[int64]float64{x.ID: 3})
	o := f.order(t, map[*model.MenuItem]int{a: 2})

	if _, err := f.svc.Deduct(context.Background(), o.ID); err != nil {
		t.Fatalf("deduct: %v", err)
	}
	if got := f.quantity(t, x.ID); got != 0 {
		t.Errorf("X = %v, want 0", got)
	}
}

func TestDeductSkipsDeletedMenuItem(t *testing.T) {
	f := setupFixture(t, ":memory:")
	x := f.ingredient(t, "X", 10)
	gone := f.menuItem(t, "Gone", map[int64]float64{x.ID: 1})
	kept := f.menuItem(t, "Kept", map[int64]float64{x.ID: 2})
	o := f.order(t, map[*model.MenuItem]int{gone: 1, kept: 1})
	if err := f.menu.Delete(gone.ID); err != nil {
		t.Fatalf("delete menu item: %v", err)
	}

	res, err := f.svc.Deduct(context.Background(), o.ID)
	if err != nil {
		t.Fatalf("deduct: %v", err)
	}
	if len(res.SkippedItems) != 1 {
		t.Errorf("skipped = %v, want one item", res.SkippedItems)
	}
	if got := f.quantity(t, x.ID); got != 8 {
		t.Errorf("X = %v, want 8", got)
	}
}

func TestDeductMenuItemWithoutRecipe(t *testing.T) {
	f := setupFixture(t, ":memory:")
	water := f.menuItem(t, "Water", nil)
	o := f.order(t, map[*model.MenuItem]int{water: 3})

	res, err := f.svc.Deduct(context.Background(), o.ID)
	if err != nil {
		t.Fatalf("deduct: %v", err)
	}
	if len(res.Changes) != 0 {
		t.Errorf("changes = %d, want 0", len(res.Changes))
	}
	if len(res.NoRecipeItems) != 1 || res.NoRecipeItems[0] != water.ID {
		t.Errorf("no recipe items = %v, want [%d]", res.NoRecipeItems, water.ID)
	}
}

func TestDeductErrors(t *testing.T) {
	f := setupFixture(t, ":memory:")
	ctx := context.Background()

	if _, err := f.svc.Deduct(ctx, 999); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("missing order: err = %v, want ErrOrderNotFound", err)
	}

	empty := f.order(t, nil)
	if _, err := f.svc.Deduct(ctx, empty.ID); !errors.Is(err, ErrEmptyOrder) {
		t.Errorf("empty order: err = %v, want ErrEmptyOrder", err)
	}

	x := f.ingredient(t, "X", 10)
	a := f.menuItem(t, "A", map[int64]float64{x.ID: 1})
	o := f.order(t, map[*model.MenuItem]int{a: 1})
	if _, err := f.svc.Deduct(ctx, o.ID); err != nil {
		t.Fatalf("first deduct: %v", err)
	}
	if _, err := f.svc.Deduct(ctx, o.ID); !errors.Is(err, ErrAlreadyDeducted) {
		t.Errorf("second deduct: err = %v, want ErrAlreadyDeducted", err)
	}
	if got := f.quantity(t, x.ID); got != 9 {
		t.Errorf("X = %v, want 9", got)
	}
}

func TestAcceptConfirmsOrder(t *testing.T) {
	f := setupFixture(t, ":memory:")
	x := f.ingredient(t, "X", 10)
	a := f.menuItem(t, "A", map[int64]float64{x.ID: 2})
	o := f.order(t, map[*model.MenuItem]int{a: 1})

	if _, err := f.svc.Accept(context.Background(), o.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}
	got, _ := f.orders.GetByID(o.ID)
	if got.Status != model.StatusConfirmed {
		t.Errorf("status = %q, want %q", got.Status, model.StatusConfirmed)
	}
	if got.InventoryDeductedAt == nil {
		t.Error("expected inventory_deducted_at to be set")
	}
	if q := f.quantity(t, x.ID); q != 8 {
		t.Errorf("X = %v, want 8", q)
	}
}

func TestAcceptRequiresPlaced(t *testing.T) {
	f := setupFixture(t, ":memory:")
	x := f.ingredient(t, "X", 10)
	a := f.menuItem(t, "A", map[int64]float64{x.ID: 2})
	o := f.order(t, map[*model.MenuItem]int{a: 1})

	if _, err := f.orders.UpdateStatus(o.ID, model.StatusCancelled); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := f.svc.Accept(context.Background(), o.ID); !errors.Is(err, ErrNotPlaced) {
		t.Fatalf("err = %v, want ErrNotPlaced", err)
	}
	if q := f.quantity(t, x.ID); q != 10 {
		t.Errorf("X = %v, want 10", q)
	}
	got, _ := f.orders.GetByID(o.ID)
	if got.InventoryDeductedAt != nil {
		t.Error("inventory_deducted_at set on a cancelled order")
	}
}

func TestAcceptRollsBackWhenConfirmFails(t *testing.T) {
	f := setupFixture(t, ":memory:")
	x := f.ingredient(t, "X", 10)
	a := f.menuItem(t, "A", map[int64]float64{x.ID: 2})
	o := f.order(t, map[*model.MenuItem]int{a: 1})

	_, err := f.db.Exec(`CREATE TRIGGER block_confirm BEFORE UPDATE OF status ON orders
		WHEN NEW.status = 'Confirmed' BEGIN SELECT RAISE(ABORT, 'confirm blocked'); END`)
	if err != nil {
		t.Fatalf("create trigger: %v", err)
	}
	if _, err := f.svc.Accept(context.Background(), o.ID); err == nil {
		t.Fatal("expected accept to fail")
	}
	if q := f.quantity(t, x.ID); q != 10 {
		t.Errorf("X = %v after failed accept, want 10", q)
	}
	got, _ := f.orders.GetByID(o.ID)
	if got.Status != model.StatusPlaced || got.InventoryDeductedAt != nil {
		t.Errorf("order = %s deducted_at=%v, want Placed and not deducted", got.Status, got.InventoryDeductedAt)
	}

	if _, err := f.db.Exec(`DROP TRIGGER block_confirm`); err != nil {
		t.Fatalf("drop trigger: %v", err)
	}
	if _, err := f.svc.Accept(context.Background(), o.ID); err != nil {
		t.Fatalf("retry accept: %v", err)
	}
	if q := f.quantity(t, x.ID); q != 8 {
		t.Errorf("X = %v after retry, want 8", q)
	}
}

func TestDeductConcurrentAcceptance(t *testing.T) {
	f := setupFixture(t, filepath.Join(t.TempDir(), "test.db"))
	x := f.ingredient(t, "X", 10)
	a := f.menuItem(t, "A", map[int64]float64{x.ID: 6})
	o1 := f.order(t, map[*model.MenuItem]int{a: 1})
	o2 := f.order(t, map[*model.MenuItem]int{a: 1})

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []int64{o1.ID, o2.ID} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = f.svc.Deduct(context.Background(), id)
		}()
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		var insufficient *InsufficientError
		switch {
		case err == nil:
			succeeded++
		case errors.As(err, &insufficient):
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Errorf("succeeded = %d, want 1", succeeded)
	}
	if got := f.quantity(t, x.ID); got != 4 {
		t.Errorf("X = %v, want 4", got)
	}
}

func TestInsufficientErrorMessage(t *testing.T) {
	err := &InsufficientError{Ingredient: "Flour", Unit: "kg", Need: 6, Have: 5.5}
	want := "insufficient stock for Flour: need 6 kg, have 5.5 kg"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
