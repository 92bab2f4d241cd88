// Package inventory deducts recipe ingredients from stock when an order is accepted.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/dukerupert/smartkitchen/internal/model"
	"github.com/dukerupert/smartkitchen/internal/store"
	"github.com/dustin/go-humanize"
	"github.com/sethvargo/go-retry"
)

var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrEmptyOrder      = errors.New("order has no items")
	ErrAlreadyDeducted = errors.New("inventory already deducted for order")
	ErrConflict        = errors.New("ingredient changed during deduction")
	ErrNotPlaced       = errors.New("only Placed orders can be accepted")
)

// InsufficientError names the first ingredient that cannot cover the order.
type InsufficientError struct {
	IngredientID int64
	Ingredient   string
	Unit         string
	Need         float64
	Have         float64
}

func (e *InsufficientError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: need %s %s, have %s %s",
		e.Ingredient, humanize.Ftoa(e.Need), e.Unit, humanize.Ftoa(e.Have), e.Unit)
}

// Change is one ingredient's movement in a deduction.
type Change struct {
	IngredientID int64   `json:"ingredient_id"`
	Name         string  `json:"name"`
	Unit         string  `json:"unit"`
	Before       float64 `json:"before"`
	Deducted     float64 `json:"deducted"`
	After        float64 `json:"after"`
}

type Result struct {
	OrderID int64    `json:"order_id"`
	Changes []Change `json:"changes"`
	// SkippedItems are order item ids whose menu item no longer exists.
	SkippedItems []int64 `json:"skipped_items,omitempty"`
	// NoRecipeItems are menu item ids with no recipe rows.
	NoRecipeItems []int64 `json:"no_recipe_items,omitempty"`
}

type Service struct {
	stock   *store.StockStore
	logger  *slog.Logger
	now     func() time.Time
	backoff func() retry.Backoff
}

func NewService(stock *store.StockStore, logger *slog.Logger) *Service {
	return &Service{
		stock:  stock,
		logger: logger.With("component", "inventory"),
		now:    time.Now,
		backoff: func() retry.Backoff {
			return retry.WithMaxRetries(2, retry.NewConstant(20*time.Millisecond))
		},
	}
}

// Deduct removes the ingredients consumed by an order from stock. Every
// ingredient is checked before any is written, so a shortfall leaves stock
// untouched. A write that loses a race with another writer is retried from
// the start; ErrConflict is returned once retries run out.
func (s *Service) Deduct(ctx context.Context, orderID int64) (*Result, error) {
	return s.run(ctx, orderID, false)
}

// Accept deducts the order's ingredients and moves it from Placed to
// Confirmed in the same transaction. Either both happen or neither does.
func (s *Service) Accept(ctx context.Context, orderID int64) (*Result, error) {
	return s.run(ctx, orderID, true)
}

func (s *Service) run(ctx context.Context, orderID int64, confirm bool) (*Result, error) {
	var res *Result
	err := retry.Do(ctx, s.backoff(), func(ctx context.Context) error {
		r, err := s.deductOnce(ctx, orderID, confirm)
		if errors.Is(err, ErrConflict) {
			s.logger.Warn("deduction conflict, retrying", "order_id", orderID)
			return retry.RetryableError(err)
		}
		if err != nil {
			return err
		}
		res = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Service) deductOnce(ctx context.Context, orderID int64, confirm bool) (*Result, error) {
	res := &Result{OrderID: orderID}

	err := s.stock.InTx(ctx, func(tx *store.StockTx) error {
		deductedAt, lines, found, err := tx.OrderLines(orderID)
		if err != nil {
			return err
		}
		if !found {
			return ErrOrderNotFound
		}
		if confirm {
			status, err := tx.OrderStatus(orderID)
			if err != nil {
				return err
			}
			if status != model.StatusPlaced {
				return fmt.Errorf("%w: order is %s", ErrNotPlaced, status)
			}
		}
		if len(lines) == 0 {
			return ErrEmptyOrder
		}
		if deductedAt != nil {
			return ErrAlreadyDeducted
		}

		required := make(map[int64]float64)
		for _, line := range lines {
			if line.MenuItemID == nil {
				s.logger.Warn("skipping order item without menu item", "order_id", orderID, "order_item_id", line.ID)
				res.SkippedItems = append(res.SkippedItems, line.ID)
				continue
			}
			recipes, err := tx.Recipes(*line.MenuItemID)
			if err != nil {
				return err
			}
			if len(recipes) == 0 {
				s.logger.Info("menu item has no recipe", "order_id", orderID, "menu_item_id", *line.MenuItemID)
				res.NoRecipeItems = append(res.NoRecipeItems, *line.MenuItemID)
				continue
			}
			for _, r := range recipes {
				required[r.IngredientID] += r.QuantityRequired * float64(line.Quantity)
			}
		}

		ids := make([]int64, 0, len(required))
		for id := range required {
			ids = append(ids, id)
		}
		slices.Sort(ids)

		// Check every ingredient before writing any.
		res.Changes = make([]Change, 0, len(ids))
		versions := make([]int64, 0, len(ids))
		for _, id := range ids {
			ing, err := tx.Ingredient(id)
			if err != nil {
				return err
			}
			if ing == nil {
				return fmt.Errorf("ingredient %d referenced by recipe not found", id)
			}
			need := required[id]
			if ing.CurrentQuantity < need {
				return &InsufficientError{
					IngredientID: ing.ID,
					Ingredient:   ing.Name,
					Unit:         ing.Unit,
					Need:         need,
					Have:         ing.CurrentQuantity,
				}
			}
			res.Changes = append(res.Changes, Change{
				IngredientID: ing.ID,
				Name:         ing.Name,
				Unit:         ing.Unit,
				Before:       ing.CurrentQuantity,
				Deducted:     need,
				After:        max(0, ing.CurrentQuantity-need),
			})
			versions = append(versions, ing.Version)
		}

		for i, c := range res.Changes {
			ok, err := tx.SetQuantity(c.IngredientID, versions[i], c.After)
			if err != nil {
				return err
			}
			if !ok {
				return ErrConflict
			}
		}

		if err := tx.MarkDeducted(orderID, s.now()); err != nil {
			return err
		}
		if !confirm {
			return nil
		}
		ok, err := tx.Confirm(orderID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotPlaced
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, c := range res.Changes {
		s.logger.Debug("deducted ingredient", "order_id", orderID, "ingredient_id", c.IngredientID,
			"before", c.Before, "after", c.After)
	}
	s.logger.Info("inventory deducted", "order_id", orderID, "ingredients", len(res.Changes), "confirmed", confirm)
	return res, nil
}
