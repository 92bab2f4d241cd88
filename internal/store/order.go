package store

import (
	"cmp"
	"database/sql"
	"fmt"
	"slices"
	"time"

	"github.com/dukerupert/smartkitchen/internal/model"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type OrderStore struct {
	db *sqlx.DB
}

func NewOrderStore(db *sql.DB) *OrderStore {
	return &OrderStore{db: wrap(db)}
}

const orderSelect = `SELECT o.id, o.user_id, u.name AS customer_name, u.phone AS customer_phone,
	o.order_time, o.status, o.total_amount, o.address_label, o.address_full, o.address_apartment,
	o.address_instructions, o.delivery_partner_id, o.assigned_at, o.delivered_at,
	o.inventory_deducted_at, o.created_at, o.updated_at
	FROM orders o JOIN users u ON u.id = o.user_id`

const orderItemSelect = `SELECT oi.id, oi.order_id, oi.menu_item_id, oi.product_name, oi.quantity, oi.price,
	COALESCE(m.category, '') AS menu_item_category, COALESCE(m.image_url, '') AS menu_item_image_url,
	m.is_veg AS menu_item_is_veg
	FROM order_items oi LEFT JOIN menu_items m ON m.id = oi.menu_item_id`

// Create inserts the order and its lines in one transaction. The total is
// computed from the line prices, which the caller snapshots from the menu.
func (s *OrderStore) Create(o model.Order) (*model.Order, error) {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}

	tx, err := s.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`INSERT INTO orders (user_id, status, total_amount, address_label, address_full, address_apartment, address_instructions)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		o.UserID, model.StatusPlaced, total.String(),
		o.Address.Label, o.Address.Full, o.Address.Apartment, o.Address.Instructions,
	)
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	for _, it := range o.Items {
		_, err := tx.Exec(
			`INSERT INTO order_items (order_id, menu_item_id, product_name, quantity, price) VALUES (?, ?, ?, ?, ?)`,
			id, it.MenuItemID, it.ProductName, it.Quantity, it.Price.String(),
		)
		if err != nil {
			return nil, fmt.Errorf("insert order item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return s.GetByID(id)
}

// GetByID returns the order with its lines, or nil if it does not exist.
func (s *OrderStore) GetByID(id int64) (*model.Order, error) {
	var o model.Order
	err := s.db.Get(&o, orderSelect+` WHERE o.id = ?`, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if err := s.db.Select(&o.Items, orderItemSelect+` WHERE oi.order_id = ? ORDER BY oi.id ASC`, id); err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	return &o, nil
}

func (s *OrderStore) List() ([]model.Order, error) {
	return s.list(orderSelect + ` ORDER BY o.order_time DESC, o.id DESC`)
}

func (s *OrderStore) ListByUser(userID int64) ([]model.Order, error) {
	return s.list(orderSelect+` WHERE o.user_id = ? ORDER BY o.order_time DESC, o.id DESC`, userID)
}

func (s *OrderStore) ListByPartner(partnerID int64) ([]model.Order, error) {
	return s.list(orderSelect+` WHERE o.delivery_partner_id = ? ORDER BY o.order_time DESC, o.id DESC`, partnerID)
}

func (s *OrderStore) list(query string, args ...any) ([]model.Order, error) {
	var orders []model.Order
	if err := s.db.Select(&orders, query, args...); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]int64, len(orders))
	index := make(map[int64]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		index[o.ID] = i
	}
	q, qargs, err := sqlx.In(orderItemSelect+` WHERE oi.order_id IN (?) ORDER BY oi.id ASC`, ids)
	if err != nil {
		return nil, fmt.Errorf("build order items query: %w", err)
	}
	var items []model.OrderItem
	if err := s.db.Select(&items, s.db.Rebind(q), qargs...); err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	for _, it := range items {
		i := index[it.OrderID]
		orders[i].Items = append(orders[i].Items, it)
	}
	return orders, nil
}

// UpdateStatus moves the order to next if the transition is allowed.
// It returns nil, nil when the order does not exist.
func (s *OrderStore) UpdateStatus(id int64, next model.OrderStatus) (*model.Order, error) {
	tx, err := s.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var current model.OrderStatus
	err = tx.Get(&current, `SELECT status FROM orders WHERE id = ?`, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get order status: %w", err)
	}
	if !current.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s to %s", model.ErrInvalidTransition, current, next)
	}

	var deliveredAt *time.Time
	if next == model.StatusDelivered {
		now := time.Now().UTC()
		deliveredAt = &now
	}
	_, err = tx.Exec(
		`UPDATE orders SET status = ?, delivered_at = COALESCE(?, delivered_at), updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		next, deliveredAt, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return s.GetByID(id)
}

// Assign hands the order to a delivery partner and moves it to Assigned.
func (s *OrderStore) Assign(id, partnerID int64) (*model.Order, error) {
	tx, err := s.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var current model.OrderStatus
	err = tx.Get(&current, `SELECT status FROM orders WHERE id = ?`, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get order status: %w", err)
	}
	if !current.CanTransitionTo(model.StatusAssigned) {
		return nil, fmt.Errorf("%w: %s to %s", model.ErrInvalidTransition, current, model.StatusAssigned)
	}

	_, err = tx.Exec(
		`UPDATE orders SET status = ?, delivery_partner_id = ?, assigned_at = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		model.StatusAssigned, partnerID, time.Now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("assign order: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return s.GetByID(id)
}

// BestSellers ranks products by units sold across orders that were not cancelled.
func (s *OrderStore) BestSellers(limit int) ([]model.BestSeller, error) {
	if limit <= 0 {
		limit = 5
	}
	var lines []struct {
		ProductName string          `db:"product_name"`
		Quantity    int64           `db:"quantity"`
		Price       decimal.Decimal `db:"price"`
	}
	err := s.db.Select(&lines,
		`SELECT oi.product_name, oi.quantity, oi.price
		 FROM order_items oi JOIN orders o ON o.id = oi.order_id
		 WHERE o.status != ?`, model.StatusCancelled)
	if err != nil {
		return nil, fmt.Errorf("list sold items: %w", err)
	}

	index := make(map[string]int)
	var out []model.BestSeller
	for _, l := range lines {
		i, ok := index[l.ProductName]
		if !ok {
			i = len(out)
			index[l.ProductName] = i
			out = append(out, model.BestSeller{ProductName: l.ProductName})
		}
		out[i].TotalSold += l.Quantity
		out[i].TotalRevenue = out[i].TotalRevenue.Add(l.Price.Mul(decimal.NewFromInt(l.Quantity)))
	}
	slices.SortStableFunc(out, func(a, b model.BestSeller) int {
		if c := cmp.Compare(b.TotalSold, a.TotalSold); c != 0 {
			return c
		}
		return cmp.Compare(a.ProductName, b.ProductName)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
