// Package alert scans stock for ingredients at or below threshold and
// notifies the supplier responsible for each category.
package alert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/dukerupert/smartkitchen/internal/model"
	"github.com/dukerupert/smartkitchen/internal/store"
	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"golang.org/x/sync/singleflight"
)

// DefaultSchedule runs a scan once an hour, counted from Start.
const DefaultSchedule = "@every 1h"

var errNoDefaultPhone = errors.New("no default alert number configured")

// Sender delivers a text message to a phone number.
type Sender interface {
	Send(ctx context.Context, to, body string) error
}

// Dispatch is the outcome of alerting one recipient about one category.
type Dispatch struct {
	Category   string   `json:"category"`
	SupplierID *int64   `json:"supplier_id"`
	Recipient  string   `json:"recipient"`
	Fallback   string   `json:"fallback_reason,omitempty"`
	Sent       []string `json:"sent,omitempty"`
	Throttled  []string `json:"throttled,omitempty"`
	Error      string   `json:"error,omitempty"`
}

// Report summarizes one scan. Err combines per-recipient failures, which never
// fail the scan itself.
type Report struct {
	CheckedAt  time.Time  `json:"checked_at"`
	LowStock   int        `json:"low_stock"`
	Categories []string   `json:"categories"`
	Dispatches []Dispatch `json:"dispatches"`
	Errors     []string   `json:"errors,omitempty"`
	Err        error      `json:"-"`
}

type Config struct {
	// DefaultPhone receives alerts for categories without a reachable supplier.
	DefaultPhone string
	// Schedule is a cron expression. Empty means DefaultSchedule.
	Schedule string
}

// Scanner finds low-stock ingredients and dispatches alerts.
type Scanner struct {
	ingredients  *store.IngredientStore
	categories   *store.SupplierCategoryStore
	users        *store.UserStore
	ledger       *store.SupplierMessageStore
	sender       Sender
	defaultPhone string
	schedule     string
	logger       *slog.Logger
	now          func() time.Time

	group singleflight.Group

	mu   sync.Mutex
	cron *cron.Cron
}

func NewScanner(
	ingredients *store.IngredientStore,
	categories *store.SupplierCategoryStore,
	users *store.UserStore,
	ledger *store.SupplierMessageStore,
	sender Sender,
	cfg Config,
	logger *slog.Logger,
) *Scanner {
	schedule := cfg.Schedule
	if schedule == "" {
		schedule = DefaultSchedule
	}
	return &Scanner{
		ingredients:  ingredients,
		categories:   categories,
		users:        users,
		ledger:       ledger,
		sender:       sender,
		defaultPhone: cfg.DefaultPhone,
		schedule:     schedule,
		logger:       logger.With("component", "alert"),
		now:          time.Now,
	}
}

// Start schedules periodic scans. It fails if the schedule does not parse.
func (s *Scanner) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := cron.New(cron.WithChain(cron.Recover(cron.PrintfLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelError)))))
	_, err := c.AddFunc(s.schedule, func() {
		if _, err := s.RunNow(ctx); err != nil {
			s.logger.Error("scheduled scan failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("parse schedule %q: %w", s.schedule, err)
	}
	c.Start()
	s.cron = c
	s.logger.Info("low stock scanner started", "schedule", s.schedule)
	return nil
}

// Stop halts scheduling and waits for a running scan to finish.
func (s *Scanner) Stop() {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
	}
}

// RunNow scans immediately. A call made while another scan is running waits
// for that scan and returns its report instead of starting a second one.
// The scan is shared, so it ignores the cancellation of whichever caller
// started it.
func (s *Scanner) RunNow(ctx context.Context) (*Report, error) {
	scanCtx := context.WithoutCancel(ctx)
	v, err, shared := s.group.Do("scan", func() (any, error) {
		return s.scan(scanCtx)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.logger.Debug("joined scan already in progress")
	}
	return v.(*Report), nil
}

func (s *Scanner) scan(ctx context.Context) (*Report, error) {
	now := s.now().UTC()
	rep := &Report{CheckedAt: now}

	low, err := s.ingredients.ListLowStock()
	if err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}
	rep.LowStock = len(low)
	if len(low) == 0 {
		s.logger.Info("no ingredients below threshold")
		return rep, nil
	}

	groups := make(map[string][]model.Ingredient)
	for _, it := range low {
		groups[it.Type] = append(groups[it.Type], it)
	}
	for cat := range groups {
		rep.Categories = append(rep.Categories, cat)
	}
	slices.Sort(rep.Categories)

	for _, cat := range rep.Categories {
		d, err := s.dispatch(ctx, cat, groups[cat], now)
		if err != nil {
			d.Error = err.Error()
			rep.Err = multierr.Append(rep.Err, fmt.Errorf("category %s: %w", cat, err))
			s.logger.Error("alert dispatch failed", "category", cat, "supplier_id", supplierAttr(d.SupplierID), "error", err)
		}
		rep.Dispatches = append(rep.Dispatches, d)
	}
	for _, e := range multierr.Errors(rep.Err) {
		rep.Errors = append(rep.Errors, e.Error())
	}

	s.logger.Info("low stock scan complete",
		"low_stock", rep.LowStock, "categories", len(rep.Categories), "failures", len(rep.Errors))
	return rep, nil
}

func (s *Scanner) dispatch(ctx context.Context, category string, items []model.Ingredient, now time.Time) (Dispatch, error) {
	d := Dispatch{Category: category}

	rec, err := s.route(category)
	if err != nil {
		return d, err
	}
	d.SupplierID = rec.SupplierID
	d.Recipient = rec.Name
	d.Fallback = rec.Fallback
	if rec.isDefault() {
		d.Recipient = "default"
		if rec.Phone == "" {
			return d, errNoDefaultPhone
		}
	}

	fresh, throttled, err := s.unsent(rec, items, now)
	if err != nil {
		return d, fmt.Errorf("check throttle: %w", err)
	}
	d.Throttled = names(throttled)
	if len(fresh) == 0 {
		s.logger.Info("all ingredients recently alerted", "category", category, "supplier_id", supplierAttr(rec.SupplierID))
		return d, nil
	}

	verbosity := Brief
	if rec.isDefault() {
		verbosity = Detailed
	}
	body := Format(Message{
		RecipientName: rec.Name,
		Category:      category,
		Reason:        rec.Fallback,
		Items:         fresh,
	}, verbosity)

	if s.sender == nil {
		return d, errors.New("no message sender configured")
	}
	if err := s.sender.Send(ctx, rec.Phone, body); err != nil {
		return d, fmt.Errorf("send alert: %w", err)
	}
	if err := s.ledger.Record(rec.SupplierID, fresh, now); err != nil {
		return d, fmt.Errorf("record alert: %w", err)
	}
	d.Sent = names(fresh)

	s.logger.Info("low stock alert sent", "category", category, "supplier_id", supplierAttr(rec.SupplierID), "items", len(fresh))
	return d, nil
}

func names(items []model.Ingredient) []string {
	if len(items) == 0 {
		return nil
	}
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Name
	}
	return out
}

func supplierAttr(id *int64) any {
	if id == nil {
		return "default"
	}
	return *id
}
