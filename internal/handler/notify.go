package handler

import (
	"context"
	"log/slog"
	"time"

	"github.com/dukerupert/smartkitchen/internal/events"
	"github.com/dukerupert/smartkitchen/internal/live"
	"github.com/dukerupert/smartkitchen/internal/model"
	"github.com/dukerupert/smartkitchen/internal/push"
)

const pushTimeout = 15 * time.Second

// Notifier tells everyone watching an order that it changed: live SSE and
// WebSocket clients, the order event exchange, and the customer's devices.
type Notifier struct {
	registry  *live.Registry
	publisher events.Publisher
	push      *push.Service
	logger    *slog.Logger
}

func NewNotifier(reg *live.Registry, pub events.Publisher, ps *push.Service, logger *slog.Logger) *Notifier {
	return &Notifier{registry: reg, publisher: pub, push: ps, logger: logger}
}

// OrderChanged never fails the request that caused the change.
func (n *Notifier) OrderChanged(ctx context.Context, o *model.Order) {
	n.registry.Broadcast(live.OrderUpdated(o))

	if err := n.publisher.PublishOrder(ctx, o); err != nil {
		n.logger.Error("publish order event", "order_id", o.ID, "status", o.Status, "error", err)
	}

	if n.push.Configured() {
		go func() {
			ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), pushTimeout)
			defer cancel()
			n.push.NotifyOrder(ctx, o)
		}()
	}
}
