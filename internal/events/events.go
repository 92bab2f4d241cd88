// Package events publishes order lifecycle events to RabbitMQ.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dukerupert/smartkitchen/internal/model"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sethvargo/go-retry"
)

// OrdersExchange is the topic exchange order events are published to.
const OrdersExchange = "orders_topic"

// OrderEvent is the message body for an order status change.
type OrderEvent struct {
	OrderID           int64             `json:"order_id"`
	UserID            int64             `json:"user_id"`
	Status            model.OrderStatus `json:"status"`
	TotalAmount       string            `json:"total_amount"`
	DeliveryPartnerID *int64            `json:"delivery_partner_id,omitempty"`
	Items             int               `json:"items"`
	OccurredAt        time.Time         `json:"occurred_at"`
}

func NewOrderEvent(o *model.Order, at time.Time) OrderEvent {
	return OrderEvent{
		OrderID:           o.ID,
		UserID:            o.UserID,
		Status:            o.Status,
		TotalAmount:       o.TotalAmount.StringFixed(2),
		DeliveryPartnerID: o.DeliveryPartnerID,
		Items:             len(o.Items),
		OccurredAt:        at.UTC(),
	}
}

// RoutingKey is order.<status> in lower case, e.g. order.ontheway.
func RoutingKey(status model.OrderStatus) string {
	return "order." + strings.ToLower(string(status))
}

type Publisher interface {
	PublishOrder(ctx context.Context, o *model.Order) error
	Close() error
}

// Nop discards events. It is used when no broker is configured.
type Nop struct{}

func (Nop) PublishOrder(context.Context, *model.Order) error { return nil }
func (Nop) Close() error                                     { return nil }

// AMQPPublisher publishes persistent JSON messages and reconnects on demand.
type AMQPPublisher struct {
	url    string
	logger *slog.Logger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// Dial connects to the broker, retrying with backoff, and declares the exchange.
func Dial(ctx context.Context, url string, logger *slog.Logger) (*AMQPPublisher, error) {
	p := &AMQPPublisher{url: url, logger: logger.With("component", "events")}
	if err := p.connect(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *AMQPPublisher) connect(ctx context.Context) error {
	backoff := retry.WithMaxRetries(4, retry.NewExponential(time.Second))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		conn, err := amqp.Dial(p.url)
		if err != nil {
			p.logger.Warn("rabbitmq connect failed, retrying", "error", err)
			return retry.RetryableError(fmt.Errorf("dial rabbitmq: %w", err))
		}
		ch, err := conn.Channel()
		if err != nil {
			conn.Close()
			return retry.RetryableError(fmt.Errorf("open channel: %w", err))
		}
		if err := ch.ExchangeDeclare(OrdersExchange, "topic", true, false, false, false, nil); err != nil {
			ch.Close()
			conn.Close()
			return fmt.Errorf("declare %s exchange: %w", OrdersExchange, err)
		}
		p.conn, p.ch = conn, ch
		return nil
	})
}

func (p *AMQPPublisher) PublishOrder(ctx context.Context, o *model.Order) error {
	body, err := json.Marshal(NewOrderEvent(o, time.Now()))
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil || p.conn.IsClosed() || p.ch == nil || p.ch.IsClosed() {
		if err := p.connect(ctx); err != nil {
			return fmt.Errorf("reconnect: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	key := RoutingKey(o.Status)
	err = p.ch.PublishWithContext(ctx, OrdersExchange, key, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", key, err)
	}
	p.logger.Debug("order event published", "order_id", o.ID, "routing_key", key)
	return nil
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil {
		p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
