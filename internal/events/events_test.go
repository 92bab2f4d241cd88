package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/dukerupert/smartkitchen/internal/model"
	"github.com/shopspring/decimal"
)

func TestRoutingKey(t *testing.T) {
	tests := map[model.OrderStatus]string{
		model.StatusPlaced:    "order.placed",
		model.StatusOnTheWay:  "order.ontheway",
		model.StatusCancelled: "order.cancelled",
	}
	for status, want := range tests {
		if got := RoutingKey(status); got != want {
			t.Errorf("RoutingKey(%q) = %q, want %q", status, got, want)
		}
	}
}

func TestNewOrderEvent(t *testing.T) {
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.FixedZone("IST", 5*3600+1800))
	o := &model.Order{
		ID:          42,
		UserID:      7,
		Status:      model.StatusConfirmed,
		TotalAmount: decimal.RequireFromString("30.5"),
		Items:       []model.OrderItem{{}, {}},
	}

	ev := NewOrderEvent(o, at)
	b, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"order_id":42,"user_id":7,"status":"Confirmed","total_amount":"30.50","items":2,"occurred_at":"2024-03-01T03:30:00Z"}`
	if string(b) != want {
		t.Errorf("event = %s, want %s", b, want)
	}
}

func TestNop(t *testing.T) {
	var p Publisher = Nop{}
	if err := p.PublishOrder(context.Background(), &model.Order{}); err != nil {
		t.Errorf("publish: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("close: %v", err)
	}
}
