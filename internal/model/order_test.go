package model

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseOrderStatus(t *testing.T) {
	for _, s := range []string{"Placed", "Confirmed", "Preparing", "Ready", "Assigned", "OnTheWay", "Delivered", "Cancelled"} {
		got, err := ParseOrderStatus(s)
		if err != nil {
			t.Errorf("ParseOrderStatus(%q): %v", s, err)
			continue
		}
		if string(got) != s {
			t.Errorf("ParseOrderStatus(%q) = %q", s, got)
		}
	}

	for _, s := range []string{"", "placed", "Shipped", "ON_THE_WAY"} {
		_, err := ParseOrderStatus(s)
		if !errors.Is(err, ErrInvalidStatus) {
			t.Errorf("ParseOrderStatus(%q) error = %v, want ErrInvalidStatus", s, err)
		}
	}
}

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		want     bool
	}{
		{StatusPlaced, StatusConfirmed, true},
		{StatusPlaced, StatusReady, true},
		{StatusConfirmed, StatusPlaced, false},
		{StatusReady, StatusCancelled, true},
		{StatusOnTheWay, StatusCancelled, false},
		{StatusOnTheWay, StatusDelivered, true},
		{StatusDelivered, StatusCancelled, false},
		{StatusCancelled, StatusConfirmed, false},
		{StatusPreparing, StatusPreparing, false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
			t.Errorf("%s -> %s = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestOrderStatusUnmarshalJSON(t *testing.T) {
	var req struct {
		Status OrderStatus `json:"status"`
	}
	if err := json.Unmarshal([]byte(`{"status":"OnTheWay"}`), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if req.Status != StatusOnTheWay {
		t.Errorf("status = %q, want %q", req.Status, StatusOnTheWay)
	}

	if err := json.Unmarshal([]byte(`{"status":"Lost"}`), &req); err == nil {
		t.Error("expected error for unknown status")
	}
}

func TestIngredientStockPercentage(t *testing.T) {
	i := Ingredient{CurrentQuantity: 25, MaxQuantity: 100}
	p := i.StockPercentage()
	if p == nil || *p != 25 {
		t.Errorf("percentage = %v, want 25", p)
	}

	i.MaxQuantity = 0
	if i.StockPercentage() != nil {
		t.Error("expected nil percentage for zero max")
	}
}
