package alert

import (
	"strings"
	"testing"

	"github.com/dukerupert/smartkitchen/internal/model"
)

func TestSeverity(t *testing.T) {
	tests := []struct {
		current, threshold float64
		want               string
	}{
		{0, 10, "OUT"},
		{5, 10, "CRITICAL"},
		{6, 10, "LOW"},
		{10, 10, "LOW"},
	}
	for _, tt := range tests {
		got := Severity(model.Ingredient{CurrentQuantity: tt.current, ThresholdQuantity: tt.threshold})
		if got != tt.want {
			t.Errorf("Severity(%v/%v) = %q, want %q", tt.current, tt.threshold, got, tt.want)
		}
	}
}

func TestFormatBrief(t *testing.T) {
	body := Format(Message{
		RecipientName: "Acme Foods",
		Category:      "Dry",
		Items: []model.Ingredient{
			{Name: "Flour", Unit: "kg", CurrentQuantity: 10, ThresholdQuantity: 15},
			{Name: "Sugar", Unit: "kg", CurrentQuantity: 1, ThresholdQuantity: 5},
		},
	}, Brief)

	want := "Hello *Acme Foods*,\n\nWe are running out of the following items:\n\n• Flour\n• Sugar\n\nPlease arrange delivery as soon as possible."
	if body != want {
		t.Errorf("body = %q, want %q", body, want)
	}
}

func TestFormatDetailed(t *testing.T) {
	body := Format(Message{
		Category: "Dry",
		Reason:   "no supplier assigned",
		Items: []model.Ingredient{
			{Name: "Flour", Unit: "kg", CurrentQuantity: 10, ThresholdQuantity: 15},
			{Name: "Yeast", Unit: "g", CurrentQuantity: 0.5, ThresholdQuantity: 200},
		},
	}, Detailed)

	for _, want := range []string{
		"*Low Stock Alert*",
		"*Category: Dry* (no supplier assigned)",
		"• Flour: 10 kg (threshold 15 kg) [LOW]",
		"• Yeast: 0.5 g (threshold 200 g) [CRITICAL]",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q:\n%s", want, body)
		}
	}
}
