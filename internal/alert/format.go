package alert

import (
	"fmt"
	"strings"

	"github.com/dukerupert/smartkitchen/internal/model"
	"github.com/dustin/go-humanize"
)

// Verbosity selects how much stock detail an alert carries.
type Verbosity int

const (
	// Brief lists ingredient names only. Suppliers get this.
	Brief Verbosity = iota
	// Detailed adds quantities, thresholds and severity. The default number gets this.
	Detailed
)

// Message is the content of one alert to one recipient for one category.
type Message struct {
	RecipientName string
	Category      string
	Reason        string
	Items         []model.Ingredient
}

// Severity grades how far below threshold an ingredient has fallen.
func Severity(i model.Ingredient) string {
	switch {
	case i.CurrentQuantity <= 0:
		return "OUT"
	case i.CurrentQuantity <= i.ThresholdQuantity/2:
		return "CRITICAL"
	default:
		return "LOW"
	}
}

// Format renders an alert body in WhatsApp markdown.
func Format(m Message, v Verbosity) string {
	var b strings.Builder

	if v == Detailed {
		b.WriteString("🚨 *Low Stock Alert* 🚨\n\n")
		fmt.Fprintf(&b, "*Category: %s*", m.Category)
		if m.Reason != "" {
			fmt.Fprintf(&b, " (%s)", m.Reason)
		}
		b.WriteString("\n\n")
		for _, it := range m.Items {
			fmt.Fprintf(&b, "• %s: %s %s (threshold %s %s) [%s]\n",
				it.Name,
				humanize.Ftoa(it.CurrentQuantity), it.Unit,
				humanize.Ftoa(it.ThresholdQuantity), it.Unit,
				Severity(it))
		}
		b.WriteString("\nPlease restock soon.")
		return b.String()
	}

	if m.RecipientName != "" {
		fmt.Fprintf(&b, "Hello *%s*,\n\n", m.RecipientName)
	} else {
		b.WriteString("Hello,\n\n")
	}
	b.WriteString("We are running out of the following items:\n\n")
	for _, it := range m.Items {
		fmt.Fprintf(&b, "• %s\n", it.Name)
	}
	b.WriteString("\nPlease arrange delivery as soon as possible.")
	return b.String()
}
