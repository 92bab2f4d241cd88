package alert

import (
	"time"

	"github.com/dukerupert/smartkitchen/internal/model"
)

// ThrottleWindow is how long a recipient is not re-alerted about an ingredient.
const ThrottleWindow = 24 * time.Hour

// unsent splits items into those the recipient may be alerted about now and
// those already alerted within the window. A record exactly ThrottleWindow
// old no longer throttles.
func (s *Scanner) unsent(r Recipient, items []model.Ingredient, now time.Time) (fresh, throttled []model.Ingredient, err error) {
	cutoff := now.Add(-ThrottleWindow)
	for _, it := range items {
		sent, err := s.ledger.WasSentSince(r.SupplierID, it.Name, cutoff)
		if err != nil {
			return nil, nil, err
		}
		if sent {
			throttled = append(throttled, it)
		} else {
			fresh = append(fresh, it)
		}
	}
	return fresh, throttled, nil
}
