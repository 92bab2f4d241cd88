package alert

import (
	"fmt"
	"strings"
)

const (
	reasonNoSupplier = "no supplier assigned"
	reasonNoUser     = "supplier not found"
	reasonNoPhone    = "supplier has no phone number"
)

// Recipient is where a category's alert goes. A nil SupplierID is the default number.
type Recipient struct {
	SupplierID *int64
	Name       string
	Phone      string
	// Fallback explains why the default number was chosen.
	Fallback string
}

func (r Recipient) isDefault() bool {
	return r.SupplierID == nil
}

func (s *Scanner) route(category string) (Recipient, error) {
	sc, err := s.categories.GetByCategory(category)
	if err != nil {
		return Recipient{}, fmt.Errorf("find supplier for %s: %w", category, err)
	}
	if sc == nil {
		return s.fallback(reasonNoSupplier), nil
	}

	u, err := s.users.GetByID(sc.UserID)
	if err != nil {
		return Recipient{}, fmt.Errorf("get supplier %d: %w", sc.UserID, err)
	}
	if u == nil {
		return s.fallback(reasonNoUser), nil
	}
	phone := strings.TrimSpace(u.Phone)
	if phone == "" {
		return s.fallback(reasonNoPhone), nil
	}
	return Recipient{SupplierID: &u.ID, Name: u.Name, Phone: phone}, nil
}

func (s *Scanner) fallback(reason string) Recipient {
	return Recipient{Phone: s.defaultPhone, Fallback: reason}
}
