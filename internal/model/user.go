package model

import (
	"fmt"
	"strings"
	"time"
)

type Role string

const (
	RoleCustomer        Role = "CUSTOMER"
	RoleOwner           Role = "RESTAURANT_OWNER"
	RoleDeliveryPartner Role = "DELIVERY_PARTNER"
	RoleSupplier        Role = "SUPPLIER"
)

// ParseRole accepts a role name case-insensitively. An empty string is a customer.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case "", RoleCustomer:
		return RoleCustomer, nil
	case RoleOwner:
		return RoleOwner, nil
	case RoleDeliveryPartner:
		return RoleDeliveryPartner, nil
	case RoleSupplier:
		return RoleSupplier, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

type Address struct {
	Label        string `json:"address_label" db:"address_label"`
	Full         string `json:"address_full" db:"address_full"`
	Apartment    string `json:"address_apartment" db:"address_apartment"`
	Instructions string `json:"address_instructions" db:"address_instructions"`
}

type User struct {
	ID             int64     `json:"id" db:"id"`
	Name           string    `json:"name" db:"name"`
	Email          string    `json:"email" db:"email"`
	PasswordHash   string    `json:"-" db:"password_hash"`
	Phone          string    `json:"phone" db:"phone"`
	Role           Role      `json:"user_type" db:"role"`
	RestaurantName string    `json:"restaurant_name,omitempty" db:"restaurant_name"`
	IsActive       bool      `json:"is_active" db:"is_active"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
	Address
}
