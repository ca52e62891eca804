package entity

import (
	"strings"
)

// ClientRef is the part of a client-directory record the cart needs. The
// cart never owns the client; it only carries these fields into the order.
type ClientRef struct {
	ID       int64   `json:"id"`
	FullName string  `json:"full_name"`
	Email    *string `json:"email,omitempty"`
	Phone    *string `json:"phone,omitempty"`
}

// Matches reports whether the lower-cased query is contained in the full
// name, email or phone, ignoring case.
func (c *ClientRef) Matches(query string) bool {
	if query == "" {
		return true
	}
	if strings.Contains(strings.ToLower(c.FullName), query) {
		return true
	}
	if c.Email != nil && strings.Contains(strings.ToLower(*c.Email), query) {
		return true
	}
	return c.Phone != nil && strings.Contains(strings.ToLower(*c.Phone), query)
}

// NewClientInput holds the fields staff fill in to create a client at the till
type NewClientInput struct {
	FirstName  string  `json:"first_name" validate:"required,max=100"`
	LastName   string  `json:"last_name" validate:"required,max=100"`
	Email      string  `json:"email" validate:"required,client_email,max=255"`
	Phone      string  `json:"phone" validate:"required,phone"`
	Address    *string `json:"address,omitempty"`
	City       *string `json:"city,omitempty"`
	PostalCode *string `json:"postal_code,omitempty" validate:"omitempty,postal_code_fr"`
}

// Normalize trims every field and lower-cases the email
func (in *NewClientInput) Normalize() {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	for _, p := range []*string{in.Address, in.City, in.PostalCode} {
		if p != nil {
			*p = strings.TrimSpace(*p)
		}
	}
}
