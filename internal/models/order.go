package models

import "time"

// ContactType says how the customer wants to be reached.
type ContactType string

const (
	ContactEmail ContactType = "email"
	ContactPhone ContactType = "phone"
)

// Order is a customer's request to buy a product. There is no checkout;
// the shop owner follows up through the given contact.
type Order struct {
	ID           int64       `json:"id"`
	ProductID    int64       `json:"productId"`
	ContactType  ContactType `json:"contactType"`
	ContactValue string      `json:"contactValue"`
	Seen         bool        `json:"seen"`
	CreatedAt    time.Time   `json:"createdAt"`

	// Populated by joins.
	ProductTitle string `json:"productTitle,omitempty"`
	ProductSlug  string `json:"productSlug,omitempty"`
}
