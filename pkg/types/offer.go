package types

import (
	"time"

	"github.com/google/uuid"
)

// SellerOffer is one offer block parsed from a listing page. Offers live for
// a single monitoring cycle and are never persisted.
type SellerOffer struct {
	MerchantID string
	Price      Money
	Shipping   Money
	Condition  Condition
	ListingID  string

	// AddToCart carries the raw hidden fields of the offer's add-to-cart
	// form, passed through untouched to the reservation request.
	AddToCart map[string]string
}

// Total is the effective price used for the price-band check.
func (o *SellerOffer) Total() Money {
	return o.Price + o.Shipping
}

// QualifiedOffer is the message handed from a monitor worker to the checkout
// worker. It is consumed exactly once.
type QualifiedOffer struct {
	ID           string
	ItemID       string
	ListingID    string
	DiscoveredAt time.Time
}

// NewQualifiedOffer stamps a qualified offer at the moment an offer clears
// every qualification stage.
func NewQualifiedOffer(itemID, listingID string) *QualifiedOffer {
	return &QualifiedOffer{
		ID:           uuid.New().String(),
		ItemID:       itemID,
		ListingID:    listingID,
		DiscoveredAt: time.Now(),
	}
}
