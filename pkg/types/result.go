package types

import "time"

// CheckoutOutcome is the tri-state result of a commit attempt. The upstream
// commit endpoint reports HTTP 500 for purchases that sometimes still went
// through, so 500 maps to Unconfirmed rather than Failed.
type CheckoutOutcome int

const (
	CheckoutFailed CheckoutOutcome = iota
	CheckoutCommitted
	CheckoutUnconfirmed
)

// String returns the outcome name used in logs and storage.
func (o CheckoutOutcome) String() string {
	switch o {
	case CheckoutCommitted:
		return "committed"
	case CheckoutUnconfirmed:
		return "unconfirmed"
	default:
		return "failed"
	}
}

// CheckoutResult reports one completed purchase attempt.
type CheckoutResult struct {
	Outcome    CheckoutOutcome
	OfferID    string
	ItemID     string
	ListingID  string
	PurchaseID string
	StatusCode int
	ExecutedAt time.Time

	// Latency is discovery-to-commit elapsed time.
	Latency time.Duration

	Err error
}
