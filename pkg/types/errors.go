package types

import "fmt"

// CheckoutError represents an error raised during the reserve or commit phase.
type CheckoutError struct {
	Code      string // Internal error code
	Message   string // Human-readable error message
	Phase     string // "reserve" or "commit"
	ListingID string // Listing id if available
}

func (e *CheckoutError) Error() string {
	if e.ListingID != "" {
		return fmt.Sprintf("%s phase failed (listing %s): %s (%s)", e.Phase, e.ListingID, e.Message, e.Code)
	}

	return fmt.Sprintf("%s phase failed: %s (%s)", e.Phase, e.Message, e.Code)
}

// Known checkout error codes
const (
	ErrReserveTokenMissing = "RESERVE_TOKEN_MISSING"
	ErrCaptchaUnsolved     = "CAPTCHA_UNSOLVED"
	ErrCommitRejected      = "COMMIT_REJECTED"
	ErrSessionInvalid      = "SESSION_INVALID"
)
