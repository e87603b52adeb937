package storage

import (
	"context"

	"github.com/mselser95/restock-sniper/pkg/types"
)

// Storage is the interface for persisting pipeline output.
type Storage interface {
	// StoreQualifiedOffer records an offer that cleared qualification and
	// was handed to checkout.
	StoreQualifiedOffer(ctx context.Context, offer *types.QualifiedOffer) error

	// StorePurchase records a completed checkout attempt, whatever its
	// outcome.
	StorePurchase(ctx context.Context, result *types.CheckoutResult) error

	// Close closes the storage connection.
	Close() error
}
