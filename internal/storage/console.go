package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mselser95/restock-sniper/pkg/types"
)

// ConsoleStorage implements Storage by pretty-printing to console.
type ConsoleStorage struct {
	logger *zap.Logger
}

// NewConsoleStorage creates a new console storage.
func NewConsoleStorage(logger *zap.Logger) *ConsoleStorage {
	logger.Info("console-storage-initialized")
	return &ConsoleStorage{
		logger: logger,
	}
}

// StoreQualifiedOffer pretty-prints a qualified offer to console.
func (c *ConsoleStorage) StoreQualifiedOffer(ctx context.Context, offer *types.QualifiedOffer) error {
	fmt.Println("\n" + "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("🔎 QUALIFIED OFFER\n")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("ID:         %s\n", offer.ID[:8])
	fmt.Printf("Item:       %s\n", offer.ItemID)
	fmt.Printf("Listing:    %s\n", offer.ListingID)
	fmt.Printf("Discovered: %s\n", offer.DiscoveredAt.Format("2006-01-02 15:04:05"))
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	return nil
}

// StorePurchase pretty-prints a purchase attempt to console.
func (c *ConsoleStorage) StorePurchase(ctx context.Context, result *types.CheckoutResult) error {
	banner := "💥 CHECKOUT FAILED"
	switch result.Outcome {
	case types.CheckoutCommitted:
		banner = "✅ PURCHASE COMMITTED"
	case types.CheckoutUnconfirmed:
		banner = "❓ PURCHASE UNCONFIRMED"
	}

	fmt.Println("\n" + "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("%s\n", banner)
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("Item:        %s\n", result.ItemID)
	fmt.Printf("Listing:     %s\n", result.ListingID)
	if result.PurchaseID != "" {
		fmt.Printf("Purchase ID: %s\n", result.PurchaseID)
	}
	fmt.Printf("Status:      %d\n", result.StatusCode)
	fmt.Printf("Time:        %s\n", result.ExecutedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Latency:     %s\n", result.Latency)
	if result.Err != nil {
		fmt.Printf("Error:       %v\n", result.Err)
	}
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	return nil
}

// Close is a no-op for console storage.
func (c *ConsoleStorage) Close() error {
	c.logger.Info("closing-console-storage")
	return nil
}
