package types

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Merchant filter sentinels. Anything else in MonitoredItem.Merchant is an
// exact merchant id.
const (
	MerchantAny        = "any"
	MerchantFirstParty = "first-party"
)

// MonitoredItem is one product listing under watch. It is created once at
// configuration load and owned by whichever monitor worker currently checks
// it; only that worker mutates the status fields.
type MonitoredItem struct {
	// ID is the site-specific SKU/ASIN.
	ID string `yaml:"id"`

	MinPrice Money `yaml:"min_price"`
	MaxPrice Money `yaml:"max_price"`

	// Condition is the minimum accepted tier; ConditionAny disables the check.
	Condition Condition `yaml:"condition"`

	// Merchant is "any", "first-party", or an exact merchant id.
	Merchant string `yaml:"merchant_id"`

	// AcceptPaidShipping allows offers with non-free shipping.
	AcceptPaidShipping bool `yaml:"accept_paid_shipping"`

	// PurchaseDelay is the minimum wait between discovering a qualifying
	// offer and attempting the purchase, used to dodge synchronized bot
	// storms hitting the same restock.
	PurchaseDelay Duration `yaml:"purchase_delay"`

	// Worker pools run on real goroutines, so the owned-mutation rule is
	// backed by a lock rather than scheduling order.
	mu sync.Mutex

	lastStatus       int
	firstQualifiedAt time.Time
}

// SetLastStatus records the most recent stock-check HTTP status.
func (i *MonitoredItem) SetLastStatus(status int) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.lastStatus = status
}

// LastStatus returns the most recent stock-check HTTP status.
func (i *MonitoredItem) LastStatus() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.lastStatus
}

// MarkQualified records the first time a qualifying offer was discovered and
// returns that time. Subsequent calls return the original discovery time, so
// the purchase-delay gate measures from first discovery.
func (i *MonitoredItem) MarkQualified(now time.Time) time.Time {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.firstQualifiedAt.IsZero() {
		i.firstQualifiedAt = now
	}
	return i.firstQualifiedAt
}

// Validate checks the constraints a loaded item must satisfy.
func (i *MonitoredItem) Validate() error {
	if strings.TrimSpace(i.ID) == "" {
		return fmt.Errorf("item id cannot be empty")
	}
	if i.MaxPrice <= 0 {
		return fmt.Errorf("item %s: max_price must be positive", i.ID)
	}
	if i.MinPrice > i.MaxPrice {
		return fmt.Errorf("item %s: min_price %s exceeds max_price %s", i.ID, i.MinPrice, i.MaxPrice)
	}
	if i.PurchaseDelay < 0 {
		return fmt.Errorf("item %s: purchase_delay cannot be negative", i.ID)
	}
	if i.Merchant == "" {
		i.Merchant = MerchantAny
	}
	return nil
}
