package qualify

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mselser95/restock-sniper/pkg/types"
)

// Rejection reasons used for logs and metrics labels.
const (
	ReasonShipping  = "shipping"
	ReasonCondition = "condition"
	ReasonPrice     = "price"
	ReasonMerchant  = "merchant"
)

// Qualifier decides whether a parsed seller offer satisfies an item's
// constraints. It is a pure filter pipeline: shipping, condition, price band,
// merchant, short-circuiting on the first failing stage.
type Qualifier struct {
	firstParty map[string]struct{}
	logger     *zap.Logger
}

// Config holds qualifier configuration.
type Config struct {
	// FirstPartySellers is the merchant-id allow-list matched when an item
	// requests "first-party".
	FirstPartySellers []string

	Logger *zap.Logger
}

// New creates a new offer qualifier.
func New(cfg *Config) (*Qualifier, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	firstParty := make(map[string]struct{}, len(cfg.FirstPartySellers))
	for _, id := range cfg.FirstPartySellers {
		firstParty[id] = struct{}{}
	}

	return &Qualifier{
		firstParty: firstParty,
		logger:     cfg.Logger,
	}, nil
}

// Qualify scans offers in page order and returns the first one that clears
// every stage. Page ordering is trusted; offers are not re-sorted.
func (q *Qualifier) Qualify(item *types.MonitoredItem, offers []*types.SellerOffer) (*types.SellerOffer, bool) {
	for _, offer := range offers {
		OffersEvaluatedTotal.Inc()

		reason, ok := q.check(item, offer)
		if ok {
			OffersQualifiedTotal.Inc()
			q.logger.Info("offer-qualified",
				zap.String("item-id", item.ID),
				zap.String("listing-id", offer.ListingID),
				zap.String("merchant-id", offer.MerchantID),
				zap.String("price", offer.Price.String()),
				zap.String("condition", offer.Condition.String()))
			return offer, true
		}

		OffersRejectedTotal.WithLabelValues(reason).Inc()
		q.logger.Debug("offer-rejected",
			zap.String("item-id", item.ID),
			zap.String("listing-id", offer.ListingID),
			zap.String("reason", reason))
	}

	return nil, false
}

// check runs the four stages against a single offer, returning the failing
// stage's reason or ok.
func (q *Qualifier) check(item *types.MonitoredItem, offer *types.SellerOffer) (string, bool) {
	// Stage 1: shipping must be free unless the item accepts paid shipping.
	if offer.Shipping > 0 && !item.AcceptPaidShipping {
		return ReasonShipping, false
	}

	// Stage 2: condition tier, skipped entirely on the wildcard.
	if item.Condition != types.ConditionAny && !offer.Condition.AtLeast(item.Condition) {
		return ReasonCondition, false
	}

	// Stage 3: price band over price plus shipping.
	total := offer.Total()
	if total < item.MinPrice || total > item.MaxPrice {
		return ReasonPrice, false
	}

	// Stage 4: merchant filter.
	if !q.merchantAccepted(item, offer) {
		return ReasonMerchant, false
	}

	return "", true
}

func (q *Qualifier) merchantAccepted(item *types.MonitoredItem, offer *types.SellerOffer) bool {
	switch item.Merchant {
	case types.MerchantAny:
		return true
	case types.MerchantFirstParty:
		_, ok := q.firstParty[offer.MerchantID]
		return ok
	default:
		return offer.MerchantID == item.Merchant
	}
}
