package qualify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mselser95/restock-sniper/pkg/types"
)

func newQualifier(t *testing.T) *Qualifier {
	t.Helper()

	q, err := New(&Config{
		FirstPartySellers: []string{"ATVPDKIKX0DER"},
		Logger:            zap.NewNop(),
	})
	require.NoError(t, err)

	return q
}

// baseItem mirrors the standing example: min 500, max 800, condition New,
// any merchant, free shipping only.
func baseItem() *types.MonitoredItem {
	return &types.MonitoredItem{
		ID:        "B08XYZ1234",
		MinPrice:  50000,
		MaxPrice:  80000,
		Condition: types.ConditionNew,
		Merchant:  types.MerchantAny,
	}
}

func offer(price, shipping types.Money, cond types.Condition, merchant string) *types.SellerOffer {
	return &types.SellerOffer{
		MerchantID: merchant,
		Price:      price,
		Shipping:   shipping,
		Condition:  cond,
		ListingID:  "listing-1",
	}
}

func TestQualify(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*types.MonitoredItem)
		offer   *types.SellerOffer
		qualify bool
	}{
		{
			name:    "in-band-new-offer-qualifies",
			offer:   offer(70000, 0, types.ConditionNew, "ATVPDKIKX0DER"),
			qualify: true,
		},
		{
			name:    "above-max-price-rejected",
			offer:   offer(85000, 0, types.ConditionNew, "ATVPDKIKX0DER"),
			qualify: false,
		},
		{
			name:    "below-min-price-rejected",
			offer:   offer(40000, 0, types.ConditionNew, "ATVPDKIKX0DER"),
			qualify: false,
		},
		{
			name:    "paid-shipping-rejected-by-default",
			offer:   offer(70000, 2000, types.ConditionNew, "ATVPDKIKX0DER"),
			qualify: false,
		},
		{
			name:    "paid-shipping-accepted-when-item-allows",
			mutate:  func(i *types.MonitoredItem) { i.AcceptPaidShipping = true },
			offer:   offer(70000, 2000, types.ConditionNew, "ATVPDKIKX0DER"),
			qualify: true,
		},
		{
			name: "shipping-counts-toward-price-band",
			mutate: func(i *types.MonitoredItem) {
				i.AcceptPaidShipping = true
			},
			offer:   offer(79500, 1000, types.ConditionNew, "ATVPDKIKX0DER"),
			qualify: false, // 795 + 10 = 805 > 800
		},
		{
			name:    "condition-below-minimum-rejected",
			offer:   offer(70000, 0, types.ConditionLikeNew, "ATVPDKIKX0DER"),
			qualify: false,
		},
		{
			name:    "condition-check-skipped-on-wildcard",
			mutate:  func(i *types.MonitoredItem) { i.Condition = types.ConditionAny },
			offer:   offer(70000, 0, types.ConditionUsed, "ATVPDKIKX0DER"),
			qualify: true,
		},
		{
			name:    "higher-condition-accepted",
			mutate:  func(i *types.MonitoredItem) { i.Condition = types.ConditionGood },
			offer:   offer(70000, 0, types.ConditionLikeNew, "ATVPDKIKX0DER"),
			qualify: true,
		},
		{
			name:    "first-party-filter-accepts-allow-listed-merchant",
			mutate:  func(i *types.MonitoredItem) { i.Merchant = types.MerchantFirstParty },
			offer:   offer(70000, 0, types.ConditionNew, "ATVPDKIKX0DER"),
			qualify: true,
		},
		{
			name:    "first-party-filter-rejects-third-party",
			mutate:  func(i *types.MonitoredItem) { i.Merchant = types.MerchantFirstParty },
			offer:   offer(70000, 0, types.ConditionNew, "A3THIRDPARTY"),
			qualify: false,
		},
		{
			name:    "specific-merchant-match",
			mutate:  func(i *types.MonitoredItem) { i.Merchant = "A3THIRDPARTY" },
			offer:   offer(70000, 0, types.ConditionNew, "A3THIRDPARTY"),
			qualify: true,
		},
		{
			name:    "specific-merchant-mismatch",
			mutate:  func(i *types.MonitoredItem) { i.Merchant = "A3THIRDPARTY" },
			offer:   offer(70000, 0, types.ConditionNew, "ATVPDKIKX0DER"),
			qualify: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := newQualifier(t)
			item := baseItem()
			if tt.mutate != nil {
				tt.mutate(item)
			}

			got, ok := q.Qualify(item, []*types.SellerOffer{tt.offer})
			assert.Equal(t, tt.qualify, ok)
			if tt.qualify {
				assert.Same(t, tt.offer, got)
			}
		})
	}
}

func TestFirstMatchWinsInPageOrder(t *testing.T) {
	q := newQualifier(t)
	item := baseItem()

	first := offer(85000, 0, types.ConditionNew, "ATVPDKIKX0DER") // fails price
	second := offer(70000, 0, types.ConditionNew, "ATVPDKIKX0DER")
	third := offer(60000, 0, types.ConditionNew, "ATVPDKIKX0DER") // cheaper, but later

	got, ok := q.Qualify(item, []*types.SellerOffer{first, second, third})
	require.True(t, ok)
	assert.Same(t, second, got, "page order is trusted, not re-sorted")
}

func TestNoOffers(t *testing.T) {
	q := newQualifier(t)

	_, ok := q.Qualify(baseItem(), nil)
	assert.False(t, ok)
}
