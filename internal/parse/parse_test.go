package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mselser95/restock-sniper/pkg/types"
)

const listingFixture = `<!DOCTYPE html>
<html><body>
<input type="hidden" name="ASIN" value="B08XYZ1234"/>
<div class="olp-offer">
  <span class="olp-offer-price">$699.99</span>
  <span class="olp-shipping-price">FREE Shipping</span>
  <h3 class="olp-offer-condition">New</h3>
  <form method="post" action="/gp/item-dispatch">
    <input type="hidden" name="offeringID.1" value="listing-aaa"/>
    <input type="hidden" name="merchantID" value="ATVPDKIKX0DER"/>
    <input type="hidden" name="session-id" value="s-1"/>
  </form>
</div>
<div class="olp-offer">
  <span class="olp-offer-price">$649.00</span>
  <span class="olp-shipping-price">+ $19.99</span>
  <h3 class="olp-offer-condition">Used - Like New</h3>
  <form method="post" action="/gp/item-dispatch">
    <input type="hidden" name="offeringID.1" value="listing-bbb"/>
    <input type="hidden" name="merchantID" value="A3THIRDPARTY"/>
  </form>
</div>
</body></html>`

const captchaFixture = `<!DOCTYPE html>
<html><body>
<form method="get" action="/errors/validateCaptcha">
  <input type="hidden" name="amzn" value="token-123"/>
  <input type="hidden" name="amzn-r" value="/gp/offer-listing/B08XYZ1234"/>
  <img src="https://images.example.com/captcha/abc.jpg"/>
  <input type="text" name="field-keywords"/>
</form>
</body></html>`

const outOfStockFixture = `<!DOCTYPE html>
<html><body>
<input type="hidden" name="ASIN" value="B08XYZ1234"/>
<div id="no-offers">Currently unavailable.</div>
</body></html>`

func TestListingExtractsOffers(t *testing.T) {
	result, err := Listing([]byte(listingFixture))
	require.NoError(t, err)
	require.Nil(t, result.Captcha)

	assert.Equal(t, "B08XYZ1234", result.ProductID)
	require.Len(t, result.Offers, 2)

	first := result.Offers[0]
	assert.Equal(t, "listing-aaa", first.ListingID)
	assert.Equal(t, "ATVPDKIKX0DER", first.MerchantID)
	assert.Equal(t, types.Money(69999), first.Price)
	assert.Equal(t, types.Money(0), first.Shipping, "FREE Shipping parses as zero")
	assert.Equal(t, types.ConditionNew, first.Condition)
	assert.Equal(t, "s-1", first.AddToCart["session-id"], "hidden fields pass through")

	second := result.Offers[1]
	assert.Equal(t, "listing-bbb", second.ListingID)
	assert.Equal(t, types.Money(64900), second.Price)
	assert.Equal(t, types.Money(1999), second.Shipping)
	assert.Equal(t, types.ConditionLikeNew, second.Condition)
}

func TestListingPreservesPageOrder(t *testing.T) {
	result, err := Listing([]byte(listingFixture))
	require.NoError(t, err)

	require.Len(t, result.Offers, 2)
	assert.Equal(t, "listing-aaa", result.Offers[0].ListingID)
	assert.Equal(t, "listing-bbb", result.Offers[1].ListingID)
}

func TestListingDetectsCaptcha(t *testing.T) {
	result, err := Listing([]byte(captchaFixture))
	require.NoError(t, err)

	require.NotNil(t, result.Captcha)
	assert.Equal(t, "https://images.example.com/captcha/abc.jpg", result.Captcha.ImageURL)
	assert.Equal(t, "/errors/validateCaptcha", result.Captcha.FormAction)
	assert.Equal(t, "field-keywords", result.Captcha.TextField)
	assert.Equal(t, "token-123", result.Captcha.Fields["amzn"])
	assert.Empty(t, result.Offers)
}

func TestListingOutOfStock(t *testing.T) {
	result, err := Listing([]byte(outOfStockFixture))
	require.NoError(t, err)

	assert.Equal(t, "B08XYZ1234", result.ProductID)
	assert.Empty(t, result.Offers)
	assert.Nil(t, result.Captcha)
}

func TestListingUnrecognizedBody(t *testing.T) {
	_, err := Listing([]byte("<html><body>nothing useful</body></html>"))
	assert.Error(t, err)
}

func TestOfferJSONInStock(t *testing.T) {
	body := `{"items":[{"offerListingId":"listing-aaa"},{"offerListingId":"listing-bbb"}]}`

	inStock, ids, err := OfferJSON([]byte(body))
	require.NoError(t, err)
	assert.True(t, inStock)
	assert.Equal(t, []string{"listing-aaa", "listing-bbb"}, ids)
}

func TestOfferJSONStatusListSentinel(t *testing.T) {
	body := `{"statusList":[{"status":"OUT_OF_STOCK"}]}`

	inStock, ids, err := OfferJSON([]byte(body))
	require.NoError(t, err)
	assert.False(t, inStock)
	assert.Empty(t, ids)
}

func TestOfferJSONMalformed(t *testing.T) {
	_, _, err := OfferJSON([]byte("<html>not json</html>"))
	assert.Error(t, err)
}
