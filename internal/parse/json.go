package parse

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// offerJSONResponse matches the fast-path endpoint used when a listing id is
// already known. The endpoint either returns an item list or a statusList
// payload meaning "not in stock".
type offerJSONResponse struct {
	Items []struct {
		ListingID string `json:"offerListingId"`
	} `json:"items"`
	StatusList []struct {
		Status string `json:"status"`
	} `json:"statusList"`
}

// OfferJSON parses the known-offer-id endpoint response. inStock is false
// when the statusList sentinel is present or no items came back.
func OfferJSON(body []byte) (inStock bool, listingIDs []string, err error) {
	var resp offerJSONResponse
	err = json.Unmarshal(body, &resp)
	if err != nil {
		return false, nil, fmt.Errorf("parse offer json: %w", err)
	}

	if len(resp.StatusList) > 0 {
		return false, nil, nil
	}

	for _, item := range resp.Items {
		if item.ListingID != "" {
			listingIDs = append(listingIDs, item.ListingID)
		}
	}

	return len(listingIDs) > 0, listingIDs, nil
}
