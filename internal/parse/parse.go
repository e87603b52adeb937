package parse

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/mselser95/restock-sniper/pkg/types"
)

// Stable element markers in the offer listing page. These survive page
// redesigns far better than layout classes do.
const (
	offerContainerClass = "olp-offer"
	priceClass          = "olp-offer-price"
	shippingClass       = "olp-shipping-price"
	conditionClass      = "olp-offer-condition"
	productIDField      = "ASIN"
	listingIDField      = "offeringID.1"
	merchantIDField     = "merchantID"
	captchaFormMarker   = "validateCaptcha"
	captchaTextField    = "field-keywords"
)

// Challenge is a server-issued CAPTCHA page interrupting the normal response
// flow. Fields carries every hidden form value so the resubmission can pass
// non-text fields through unchanged.
type Challenge struct {
	ImageURL   string
	FormAction string
	Fields     map[string]string
	TextField  string
}

// Result is everything extracted from one listing response body.
type Result struct {
	// ProductID is the page's own item identifier, used to detect
	// stale/cached pages served for the wrong item.
	ProductID string

	Offers []*types.SellerOffer

	// Captcha is non-nil when the body is a challenge page; Offers is then
	// empty.
	Captcha *Challenge
}

// Listing parses an offer listing page. A body that is neither a listing nor
// a challenge page returns an error so the caller can charge a failure.
func Listing(body []byte) (*Result, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	if challenge := findChallenge(doc); challenge != nil {
		return &Result{Captcha: challenge}, nil
	}

	result := &Result{
		ProductID: hiddenInputValue(doc, productIDField),
	}

	for _, container := range elementsByClass(doc, "div", offerContainerClass) {
		offer, offerErr := parseOffer(container)
		if offerErr != nil {
			// One malformed block does not discard the rest of the page.
			continue
		}
		result.Offers = append(result.Offers, offer)
	}

	if result.ProductID == "" && len(result.Offers) == 0 {
		return nil, fmt.Errorf("unrecognized response body")
	}

	return result, nil
}

func parseOffer(container *html.Node) (*types.SellerOffer, error) {
	priceText := textByClass(container, priceClass)
	if priceText == "" {
		return nil, fmt.Errorf("offer block missing price node")
	}

	price, err := types.ParseMoney(priceText)
	if err != nil {
		return nil, fmt.Errorf("offer price: %w", err)
	}

	shipping := types.Money(0)
	if shippingText := textByClass(container, shippingClass); shippingText != "" {
		if !strings.Contains(strings.ToLower(shippingText), "free") {
			shipping, err = types.ParseMoney(strings.TrimPrefix(shippingText, "+"))
			if err != nil {
				return nil, fmt.Errorf("offer shipping: %w", err)
			}
		}
	}

	condition, _ := types.ParseCondition(textByClass(container, conditionClass))

	listingID := hiddenInputValue(container, listingIDField)
	if listingID == "" {
		return nil, fmt.Errorf("offer block missing add-to-cart listing id")
	}

	return &types.SellerOffer{
		MerchantID: hiddenInputValue(container, merchantIDField),
		Price:      price,
		Shipping:   shipping,
		Condition:  condition,
		ListingID:  listingID,
		AddToCart:  hiddenInputs(container),
	}, nil
}

// findChallenge detects the CAPTCHA form marker and collects its fields.
func findChallenge(doc *html.Node) *Challenge {
	for _, form := range elements(doc, "form") {
		action := attr(form, "action")
		if !strings.Contains(action, captchaFormMarker) {
			continue
		}

		challenge := &Challenge{
			FormAction: action,
			Fields:     hiddenInputs(form),
			TextField:  captchaTextField,
		}

		for _, img := range elements(form, "img") {
			if src := attr(img, "src"); src != "" {
				challenge.ImageURL = src
				break
			}
		}

		return challenge
	}

	return nil
}

// --- node walking helpers ---

func walk(n *html.Node, visit func(*html.Node)) {
	visit(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, visit)
	}
}

func elements(root *html.Node, tag string) []*html.Node {
	var out []*html.Node
	walk(root, func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == tag {
			out = append(out, n)
		}
	})
	return out
}

func elementsByClass(root *html.Node, tag, class string) []*html.Node {
	var out []*html.Node
	walk(root, func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == tag && hasClass(n, class) {
			out = append(out, n)
		}
	})
	return out
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// textByClass returns the trimmed text content of the first node of any tag
// with the given class.
func textByClass(root *html.Node, class string) string {
	var found *html.Node
	walk(root, func(n *html.Node) {
		if found == nil && n.Type == html.ElementNode && hasClass(n, class) {
			found = n
		}
	})
	if found == nil {
		return ""
	}

	var sb strings.Builder
	walk(found, func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
	})
	return strings.TrimSpace(sb.String())
}

// hiddenInputValue returns the value of the first hidden input with the
// given name under root.
func hiddenInputValue(root *html.Node, name string) string {
	return hiddenInputs(root)[name]
}

func hiddenInputs(root *html.Node) map[string]string {
	out := map[string]string{}
	walk(root, func(n *html.Node) {
		if n.Type != html.ElementNode || n.Data != "input" {
			return
		}
		if attr(n, "type") != "hidden" {
			return
		}
		if name := attr(n, "name"); name != "" {
			if _, exists := out[name]; !exists {
				out[name] = attr(n, "value")
			}
		}
	})
	return out
}
