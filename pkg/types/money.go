package types

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Money is a monetary amount in cents. Item configuration accepts prices as
// either numbers or currency-formatted strings; both are normalized into this
// type at load time so nothing downstream has to branch on representation.
type Money int64

// ParseMoney parses a price from its configuration representation.
// Accepted forms: 549, 549.99, "549.99", "$1,299.99", "1299".
func ParseMoney(raw string) (Money, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, fmt.Errorf("empty price")
	}

	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")

	negative := strings.HasPrefix(s, "-")
	if negative {
		return 0, fmt.Errorf("negative price %q", raw)
	}

	whole, frac, hasFrac := strings.Cut(s, ".")

	dollars, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q: %w", raw, err)
	}

	cents := int64(0)
	if hasFrac {
		if len(frac) > 2 {
			frac = frac[:2]
		}
		for len(frac) < 2 {
			frac += "0"
		}
		cents, err = strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid price %q: %w", raw, err)
		}
	}

	return Money(dollars*100 + cents), nil
}

// Float64 returns the amount in whole currency units.
func (m Money) Float64() float64 {
	return float64(m) / 100.0
}

// String formats the amount as a plain decimal, e.g. "549.99".
func (m Money) String() string {
	return fmt.Sprintf("%d.%02d", m/100, m%100)
}

// UnmarshalYAML accepts both numeric and string scalars for price fields.
func (m *Money) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("price must be a scalar, got %v", value.Kind)
	}

	parsed, err := ParseMoney(value.Value)
	if err != nil {
		return err
	}

	*m = parsed
	return nil
}
