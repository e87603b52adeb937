package types

import (
	"fmt"
	"strings"
)

// Condition is an ordered classification of item physical condition.
// Higher values are better; New outranks everything.
type Condition int

// ConditionAny is a wildcard that accepts every condition tier.
const ConditionAny Condition = -1

const (
	ConditionUnknown Condition = iota
	ConditionUsed
	ConditionAcceptable
	ConditionGood
	ConditionVeryGood
	ConditionLikeNew
	ConditionRefurbished
	ConditionNew
)

//nolint:gochecknoglobals // Lookup table for config and page parsing
var conditionNames = map[Condition]string{
	ConditionAny:         "any",
	ConditionUnknown:     "unknown",
	ConditionUsed:        "used",
	ConditionAcceptable:  "acceptable",
	ConditionGood:        "good",
	ConditionVeryGood:    "very good",
	ConditionLikeNew:     "like new",
	ConditionRefurbished: "refurbished",
	ConditionNew:         "new",
}

// ParseCondition parses a condition from config or from a page's condition
// heading. Seller pages qualify used tiers as "Used - Like New" and similar;
// the qualifier after the dash wins when present.
func ParseCondition(raw string) (Condition, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return ConditionAny, nil
	}

	if _, qualifier, found := strings.Cut(s, "-"); found {
		s = strings.TrimSpace(qualifier)
	}

	for cond, name := range conditionNames {
		if s == name {
			return cond, nil
		}
	}

	switch s {
	case "brand new":
		return ConditionNew, nil
	case "refurbished (certified)", "renewed":
		return ConditionRefurbished, nil
	}

	return ConditionUnknown, fmt.Errorf("unknown condition %q", raw)
}

// AtLeast reports whether c meets the given minimum tier.
func (c Condition) AtLeast(minimum Condition) bool {
	return c >= minimum
}

// String returns the canonical lowercase name of the tier.
func (c Condition) String() string {
	if name, ok := conditionNames[c]; ok {
		return name
	}
	return "unknown"
}

// UnmarshalText lets conditions appear directly in YAML item configs.
func (c *Condition) UnmarshalText(text []byte) error {
	parsed, err := ParseCondition(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
