package menuparse

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	currencyPattern    = regexp.MustCompile(`[$₹€,]`)
	priceNumberPattern = regexp.MustCompile(`\d+\.?\d*`)
)

// ParsePrice extracts a numeric price from a free-form token. Currency
// symbols and thousands separators are stripped, and a range token
// ("100-150") resolves to its lower bound. Returns nil when the token
// carries no parseable number; never panics.
func ParsePrice(token string) *float64 {
	s := strings.TrimSpace(token)
	if s == "" {
		return nil
	}
	s = currencyPattern.ReplaceAllString(s, "")
	if i := strings.Index(s, "-"); i >= 0 {
		s = s[:i]
	}
	m := priceNumberPattern.FindString(s)
	if m == "" {
		return nil
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(m, "."), 64)
	if err != nil {
		return nil
	}
	return &v
}

// ParsePriceValue adapts ParsePrice to the decoded-JSON boundary where
// a price arrives as a number, a printed string, or nothing at all.
func ParsePriceValue(v any) *float64 {
	switch t := v.(type) {
	case float64:
		return &t
	case string:
		return ParsePrice(t)
	default:
		return nil
	}
}
