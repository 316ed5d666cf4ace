package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is used when neither the order nor the config names one.
const DefaultCurrency = "AED"

// ParseAmount converts a decimal string amount ("99.00") to a Decimal.
// WooCommerce REST returns every money field as a string in major units.
// Empty or malformed input yields zero so display code never fails on bad data.
func ParseAmount(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// FormatAmount renders an amount with two decimals prefixed by the currency code.
// Examples: (99, "AED") → "AED 99.00", (0.5, "") → "AED 0.50"
func FormatAmount(d decimal.Decimal, currency string) string {
	if currency == "" {
		currency = DefaultCurrency
	}
	return currency + " " + d.StringFixed(2)
}
