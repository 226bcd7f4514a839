// Package core holds the domain types shared by every layer: dates and
// month keys, money in integer cents, and the ledger entities.
package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is an amount in integer minor units (cents). The engine never
// stores or computes with floating point.
type Money struct {
	Cents int64
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// String formats the amount as a plain decimal, e.g. "12.34".
func (m Money) String() string {
	return decimal.New(m.Cents, -2).StringFixed(2)
}

// ParseAmountCents converts a decimal string ("12.34", "12,34") to positive
// cents, rounding half-up on the third decimal place. Only the boundary
// parses decimals; everything past it works in cents.
func ParseAmountCents(s string) (int64, error) {
	normalized := ""
	for _, r := range s {
		switch r {
		case ',':
			normalized += "."
		case ' ', '\t':
		default:
			normalized += string(r)
		}
	}
	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	cents := d.Shift(2).Round(0).IntPart()
	if cents <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return cents, nil
}
