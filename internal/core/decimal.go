package core

import "github.com/shopspring/decimal"

// Decimal is the fixed-precision type used for every quantity, cost, and
// conversion factor in the system. Binary floats are never used for a
// monetary or quantity value anywhere in this module.
type Decimal = decimal.Decimal

// Zero is the canonical zero-value Decimal.
var Zero = decimal.Zero

// NewDecimalFromInt builds a Decimal from a plain integer quantity.
func NewDecimalFromInt(v int64) Decimal {
	return decimal.NewFromInt(v)
}

// NewDecimalFromString parses a fixed-precision literal (e.g. "1.0000").
func NewDecimalFromString(s string) (Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, NewError(ErrValidation, "InvalidDecimal", "not a valid decimal: "+s)
	}
	return d, nil
}

// RoundBank rounds d to scale using banker's rounding (round-half-to-even),
// the policy the UOM service uses for every conversion.
func RoundBank(d Decimal, scale int32) Decimal {
	return d.RoundBank(scale)
}

// MustDecimal parses a literal that is known at compile time to be
// valid (e.g. a conversion-table constant), panicking otherwise.
func MustDecimal(s string) Decimal {
	d, err := NewDecimalFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}
