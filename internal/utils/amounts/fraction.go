package amounts

import (
	"github.com/shopspring/decimal"
)

// Fractional amounts keep at least MinScale and at most MaxScale decimal
// digits. Amounts more precise than MaxScale round half-up.
const (
	MinScale = 2
	MaxScale = 6
)

// ToFraction converts a decimal amount to an exact (numerator, denominator)
// pair using the smallest power-of-ten denominator that preserves the
// amount's precision within [MinScale, MaxScale] digits.
// FromFraction(ToFraction(x)) == x for any x with at most MaxScale
// fractional digits.
func ToFraction(amount decimal.Decimal) (numerator int64, denominator int64) {
	return ToFractionScaled(amount, MinScale, MaxScale)
}

// ToFractionScaled is ToFraction with explicit scale bounds.
func ToFractionScaled(amount decimal.Decimal, minScale, maxScale int32) (int64, int64) {
	scale := -amount.Exponent()
	if scale < minScale {
		scale = minScale
	}
	if scale > maxScale {
		scale = maxScale
	}
	denominator := decimal.New(1, scale)
	// Round is half away from zero, matching half-up for monetary input.
	numerator := amount.Mul(denominator).Round(0)
	return numerator.IntPart(), denominator.IntPart()
}

// FromFraction restores the decimal amount from a (numerator, denominator)
// pair. A zero or negative denominator is treated as 1.
func FromFraction(numerator, denominator int64) decimal.Decimal {
	if denominator <= 0 {
		denominator = 1
	}
	return decimal.NewFromInt(numerator).DivRound(decimal.NewFromInt(denominator), MaxScale+2)
}
