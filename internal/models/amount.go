package models

import (
	"errors"

	"github.com/shopspring/decimal"
)

// AmountPlaces is the number of decimal places an amount may carry.
const AmountPlaces = 2

// MaxAmount bounds every amount so its REAL column value stays exact to the cent.
var MaxAmount = decimal.New(1, 12)

// Reasons CheckAmount rejects an amount.
var (
	ErrAmountTooLarge   = errors.New("must be below 1,000,000,000,000")
	ErrAmountTooPrecise = errors.New("must have at most 2 decimal places")
)

// CheckAmount reports whether d fits the stored range and precision. Sign is
// left to the caller.
func CheckAmount(d decimal.Decimal) error {
	if d.Abs().GreaterThanOrEqual(MaxAmount) {
		return ErrAmountTooLarge
	}
	if !d.Equal(d.Truncate(AmountPlaces)) {
		return ErrAmountTooPrecise
	}
	return nil
}
