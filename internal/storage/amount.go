package storage

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"bookkeeper/internal/apperr"
)

// amountValue converts d to the REAL bound into amount columns. Values that
// would overflow to infinity or underflow to zero are refused.
func amountValue(d decimal.Decimal) (float64, error) {
	f := d.InexactFloat64()
	if math.IsInf(f, 0) || math.IsNaN(f) || (f == 0) != d.IsZero() {
		return 0, apperr.Invalid("amount", "out of the storable range")
	}
	return f, nil
}

// amountColumn scans a REAL amount into a decimal. Non-finite values are an
// error rather than a panic inside decimal.
type amountColumn struct {
	dst *decimal.Decimal
}

func (a amountColumn) Scan(src any) error {
	if f, ok := src.(float64); ok && (math.IsInf(f, 0) || math.IsNaN(f)) {
		return fmt.Errorf("amount %v is not a finite number", f)
	}
	return a.dst.Scan(src)
}
