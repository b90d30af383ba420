package valueobject

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// ErrInvalidWeight is returned for weights that are not finite and positive.
var ErrInvalidWeight = errors.New("weight must be a positive finite number")

var gramsPerKg = decimal.NewFromInt(1000)

// Weight is a shipping weight held in grams.
type Weight struct {
	grams decimal.Decimal
}

// NewWeightFromGrams creates a Weight from a gram amount.
//
// Returns:
//   - Weight: the created Weight
//   - error: ErrInvalidWeight if grams is NaN, infinite, zero or negative
func NewWeightFromGrams(grams float64) (Weight, error) {
	if math.IsNaN(grams) || math.IsInf(grams, 0) || grams <= 0 {
		return Weight{}, fmt.Errorf("%w: %v", ErrInvalidWeight, grams)
	}
	return Weight{grams: decimal.NewFromFloat(grams)}, nil
}

// Kilograms returns the weight in kilograms, unrounded.
func (w Weight) Kilograms() decimal.Decimal {
	return w.grams.Div(gramsPerKg)
}

// Times returns the weight of n identical units.
func (w Weight) Times(n int) Weight {
	return Weight{grams: w.grams.Mul(decimal.NewFromInt(int64(n)))}
}

// Add returns the combined weight.
func (w Weight) Add(other Weight) Weight {
	return Weight{grams: w.grams.Add(other.grams)}
}

// IsZero reports whether the weight is zero.
func (w Weight) IsZero() bool {
	return w.grams.IsZero()
}

// String returns the weight in kilograms with two decimals (e.g., "1.25 kg").
func (w Weight) String() string {
	return w.Kilograms().StringFixed(2) + " kg"
}
