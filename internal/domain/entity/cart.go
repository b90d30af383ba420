// Package entity contains the core business entities of the domain layer.
package entity

import (
	"errors"
	"fmt"
	"math"

	"github.com/hapkiduki/shipping-go/internal/domain/valueobject"
)

// ErrInvalidCartLine is the sentinel matched by every cart line validation failure.
var ErrInvalidCartLine = errors.New("invalid cart line")

// DefaultUnitWeightGrams is the weight assumed for a unit with no declared
// weight, a typical packaged-goods parcel.
const DefaultUnitWeightGrams = 250

// InvalidCartLineError describes which cart line failed validation and why.
type InvalidCartLineError struct {
	// Index is the zero-based position of the line in the cart.
	Index int

	// Field is the offending field (price, quantity, weight_grams).
	Field string

	// Reason is a human-readable explanation.
	Reason string

	// Value is the rejected value, or nil when it is not a finite number.
	Value any
}

// Error implements the error interface.
func (e *InvalidCartLineError) Error() string {
	return fmt.Sprintf("invalid cart line %d: %s %s", e.Index, e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrInvalidCartLine) succeed.
func (e *InvalidCartLineError) Is(target error) bool {
	return target == ErrInvalidCartLine
}

// CartLine is one line item of a storefront cart.
// Lines are supplied by the cart subsystem and never mutated here.
type CartLine struct {
	// ProductID identifies the product (opaque, informational).
	ProductID string `json:"product_id,omitempty"`

	// Price is the unit selling price in major currency units.
	Price float64 `json:"price"`

	// Quantity is the number of units.
	Quantity int `json:"quantity"`

	// WeightGrams is the unit weight; nil means DefaultUnitWeightGrams.
	WeightGrams *float64 `json:"weight_grams,omitempty"`
}

// NewCartLine creates a CartLine with an explicit unit weight.
func NewCartLine(price float64, quantity int, weightGrams float64) CartLine {
	w := weightGrams
	return CartLine{Price: price, Quantity: quantity, WeightGrams: &w}
}

// Validate checks the line's numeric fields.
//
// Parameters:
//   - index: position of the line, reported in the error
//
// Returns:
//   - error: *InvalidCartLineError if a field is out of range
func (l CartLine) Validate(index int) error {
	if math.IsNaN(l.Price) || math.IsInf(l.Price, 0) {
		return &InvalidCartLineError{Index: index, Field: "price", Reason: "must be a finite number"}
	}
	if l.Price < 0 {
		return &InvalidCartLineError{Index: index, Field: "price", Reason: "cannot be negative", Value: l.Price}
	}
	if l.Quantity < 1 {
		return &InvalidCartLineError{Index: index, Field: "quantity", Reason: "must be at least 1", Value: l.Quantity}
	}
	if l.WeightGrams != nil {
		if _, err := valueobject.NewWeightFromGrams(*l.WeightGrams); err != nil {
			lineErr := &InvalidCartLineError{Index: index, Field: "weight_grams", Reason: "must be a positive finite number"}
			if g := *l.WeightGrams; !math.IsNaN(g) && !math.IsInf(g, 0) {
				lineErr.Value = g
			}
			return lineErr
		}
	}
	return nil
}

// UnitWeight returns the declared unit weight, or the given default when the
// line declares none. The line must have been validated.
func (l CartLine) UnitWeight(defaultGrams float64) valueobject.Weight {
	grams := defaultGrams
	if l.WeightGrams != nil {
		grams = *l.WeightGrams
	}
	w, err := valueobject.NewWeightFromGrams(grams)
	if err != nil {
		return valueobject.Weight{}
	}
	return w
}

// LineTotal returns price × quantity.
func (l CartLine) LineTotal(currency valueobject.Currency) valueobject.Money {
	return valueobject.NewMoneyFromFloat(l.Price, currency).Multiply(l.Quantity)
}

// Cart is an ordered list of cart lines.
type Cart []CartLine

// Validate validates every line and returns the first failure.
func (c Cart) Validate() error {
	for i, line := range c {
		if err := line.Validate(i); err != nil {
			return err
		}
	}
	return nil
}

// IsEmpty reports whether the cart has no lines.
func (c Cart) IsEmpty() bool {
	return len(c) == 0
}

// Subtotal returns Σ price × quantity. Weight plays no part.
func (c Cart) Subtotal(currency valueobject.Currency) valueobject.Money {
	total := valueobject.Zero(currency)
	for _, line := range c {
		total = total.Add(line.LineTotal(currency))
	}
	return total
}

// TotalWeight returns the combined weight of all units, using defaultGrams for
// lines without a declared weight.
func (c Cart) TotalWeight(defaultGrams float64) valueobject.Weight {
	var total valueobject.Weight
	for _, line := range c {
		total = total.Add(line.UnitWeight(defaultGrams).Times(line.Quantity))
	}
	return total
}
