// Package valueobject contains value objects that represent concepts without identity.
package valueobject

import "strings"

// ShippingAddress describes where a cart is being delivered.
// Only the city takes part in pricing; the state is carried for display.
type ShippingAddress struct {
	// City is free text and matched case-insensitively.
	City string `json:"city"`

	// State is display-only.
	State string `json:"state,omitempty"`
}

// NewShippingAddress creates a new ShippingAddress value object.
func NewShippingAddress(city, state string) ShippingAddress {
	return ShippingAddress{
		City:  city,
		State: state,
	}
}

// NormalizedCity returns the city trimmed and lowercased, the form used as a
// zone lookup key.
//
// Returns:
//   - string: normalized city, empty if no city was given
func (a ShippingAddress) NormalizedCity() string {
	return NormalizeCity(a.City)
}

// String returns a formatted string representation.
//
// Returns:
//   - string: formatted address (e.g., "Mumbai, Maharashtra")
func (a ShippingAddress) String() string {
	city := strings.TrimSpace(a.City)
	state := strings.TrimSpace(a.State)
	switch {
	case city == "":
		return state
	case state == "":
		return city
	default:
		return city + ", " + state
	}
}

// NormalizeCity trims and lowercases a city name.
func NormalizeCity(city string) string {
	return strings.ToLower(strings.TrimSpace(city))
}
