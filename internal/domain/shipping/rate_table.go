// Package shipping prices storefront carts for delivery.
//
// A RateTable holds the zone and speed definitions together with the
// free-shipping policy. It is built once, validated, and never mutated, so a
// single table and the Calculator around it can be shared by any number of
// goroutines.
package shipping

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/hapkiduki/shipping-go/internal/domain/entity"
	"github.com/hapkiduki/shipping-go/internal/domain/valueobject"
)

// ErrInvalidRateTable is wrapped by every rate table validation failure.
var ErrInvalidRateTable = errors.New("invalid rate table")

// Policy holds the table-wide pricing constants.
type Policy struct {
	// Currency of every amount in the table.
	Currency valueobject.Currency

	// FreeShippingThreshold is the cart subtotal at or above which shipping is waived.
	FreeShippingThreshold decimal.Decimal

	// FreeWeightAllowanceKg is the weight covered by a zone's base cost.
	FreeWeightAllowanceKg decimal.Decimal

	// DefaultUnitWeightGrams applies to cart lines without a declared weight.
	DefaultUnitWeightGrams float64
}

// DefaultPolicy returns the compiled-in policy: INR, ₹1000 threshold,
// 0.5 kg allowance, 250 g default unit weight.
func DefaultPolicy() Policy {
	return Policy{
		Currency:               valueobject.CurrencyINR,
		FreeShippingThreshold:  decimal.NewFromInt(1000),
		FreeWeightAllowanceKg:  decimal.RequireFromString("0.5"),
		DefaultUnitWeightGrams: entity.DefaultUnitWeightGrams,
	}
}

// RateTable is an immutable, validated set of zones, speeds and policy.
type RateTable struct {
	zones      []Zone
	catchAll   int
	cityIndex  map[string]int
	duplicates []string
	speeds     []Speed
	speedIndex map[SpeedKey]int
	policy     Policy
}

// NewRateTable validates the definitions and builds the lookup indexes.
// Zones are scanned in the given order; a city listed in two zones belongs to
// the first one and is reported by DuplicateCities.
//
// Returns:
//   - *RateTable: the built table
//   - error: wrapping ErrInvalidRateTable when the definitions are inconsistent
func NewRateTable(zones []Zone, speeds []Speed, policy Policy) (*RateTable, error) {
	if err := validatePolicy(policy); err != nil {
		return nil, err
	}

	t := &RateTable{
		zones:      make([]Zone, 0, len(zones)),
		catchAll:   -1,
		cityIndex:  make(map[string]int),
		speedIndex: make(map[SpeedKey]int, len(speeds)),
		policy:     policy,
	}

	for i, z := range zones {
		z = z.normalized()
		if z.Name == "" {
			return nil, fmt.Errorf("%w: zone %d has no name", ErrInvalidRateTable, i)
		}
		if z.BaseCost.IsNegative() || z.CostPerKg.IsNegative() {
			return nil, fmt.Errorf("%w: zone %q has a negative cost", ErrInvalidRateTable, z.Name)
		}
		if z.StandardDays == "" || z.ExpressDays == "" {
			return nil, fmt.Errorf("%w: zone %q is missing delivery days", ErrInvalidRateTable, z.Name)
		}
		if z.IsCatchAll() {
			if t.catchAll >= 0 {
				return nil, fmt.Errorf("%w: zones %q and %q are both catch-all", ErrInvalidRateTable, t.zones[t.catchAll].Name, z.Name)
			}
			t.catchAll = i
		}
		for _, city := range z.MatchCities {
			if _, taken := t.cityIndex[city]; taken {
				t.duplicates = append(t.duplicates, city)
				continue
			}
			t.cityIndex[city] = i
		}
		t.zones = append(t.zones, z)
	}
	if t.catchAll < 0 {
		return nil, fmt.Errorf("%w: no catch-all zone", ErrInvalidRateTable)
	}

	for _, s := range speeds {
		if k, known := ParseSpeedKey(string(s.Key)); !known || k != s.Key {
			return nil, fmt.Errorf("%w: unknown speed key %q", ErrInvalidRateTable, s.Key)
		}
		if _, dup := t.speedIndex[s.Key]; dup {
			return nil, fmt.Errorf("%w: speed %q defined twice", ErrInvalidRateTable, s.Key)
		}
		if s.Multiplier.LessThan(decimal.NewFromInt(1)) {
			return nil, fmt.Errorf("%w: speed %q multiplier %s is below 1", ErrInvalidRateTable, s.Key, s.Multiplier)
		}
		t.speedIndex[s.Key] = len(t.speeds)
		t.speeds = append(t.speeds, s)
	}
	for _, key := range AllSpeedKeys() {
		if _, ok := t.speedIndex[key]; !ok {
			return nil, fmt.Errorf("%w: speed %q is not defined", ErrInvalidRateTable, key)
		}
	}

	return t, nil
}

// DefaultRateTable returns the compiled-in table. It panics only if the
// compiled-in definitions are themselves invalid.
func DefaultRateTable() *RateTable {
	t, err := NewRateTable(DefaultZones(), DefaultSpeeds(), DefaultPolicy())
	if err != nil {
		panic(err)
	}
	return t
}

func validatePolicy(p Policy) error {
	if _, err := valueobject.ParseCurrency(string(p.Currency)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRateTable, err)
	}
	if p.FreeShippingThreshold.IsNegative() {
		return fmt.Errorf("%w: negative free shipping threshold", ErrInvalidRateTable)
	}
	if p.FreeWeightAllowanceKg.IsNegative() {
		return fmt.Errorf("%w: negative free weight allowance", ErrInvalidRateTable)
	}
	if _, err := valueobject.NewWeightFromGrams(p.DefaultUnitWeightGrams); err != nil {
		return fmt.Errorf("%w: default unit weight: %v", ErrInvalidRateTable, err)
	}
	return nil
}

// Zones returns a copy of the zones in lookup order.
func (t *RateTable) Zones() []Zone {
	out := make([]Zone, len(t.zones))
	for i, z := range t.zones {
		out[i] = z.clone()
	}
	return out
}

// Speeds returns a copy of the speeds in enumeration order.
func (t *RateTable) Speeds() []Speed {
	return append([]Speed(nil), t.speeds...)
}

// Speed returns the definition for a known key.
func (t *RateTable) Speed(key SpeedKey) (Speed, bool) {
	i, ok := t.speedIndex[key]
	if !ok {
		return Speed{}, false
	}
	return t.speeds[i], true
}

// Policy returns the table-wide constants.
func (t *RateTable) Policy() Policy {
	return t.policy
}

// CatchAll returns the zone used when no city matches.
func (t *RateTable) CatchAll() Zone {
	return t.zones[t.catchAll].clone()
}

// DuplicateCities lists cities that appeared in more than one zone.
// Each resolves to the first zone that listed it.
func (t *RateTable) DuplicateCities() []string {
	return append([]string(nil), t.duplicates...)
}

// ResolveZone returns the zone for a city. The city is trimmed and
// lowercased; an empty or unknown city yields the catch-all zone.
func (t *RateTable) ResolveZone(city string) Zone {
	normalized := valueobject.NormalizeCity(city)
	if normalized == "" {
		return t.CatchAll()
	}
	if i, ok := t.cityIndex[normalized]; ok {
		return t.zones[i].clone()
	}
	return t.CatchAll()
}
