package shipping

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/hapkiduki/shipping-go/internal/domain/entity"
	"github.com/hapkiduki/shipping-go/internal/domain/valueobject"
)

// DaysNotAvailable is the delivery window reported for an empty cart.
const DaysNotAvailable = "N/A"

// DescriptionStyle selects how delivery option descriptions are worded.
type DescriptionStyle int

const (
	// DescriptionLegacy always renders "Delivery in {days} business days",
	// including "Delivery in Same Day business days".
	DescriptionLegacy DescriptionStyle = iota

	// DescriptionNatural words same-day, single-day and unavailable windows
	// as plain sentences.
	DescriptionNatural
)

// Breakdown itemises how a shipping cost was reached.
type Breakdown struct {
	BaseCost        valueobject.Money `json:"base_cost"`
	WeightCost      valueobject.Money `json:"weight_cost"`
	SpeedMultiplier decimal.Decimal   `json:"speed_multiplier"`

	// FinalCost is the amount charged; zero when shipping is free.
	FinalCost valueobject.Money `json:"final_cost"`

	// OriginalCost is the rounded cost before the free-shipping override.
	OriginalCost valueobject.Money `json:"original_cost"`
}

// Calculation is the priced result for one cart, address and speed.
type Calculation struct {
	Cost      valueobject.Money `json:"cost"`
	Breakdown Breakdown         `json:"breakdown"`

	// Zone is nil for an empty cart.
	Zone *Zone `json:"zone,omitempty"`

	// WeightKg is the total weight rounded to two decimals.
	WeightKg              decimal.Decimal   `json:"weight_kg"`
	DeliveryDays          string            `json:"delivery_days"`
	FreeShippingThreshold valueobject.Money `json:"free_shipping_threshold"`
	IsFreeShipping        bool              `json:"is_free_shipping"`
	CartSubtotal          valueobject.Money `json:"cart_subtotal"`
	Speed                 SpeedKey          `json:"speed"`
	SpeedName             string            `json:"speed_name"`
	SpeedIcon             string            `json:"speed_icon"`
}

// ZoneName returns the resolved zone's name, or "" for an empty cart.
func (c Calculation) ZoneName() string {
	if c.Zone == nil {
		return ""
	}
	return c.Zone.Name
}

// Savings returns how much the free-shipping override saved.
func (c Calculation) Savings() valueobject.Money {
	return c.Breakdown.OriginalCost.Subtract(c.Cost)
}

// DeliveryOption is one selectable delivery speed for a cart.
type DeliveryOption struct {
	ID           SpeedKey          `json:"id"`
	Name         string            `json:"name"`
	Icon         string            `json:"icon"`
	Cost         valueobject.Money `json:"cost"`
	DeliveryDays string            `json:"delivery_days"`
	Description  string            `json:"description"`
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithDescriptionStyle selects the delivery option wording.
func WithDescriptionStyle(style DescriptionStyle) Option {
	return func(c *Calculator) {
		c.descriptions = style
	}
}

// Calculator prices carts against a RateTable. It holds no mutable state.
//
// Example usage:
//
//	calc := shipping.NewCalculator(shipping.DefaultRateTable())
//	result, err := calc.CalculateShippingCost(cart, address, "express")
type Calculator struct {
	table        *RateTable
	descriptions DescriptionStyle
}

// NewCalculator creates a Calculator over the given table.
// A nil table means the compiled-in default table.
func NewCalculator(table *RateTable, opts ...Option) *Calculator {
	if table == nil {
		table = DefaultRateTable()
	}
	c := &Calculator{table: table}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WeightKg returns the cart's total weight in kilograms, unrounded.
// Lines without a weight count as the policy's default unit weight.
func (c *Calculator) WeightKg(cart entity.Cart) decimal.Decimal {
	return cart.TotalWeight(c.table.policy.DefaultUnitWeightGrams).Kilograms()
}

// ResolveZone returns the zone for a city, falling back to the catch-all zone.
func (c *Calculator) ResolveZone(city string) Zone {
	return c.table.ResolveZone(city)
}

// CalculateShippingCost prices the cart for a raw speed key.
// Keys match exactly. Unknown keys are priced as standard delivery but take
// the zone's express window, since only "standard" selects standard days.
//
// Returns:
//   - Calculation: the priced result
//   - error: *entity.InvalidCartLineError if a cart line is malformed
func (c *Calculator) CalculateShippingCost(cart entity.Cart, address valueobject.ShippingAddress, speedKey string) (Calculation, error) {
	return c.Calculate(cart, address, SpeedKey(speedKey))
}

// Calculate prices the cart for a delivery speed.
// The multiplier comes from the resolved speed; the delivery window from the
// key as given.
//
// Returns:
//   - Calculation: the priced result
//   - error: *entity.InvalidCartLineError if a cart line is malformed
func (c *Calculator) Calculate(cart entity.Cart, address valueobject.ShippingAddress, key SpeedKey) (Calculation, error) {
	if err := cart.Validate(); err != nil {
		return Calculation{}, err
	}

	policy := c.table.policy
	speed, ok := c.table.Speed(key)
	if !ok {
		speed, _ = c.table.Speed(SpeedStandard)
	}
	threshold := valueobject.NewMoney(policy.FreeShippingThreshold, policy.Currency)
	zero := valueobject.Zero(policy.Currency)

	if cart.IsEmpty() {
		return Calculation{
			Cost: zero,
			Breakdown: Breakdown{
				BaseCost:        zero,
				WeightCost:      zero,
				SpeedMultiplier: speed.Multiplier,
				FinalCost:       zero,
				OriginalCost:    zero,
			},
			WeightKg:              decimal.Zero,
			DeliveryDays:          DaysNotAvailable,
			FreeShippingThreshold: threshold,
			CartSubtotal:          zero,
			Speed:                 speed.Key,
			SpeedName:             speed.Name,
			SpeedIcon:             speed.Icon,
		}, nil
	}

	weight := c.WeightKg(cart)
	zone := c.table.ResolveZone(address.City)

	baseCost := valueobject.NewMoney(zone.BaseCost, policy.Currency)
	chargeable := decimal.Max(decimal.Zero, weight.Sub(policy.FreeWeightAllowanceKg))
	weightCost := valueobject.NewMoney(chargeable.Mul(zone.CostPerKg), policy.Currency)

	originalCost := baseCost.Add(weightCost).MultiplyDecimal(speed.Multiplier).RoundToUnit()

	subtotal := cart.Subtotal(policy.Currency)
	isFree := subtotal.GreaterThanOrEqual(threshold)

	cost := originalCost
	if isFree {
		cost = zero
	}

	return Calculation{
		Cost: cost,
		Breakdown: Breakdown{
			BaseCost:        baseCost,
			WeightCost:      weightCost,
			SpeedMultiplier: speed.Multiplier,
			FinalCost:       cost,
			OriginalCost:    originalCost,
		},
		Zone:                  &zone,
		WeightKg:              weight.Round(2),
		DeliveryDays:          zone.DaysFor(key),
		FreeShippingThreshold: threshold,
		IsFreeShipping:        isFree,
		CartSubtotal:          subtotal,
		Speed:                 speed.Key,
		SpeedName:             speed.Name,
		SpeedIcon:             speed.Icon,
	}, nil
}

// DeliveryOptions prices the cart once per speed, in enumeration order.
// Options are not sorted by price.
//
// Returns:
//   - []DeliveryOption: one option per speed
//   - error: *entity.InvalidCartLineError if a cart line is malformed
func (c *Calculator) DeliveryOptions(cart entity.Cart, address valueobject.ShippingAddress) ([]DeliveryOption, error) {
	options := make([]DeliveryOption, 0, len(c.table.speeds))
	for _, speed := range c.table.speeds {
		calc, err := c.Calculate(cart, address, speed.Key)
		if err != nil {
			return nil, err
		}
		options = append(options, DeliveryOption{
			ID:           speed.Key,
			Name:         speed.Name,
			Icon:         speed.Icon,
			Cost:         calc.Cost,
			DeliveryDays: calc.DeliveryDays,
			Description:  c.describe(calc.DeliveryDays),
		})
	}
	return options, nil
}

func (c *Calculator) describe(days string) string {
	if c.descriptions == DescriptionNatural {
		switch days {
		case SameDay:
			return "Same day delivery"
		case DaysNotAvailable, "":
			return "Delivery not available"
		case "1":
			return "Delivery in 1 business day"
		}
	}
	return fmt.Sprintf("Delivery in %s business days", days)
}
