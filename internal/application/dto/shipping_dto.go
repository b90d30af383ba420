package dto

import (
	"github.com/hapkiduki/shipping-go/internal/domain/entity"
	"github.com/hapkiduki/shipping-go/internal/domain/shipping"
	"github.com/hapkiduki/shipping-go/internal/domain/valueobject"
)

// CartLineRequest is one cart line as sent by the storefront.
type CartLineRequest struct {
	// ProductID identifies the product (optional).
	ProductID string `json:"product_id,omitempty"`

	// Price is the unit price in major currency units.
	Price float64 `json:"price"`

	// Quantity is the number of units.
	Quantity int `json:"quantity"`

	// WeightGrams is the unit weight; omitted means 250 g.
	WeightGrams *float64 `json:"weight_grams,omitempty"`
}

// AddressRequest is the delivery destination.
type AddressRequest struct {
	City  string `json:"city"`
	State string `json:"state,omitempty"`
}

// QuoteRequest asks for the shipping cost of a cart at one speed.
type QuoteRequest struct {
	Items   []CartLineRequest `json:"items"`
	Address *AddressRequest   `json:"address,omitempty"`

	// Speed is standard, express or overnight, matched exactly. Empty means
	// standard and anything else is priced as standard.
	Speed string `json:"speed,omitempty"`
}

// OptionsRequest asks for every delivery option of a cart.
type OptionsRequest struct {
	Items   []CartLineRequest `json:"items"`
	Address *AddressRequest   `json:"address,omitempty"`
	Locale  string            `json:"locale,omitempty"`
}

// ToCart converts request lines into the domain cart.
// Weights are copied so the cart never aliases the request.
func ToCart(items []CartLineRequest) entity.Cart {
	cart := make(entity.Cart, 0, len(items))
	for _, it := range items {
		line := entity.CartLine{Price: it.Price, Quantity: it.Quantity}
		if it.WeightGrams != nil {
			line = entity.NewCartLine(it.Price, it.Quantity, *it.WeightGrams)
		}
		line.ProductID = it.ProductID
		cart = append(cart, line)
	}
	return cart
}

// ToAddress converts an optional request address; nil means no city.
func ToAddress(a *AddressRequest) valueobject.ShippingAddress {
	if a == nil {
		return valueobject.ShippingAddress{}
	}
	return valueobject.NewShippingAddress(a.City, a.State)
}

// BreakdownResponse itemises a shipping cost.
type BreakdownResponse struct {
	BaseCost        float64 `json:"base_cost"`
	WeightCost      float64 `json:"weight_cost"`
	SpeedMultiplier float64 `json:"speed_multiplier"`
	FinalCost       float64 `json:"final_cost"`
	OriginalCost    float64 `json:"original_cost"`
}

// QuoteResponse is the priced result for one speed.
type QuoteResponse struct {
	QuoteID               string            `json:"quote_id,omitempty"`
	Cost                  float64           `json:"cost"`
	Currency              string            `json:"currency"`
	Breakdown             BreakdownResponse `json:"breakdown"`
	ZoneName              *string           `json:"zone_name"`
	WeightKg              float64           `json:"weight_kg"`
	DeliveryDays          string            `json:"delivery_days"`
	EstimatedDelivery     string            `json:"estimated_delivery"`
	FreeShippingThreshold float64           `json:"free_shipping_threshold"`
	IsFreeShipping        bool              `json:"is_free_shipping"`
	Savings               string            `json:"savings,omitempty"`
	SpeedName             string            `json:"speed_name"`
	SpeedIcon             string            `json:"speed_icon"`
}

// NewQuoteResponse projects a calculation onto the wire format.
func NewQuoteResponse(c shipping.Calculation, estimate string) QuoteResponse {
	resp := QuoteResponse{
		Cost:     c.Cost.ToFloat(),
		Currency: string(c.Cost.Currency),
		Breakdown: BreakdownResponse{
			BaseCost:        c.Breakdown.BaseCost.ToFloat(),
			WeightCost:      c.Breakdown.WeightCost.ToFloat(),
			SpeedMultiplier: c.Breakdown.SpeedMultiplier.InexactFloat64(),
			FinalCost:       c.Breakdown.FinalCost.ToFloat(),
			OriginalCost:    c.Breakdown.OriginalCost.ToFloat(),
		},
		WeightKg:              c.WeightKg.InexactFloat64(),
		DeliveryDays:          c.DeliveryDays,
		EstimatedDelivery:     estimate,
		FreeShippingThreshold: c.FreeShippingThreshold.ToFloat(),
		IsFreeShipping:        c.IsFreeShipping,
		SpeedName:             c.SpeedName,
		SpeedIcon:             c.SpeedIcon,
	}
	if c.Zone != nil {
		name := c.Zone.Name
		resp.ZoneName = &name
	}
	if savings := c.Savings(); savings.IsPositive() {
		resp.Savings = savings.Format()
	}
	return resp
}

// DeliveryOptionResponse is one selectable delivery speed.
type DeliveryOptionResponse struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Icon              string  `json:"icon"`
	Cost              float64 `json:"cost"`
	DeliveryDays      string  `json:"delivery_days"`
	Description       string  `json:"description"`
	EstimatedDelivery string  `json:"estimated_delivery"`
}

// DeliveryDateResponse answers a delivery date estimate.
type DeliveryDateResponse struct {
	Days     string `json:"days"`
	Locale   string `json:"locale"`
	Estimate string `json:"estimate"`
}

// ZoneResponse describes one zone of the active rate table.
type ZoneResponse struct {
	Name         string   `json:"name"`
	Cities       []string `json:"cities"`
	BaseCost     float64  `json:"base_cost"`
	CostPerKg    float64  `json:"cost_per_kg"`
	StandardDays string   `json:"standard_days"`
	ExpressDays  string   `json:"express_days"`
	CatchAll     bool     `json:"catch_all"`
}

// SpeedResponse describes one delivery speed.
type SpeedResponse struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Multiplier float64 `json:"multiplier"`
	Icon       string  `json:"icon"`
}

// RateTableResponse lists the active rate table.
type RateTableResponse struct {
	Currency              string          `json:"currency"`
	FreeShippingThreshold float64         `json:"free_shipping_threshold"`
	Zones                 []ZoneResponse  `json:"zones"`
	Speeds                []SpeedResponse `json:"speeds"`
}

// NewRateTableResponse projects a rate table onto the wire format.
func NewRateTableResponse(t *shipping.RateTable) RateTableResponse {
	policy := t.Policy()
	resp := RateTableResponse{
		Currency:              string(policy.Currency),
		FreeShippingThreshold: policy.FreeShippingThreshold.InexactFloat64(),
	}
	for _, z := range t.Zones() {
		cities := z.MatchCities
		if cities == nil {
			cities = []string{}
		}
		resp.Zones = append(resp.Zones, ZoneResponse{
			Name:         z.Name,
			Cities:       cities,
			BaseCost:     z.BaseCost.InexactFloat64(),
			CostPerKg:    z.CostPerKg.InexactFloat64(),
			StandardDays: z.StandardDays,
			ExpressDays:  z.ExpressDays,
			CatchAll:     z.IsCatchAll(),
		})
	}
	for _, s := range t.Speeds() {
		resp.Speeds = append(resp.Speeds, SpeedResponse{
			ID:         string(s.Key),
			Name:       s.Name,
			Multiplier: s.Multiplier.InexactFloat64(),
			Icon:       s.Icon,
		})
	}
	return resp
}
