package shipping

import (
	"github.com/shopspring/decimal"
)

// SpeedKey identifies a delivery service level.
type SpeedKey string

// Delivery speeds, in enumeration order.
const (
	SpeedStandard  SpeedKey = "standard"
	SpeedExpress   SpeedKey = "express"
	SpeedOvernight SpeedKey = "overnight"
)

// AllSpeedKeys returns every speed in enumeration order.
func AllSpeedKeys() []SpeedKey {
	return []SpeedKey{SpeedStandard, SpeedExpress, SpeedOvernight}
}

// ParseSpeedKey maps an external key to a SpeedKey. Keys match exactly, so
// "Express" is not express. Unknown keys resolve to SpeedStandard with
// ok=false so callers at the boundary can tell a fallback happened.
func ParseSpeedKey(raw string) (key SpeedKey, ok bool) {
	switch k := SpeedKey(raw); k {
	case SpeedStandard, SpeedExpress, SpeedOvernight:
		return k, true
	default:
		return SpeedStandard, false
	}
}

// Speed is a delivery service level with its price multiplier.
type Speed struct {
	Key        SpeedKey        `json:"key"`
	Name       string          `json:"name"`
	Multiplier decimal.Decimal `json:"multiplier"`
	Icon       string          `json:"icon"`
}

// DefaultSpeeds returns the compiled-in speed table in enumeration order.
func DefaultSpeeds() []Speed {
	return []Speed{
		{Key: SpeedStandard, Name: "Standard Delivery", Multiplier: decimal.NewFromInt(1), Icon: "🚚"},
		{Key: SpeedExpress, Name: "Express Delivery", Multiplier: decimal.RequireFromString("1.8"), Icon: "⚡"},
		{Key: SpeedOvernight, Name: "Overnight Delivery", Multiplier: decimal.RequireFromString("2.5"), Icon: "🌙"},
	}
}
