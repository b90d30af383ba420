package shipping

import (
	"github.com/shopspring/decimal"

	"github.com/hapkiduki/shipping-go/internal/domain/valueobject"
)

// Zone is a pricing tier keyed by destination city.
type Zone struct {
	// Name is the human label, e.g. "Metro Cities".
	Name string `json:"name"`

	// MatchCities holds the lowercase city names of the zone.
	// Empty for the catch-all zone.
	MatchCities []string `json:"match_cities"`

	// BaseCost is charged regardless of weight and covers the free allowance.
	BaseCost decimal.Decimal `json:"base_cost"`

	// CostPerKg is charged per kilogram beyond the free allowance.
	CostPerKg decimal.Decimal `json:"cost_per_kg"`

	// StandardDays is the transit window for standard delivery ("1-2").
	StandardDays string `json:"standard_days"`

	// ExpressDays is the transit window for express and overnight ("Same Day").
	ExpressDays string `json:"express_days"`
}

// IsCatchAll reports whether the zone matches every city no other zone claims.
func (z Zone) IsCatchAll() bool {
	return len(z.MatchCities) == 0
}

// DaysFor returns the transit window for a delivery speed.
// Overnight shares the express window.
func (z Zone) DaysFor(speed SpeedKey) string {
	if speed == SpeedStandard {
		return z.StandardDays
	}
	return z.ExpressDays
}

func (z Zone) clone() Zone {
	z.MatchCities = append([]string(nil), z.MatchCities...)
	return z
}

func (z Zone) normalized() Zone {
	cities := make([]string, 0, len(z.MatchCities))
	for _, c := range z.MatchCities {
		if n := valueobject.NormalizeCity(c); n != "" {
			cities = append(cities, n)
		}
	}
	z.MatchCities = cities
	return z
}

var (
	metroZone = Zone{
		Name:         "Metro Cities",
		MatchCities:  []string{"mumbai", "delhi", "new delhi", "bangalore", "bengaluru", "chennai", "kolkata", "hyderabad"},
		BaseCost:     decimal.NewFromInt(40),
		CostPerKg:    decimal.NewFromInt(15),
		StandardDays: "1-2",
		ExpressDays:  "Same Day",
	}
	tier1Zone = Zone{
		Name:         "Tier 1 Cities",
		MatchCities:  []string{"pune", "ahmedabad", "jaipur", "lucknow", "surat", "kanpur", "nagpur", "chandigarh", "indore", "kochi"},
		BaseCost:     decimal.NewFromInt(50),
		CostPerKg:    decimal.NewFromInt(18),
		StandardDays: "2-3",
		ExpressDays:  "1-2",
	}
	tier2Zone = Zone{
		Name:         "Tier 2 Cities",
		MatchCities:  []string{"bhopal", "patna", "vadodara", "ludhiana", "agra", "nashik", "coimbatore", "visakhapatnam", "madurai", "mysore"},
		BaseCost:     decimal.NewFromInt(60),
		CostPerKg:    decimal.NewFromInt(20),
		StandardDays: "3-5",
		ExpressDays:  "2-3",
	}
	otherZone = Zone{
		Name:         "Other Cities",
		BaseCost:     decimal.NewFromInt(75),
		CostPerKg:    decimal.NewFromInt(25),
		StandardDays: "5-7",
		ExpressDays:  "3-4",
	}
)

// DefaultZones returns the compiled-in zone table in lookup order.
func DefaultZones() []Zone {
	zones := []Zone{metroZone, tier1Zone, tier2Zone, otherZone}
	out := make([]Zone, len(zones))
	for i, z := range zones {
		out[i] = z.clone()
	}
	return out
}
