// Package memory provides in-process implementations of repository interfaces.
package memory

import (
	"context"
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/hapkiduki/shipping-go/internal/domain/repository"
	"github.com/hapkiduki/shipping-go/internal/domain/shipping"
	"github.com/hapkiduki/shipping-go/internal/domain/valueobject"
	"github.com/hapkiduki/shipping-go/internal/infrastructure/config"
)

// RateTableRepository serves a rate table built once at startup.
type RateTableRepository struct {
	table *shipping.RateTable
}

// NewRateTableRepository wraps an already built table.
func NewRateTableRepository(table *shipping.RateTable) *RateTableRepository {
	return &RateTableRepository{table: table}
}

// NewRateTableRepositoryFromConfig builds the table from configuration.
// Configured zones and speeds replace the compiled-in ones wholesale when
// present; policy values always come from configuration.
//
// Parameters:
//   - cfg: shipping configuration section
//
// Returns:
//   - *RateTableRepository: repository serving the built table
//   - error: wrapping repository.ErrInvalidRateDefinition on bad definitions
func NewRateTableRepositoryFromConfig(cfg config.ShippingConfig) (*RateTableRepository, error) {
	currency, err := valueobject.ParseCurrency(cfg.Currency)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", repository.ErrInvalidRateDefinition, err)
	}

	policy := shipping.Policy{Currency: currency, DefaultUnitWeightGrams: cfg.DefaultUnitWeightGrams}
	if policy.FreeShippingThreshold, err = toDecimal("free_shipping_threshold", cfg.FreeShippingThreshold); err != nil {
		return nil, err
	}
	if policy.FreeWeightAllowanceKg, err = toDecimal("free_weight_allowance_kg", cfg.FreeWeightAllowanceKg); err != nil {
		return nil, err
	}

	zones := shipping.DefaultZones()
	if len(cfg.Zones) > 0 {
		zones = make([]shipping.Zone, 0, len(cfg.Zones))
		for i, zc := range cfg.Zones {
			z, err := zoneFromConfig(i, zc)
			if err != nil {
				return nil, err
			}
			zones = append(zones, z)
		}
	}

	speeds := shipping.DefaultSpeeds()
	if len(cfg.Speeds) > 0 {
		speeds = make([]shipping.Speed, 0, len(cfg.Speeds))
		for i, sc := range cfg.Speeds {
			multiplier, err := toDecimal(fmt.Sprintf("speeds[%d].multiplier", i), sc.Multiplier)
			if err != nil {
				return nil, err
			}
			speeds = append(speeds, shipping.Speed{
				Key:        shipping.SpeedKey(sc.Key),
				Name:       sc.Name,
				Multiplier: multiplier,
				Icon:       sc.Icon,
			})
		}
	}

	table, err := shipping.NewRateTable(zones, speeds, policy)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", repository.ErrInvalidRateDefinition, err)
	}
	return NewRateTableRepository(table), nil
}

// Current implements repository.RateTableRepository.
func (r *RateTableRepository) Current(ctx context.Context) (*shipping.RateTable, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r == nil || r.table == nil {
		return nil, repository.ErrRateTableUnavailable
	}
	return r.table, nil
}

func zoneFromConfig(i int, zc config.ZoneConfig) (shipping.Zone, error) {
	base, err := toDecimal(fmt.Sprintf("zones[%d].base_cost", i), zc.BaseCost)
	if err != nil {
		return shipping.Zone{}, err
	}
	perKg, err := toDecimal(fmt.Sprintf("zones[%d].cost_per_kg", i), zc.CostPerKg)
	if err != nil {
		return shipping.Zone{}, err
	}
	return shipping.Zone{
		Name:         zc.Name,
		MatchCities:  append([]string(nil), zc.Cities...),
		BaseCost:     base,
		CostPerKg:    perKg,
		StandardDays: zc.StandardDays,
		ExpressDays:  zc.ExpressDays,
	}, nil
}

func toDecimal(field string, v float64) (decimal.Decimal, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Decimal{}, fmt.Errorf("%w: %s is not a finite number", repository.ErrInvalidRateDefinition, field)
	}
	return decimal.NewFromFloat(v), nil
}
