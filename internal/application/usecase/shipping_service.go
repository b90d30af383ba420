// Package usecase contains the application services that orchestrate the domain.
package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/hapkiduki/shipping-go/internal/application/port"
	"github.com/hapkiduki/shipping-go/internal/domain/entity"
	"github.com/hapkiduki/shipping-go/internal/domain/repository"
	"github.com/hapkiduki/shipping-go/internal/domain/shipping"
	"github.com/hapkiduki/shipping-go/internal/domain/valueobject"
)

// ErrMissingDependency is returned by NewShippingService when a required
// collaborator is nil.
var ErrMissingDependency = errors.New("shipping service: missing dependency")

// ShippingServiceDeps wires a ShippingService.
type ShippingServiceDeps struct {
	// Rates provides the active rate table (required).
	Rates repository.RateTableRepository

	// Estimator turns delivery windows into dates (required).
	Estimator *shipping.DateEstimator

	// Logger receives structured events (required).
	Logger port.Logger

	// DefaultLocale formats dates when a command carries none.
	DefaultLocale string

	// CalculatorOptions are applied to every calculator built.
	CalculatorOptions []shipping.Option
}

// ShippingService prices carts and estimates delivery for the checkout.
type ShippingService struct {
	rates         repository.RateTableRepository
	estimator     *shipping.DateEstimator
	logger        port.Logger
	defaultLocale string
	calcOpts      []shipping.Option
}

// NewShippingService creates a ShippingService.
//
// Returns:
//   - *ShippingService: the service
//   - error: ErrMissingDependency if a required dependency is nil
func NewShippingService(deps ShippingServiceDeps) (*ShippingService, error) {
	switch {
	case deps.Rates == nil:
		return nil, fmt.Errorf("%w: rate table repository", ErrMissingDependency)
	case deps.Estimator == nil:
		return nil, fmt.Errorf("%w: date estimator", ErrMissingDependency)
	case deps.Logger == nil:
		return nil, fmt.Errorf("%w: logger", ErrMissingDependency)
	}
	return &ShippingService{
		rates:         deps.Rates,
		estimator:     deps.Estimator,
		logger:        deps.Logger,
		defaultLocale: deps.DefaultLocale,
		calcOpts:      deps.CalculatorOptions,
	}, nil
}

// QuoteCommand asks for the cost of shipping a cart at one speed.
type QuoteCommand struct {
	Cart    entity.Cart
	Address valueobject.ShippingAddress
	Speed   string
	Locale  string
}

// QuoteResult is a priced calculation with its estimated delivery dates.
type QuoteResult struct {
	// ID lets the order subsystem refer back to this quote.
	ID                string
	Calculation       shipping.Calculation
	EstimatedDelivery string
}

// OptionsCommand asks for every delivery option of a cart.
type OptionsCommand struct {
	Cart    entity.Cart
	Address valueobject.ShippingAddress
	Locale  string
}

// OptionResult is a delivery option with its estimated delivery dates.
type OptionResult struct {
	Option            shipping.DeliveryOption
	EstimatedDelivery string
}

// Quote prices the cart for the requested speed. An empty speed means
// standard. Unknown speeds are priced as standard delivery and logged.
//
// Returns:
//   - QuoteResult: the priced calculation
//   - error: *entity.InvalidCartLineError for malformed lines, or a repository error
func (s *ShippingService) Quote(ctx context.Context, cmd QuoteCommand) (QuoteResult, error) {
	log := s.logger.WithContext(ctx)

	calc, err := s.calculator(ctx)
	if err != nil {
		return QuoteResult{}, err
	}

	speed := cmd.Speed
	if speed == "" {
		speed = string(shipping.SpeedStandard)
	}
	if _, known := shipping.ParseSpeedKey(speed); !known {
		log.Warn("Unknown delivery speed, pricing as standard", "speed", speed)
	}

	result, err := calc.CalculateShippingCost(cmd.Cart, cmd.Address, speed)
	if err != nil {
		log.Info("Shipping quote rejected", "error", err)
		return QuoteResult{}, err
	}

	id := uuid.NewString()
	log.Debug("Shipping quoted",
		"quote_id", id,
		"zone", result.ZoneName(),
		"speed", string(result.Speed),
		"weight_kg", result.WeightKg.String(),
		"cost", result.Cost.String(),
		"free_shipping", result.IsFreeShipping,
	)

	return QuoteResult{
		ID:                id,
		Calculation:       result,
		EstimatedDelivery: s.estimate(result.DeliveryDays, cmd.Locale),
	}, nil
}

// Options prices the cart at every speed, in enumeration order.
//
// Returns:
//   - []OptionResult: one entry per speed
//   - error: *entity.InvalidCartLineError for malformed lines, or a repository error
func (s *ShippingService) Options(ctx context.Context, cmd OptionsCommand) ([]OptionResult, error) {
	log := s.logger.WithContext(ctx)

	calc, err := s.calculator(ctx)
	if err != nil {
		return nil, err
	}

	options, err := calc.DeliveryOptions(cmd.Cart, cmd.Address)
	if err != nil {
		log.Info("Delivery options rejected", "error", err)
		return nil, err
	}

	formatter := s.formatter(cmd.Locale)
	results := make([]OptionResult, 0, len(options))
	for _, opt := range options {
		results = append(results, OptionResult{
			Option:            opt,
			EstimatedDelivery: s.estimator.EstimateDeliveryDate(opt.DeliveryDays, formatter),
		})
	}

	log.Debug("Delivery options listed", "city", cmd.Address.NormalizedCity(), "count", len(results))
	return results, nil
}

// EstimateDate formats a delivery window for a locale.
//
// Returns:
//   - string: the estimate text
//   - string: the locale actually used
func (s *ShippingService) EstimateDate(_ context.Context, days, locale string) (string, string) {
	formatter := s.formatter(locale)
	return s.estimator.EstimateDeliveryDate(days, formatter), formatter.Locale()
}

// RateTable returns the active rate table.
func (s *ShippingService) RateTable(ctx context.Context) (*shipping.RateTable, error) {
	return s.rates.Current(ctx)
}

func (s *ShippingService) calculator(ctx context.Context) (*shipping.Calculator, error) {
	table, err := s.rates.Current(ctx)
	if err != nil {
		s.logger.WithContext(ctx).Error("Rate table unavailable", "error", err)
		return nil, err
	}
	return shipping.NewCalculator(table, s.calcOpts...), nil
}

func (s *ShippingService) formatter(locale string) shipping.DateFormatter {
	if locale == "" {
		locale = s.defaultLocale
	}
	return shipping.NewDateFormatter(locale)
}

func (s *ShippingService) estimate(days, locale string) string {
	return s.estimator.EstimateDeliveryDate(days, s.formatter(locale))
}
