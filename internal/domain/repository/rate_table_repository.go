// Package repository contains the repository interfaces (ports) for data access.
package repository

import (
	"context"

	"github.com/hapkiduki/shipping-go/internal/domain/shipping"
)

// RateTableRepository defines where the active shipping rate table comes from.
// The table changes only with deploys or configuration, so implementations
// load it once and serve the same immutable value afterwards.
//
// Example usage:
//
//	repo := memory.NewRateTableRepository(shipping.DefaultRateTable())
//	table, err := repo.Current(ctx)
type RateTableRepository interface {
	// Current returns the active rate table.
	//
	// Parameters:
	//   - ctx: context for cancellation and deadlines
	//
	// Returns:
	//   - *shipping.RateTable: the active table, never nil on success
	//   - error: ErrRateTableUnavailable if no table is loaded
	Current(ctx context.Context) (*shipping.RateTable, error)
}
