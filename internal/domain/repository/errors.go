// Package repository contains the repository interfaces and related errors.
package repository

import "errors"

// Repository errors define common error conditions across all repositories.
// These errors are used to communicate specific failure conditions
// from the data access layer to the application layer.

var (
	// ErrRateTableUnavailable is returned when no rate table has been loaded.
	ErrRateTableUnavailable = errors.New("rate table unavailable")

	// ErrInvalidRateDefinition is returned when configured zones, speeds or
	// policy values cannot be turned into a rate table.
	ErrInvalidRateDefinition = errors.New("invalid rate definition")
)

// IsUnavailableError checks if the error means the repository has nothing to serve.
//
// Parameters:
//   - err: error to check
//
// Returns:
//   - bool: true if no rate table could be provided
func IsUnavailableError(err error) bool {
	return errors.Is(err, ErrRateTableUnavailable)
}
