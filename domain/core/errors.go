package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// ErrConfiguration covers invalid catalogs and run plans. Fatal at
	// startup; nothing is simulated once one of these surfaces.
	ErrConfiguration = errors.New("invalid study configuration")

	// ErrDegenerateSample marks a single (scenario, comparison, test) cell
	// whose statistic is undefined for the drawn data. Recorded, never fatal.
	ErrDegenerateSample = errors.New("degenerate sample")

	// ErrAggregation marks an aggregate key with zero contributing records.
	ErrAggregation = errors.New("no records for aggregate key")

	// ErrCacheMismatch means a persisted snapshot does not match the
	// requested run parameters and must not be reused.
	ErrCacheMismatch = errors.New("snapshot parameters do not match request")
)

// Error constructors with context

func NewConfigurationError(field, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrConfiguration, field, reason)
}

func NewDegenerateSampleError(scenario, comparison, test string, cause error) error {
	if cause != nil {
		return fmt.Errorf("%w: %s control-vs-%s %s: %v", ErrDegenerateSample, scenario, comparison, test, cause)
	}
	return fmt.Errorf("%w: %s control-vs-%s %s", ErrDegenerateSample, scenario, comparison, test)
}

func NewAggregationError(key string) error {
	return fmt.Errorf("%w: %s", ErrAggregation, key)
}

func NewCacheMismatchError(requested, found string) error {
	return fmt.Errorf("%w: requested %s, found %s", ErrCacheMismatch, requested, found)
}

// Error checking helpers

func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

func IsDegenerateSampleError(err error) bool {
	return errors.Is(err, ErrDegenerateSample)
}

func IsCacheMismatchError(err error) bool {
	return errors.Is(err, ErrCacheMismatch)
}
