package domain

import "errors"

// Domain errors. Check them with errors.Is.
var (
	// ErrInvalidAPIKey is returned when the service rejects the API key.
	// Shipping must stop until the configuration is fixed.
	ErrInvalidAPIKey = errors.New("towership: api key rejected")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("towership: invalid configuration")

	// ErrEmptyBatch is returned when a batch holds no measurements.
	ErrEmptyBatch = errors.New("towership: empty batch")

	// ErrInvalidMeasurement is returned for measurements outside valid ranges.
	ErrInvalidMeasurement = errors.New("towership: invalid measurement")
)
