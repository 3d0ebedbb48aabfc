// Package towership uploads cell tower measurements to an
// OpenCelliD-compatible collection service.
//
// Example usage:
//
//	batch, err := towership.EncodeCSV(measurements)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client := towership.New(towership.Endpoint{
//	    URL:    "https://opencellid.org/measure/uploadCsv",
//	    AppID:  "my-app",
//	    APIKey: "your-api-key",
//	})
//	if outcome := client.Upload(ctx, batch); outcome != towership.Success {
//	    log.Printf("upload: %s", outcome)
//	}
//
// The full client API lives in pkg/upload; this package re-exports the
// parts most callers need.
package towership

import (
	"io"

	"github.com/bft-labs/towership/internal/domain"
	"github.com/bft-labs/towership/pkg/upload"
)

// Client uploads CSV batches. See upload.Client.
type Client = upload.Client

// Endpoint identifies the collection service and credentials.
type Endpoint = upload.Endpoint

// Outcome is the result of one upload.
type Outcome = upload.Outcome

// Fallback is the process-wide clear-text fallback switch.
type Fallback = upload.Fallback

// Option configures a Client.
type Option = upload.Option

// Measurement is one cell observation.
type Measurement = domain.Measurement

// Upload outcomes.
const (
	Success            = upload.Success
	Failure            = upload.Failure
	ConnectionError    = upload.ConnectionError
	ServerError        = upload.ServerError
	InvalidAPIKey      = upload.InvalidAPIKey
	ConfigurationError = upload.ConfigurationError
)

// New creates a Client for endpoint.
func New(endpoint Endpoint, opts ...Option) *Client {
	return upload.New(endpoint, opts...)
}

// WithFallback makes the client use a shared Fallback.
func WithFallback(f *Fallback) Option {
	return upload.WithFallback(f)
}

// WithReporter sets the diagnostic reporter.
func WithReporter(r upload.Reporter) Option {
	return upload.WithReporter(r)
}

// NewFallback returns a Fallback in the encrypted state.
func NewFallback() *Fallback {
	return upload.NewFallback()
}

// EncodeCSV renders measurements in the upload CSV format.
func EncodeCSV(ms []Measurement) (string, error) {
	return domain.EncodeCSV(ms)
}

// DecodeCSV parses and validates an upload CSV batch.
func DecodeCSV(r io.Reader) ([]Measurement, error) {
	return domain.DecodeCSV(r)
}
