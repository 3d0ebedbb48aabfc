package ports

import (
	"context"
	"time"

	"github.com/bft-labs/towership/internal/domain"
)

// MeasurementStore buffers measurements until they have been uploaded.
type MeasurementStore interface {
	// Store saves measurements and assigns their IDs.
	Store(ctx context.Context, ms []domain.Measurement) error

	// Pending returns up to limit measurements not yet uploaded, oldest first.
	Pending(ctx context.Context, limit int) ([]domain.Measurement, error)

	// MarkUploaded flags measurements as uploaded.
	MarkUploaded(ctx context.Context, ids []string) error

	// MarkRejected takes measurements the service refused out of the
	// pending set. They are never sent again.
	MarkRejected(ctx context.Context, ids []string) error

	// PendingCount returns the number of measurements not yet uploaded.
	PendingCount(ctx context.Context) (int, error)

	// Purge deletes uploaded and rejected measurements stored before cutoff.
	Purge(ctx context.Context, cutoff time.Time) (int, error)
}
