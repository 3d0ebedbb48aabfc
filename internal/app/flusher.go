package app

import (
	"context"
	"fmt"
	"time"

	"github.com/bft-labs/towership/internal/domain"
	"github.com/bft-labs/towership/internal/ports"
	"github.com/bft-labs/towership/pkg/log"
	"github.com/bft-labs/towership/pkg/upload"
)

// DefaultBatchSize is the number of measurements per uploaded batch.
const DefaultBatchSize = 1000

// FlusherConfig contains configuration for draining the measurement buffer.
type FlusherConfig struct {
	BatchSize int

	// Retention is how long uploaded measurements stay in the buffer.
	// Zero keeps them forever.
	Retention time.Duration
}

// FlushResult summarizes one Flush call.
type FlushResult struct {
	Batches  int
	Rows     int
	Rejected int
	Purged   int
}

// Flusher uploads buffered measurements batch by batch.
type Flusher struct {
	config   FlusherConfig
	store    ports.MeasurementStore
	uploader ports.Uploader
	repo     ports.StateRepository
	logger   log.Logger
	now      func() time.Time
}

// NewFlusher creates a flusher with the given dependencies.
func NewFlusher(
	config FlusherConfig,
	store ports.MeasurementStore,
	uploader ports.Uploader,
	repo ports.StateRepository,
	logger log.Logger,
) *Flusher {
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultBatchSize
	}
	return &Flusher{
		config:   config,
		store:    store,
		uploader: uploader,
		repo:     repo,
		logger:   logger,
		now:      time.Now,
	}
}

// Flush uploads pending measurements until the buffer is empty.
// It returns domain.ErrInvalidAPIKey if the credentials are rejected and an
// *OutcomeError for any other outcome besides Success. Batches uploaded
// before the failure stay marked as uploaded.
//
// A batch refused with ConfigurationError is marked rejected and the drain
// continues; Flush then reports the rejection once the buffer is empty.
func (f *Flusher) Flush(ctx context.Context) (FlushResult, error) {
	var res FlushResult
	st := loadStats(ctx, f.repo, f.logger, f.now)

	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		batch, err := f.store.Pending(ctx, f.config.BatchSize)
		if err != nil {
			return res, fmt.Errorf("load pending: %w", err)
		}
		if len(batch) == 0 {
			break
		}

		body, err := domain.EncodeCSV(batch)
		if err != nil {
			return res, fmt.Errorf("encode batch: %w", err)
		}

		outcome := f.uploader.Upload(ctx, body)
		st.record(ctx, outcome, len(batch))

		if outcome.Fatal() {
			return res, domain.ErrInvalidAPIKey
		}

		ids := make([]string, len(batch))
		for i, m := range batch {
			ids[i] = m.ID
		}

		if outcome == upload.ConfigurationError {
			if err := f.store.MarkRejected(ctx, ids); err != nil {
				return res, fmt.Errorf("mark rejected: %w", err)
			}
			res.Rejected += len(batch)
			f.logger.Warn("batch rejected by service", log.Int("rows", len(batch)))
			continue
		}
		if outcome != upload.Success {
			return res, &OutcomeError{Outcome: outcome}
		}

		if err := f.store.MarkUploaded(ctx, ids); err != nil {
			return res, fmt.Errorf("mark uploaded: %w", err)
		}

		res.Batches++
		res.Rows += len(batch)
		f.logger.Info("batch uploaded",
			log.Int("batch", res.Batches),
			log.Int("rows", len(batch)),
		)
	}

	if f.config.Retention > 0 {
		n, err := f.store.Purge(ctx, f.now().Add(-f.config.Retention))
		if err != nil {
			return res, fmt.Errorf("purge: %w", err)
		}
		res.Purged = n
	}
	if res.Rejected > 0 {
		return res, &OutcomeError{Outcome: upload.ConfigurationError}
	}
	return res, nil
}
