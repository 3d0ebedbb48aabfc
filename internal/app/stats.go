package app

import (
	"context"
	"time"

	"github.com/bft-labs/towership/internal/domain"
	"github.com/bft-labs/towership/internal/ports"
	"github.com/bft-labs/towership/pkg/log"
	"github.com/bft-labs/towership/pkg/upload"
)

// stats keeps the persisted State in memory and saves it after every upload.
type stats struct {
	repo   ports.StateRepository
	logger log.Logger
	now    func() time.Time
	state  domain.State
}

func loadStats(ctx context.Context, repo ports.StateRepository, logger log.Logger, now func() time.Time) *stats {
	state, err := repo.Load(ctx)
	if err != nil {
		// A broken state file only loses statistics.
		logger.Error("failed to load state", log.Err(err))
		state = domain.State{}
	}
	return &stats{repo: repo, logger: logger, now: now, state: state}
}

func (s *stats) record(ctx context.Context, outcome upload.Outcome, rows int) {
	s.state.Record(outcome.String(), outcome == upload.Success, rows, s.now())
	if err := s.repo.Save(context.WithoutCancel(ctx), s.state); err != nil {
		s.logger.Error("failed to save state", log.Err(err))
	}
}

// OutcomeError reports that a run stopped on an outcome other than Success.
type OutcomeError struct {
	Outcome upload.Outcome
	Source  string
}

func (e *OutcomeError) Error() string {
	if e.Source == "" {
		return "upload ended with " + e.Outcome.String()
	}
	return "upload of " + e.Source + " ended with " + e.Outcome.String()
}
