package ports

import (
	"context"

	"github.com/bft-labs/towership/internal/domain"
)

// StateRepository persists shipping statistics across runs.
type StateRepository interface {
	// Load returns the last saved state, or an empty state if none exists.
	Load(ctx context.Context) (domain.State, error)

	// Save persists the state atomically.
	Save(ctx context.Context, state domain.State) error
}
