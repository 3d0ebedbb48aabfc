package ports

import (
	"context"

	"github.com/bft-labs/towership/pkg/upload"
)

// Uploader transmits a CSV batch to the collection service.
// *upload.Client satisfies this interface.
type Uploader interface {
	// Upload blocks until the batch is accepted or rejected and never fails
	// with an error; every result is an Outcome.
	Upload(ctx context.Context, batch string) upload.Outcome
}
