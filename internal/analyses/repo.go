package analyses

import "context"

// Repo defines persistence operations for analyses.
type Repo interface {
	// Create stores a new record and returns its id.
	Create(ctx context.Context, analysis Analysis) (string, error)
	Get(ctx context.Context, analysisID string) (Analysis, error)
	// ListByUser returns every record owned by userID, in no particular order.
	ListByUser(ctx context.Context, userID string) ([]Analysis, error)
	Update(ctx context.Context, analysisID string, patch Patch) error
	Delete(ctx context.Context, analysisID string) error
}
