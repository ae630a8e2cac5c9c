package analyses

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryRepo stores analyses in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]Analysis
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[string]Analysis)}
}

// Create stores the analysis, assigning an id when it has none.
func (r *MemoryRepo) Create(ctx context.Context, analysis Analysis) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if analysis.ID == "" {
		analysis.ID = uuid.NewString()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[analysis.ID] = analysis
	return analysis.ID, nil
}

// Get returns an analysis by its ID.
func (r *MemoryRepo) Get(ctx context.Context, analysisID string) (Analysis, error) {
	if err := ctx.Err(); err != nil {
		return Analysis{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	analysis, ok := r.byID[analysisID]
	if !ok {
		return Analysis{}, ErrNotFound
	}
	return analysis, nil
}

// ListByUser returns the user's analyses.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string) ([]Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Analysis, 0)
	for _, a := range r.byID {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

// Update merges patch into the stored analysis.
func (r *MemoryRepo) Update(ctx context.Context, analysisID string, patch Patch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	analysis, ok := r.byID[analysisID]
	if !ok {
		return ErrNotFound
	}
	r.byID[analysisID] = patch.Apply(analysis)
	return nil
}

// Delete removes the analysis.
func (r *MemoryRepo) Delete(ctx context.Context, analysisID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[analysisID]; !ok {
		return ErrNotFound
	}
	delete(r.byID, analysisID)
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
