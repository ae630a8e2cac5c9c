package analyses

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreRepo stores analyses in the skinAnalyses collection.
type FirestoreRepo struct {
	Client       *firestore.Client
	WriteTimeout time.Duration
}

// NewFirestoreRepo constructs a FirestoreRepo.
func NewFirestoreRepo(client *firestore.Client) *FirestoreRepo {
	return &FirestoreRepo{Client: client, WriteTimeout: 30 * time.Second}
}

func (r *FirestoreRepo) coll() *firestore.CollectionRef {
	return r.Client.Collection(Collection)
}

func (r *FirestoreRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.WriteTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.WriteTimeout)
}

// Create adds a document with a generated id.
func (r *FirestoreRepo) Create(ctx context.Context, analysis Analysis) (string, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if analysis.ID != "" {
		if _, err := r.coll().Doc(analysis.ID).Set(ctx, analysis); err != nil {
			return "", fmt.Errorf("firestore set: %w", err)
		}
		return analysis.ID, nil
	}
	ref, _, err := r.coll().Add(ctx, analysis)
	if err != nil {
		return "", fmt.Errorf("firestore add: %w", err)
	}
	return ref.ID, nil
}

// Get returns a single document.
func (r *FirestoreRepo) Get(ctx context.Context, analysisID string) (Analysis, error) {
	snap, err := r.coll().Doc(analysisID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return Analysis{}, ErrNotFound
		}
		return Analysis{}, fmt.Errorf("firestore get: %w", err)
	}
	return fromSnapshot(snap)
}

// ListByUser queries on userId. Ordering happens in the service so no composite index is needed.
func (r *FirestoreRepo) ListByUser(ctx context.Context, userID string) ([]Analysis, error) {
	iter := r.coll().Where("userId", "==", userID).Documents(ctx)
	defer iter.Stop()

	out := make([]Analysis, 0)
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("firestore list: %w", err)
		}
		a, err := fromSnapshot(snap)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// Update writes only the patched paths plus metadata.updatedAt.
func (r *FirestoreRepo) Update(ctx context.Context, analysisID string, patch Patch) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if _, err := r.coll().Doc(analysisID).Update(ctx, patchUpdates(patch)); err != nil {
		if status.Code(err) == codes.NotFound {
			return ErrNotFound
		}
		return fmt.Errorf("firestore update: %w", err)
	}
	return nil
}

// Delete removes the document.
func (r *FirestoreRepo) Delete(ctx context.Context, analysisID string) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	ref := r.coll().Doc(analysisID)
	if _, err := ref.Delete(ctx, firestore.Exists); err != nil {
		if status.Code(err) == codes.NotFound {
			return ErrNotFound
		}
		return fmt.Errorf("firestore delete: %w", err)
	}
	return nil
}

func patchUpdates(p Patch) []firestore.Update {
	updates := []firestore.Update{{Path: "metadata.updatedAt", Value: p.UpdatedAt}}
	if p.Status != nil {
		updates = append(updates, firestore.Update{Path: "metadata.status", Value: *p.Status})
	}
	if p.Feedback != nil {
		updates = append(updates, firestore.Update{Path: "feedback", Value: *p.Feedback})
	}
	if p.Response != nil {
		updates = append(updates, firestore.Update{Path: "aiAnalysis.response", Value: *p.Response})
	}
	return updates
}

func fromSnapshot(snap *firestore.DocumentSnapshot) (Analysis, error) {
	var a Analysis
	if err := snap.DataTo(&a); err != nil {
		return Analysis{}, fmt.Errorf("decode %s: %w", snap.Ref.ID, err)
	}
	a.ID = snap.Ref.ID
	return a, nil
}

var _ Repo = (*FirestoreRepo)(nil)
