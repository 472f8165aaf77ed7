package ledger

import (
	"context"
	"time"

	"github.com/postway/postway/internal/domain"
)

// AttemptStore is the narrow persistence surface the ledger depends on.
// *sqlite.Store implements it.
type AttemptStore interface {
	InsertAttempt(ctx context.Context, a *domain.Attempt) (int64, error)
	ListAttempts(ctx context.Context, limit, offset int) ([]domain.Attempt, error)
	CountAttempts(ctx context.Context) (int64, error)
	FindAttempt(ctx context.Context, id int64) (*domain.Attempt, error)
	SetFavorite(ctx context.Context, id int64, favorite bool) (bool, error)
	DeleteAttempt(ctx context.Context, id int64) (bool, error)
	ClearAttempts(ctx context.Context) (int64, error)
}

// DefaultLimit is the list window size when the caller does not specify one.
const DefaultLimit = 50

// Ledger owns the attempt history: it is the only component that mutates
// attempt rows.
type Ledger struct {
	store AttemptStore
	now   func() time.Time
}

func New(store AttemptStore, now func() time.Time) *Ledger {
	if now == nil {
		now = time.Now
	}
	return &Ledger{store: store, now: now}
}

// Record validates and persists one attempt. The current instant is captured
// once; every date fragment and created_at derive from it. Recording is
// orthogonal to execution: callers may record without having made a call.
func (l *Ledger) Record(ctx context.Context, method, url string) (*domain.Attempt, error) {
	m, err := domain.ParseMethod(method)
	if err != nil {
		return nil, err
	}
	if url == "" {
		return nil, &domain.ValidationError{Field: "url", Reason: "is required"}
	}
	if len(url) > domain.MaxURLLength {
		return nil, &domain.ValidationError{Field: "url", Reason: "must be at most 2048 characters"}
	}

	a := domain.NewAttempt(m, url, l.now())
	id, err := l.store.InsertAttempt(ctx, &a)
	if err != nil {
		return nil, err
	}
	a.ID = id
	return &a, nil
}

// List returns a recency-descending window plus the full unfiltered count.
func (l *Ledger) List(ctx context.Context, limit, offset int) ([]domain.Attempt, int64, error) {
	if limit < 0 {
		return nil, 0, &domain.ValidationError{Field: "limit", Reason: "must be a non-negative integer"}
	}
	if offset < 0 {
		return nil, 0, &domain.ValidationError{Field: "offset", Reason: "must be a non-negative integer"}
	}
	if limit == 0 {
		limit = DefaultLimit
	}

	items, err := l.store.ListAttempts(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	count, err := l.store.CountAttempts(ctx)
	if err != nil {
		return nil, 0, err
	}
	return items, count, nil
}

// GetByID returns the attempt or NotFoundError.
func (l *Ledger) GetByID(ctx context.Context, id int64) (*domain.Attempt, error) {
	a, err := l.store.FindAttempt(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, &domain.NotFoundError{Entity: "attempt", ID: id}
	}
	return a, nil
}

// ToggleFavorite flips the favorite flag and returns the updated attempt.
// Read-modify-write without a transaction: concurrent toggles on the same id
// are last-write-wins, which is accepted behavior.
func (l *Ledger) ToggleFavorite(ctx context.Context, id int64) (*domain.Attempt, error) {
	a, err := l.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	flipped := !a.IsFavorite
	found, err := l.store.SetFavorite(ctx, id, flipped)
	if err != nil {
		return nil, err
	}
	if !found {
		// Deleted between the read and the write.
		return nil, &domain.NotFoundError{Entity: "attempt", ID: id}
	}
	a.IsFavorite = flipped
	return a, nil
}

// DeleteByID removes exactly one attempt or fails with NotFoundError.
func (l *Ledger) DeleteByID(ctx context.Context, id int64) error {
	found, err := l.store.DeleteAttempt(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return &domain.NotFoundError{Entity: "attempt", ID: id}
	}
	return nil
}

// Clear removes every attempt; 0 removed on an empty ledger is not an error.
func (l *Ledger) Clear(ctx context.Context) (int64, error) {
	return l.store.ClearAttempts(ctx)
}
