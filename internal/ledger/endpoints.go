package ledger

import (
	"context"
	"time"

	"github.com/postway/postway/internal/domain"
)

// EndpointStore is the persistence surface for saved endpoint URLs.
// *sqlite.Store implements it.
type EndpointStore interface {
	InsertEndpoint(ctx context.Context, url string, createdAt time.Time) (int64, error)
	ListEndpoints(ctx context.Context) ([]domain.Endpoint, error)
	DeleteEndpoint(ctx context.Context, id int64) (bool, error)
}

// EndpointHistory keeps the list of saved GraphQL endpoint URLs.
type EndpointHistory struct {
	store EndpointStore
	now   func() time.Time
}

func NewEndpointHistory(store EndpointStore, now func() time.Time) *EndpointHistory {
	if now == nil {
		now = time.Now
	}
	return &EndpointHistory{store: store, now: now}
}

// Save validates and persists one endpoint URL.
func (h *EndpointHistory) Save(ctx context.Context, url string) (*domain.Endpoint, error) {
	if url == "" {
		return nil, &domain.ValidationError{Field: "url", Reason: "is required"}
	}
	if len(url) > domain.MaxURLLength {
		return nil, &domain.ValidationError{Field: "url", Reason: "must be at most 2048 characters"}
	}

	createdAt := h.now()
	id, err := h.store.InsertEndpoint(ctx, url, createdAt)
	if err != nil {
		return nil, err
	}
	return &domain.Endpoint{ID: id, URL: url, CreatedAt: createdAt}, nil
}

// List returns every saved endpoint, most recent first.
func (h *EndpointHistory) List(ctx context.Context) ([]domain.Endpoint, error) {
	return h.store.ListEndpoints(ctx)
}

// Delete removes one endpoint or fails with NotFoundError.
func (h *EndpointHistory) Delete(ctx context.Context, id int64) error {
	found, err := h.store.DeleteEndpoint(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return &domain.NotFoundError{Entity: "endpoint", ID: id}
	}
	return nil
}
