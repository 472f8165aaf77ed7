package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/postway/postway/internal/domain"
	"github.com/postway/postway/internal/httpserver/deps"
)

// listResponse is the pagination shape: count is the full row count, not the
// window size, so clients can compute page numbers.
type listResponse struct {
	Items any   `json:"items"`
	Count int64 `json:"count"`
}

// ListHistory returns a recency-descending window of attempts.
func ListHistory(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := queryInt(r, "limit")
		if err != nil {
			respondError(w, d, err)
			return
		}
		offset, err := queryInt(r, "offset")
		if err != nil {
			respondError(w, d, err)
			return
		}

		items, count, err := d.Ledger.List(r.Context(), limit, offset)
		if err != nil {
			respondError(w, d, err)
			return
		}

		writeJSON(w, http.StatusOK, listResponse{Items: items, Count: count})
	}
}

// GetHistoryByID returns one attempt.
func GetHistoryByID(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			respondError(w, d, err)
			return
		}

		attempt, err := d.Ledger.GetByID(r.Context(), id)
		if err != nil {
			respondError(w, d, err)
			return
		}

		ok(w, attempt)
	}
}

// ToggleFavorite flips the favorite flag and returns the updated attempt.
func ToggleFavorite(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			respondError(w, d, err)
			return
		}

		attempt, err := d.Ledger.ToggleFavorite(r.Context(), id)
		if err != nil {
			respondError(w, d, err)
			return
		}

		ok(w, attempt)
	}
}

// DeleteHistory removes exactly one attempt.
func DeleteHistory(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			respondError(w, d, err)
			return
		}

		if err := d.Ledger.DeleteByID(r.Context(), id); err != nil {
			respondError(w, d, err)
			return
		}

		respond(w, http.StatusOK, "Deleted", nil)
	}
}

// ClearHistory removes every attempt and reports how many were removed.
func ClearHistory(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		removed, err := d.Ledger.Clear(r.Context())
		if err != nil {
			respondError(w, d, err)
			return
		}

		ok(w, map[string]int64{"removed": removed})
	}
}

// queryInt parses a non-negative integer query parameter; absent => 0.
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, &domain.ValidationError{Field: name, Reason: "must be a non-negative integer"}
	}
	return n, nil
}

func pathID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, &domain.ValidationError{Field: "id", Reason: "must be an integer"}
	}
	return id, nil
}
