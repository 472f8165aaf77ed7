package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/postway/postway/internal/domain"
	"github.com/postway/postway/internal/httpserver/deps"
)

type createEndpointRequest struct {
	URL string `json:"url"`
}

// CreateEndpoint saves a GraphQL endpoint URL.
func CreateEndpoint(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createEndpointRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, d, &domain.ValidationError{Field: "body", Reason: "must be valid JSON"})
			return
		}

		endpoint, err := d.Endpoints.Save(r.Context(), req.URL)
		if err != nil {
			respondError(w, d, err)
			return
		}

		created(w, endpoint)
	}
}

// ListEndpoints returns every saved endpoint, most recent first.
func ListEndpoints(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		endpoints, err := d.Endpoints.List(r.Context())
		if err != nil {
			respondError(w, d, err)
			return
		}

		ok(w, endpoints)
	}
}

// DeleteEndpoint removes one saved endpoint.
func DeleteEndpoint(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			respondError(w, d, err)
			return
		}

		if err := d.Endpoints.Delete(r.Context(), id); err != nil {
			respondError(w, d, err)
			return
		}

		respond(w, http.StatusOK, "Deleted", nil)
	}
}
