package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/postway/postway/internal/domain"
	"github.com/postway/postway/internal/httpserver/deps"
	"github.com/postway/postway/internal/logger"
)

// envelope is the uniform JSON response shape.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func respond(w http.ResponseWriter, code int, message string, data any) {
	writeJSON(w, code, envelope{
		Success: code >= 200 && code < 300,
		Message: message,
		Data:    data,
	})
}

func ok(w http.ResponseWriter, data any) {
	respond(w, http.StatusOK, "Success", data)
}

func created(w http.ResponseWriter, data any) {
	respond(w, http.StatusCreated, "Created", data)
}

func fail(w http.ResponseWriter, code int, message, detail string, data any) {
	writeJSON(w, code, envelope{
		Success: false,
		Message: message,
		Error:   detail,
		Data:    data,
	})
}

// respondError maps a domain error onto the HTTP surface. Outside development
// mode the underlying detail is withheld (the error field is dropped).
func respondError(w http.ResponseWriter, d deps.Deps, err error) {
	switch {
	case domain.IsValidation(err):
		fail(w, http.StatusBadRequest, "Invalid request", err.Error(), nil)
	case domain.IsNotFound(err):
		fail(w, http.StatusNotFound, "Not found", err.Error(), nil)
	case domain.IsTimeout(err):
		fail(w, http.StatusGatewayTimeout, "Upstream request timed out", errDetail(d, err), nil)
	case domain.IsTransport(err):
		fail(w, http.StatusBadGateway, "Upstream request failed", errDetail(d, err), nil)
	default:
		d.Logger.Error("internal error", logger.Error(err))
		fail(w, http.StatusInternalServerError, "Internal server error", errDetail(d, err), nil)
	}
}

func errDetail(d deps.Deps, err error) string {
	if d.Development {
		return err.Error()
	}
	return ""
}
