package handlers

import (
	"io"
	"net/http"

	"github.com/postway/postway/internal/httpserver/deps"
)

const maxEchoBody = 1 << 20 // 1 MiB is plenty for a debug aid

type echoResponse struct {
	Status  string      `json:"status"`
	Method  string      `json:"method"`
	URL     string      `json:"url"`
	Headers http.Header `json:"headers"`
	Body    string      `json:"body"`
}

// Echo reflects the inbound request back; kept as a debugging aid for
// frontend development against the executor.
func Echo(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxEchoBody))
		if err != nil {
			respondError(w, d, err)
			return
		}

		writeJSON(w, http.StatusOK, echoResponse{
			Status:  "ok",
			Method:  r.Method,
			URL:     r.URL.RequestURI(),
			Headers: r.Header,
			Body:    string(body),
		})
	}
}
