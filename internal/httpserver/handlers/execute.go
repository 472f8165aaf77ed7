package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/postway/postway/internal/domain"
	"github.com/postway/postway/internal/executor"
	"github.com/postway/postway/internal/httpserver/deps"
)

// executeRequest is the inbound description of the outbound call to perform.
type executeRequest struct {
	Method    string            `json:"method"`
	URL       string            `json:"url"`
	Headers   map[string]string `json:"headers"`
	Body      json.RawMessage   `json:"body"`
	TimeoutMs int               `json:"timeoutMs"`
}

func (req executeRequest) toExecutor() executor.Request {
	return executor.Request{
		Method:    req.Method,
		URL:       req.URL,
		Headers:   req.Headers,
		Body:      req.Body,
		TimeoutMs: req.TimeoutMs,
	}
}

// executionPayload mirrors what the original frontend consumes: the upstream
// status/headers/body plus the measured round-trip time.
type executionPayload struct {
	Status       int         `json:"status"`
	StatusText   string      `json:"statusText"`
	Headers      http.Header `json:"headers"`
	Data         any         `json:"data"`
	ResponseTime string      `json:"responseTime"`
	HistoryID    int64       `json:"historyId,omitempty"`
}

func newExecutionPayload(res *executor.Result, historyID int64) executionPayload {
	// JSON bodies are embedded verbatim; anything else is a plain string.
	var data any
	if len(res.Body) > 0 && json.Valid(res.Body) {
		data = json.RawMessage(res.Body)
	} else {
		data = string(res.Body)
	}
	return executionPayload{
		Status:       res.Status,
		StatusText:   res.StatusText,
		Headers:      res.Headers,
		Data:         data,
		ResponseTime: fmt.Sprintf("%dms", res.ElapsedMs),
		HistoryID:    historyID,
	}
}

func decodeExecuteRequest(r *http.Request) (executeRequest, error) {
	var req executeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, &domain.ValidationError{Field: "body", Reason: "must be valid JSON"}
	}
	return req, nil
}

// ExecuteOnly runs the outbound call without touching the ledger.
func ExecuteOnly(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := decodeExecuteRequest(r)
		if err != nil {
			respondError(w, d, err)
			return
		}

		res, err := d.Executor.Execute(r.Context(), req.toExecutor())
		if err != nil {
			respondError(w, d, err)
			return
		}

		ok(w, newExecutionPayload(res, 0))
	}
}

// ExecuteAndRecord runs the outbound call, then records the attempt. The
// record is written whether or not the call reached the remote peer; only a
// validation failure (nothing was sent) skips the write.
func ExecuteAndRecord(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := decodeExecuteRequest(r)
		if err != nil {
			respondError(w, d, err)
			return
		}

		res, execErr := d.Executor.Execute(r.Context(), req.toExecutor())
		if execErr != nil && domain.IsValidation(execErr) {
			respondError(w, d, execErr)
			return
		}

		attempt, err := d.Ledger.Record(r.Context(), req.Method, req.URL)
		if err != nil {
			respondError(w, d, err)
			return
		}

		if execErr != nil {
			code := http.StatusBadGateway
			message := "Upstream request failed"
			if domain.IsTimeout(execErr) {
				code = http.StatusGatewayTimeout
				message = "Upstream request timed out"
			}
			fail(w, code, message, errDetail(d, execErr), map[string]any{
				"historyId":    attempt.ID,
				"responseTime": fmt.Sprintf("%dms", elapsedMsOf(execErr)),
			})
			return
		}

		created(w, newExecutionPayload(res, attempt.ID))
	}
}

func elapsedMsOf(err error) int64 {
	var timeout *domain.TimeoutError
	if errors.As(err, &timeout) {
		return timeout.ElapsedMs
	}
	var transport *domain.TransportError
	if errors.As(err, &transport) {
		return transport.ElapsedMs
	}
	return 0
}
