package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/postway/postway/internal/executor"
	"github.com/postway/postway/internal/httpserver/deps"
	"github.com/postway/postway/internal/httpserver/routes"
	"github.com/postway/postway/internal/ledger"
	"github.com/postway/postway/internal/logger"
	"github.com/postway/postway/internal/store/sqlite"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func newTestRouter(t *testing.T, development bool) (http.Handler, *sqlite.Store) {
	t.Helper()
	store, err := sqlite.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	if err := store.Migrate(); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	d := deps.Deps{
		Logger:          logger.New("error", false),
		StartTime:       time.Now(),
		Development:     development,
		Executor:        executor.New(0),
		Ledger:          ledger.New(store, nil),
		Endpoints:       ledger.NewEndpointHistory(store, nil),
		DB:              store,
		RateLimitBurst:  1000,
		RateLimitPerMin: 6000,
	}

	r := chi.NewRouter()
	routes.RegisterAll(r, d)
	return r, store
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("response is not an envelope: %v (%s)", err, rec.Body.String())
	}
	return env
}

func historyCount(t *testing.T, router http.Handler) int64 {
	t.Helper()
	rec := doJSON(t, router, http.MethodGet, "/api/history", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/history = %d: %s", rec.Code, rec.Body.String())
	}
	var list struct {
		Count int64 `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("failed to decode list: %v", err)
	}
	return list.Count
}

func TestExecuteAndRecord(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"hello":"world"}`))
	}))
	defer upstream.Close()

	router, _ := newTestRouter(t, true)

	rec := doJSON(t, router, http.MethodPost, "/api/history", map[string]any{
		"method": "GET",
		"url":    upstream.URL,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	if !env.Success {
		t.Errorf("success = false: %s", rec.Body.String())
	}

	var payload struct {
		Status    int             `json:"status"`
		Data      json.RawMessage `json:"data"`
		HistoryID int64           `json:"historyId"`
	}
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}
	if payload.Status != http.StatusOK {
		t.Errorf("upstream status = %d, want 200", payload.Status)
	}
	if string(payload.Data) != `{"hello":"world"}` {
		t.Errorf("upstream body = %s, want verbatim JSON", payload.Data)
	}
	if payload.HistoryID == 0 {
		t.Error("expected a recorded history id")
	}

	if got := historyCount(t, router); got != 1 {
		t.Errorf("history count = %d, want 1", got)
	}
}

func TestExecuteAndRecordValidationWritesNothing(t *testing.T) {
	router, _ := newTestRouter(t, true)

	rec := doJSON(t, router, http.MethodPost, "/api/history", map[string]any{
		"method": "FETCH",
		"url":    "https://example.com",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Success {
		t.Error("success should be false")
	}
	if env.Error == "" {
		t.Error("validation failures must name the invalid field")
	}

	if got := historyCount(t, router); got != 0 {
		t.Errorf("history count = %d, want 0 after rejected request", got)
	}
}

func TestExecuteAndRecordPersistsTransportFailures(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	dead := upstream.URL
	upstream.Close()

	router, _ := newTestRouter(t, true)

	rec := doJSON(t, router, http.MethodPost, "/api/history", map[string]any{
		"method": "GET",
		"url":    dead,
	})
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502: %s", rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	var payload struct {
		HistoryID int64 `json:"historyId"`
	}
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}
	if payload.HistoryID == 0 {
		t.Error("transport failures must still be recorded")
	}

	if got := historyCount(t, router); got != 1 {
		t.Errorf("history count = %d, want 1", got)
	}
}

func TestExecuteOnlyDoesNotPersist(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer upstream.Close()

	router, _ := newTestRouter(t, true)

	rec := doJSON(t, router, http.MethodPost, "/api/history/execute", map[string]any{
		"method": "GET",
		"url":    upstream.URL,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	var payload struct {
		Status int `json:"status"`
	}
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}
	if payload.Status != http.StatusTeapot {
		t.Errorf("upstream status = %d, want 418", payload.Status)
	}

	if got := historyCount(t, router); got != 0 {
		t.Errorf("history count = %d, want 0 for execute-only", got)
	}
}

func TestProductionHidesTransportDetail(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	dead := upstream.URL
	upstream.Close()

	router, _ := newTestRouter(t, false)

	rec := doJSON(t, router, http.MethodPost, "/api/history/execute", map[string]any{
		"method": "GET",
		"url":    dead,
	})
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Error != "" {
		t.Errorf("error detail leaked in production: %q", env.Error)
	}
}

func TestListRejectsBadWindowParams(t *testing.T) {
	router, _ := newTestRouter(t, true)

	for _, q := range []string{"limit=-1", "offset=-1", "limit=abc", "offset=abc"} {
		rec := doJSON(t, router, http.MethodGet, "/api/history?"+q, nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("GET /api/history?%s = %d, want 400", q, rec.Code)
		}
	}
}

func TestHistoryLifecycle(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer upstream.Close()

	router, _ := newTestRouter(t, true)

	// Record three attempts
	var lastID int64
	for i := 0; i < 3; i++ {
		rec := doJSON(t, router, http.MethodPost, "/api/history", map[string]any{
			"method": "GET",
			"url":    fmt.Sprintf("%s/page/%d", upstream.URL, i),
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("record %d status = %d", i, rec.Code)
		}
		env := decodeEnvelope(t, rec)
		var payload struct {
			HistoryID int64 `json:"historyId"`
		}
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			t.Fatalf("failed to decode payload: %v", err)
		}
		lastID = payload.HistoryID
	}

	// Window of 2 with full count
	rec := doJSON(t, router, http.MethodGet, "/api/history?limit=2", nil)
	var list struct {
		Items []json.RawMessage `json:"items"`
		Count int64             `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("failed to decode list: %v", err)
	}
	if len(list.Items) != 2 || list.Count != 3 {
		t.Errorf("items = %d count = %d, want 2 and 3", len(list.Items), list.Count)
	}

	// Lookup
	rec = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/history/%d", lastID), nil)
	if rec.Code != http.StatusOK {
		t.Errorf("get by id = %d, want 200", rec.Code)
	}
	rec = doJSON(t, router, http.MethodGet, "/api/history/99999", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get missing id = %d, want 404", rec.Code)
	}

	// Toggle favorite twice returns to original
	var fav struct {
		IsFavorite bool `json:"is_favorite"`
	}
	rec = doJSON(t, router, http.MethodPatch, fmt.Sprintf("/api/history/%d/favorite", lastID), nil)
	env := decodeEnvelope(t, rec)
	if err := json.Unmarshal(env.Data, &fav); err != nil {
		t.Fatalf("failed to decode attempt: %v", err)
	}
	if !fav.IsFavorite {
		t.Error("first toggle should set the flag")
	}
	rec = doJSON(t, router, http.MethodPatch, fmt.Sprintf("/api/history/%d/favorite", lastID), nil)
	env = decodeEnvelope(t, rec)
	if err := json.Unmarshal(env.Data, &fav); err != nil {
		t.Fatalf("failed to decode attempt: %v", err)
	}
	if fav.IsFavorite {
		t.Error("second toggle should clear the flag")
	}

	// Delete one
	rec = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/history/%d", lastID), nil)
	if rec.Code != http.StatusOK {
		t.Errorf("delete = %d, want 200", rec.Code)
	}
	rec = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/history/%d", lastID), nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("delete again = %d, want 404", rec.Code)
	}

	// Clear the rest
	rec = doJSON(t, router, http.MethodDelete, "/api/history", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("clear = %d, want 200", rec.Code)
	}
	env = decodeEnvelope(t, rec)
	var cleared struct {
		Removed int64 `json:"removed"`
	}
	if err := json.Unmarshal(env.Data, &cleared); err != nil {
		t.Fatalf("failed to decode clear payload: %v", err)
	}
	if cleared.Removed != 2 {
		t.Errorf("removed = %d, want 2", cleared.Removed)
	}
	if got := historyCount(t, router); got != 0 {
		t.Errorf("history count = %d, want 0 after clear", got)
	}
}

func TestEndpointHistoryRoutes(t *testing.T) {
	router, _ := newTestRouter(t, true)

	rec := doJSON(t, router, http.MethodPost, "/api/graphql-endpoints", map[string]any{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("create without url = %d, want 400", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/graphql-endpoints", map[string]any{
		"url": "https://api.example.com/graphql",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create = %d: %s", rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	var endpoint struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(env.Data, &endpoint); err != nil {
		t.Fatalf("failed to decode endpoint: %v", err)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/graphql-endpoints", nil)
	env = decodeEnvelope(t, rec)
	var endpoints []json.RawMessage
	if err := json.Unmarshal(env.Data, &endpoints); err != nil {
		t.Fatalf("failed to decode endpoints: %v", err)
	}
	if len(endpoints) != 1 {
		t.Errorf("endpoints = %d, want 1", len(endpoints))
	}

	rec = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/graphql-endpoints/%d", endpoint.ID), nil)
	if rec.Code != http.StatusOK {
		t.Errorf("delete = %d, want 200", rec.Code)
	}
	rec = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/graphql-endpoints/%d", endpoint.ID), nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("delete again = %d, want 404", rec.Code)
	}
}

func TestEcho(t *testing.T) {
	router, _ := newTestRouter(t, true)

	req := httptest.NewRequest(http.MethodPost, "/api/echo", bytes.NewBufferString(`{"ping":true}`))
	req.Header.Set("X-Probe", "yes")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var echoed struct {
		Status  string      `json:"status"`
		Method  string      `json:"method"`
		Headers http.Header `json:"headers"`
		Body    string      `json:"body"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &echoed); err != nil {
		t.Fatalf("failed to decode echo: %v", err)
	}
	if echoed.Status != "ok" || echoed.Method != http.MethodPost {
		t.Errorf("echo = %+v", echoed)
	}
	if echoed.Headers.Get("X-Probe") != "yes" {
		t.Error("echo lost request headers")
	}
	if echoed.Body != `{"ping":true}` {
		t.Errorf("echo body = %q", echoed.Body)
	}
}

func TestReadyzReflectsDatabaseHealth(t *testing.T) {
	router, store := newTestRouter(t, true)

	rec := doJSON(t, router, http.MethodGet, "/readyz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("readyz = %d, want 200", rec.Code)
	}

	if err := store.Close(); err != nil {
		t.Fatalf("failed to close store: %v", err)
	}
	rec = doJSON(t, router, http.MethodGet, "/readyz", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("readyz with closed db = %d, want 503", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	router, _ := newTestRouter(t, true)

	rec := doJSON(t, router, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz = %d", rec.Code)
	}
	var health struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &health); err != nil {
		t.Fatalf("failed to decode healthz: %v", err)
	}
	if health.Status != "ok" {
		t.Errorf("status = %q, want ok", health.Status)
	}
}
