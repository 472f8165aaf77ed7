package executor

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/postway/postway/internal/domain"
	"github.com/postway/postway/internal/utils"
)

// Request describes one outbound call to perform on behalf of a client.
type Request struct {
	Method    string
	URL       string
	Headers   map[string]string
	Body      []byte
	TimeoutMs int // 0 => executor default
}

// Result is the normalized outcome of one outbound call. Any HTTP status,
// including 4xx/5xx, is a Result; only transport-level failures are errors.
type Result struct {
	Status     int
	StatusText string
	Headers    http.Header
	Body       []byte
	ElapsedMs  int64
}

// Executor performs exactly one outbound HTTP call per Execute. No retries:
// the ledger records what actually happened, and a silent retry would lie.
type Executor struct {
	client         *http.Client
	defaultTimeout time.Duration
}

const DefaultTimeout = 10 * time.Second

func New(defaultTimeout time.Duration) *Executor {
	if defaultTimeout <= 0 {
		defaultTimeout = DefaultTimeout
	}
	return &Executor{
		// Timeout is enforced per call via context so clients can override it.
		client:         &http.Client{},
		defaultTimeout: defaultTimeout,
	}
}

// Execute validates the request, performs the call and normalizes the outcome.
// Errors are *domain.ValidationError (nothing was sent), *domain.TimeoutError
// or *domain.TransportError.
func (e *Executor) Execute(ctx context.Context, req Request) (*Result, error) {
	method, err := domain.ParseMethod(req.Method)
	if err != nil {
		return nil, err
	}
	if req.URL == "" {
		return nil, &domain.ValidationError{Field: "url", Reason: "is required"}
	}
	if _, err := url.ParseRequestURI(req.URL); err != nil {
		return nil, &domain.ValidationError{Field: "url", Reason: "is not a valid URL"}
	}

	timeout := e.defaultTimeout
	if req.TimeoutMs > 0 {
		timeout = time.Duration(req.TimeoutMs) * time.Millisecond
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, string(method), req.URL, body)
	if err != nil {
		return nil, &domain.ValidationError{Field: "url", Reason: "is not a valid URL"}
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := e.client.Do(httpReq)
	if err != nil {
		elapsed := time.Since(start).Milliseconds()
		if isTimeout(err) {
			return nil, &domain.TimeoutError{URL: req.URL, Timeout: timeout, ElapsedMs: elapsed}
		}
		return nil, &domain.TransportError{URL: req.URL, ElapsedMs: elapsed, Err: err}
	}
	defer utils.Close(resp.Body)

	respBody, err := io.ReadAll(resp.Body)
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		if isTimeout(err) {
			return nil, &domain.TimeoutError{URL: req.URL, Timeout: timeout, ElapsedMs: elapsed}
		}
		return nil, &domain.TransportError{URL: req.URL, ElapsedMs: elapsed, Err: err}
	}

	return &Result{
		Status:     resp.StatusCode,
		StatusText: http.StatusText(resp.StatusCode),
		Headers:    resp.Header,
		Body:       respBody,
		ElapsedMs:  elapsed,
	}, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
