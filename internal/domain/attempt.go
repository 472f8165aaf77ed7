package domain

import (
	"strings"
	"time"
)

// Method is an HTTP request method from the fixed supported set.
type Method string

const (
	MethodGet     Method = "GET"
	MethodPost    Method = "POST"
	MethodPut     Method = "PUT"
	MethodPatch   Method = "PATCH"
	MethodDelete  Method = "DELETE"
	MethodHead    Method = "HEAD"
	MethodOptions Method = "OPTIONS"
	MethodConnect Method = "CONNECT"
	MethodTrace   Method = "TRACE"
)

// Methods lists every supported method, used for validation and error messages.
var Methods = []Method{
	MethodGet, MethodPost, MethodPut, MethodPatch, MethodDelete,
	MethodHead, MethodOptions, MethodConnect, MethodTrace,
}

// MaxURLLength bounds the url column; longer values are rejected before persistence.
const MaxURLLength = 2048

// ParseMethod normalizes a method string (case-insensitive) and validates it
// against the supported set.
func ParseMethod(s string) (Method, error) {
	if s == "" {
		return "", &ValidationError{Field: "method", Reason: "is required"}
	}
	m := Method(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Methods {
		if m == known {
			return m, nil
		}
	}
	return "", &ValidationError{Field: "method", Reason: "must be one of " + methodList()}
}

func methodList() string {
	parts := make([]string, len(Methods))
	for i, m := range Methods {
		parts[i] = string(m)
	}
	return strings.Join(parts, ", ")
}

// Attempt is one persisted record of an executed (or recorded) request.
// Only IsFavorite is mutable after creation.
type Attempt struct {
	ID         int64     `json:"id"`
	Method     Method    `json:"method"`
	URL        string    `json:"url"`
	Month      string    `json:"month"`
	Day        string    `json:"day"`
	Year       string    `json:"year"`
	Time       string    `json:"time"`
	CreatedAt  time.Time `json:"created_at"`
	IsFavorite bool      `json:"is_favorite"`
}

// NewAttempt derives every date fragment and the canonical timestamp from the
// same instant, so a record can never carry fragments inconsistent with its
// created_at.
func NewAttempt(method Method, url string, now time.Time) Attempt {
	return Attempt{
		Method:    method,
		URL:       url,
		Month:     now.Format("01"),
		Day:       now.Format("02"),
		Year:      now.Format("2006"),
		Time:      now.Format("03:04 PM"),
		CreatedAt: now,
	}
}

// Endpoint is a saved GraphQL endpoint URL; a much narrower history than
// Attempt, kept for the endpoint picker on the client side.
type Endpoint struct {
	ID        int64     `json:"id"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}
