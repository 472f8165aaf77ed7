package domain

import (
	"errors"
	"fmt"
	"time"
)

// ValidationError reports a missing or invalid client-supplied field.
// No side effect has taken place when one is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// NotFoundError reports a lookup on an identifier that does not exist.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// TimeoutError reports an outbound call that exceeded its deadline.
type TimeoutError struct {
	URL       string
	Timeout   time.Duration
	ElapsedMs int64
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request to %s timed out after %s", e.URL, e.Timeout)
}

// TransportError reports an outbound call that failed below the HTTP layer
// (DNS, connection refused, TLS). A response-carrying failure (any status
// code) is never a TransportError.
type TransportError struct {
	URL       string
	ElapsedMs int64
	Err       error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// StorageError wraps a persistence-layer failure. There is no local recovery;
// callers surface it and the handler decides how much detail to expose.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func IsNotFound(err error) bool {
	var n *NotFoundError
	return errors.As(err, &n)
}

func IsTimeout(err error) bool {
	var t *TimeoutError
	return errors.As(err, &t)
}

func IsTransport(err error) bool {
	var t *TransportError
	return errors.As(err, &t)
}

func IsStorage(err error) bool {
	var s *StorageError
	return errors.As(err, &s)
}
