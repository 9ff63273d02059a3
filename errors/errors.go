package errors

import (
	"errors"
	"fmt"
)

// Kind classifies load failures for targeted handling and monitoring.
type Kind string

const (
	KindEmptySource       Kind = "empty_source"
	KindSourceUnavailable Kind = "source_unavailable"
	KindNetworkStatus     Kind = "network_status"
	KindTransport         Kind = "transport"
	KindTimeout           Kind = "timeout"
	KindCancelled         Kind = "cancelled"
	KindDecode            Kind = "decode"
	KindConfig            Kind = "config"
)

// LoadError is the structured error type used throughout the module.
// Origin carries the path or URL the load was reading from, and Attempts the
// number of fetch attempts made before the error became terminal (0 when the
// failure happened before any attempt).
type LoadError struct {
	Kind      Kind
	Op        string // operation name
	Origin    string // file path or URL, for diagnostics
	Attempts  int
	Err       error
	Retryable bool
}

func (e *LoadError) Error() string {
	if e.Origin != "" {
		return fmt.Sprintf("[%s] %s %s: %v", e.Kind, e.Op, e.Origin, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Op, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// New creates a non-retryable LoadError.
func New(kind Kind, op string, err error) *LoadError {
	return &LoadError{Kind: kind, Op: op, Err: err}
}

// Transient creates a retryable LoadError of the given kind.
func Transient(kind Kind, op string, err error) *LoadError {
	return &LoadError{Kind: kind, Op: op, Err: err, Retryable: true}
}

// Wrap wraps an existing error with context.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return New(kind, op, err)
}

// WithOrigin returns a copy of e annotated with the source path or URL.
func (e *LoadError) WithOrigin(origin string) *LoadError {
	cp := *e
	cp.Origin = origin
	return &cp
}

// WithAttempts returns a copy of e annotated with the attempt count.
func (e *LoadError) WithAttempts(n int) *LoadError {
	cp := *e
	cp.Attempts = n
	return &cp
}

// IsRetryable reports whether err represents a transient failure.
func IsRetryable(err error) bool {
	var le *LoadError
	if errors.As(err, &le) {
		return le.Retryable
	}
	return false
}

// IsKind reports whether err belongs to the given kind.
func IsKind(err error, kind Kind) bool {
	var le *LoadError
	if errors.As(err, &le) {
		return le.Kind == kind
	}
	return false
}

// StatusError records a rejected HTTP status for a fetch.
type StatusError struct {
	Code int
	URI  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d fetching %s", e.Code, e.URI)
}

// Sentinel errors for common failure modes.
var (
	ErrEmptyPayload    = errors.New("empty payload")
	ErrNoDecoder       = errors.New("no decoder for format")
	ErrQueueFull       = errors.New("prefetch queue full")
	ErrLoadCancelled   = errors.New("load cancelled")
	ErrTimeBudgetSpent = errors.New("time limit exceeded")
)
