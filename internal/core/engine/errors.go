package engine

import (
	"fmt"
	"strings"
	"time"
)

// Kind is the closed set of failure categories the API layer reports.
type Kind string

const (
	KindInvalidCredentials   Kind = "INVALID_CREDENTIALS"
	KindRateLimited          Kind = "RATE_LIMITED"
	KindNotFound             Kind = "NOT_FOUND"
	KindValidationFailed     Kind = "VALIDATION_FAILED"
	KindNetworkOrServerFault Kind = "NETWORK_OR_SERVER_FAULT"
	KindUnknown              Kind = "UNKNOWN"
)

// Kinds lists every Kind in classifier priority order.
var Kinds = []Kind{
	KindInvalidCredentials,
	KindRateLimited,
	KindNotFound,
	KindValidationFailed,
	KindNetworkOrServerFault,
	KindUnknown,
}

// Retryable reports whether failures of this kind are worth another attempt.
func (k Kind) Retryable() bool {
	return k == KindRateLimited || k == KindNetworkOrServerFault
}

// Error is a classified failure. It keeps the underlying cause for errors.Is
// and errors.As.
type Error struct {
	Kind       Kind
	StatusCode int
	Message    string
	Op         string
	RetryAfter time.Duration
	Err        error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, msg)
	}
	return msg
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Validation builds a ValidationFailed error for caller mistakes detected
// before any request is sent.
func Validation(op, format string, args ...any) *Error {
	return &Error{
		Kind:    KindValidationFailed,
		Message: fmt.Sprintf(format, args...),
		Op:      op,
	}
}

// HTTPError captures a non-2xx response from the remote API.
type HTTPError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
	ErrorCode  string
	RetryAfter time.Duration
	Body       []byte
}

func (e *HTTPError) Error() string {
	if e == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s: status %d", e.Method, e.Path, e.StatusCode)
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.ErrorCode != "" {
		fmt.Fprintf(&b, " (%s)", e.ErrorCode)
	}
	return b.String()
}
