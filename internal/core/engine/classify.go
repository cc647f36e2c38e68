package engine

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"syscall"
	"time"
)

// DefaultValidationMarkers are message fragments that identify a request the
// remote API rejected as malformed.
var DefaultValidationMarkers = []string{"validation", "invalid", "required", "must be"}

// Classifier maps raw failures onto a Kind.
type Classifier struct {
	Markers []string
}

// DefaultClassifier uses DefaultValidationMarkers.
var DefaultClassifier = &Classifier{Markers: DefaultValidationMarkers}

// Classify returns the classified form of err. Already classified errors are
// returned unchanged; nil stays nil.
func (c *Classifier) Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var classified *Error
	if errors.As(err, &classified) && classified != nil {
		return classified
	}

	var herr *HTTPError
	if errors.As(err, &herr) && herr != nil {
		out := &Error{
			StatusCode: herr.StatusCode,
			Message:    herr.Message,
			Err:        err,
		}
		if out.Message == "" {
			out.Message = http.StatusText(herr.StatusCode)
		}
		switch status := herr.StatusCode; {
		case status == http.StatusUnauthorized:
			out.Kind = KindInvalidCredentials
		case status == http.StatusNotFound:
			out.Kind = KindNotFound
		case status == http.StatusTooManyRequests:
			out.Kind = KindRateLimited
			out.RetryAfter = herr.RetryAfter
		case status >= 500:
			out.Kind = KindNetworkOrServerFault
		case c.hasValidationMarker(herr.Message):
			out.Kind = KindValidationFailed
		default:
			out.Kind = KindUnknown
		}
		return out
	}

	if errors.Is(err, context.Canceled) {
		return &Error{Kind: KindUnknown, Message: "request canceled", Err: err}
	}

	if isTransportFault(err) {
		return &Error{Kind: KindNetworkOrServerFault, Message: err.Error(), Err: err}
	}

	if c.hasValidationMarker(err.Error()) {
		return &Error{Kind: KindValidationFailed, Message: err.Error(), Err: err}
	}

	return &Error{Kind: KindUnknown, Message: err.Error(), Err: err}
}

func (c *Classifier) hasValidationMarker(message string) bool {
	markers := DefaultValidationMarkers
	if c != nil && c.Markers != nil {
		markers = c.Markers
	}
	lower := strings.ToLower(message)
	for _, marker := range markers {
		if marker != "" && strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func isTransportFault(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) || errors.Is(err, syscall.EPIPE) {
		return true
	}
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	return false
}

// RetryAfterFromHeader reads Retry-After (seconds or HTTP date) and falls back
// to X-RateLimit-Reset (Unix seconds).
func RetryAfterFromHeader(header http.Header, now time.Time) time.Duration {
	if header == nil {
		return 0
	}

	if retry := strings.TrimSpace(header.Get("Retry-After")); retry != "" {
		if seconds, err := strconv.Atoi(retry); err == nil && seconds >= 0 {
			return time.Duration(seconds) * time.Second
		}
		if parsed, err := http.ParseTime(retry); err == nil {
			if wait := parsed.Sub(now); wait > 0 {
				return wait
			}
			return 0
		}
	}

	if reset := strings.TrimSpace(header.Get("X-RateLimit-Reset")); reset != "" {
		if epoch, err := strconv.ParseInt(reset, 10, 64); err == nil {
			if wait := time.Unix(epoch, 0).Sub(now); wait > 0 {
				return wait
			}
		}
	}

	return 0
}
