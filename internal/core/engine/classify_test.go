package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestClassifyHTTPStatus(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		message string
		want    Kind
	}{
		{name: "unauthorized", status: 401, message: "Token invalid", want: KindInvalidCredentials},
		{name: "not found", status: 404, message: "Task not found", want: KindNotFound},
		{name: "rate limited", status: 429, message: "Rate limit reached", want: KindRateLimited},
		{name: "server error", status: 500, message: "Internal error", want: KindNetworkOrServerFault},
		{name: "bad gateway", status: 502, want: KindNetworkOrServerFault},
		{name: "validation", status: 400, message: "Task name must be provided", want: KindValidationFailed},
		{name: "invalid marker", status: 400, message: "Invalid priority", want: KindValidationFailed},
		{name: "forbidden", status: 403, message: "Team not authorized", want: KindUnknown},
		{name: "conflict", status: 409, message: "Conflict", want: KindUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := &HTTPError{Method: "GET", Path: "/x", StatusCode: tc.status, Message: tc.message}
			got := DefaultClassifier.Classify(err)
			require.Equal(t, tc.want, got.Kind)
			require.Equal(t, tc.status, got.StatusCode)
			require.ErrorIs(t, got, err)
		})
	}
}

func TestClassifyStatusBeatsMessage(t *testing.T) {
	err := &HTTPError{StatusCode: 404, Message: "validation failed"}
	require.Equal(t, KindNotFound, DefaultClassifier.Classify(err).Kind)
}

func TestClassifyRateLimitCarriesRetryAfter(t *testing.T) {
	err := &HTTPError{StatusCode: 429, RetryAfter: 7 * time.Second}
	got := DefaultClassifier.Classify(err)
	require.Equal(t, KindRateLimited, got.Kind)
	require.Equal(t, 7*time.Second, got.RetryAfter)
	require.Equal(t, "Too Many Requests", got.Message)
}

func TestClassifyTransportFaults(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{name: "reset", err: &url.Error{Op: "Get", URL: "http://x", Err: syscall.ECONNRESET}},
		{name: "refused", err: &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}},
		{name: "dns", err: &net.DNSError{Err: "no such host", Name: "api.clickup.com"}},
		{name: "timeout", err: &url.Error{Op: "Get", URL: "http://x", Err: timeoutError{}}},
		{name: "unexpected eof", err: fmt.Errorf("read body: %w", io.ErrUnexpectedEOF)},
		{name: "deadline", err: context.DeadlineExceeded},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, KindNetworkOrServerFault, DefaultClassifier.Classify(tc.err).Kind)
		})
	}
}

func TestClassifyMessagesAndFallbacks(t *testing.T) {
	require.Nil(t, DefaultClassifier.Classify(nil))
	require.Equal(t, KindValidationFailed, DefaultClassifier.Classify(errors.New("name is required")).Kind)
	require.Equal(t, KindUnknown, DefaultClassifier.Classify(errors.New("something odd")).Kind)
	require.Equal(t, KindUnknown, DefaultClassifier.Classify(context.Canceled).Kind)
}

func TestClassifyPassesThroughClassified(t *testing.T) {
	original := &Error{Kind: KindNotFound, Message: "gone"}
	wrapped := fmt.Errorf("wrap: %w", original)
	require.Same(t, original, DefaultClassifier.Classify(wrapped))
}

func TestClassifyCustomMarkers(t *testing.T) {
	classifier := &Classifier{Markers: []string{"bad input"}}
	require.Equal(t, KindValidationFailed, classifier.Classify(errors.New("Bad input for field")).Kind)
	require.Equal(t, KindUnknown, classifier.Classify(errors.New("name is required")).Kind)
}

func TestRetryAfterFromHeader(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	header := http.Header{}
	header.Set("Retry-After", "12")
	require.Equal(t, 12*time.Second, RetryAfterFromHeader(header, now))

	header = http.Header{}
	header.Set("Retry-After", now.Add(5*time.Second).Format(http.TimeFormat))
	require.Equal(t, 5*time.Second, RetryAfterFromHeader(header, now))

	header = http.Header{}
	header.Set("X-RateLimit-Reset", fmt.Sprintf("%d", now.Add(30*time.Second).Unix()))
	require.Equal(t, 30*time.Second, RetryAfterFromHeader(header, now))

	require.Zero(t, RetryAfterFromHeader(http.Header{}, now))
	require.Zero(t, RetryAfterFromHeader(nil, now))
}

func TestKindRetryable(t *testing.T) {
	retryable := map[Kind]bool{}
	for _, kind := range Kinds {
		retryable[kind] = kind.Retryable()
	}
	require.Equal(t, map[Kind]bool{
		KindInvalidCredentials:   false,
		KindRateLimited:          true,
		KindNotFound:             false,
		KindValidationFailed:     false,
		KindNetworkOrServerFault: true,
		KindUnknown:              false,
	}, retryable)
}
