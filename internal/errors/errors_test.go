package errors

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gferrors "github.com/fulmenhq/gofulmen/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariadng/clickup-mcp/internal/core/engine"
	"github.com/ariadng/clickup-mcp/internal/server/middleware"
)

func TestCodeForKind(t *testing.T) {
	tests := []struct {
		kind   engine.Kind
		code   string
		status int
	}{
		{engine.KindInvalidCredentials, CodeUnauthorized, http.StatusUnauthorized},
		{engine.KindRateLimited, CodeRateLimited, http.StatusTooManyRequests},
		{engine.KindNotFound, CodeNotFound, http.StatusNotFound},
		{engine.KindValidationFailed, CodeValidationFailed, http.StatusBadRequest},
		{engine.KindNetworkOrServerFault, CodeExternalService, http.StatusBadGateway},
		{engine.KindUnknown, CodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			code := CodeForKind(tt.kind)
			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.status, HTTPStatusFromCode(code))
		})
	}
}

func TestFromError_ClassifiedError(t *testing.T) {
	cause := &engine.Error{
		Kind:       engine.KindRateLimited,
		StatusCode: http.StatusTooManyRequests,
		Message:    "Rate limit reached",
		Op:         "getTasks",
		RetryAfter: 2 * time.Second,
	}

	envelope := FromError(context.Background(), fmt.Errorf("wrapped: %w", cause))
	require.NotNil(t, envelope)
	assert.Equal(t, CodeRateLimited, envelope.Code)
	assert.Equal(t, "getTasks: Rate limit reached", envelope.Message)
	assert.Equal(t, "RATE_LIMITED", envelope.Context["kind"])
	assert.Equal(t, "getTasks", envelope.Context["operation"])
	assert.NotEmpty(t, envelope.CorrelationID)
}

func TestFromError_PlainError(t *testing.T) {
	envelope := FromError(context.Background(), fmt.Errorf("boom"))
	assert.Equal(t, CodeInternal, envelope.Code)
	assert.Equal(t, "boom", envelope.Context["wrapped_error"])
}

func TestEnsureEnvelope(t *testing.T) {
	t.Run("nil error", func(t *testing.T) {
		env := EnsureEnvelope(nil)
		assert.Equal(t, CodeInternal, env.Code)
		assert.Equal(t, gferrors.SeverityCritical, env.Severity)
	})

	t.Run("existing envelope", func(t *testing.T) {
		original := NewNotFoundError("missing")
		assert.Same(t, original, EnsureEnvelope(original))
	})

	t.Run("classified error", func(t *testing.T) {
		env := EnsureEnvelope(&engine.Error{Kind: engine.KindNotFound, Message: "Task not found"})
		assert.Equal(t, CodeNotFound, env.Code)
	})
}

func TestRespondWithError_UsesRequestID(t *testing.T) {
	handler := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		RespondWithError(w, r, &engine.Error{Kind: engine.KindInvalidCredentials, Message: "Token invalid"})
	}))

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body HTTPErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, CodeUnauthorized, body.Error.Code)
	assert.Equal(t, "req-123", body.Error.RequestID)
	assert.Equal(t, "INVALID_CREDENTIALS", body.Error.Details["kind"])
}
