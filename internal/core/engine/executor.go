package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fulmenhq/gofulmen/logging"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RateLimitPolicy decides what happens when the limiter window is full.
type RateLimitPolicy string

const (
	// PolicyFail rejects locally with a RateLimited error; the retry engine
	// backs off and tries again.
	PolicyFail RateLimitPolicy = "fail"
	// PolicyWait blocks admission until the next window opens.
	PolicyWait RateLimitPolicy = "wait"
)

// ParseRateLimitPolicy validates a policy name. Empty selects PolicyFail.
func ParseRateLimitPolicy(value string) (RateLimitPolicy, error) {
	switch RateLimitPolicy(strings.ToLower(strings.TrimSpace(value))) {
	case "", PolicyFail:
		return PolicyFail, nil
	case PolicyWait:
		return PolicyWait, nil
	default:
		return "", fmt.Errorf("unknown rate limit policy %q (expected fail or wait)", value)
	}
}

// Recorder receives per-attempt measurements.
type Recorder interface {
	RecordAttempt(label string, duration time.Duration, err *Error)
	RecordRetry(label string, kind Kind)
	RecordRejection(label string, remaining int)
}

// Executor runs remote calls with rate-limit admission, classification and
// retries.
type Executor struct {
	Limiter    *RateLimiter
	Policy     RateLimitPolicy
	Retry      RetryPolicy
	Classifier *Classifier
	Logger     *logging.Logger
	Metrics    Recorder
}

// Execute runs call under the executor. Every attempt, including retries,
// passes through the limiter before the call is made. Failures are returned
// as *Error.
func Execute[T any](ctx context.Context, e *Executor, label string, call Operation[T]) (T, error) {
	if e == nil {
		e = &Executor{}
	}

	operationID := uuid.NewString()
	policy := e.Retry
	if policy.Classifier == nil {
		policy.Classifier = e.classifier()
	}
	if policy.Logger == nil {
		policy.Logger = e.Logger
	}
	policy.fields = []zap.Field{zap.String("operation_id", operationID)}
	if e.Metrics != nil {
		onRetry := policy.OnRetry
		policy.OnRetry = func(label string, err *Error, delay time.Duration) {
			e.Metrics.RecordRetry(label, err.Kind)
			if onRetry != nil {
				onRetry(label, err, delay)
			}
		}
	}

	attempt := 0
	return Retry(ctx, policy, label, func(ctx context.Context) (T, error) {
		var zero T
		attempt++

		if err := e.admit(ctx, label); err != nil {
			return zero, err
		}

		if e.Logger != nil {
			e.Logger.Debug("Executing remote call",
				zap.String("operation_id", operationID),
				zap.String("operation", label),
				zap.Int("attempt", attempt),
			)
		}

		start := time.Now()
		result, err := call(ctx)
		var classified *Error
		if err != nil {
			classified = e.classifier().Classify(err)
		}
		if e.Metrics != nil {
			e.Metrics.RecordAttempt(label, time.Since(start), classified)
		}
		if classified != nil {
			return zero, classified
		}
		return result, nil
	})
}

func (e *Executor) admit(ctx context.Context, label string) error {
	if e.Limiter == nil {
		return nil
	}

	if e.Policy == PolicyWait {
		if err := e.Limiter.Wait(ctx); err != nil {
			return e.classifier().Classify(err)
		}
		return nil
	}

	if err := e.Limiter.Admit(); err != nil {
		if e.Metrics != nil {
			e.Metrics.RecordRejection(label, e.Limiter.Remaining())
		}
		return err
	}
	return nil
}

func (e *Executor) classifier() *Classifier {
	if e.Classifier != nil {
		return e.Classifier
	}
	return DefaultClassifier
}
