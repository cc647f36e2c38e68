package engine

import (
	"context"
	"time"

	"github.com/fulmenhq/gofulmen/logging"
	"go.uber.org/zap"
)

const (
	DefaultMaxRetries = 3
	DefaultBaseDelay  = time.Second

	// maxBackoffShift keeps base*2^i from overflowing time.Duration.
	maxBackoffShift = 30
)

// Operation is a unit of work that can be invoked again after a failure.
type Operation[T any] func(ctx context.Context) (T, error)

// SleepFunc pauses for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// RetryPolicy controls bounded exponential backoff.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
	Sleep      SleepFunc
	Classifier *Classifier
	Logger     *logging.Logger

	// OnRetry is called before each backoff sleep.
	OnRetry func(label string, err *Error, delay time.Duration)

	fields []zap.Field
}

// Delay returns the pause before the attempt following attempt (0-based).
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt > maxBackoffShift {
		attempt = maxBackoffShift
	}
	return p.BaseDelay * time.Duration(1<<uint(attempt))
}

// Retry runs op until it succeeds, fails with a non-retryable kind, or has
// been attempted MaxRetries+1 times. Failures are returned as *Error.
func Retry[T any](ctx context.Context, p RetryPolicy, label string, op Operation[T]) (T, error) {
	var zero T

	for attempt := 0; ; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}

		classified := withOp(p.classifier().Classify(err), label)
		p.warn("Operation attempt failed", label, attempt, classified)

		if ctx.Err() != nil {
			p.fail("Operation canceled", label, attempt, classified)
			return zero, classified
		}
		if !classified.Kind.Retryable() {
			p.fail("Operation failed with non-retryable error", label, attempt, classified)
			return zero, classified
		}
		if attempt >= p.MaxRetries {
			p.fail("Operation failed after retries exhausted", label, attempt, classified)
			return zero, classified
		}

		delay := p.Delay(attempt)
		if p.OnRetry != nil {
			p.OnRetry(label, classified, delay)
		}
		if p.Logger != nil {
			p.Logger.Info("Retrying operation",
				append(p.fields,
					zap.String("operation", label),
					zap.Int("attempt", attempt+2),
					zap.Int("max_attempts", p.MaxRetries+1),
					zap.Duration("delay", delay),
					zap.String("kind", string(classified.Kind)),
				)...)
		}

		if err := p.sleep(ctx, delay); err != nil {
			canceled := withOp(p.classifier().Classify(err), label)
			p.fail("Operation canceled during backoff", label, attempt, canceled)
			return zero, canceled
		}
	}
}

// SleepContext waits for d on a timer, returning early with ctx.Err().
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (p RetryPolicy) sleep(ctx context.Context, d time.Duration) error {
	if p.Sleep != nil {
		return p.Sleep(ctx, d)
	}
	return SleepContext(ctx, d)
}

func (p RetryPolicy) classifier() *Classifier {
	if p.Classifier != nil {
		return p.Classifier
	}
	return DefaultClassifier
}

func (p RetryPolicy) warn(msg, label string, attempt int, err *Error) {
	if p.Logger == nil {
		return
	}
	p.Logger.Warn(msg, append(p.fields, attemptFields(label, attempt, err)...)...)
}

func (p RetryPolicy) fail(msg, label string, attempt int, err *Error) {
	if p.Logger == nil {
		return
	}
	p.Logger.Error(msg, append(p.fields, attemptFields(label, attempt, err)...)...)
}

func attemptFields(label string, attempt int, err *Error) []zap.Field {
	return []zap.Field{
		zap.String("operation", label),
		zap.Int("attempt", attempt+1),
		zap.String("kind", string(err.Kind)),
		zap.Int("status_code", err.StatusCode),
		zap.String("error", err.Message),
	}
}

// withOp returns err labelled with op, copying so shared errors stay intact.
func withOp(err *Error, op string) *Error {
	if err == nil || err.Op == op {
		return err
	}
	out := *err
	out.Op = op
	return &out
}
