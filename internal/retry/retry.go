package retry

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/bastionlabs/vulnsync/internal/log"
)

// Policy describes an exponential backoff schedule with a bounded attempt budget.
// A Policy is an explicit value injected at construction time; there is no global
// registry of retry state.
type Policy struct {
	InitialDelay time.Duration `yaml:"initial-delay" json:"initial-delay" mapstructure:"initial-delay"`
	MaxDelay     time.Duration `yaml:"max-delay" json:"max-delay" mapstructure:"max-delay"`
	Multiplier   float64       `yaml:"multiplier" json:"multiplier" mapstructure:"multiplier"`
	MaxAttempts  int           `yaml:"max-attempts" json:"max-attempts" mapstructure:"max-attempts"`
}

func DefaultPolicy() Policy {
	return Policy{
		InitialDelay: 250 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2,
		MaxAttempts:  6,
	}
}

// Delay returns the backoff duration preceding the given retry (attempt is 0-indexed
// relative to the first retry).
func (p Policy) Delay(attempt int) time.Duration {
	duration := time.Duration(float64(p.InitialDelay) * math.Pow(p.Multiplier, float64(attempt)))
	if duration < p.InitialDelay {
		return p.InitialDelay
	} else if duration > p.MaxDelay {
		return p.MaxDelay
	}
	return duration
}

// ErrAttemptsExhausted is the terminal failure returned once the attempt budget is spent.
type ErrAttemptsExhausted struct {
	Attempts int
	Last     error
}

func (e *ErrAttemptsExhausted) Error() string {
	if e.Last != nil {
		return fmt.Sprintf("all %d attempts failed: %v", e.Attempts, e.Last)
	}
	return fmt.Sprintf("all %d attempts returned a retryable result", e.Attempts)
}

func (e *ErrAttemptsExhausted) Unwrap() error {
	return e.Last
}

// IsExhausted reports whether the given error is the terminal attempt-budget failure.
func IsExhausted(err error) bool {
	var e *ErrAttemptsExhausted
	return errors.As(err, &e)
}

type executor[T any] struct {
	retryableError  func(error) bool
	retryableResult func(T) bool
	cleanup         func(T)
}

type Option[T any] func(*executor[T])

// RetryOnError marks which errors are transient and worth another attempt. Errors not
// matched by the classifier are terminal and returned immediately.
func RetryOnError[T any](classify func(error) bool) Option[T] {
	return func(e *executor[T]) {
		e.retryableError = classify
	}
}

// RetryOnResult marks successful results that should nonetheless be retried
// (e.g. rate-limiting or server-overload responses).
func RetryOnResult[T any](classify func(T) bool) Option[T] {
	return func(e *executor[T]) {
		e.retryableResult = classify
	}
}

// WithCleanup releases any resource held by a result that is about to be discarded in
// favor of another attempt.
func WithCleanup[T any](release func(T)) Option[T] {
	return func(e *executor[T]) {
		e.cleanup = release
	}
}

// Do invokes op under the given policy. Transient errors and retryable results are
// re-attempted after an exponentially increasing delay; any other error is returned
// as-is. Spending the attempt budget yields *ErrAttemptsExhausted.
func Do[T any](p Policy, op func() (T, error), opts ...Option[T]) (T, error) {
	var zero T

	e := executor[T]{
		retryableError:  func(error) bool { return false },
		retryableResult: func(T) bool { return false },
		cleanup:         func(T) {},
	}
	for _, fn := range opts {
		fn(&e)
	}

	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			delay := p.Delay(attempt - 1)
			log.WithFields("attempt", attempt+1, "delay", delay).Trace("backing off before retry")
			time.Sleep(delay)
		}

		result, err := op()
		if err != nil {
			if !e.retryableError(err) {
				return zero, err
			}
			lastErr = err
			continue
		}

		if e.retryableResult(result) {
			e.cleanup(result)
			lastErr = nil
			continue
		}

		return result, nil
	}

	return zero, &ErrAttemptsExhausted{Attempts: attempts, Last: lastErr}
}
