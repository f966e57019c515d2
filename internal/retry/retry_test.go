package retry

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastPolicy(maxAttempts int) Policy {
	return Policy{
		InitialDelay: time.Microsecond,
		MaxDelay:     time.Millisecond,
		Multiplier:   2,
		MaxAttempts:  maxAttempts,
	}
}

func TestDo_SucceedsAfterTransientFailures(t *testing.T) {
	transient := errors.New("connection reset")
	calls := 0

	result, err := Do(fastPolicy(5),
		func() (string, error) {
			calls++
			if calls < 3 {
				return "", transient
			}
			return "ok", nil
		},
		RetryOnError[string](func(err error) bool { return errors.Is(err, transient) }),
	)

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 3, calls)
}

func TestDo_TerminalErrorIsNotRetried(t *testing.T) {
	terminal := errors.New("bad request")
	calls := 0

	_, err := Do(fastPolicy(5),
		func() (string, error) {
			calls++
			return "", terminal
		},
		RetryOnError[string](func(err error) bool { return false }),
	)

	require.ErrorIs(t, err, terminal)
	assert.Equal(t, 1, calls)
}

func TestDo_ExhaustsAttemptBudget(t *testing.T) {
	transient := errors.New("i/o timeout")
	calls := 0

	_, err := Do(fastPolicy(3),
		func() (string, error) {
			calls++
			return "", transient
		},
		RetryOnError[string](func(err error) bool { return true }),
	)

	require.Error(t, err)
	assert.True(t, IsExhausted(err))
	assert.ErrorIs(t, err, transient)
	assert.Equal(t, 3, calls)
}

func TestDo_RetryableResultIsReleasedBeforeRetry(t *testing.T) {
	calls := 0
	var released []int

	result, err := Do(fastPolicy(5),
		func() (int, error) {
			calls++
			return calls, nil
		},
		RetryOnResult[int](func(v int) bool { return v < 3 }),
		WithCleanup[int](func(v int) { released = append(released, v) }),
	)

	require.NoError(t, err)
	assert.Equal(t, 3, result)
	assert.Equal(t, []int{1, 2}, released)
}

func TestDo_RetryableResultExhaustion(t *testing.T) {
	_, err := Do(fastPolicy(2),
		func() (int, error) { return 429, nil },
		RetryOnResult[int](func(v int) bool { return true }),
	)

	require.Error(t, err)
	assert.True(t, IsExhausted(err))
}

func TestPolicy_Delay(t *testing.T) {
	p := Policy{
		InitialDelay: 250 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2,
		MaxAttempts:  10,
	}

	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{attempt: 0, expected: 250 * time.Millisecond},
		{attempt: 1, expected: 500 * time.Millisecond},
		{attempt: 2, expected: time.Second},
		{attempt: 3, expected: 2 * time.Second},
		{attempt: 4, expected: 4 * time.Second},
		{attempt: 5, expected: 5 * time.Second},
		{attempt: 20, expected: 5 * time.Second},
	}

	for _, test := range tests {
		assert.Equal(t, test.expected, p.Delay(test.attempt), "attempt %d", test.attempt)
	}
}
