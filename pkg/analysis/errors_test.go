package analysis

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewUnexpectedResponseError(t *testing.T) {
	tests := []struct {
		status   int
		expected ErrorKind
	}{
		{status: 429, expected: KindTransient},
		{status: 502, expected: KindTransient},
		{status: 503, expected: KindTransient},
		{status: 504, expected: KindTransient},
		{status: 400, expected: KindPermanent},
		{status: 401, expected: KindPermanent},
		{status: 500, expected: KindPermanent},
	}

	for _, test := range tests {
		t.Run(fmt.Sprint(test.status), func(t *testing.T) {
			err := NewUnexpectedResponseError(test.status)
			assert.Equal(t, test.expected, err.Kind)
			assert.Equal(t, test.status, err.Status)
		})
	}
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(NewTransientError("timeout", nil)))
	assert.False(t, IsTransient(NewPermanentError("bad payload", nil)))
	assert.False(t, IsTransient(errors.New("plain")))

	// classification survives wrapping
	wrapped := fmt.Errorf("submitting batch: %w", NewTransientError("timeout", nil))
	assert.True(t, IsTransient(wrapped))
}
