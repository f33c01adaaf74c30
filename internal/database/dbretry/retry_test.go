package dbretry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetBackoff restores the default backoff parameters after a test that
// called Configure. These tests must not run in parallel.
func resetBackoff(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		maxRetries = 5
		initialInterval = 500 * time.Millisecond
		maxInterval = 5 * time.Second
	})
}

func TestConfigure(t *testing.T) {
	resetBackoff(t)

	Configure(3, 10*time.Millisecond, 100*time.Millisecond)
	assert.Equal(t, uint64(3), maxRetries)
	assert.Equal(t, 10*time.Millisecond, initialInterval)
	assert.Equal(t, 100*time.Millisecond, maxInterval)

	// Zero fields keep whatever is configured.
	Configure(0, 0, 0)
	assert.Equal(t, uint64(3), maxRetries)
	assert.Equal(t, 10*time.Millisecond, initialInterval)
	assert.Equal(t, 100*time.Millisecond, maxInterval)
}

func TestOperation_RetriesTransientErrors(t *testing.T) {
	resetBackoff(t)
	Configure(5, time.Millisecond, time.Millisecond)

	attempts := 0
	result, err := Operation(context.Background(), func(_ context.Context) (int, error) {
		attempts++
		if attempts < 3 {
			return 0, errors.New("connection refused")
		}
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, result)
	assert.Equal(t, 3, attempts)
}

func TestOperation_StopsOnPermanentError(t *testing.T) {
	resetBackoff(t)
	Configure(5, time.Millisecond, time.Millisecond)

	permanent := errors.New("duplicate key value violates unique constraint")

	attempts := 0
	_, err := Operation(context.Background(), func(_ context.Context) (int, error) {
		attempts++
		return 0, permanent
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, attempts)
}

func TestOperation_GivesUpAfterMaxRetries(t *testing.T) {
	resetBackoff(t)
	Configure(2, time.Millisecond, time.Millisecond)

	transient := errors.New("connection reset by peer")

	attempts := 0
	_, err := Operation(context.Background(), func(_ context.Context) (int, error) {
		attempts++
		return 0, transient
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, transient)
	assert.Equal(t, 3, attempts) // initial attempt plus two retries
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "connection refused", err: errors.New("connection refused"), want: true},
		{name: "broken pipe", err: errors.New("write: broken pipe"), want: true},
		{name: "deadline exceeded", err: context.DeadlineExceeded, want: true},
		{name: "constraint violation", err: errors.New("duplicate key value"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryableError(tt.err))
		})
	}
}
