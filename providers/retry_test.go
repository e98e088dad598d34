package providers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medscan-ai/medgate/types"
)

var fastRetry = RetryPolicy{
	MaxAttempts:  3,
	InitialDelay: time.Millisecond,
	Multiplier:   1,
}

func TestRetrySucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), fastRetry, zerolog.Nop(), func(ctx context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryRecoversOnThirdAttempt(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), fastRetry, zerolog.Nop(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return Transient(errors.New("HTTP 503"))
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryExhaustion(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), fastRetry, zerolog.Nop(), func(ctx context.Context) error {
		calls++
		return Transient(errors.New("HTTP 503"))
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.ErrorIs(t, err, types.ErrProviderUnavailable)
	assert.Contains(t, err.Error(), "after 3 attempts")
}

func TestRetryFatalErrorNotRetried(t *testing.T) {
	calls := 0
	fatal := errors.New("HTTP 401")
	err := Retry(context.Background(), fastRetry, zerolog.Nop(), func(ctx context.Context) error {
		calls++
		return fatal
	})
	assert.ErrorIs(t, err, fatal)
	assert.Equal(t, 1, calls)
	assert.NotErrorIs(t, err, types.ErrProviderUnavailable)
}

func TestRetryContextCanceledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	policy := RetryPolicy{MaxAttempts: 3, InitialDelay: time.Minute, Multiplier: 1}
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	err := Retry(ctx, policy, zerolog.Nop(), func(ctx context.Context) error {
		calls++
		return Transient(errors.New("HTTP 500"))
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestTransientMarking(t *testing.T) {
	base := errors.New("connection refused")
	assert.True(t, IsTransient(Transient(base)))
	assert.False(t, IsTransient(base))
	assert.Nil(t, Transient(nil))

	// Wrapping survives errors.Is on the underlying error.
	assert.ErrorIs(t, Transient(base), base)
}

func TestClassifyStatus(t *testing.T) {
	assert.ErrorIs(t, ClassifyStatus(401, "bad key"), types.ErrAuthentication)
	assert.ErrorIs(t, ClassifyStatus(403, "forbidden"), types.ErrAuthentication)
	assert.True(t, IsTransient(ClassifyStatus(429, "rate limited")))
	assert.True(t, IsTransient(ClassifyStatus(500, "server error")))
	assert.True(t, IsTransient(ClassifyStatus(503, "overloaded")))
	assert.False(t, IsTransient(ClassifyStatus(404, "not found")))
	assert.False(t, IsTransient(ClassifyStatus(400, "bad request")))
}

func TestClassifyTransportErr(t *testing.T) {
	assert.True(t, IsTransient(ClassifyTransportErr(errors.New("dial tcp: connection refused"))))
	assert.ErrorIs(t, ClassifyTransportErr(context.Canceled), context.Canceled)
	assert.False(t, IsTransient(ClassifyTransportErr(context.Canceled)))
	assert.Nil(t, ClassifyTransportErr(nil))
}
