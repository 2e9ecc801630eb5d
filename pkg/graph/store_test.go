package graph

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestRetry(t *testing.T) {
	t.Parallel()
	opts := StoreOptions{MaxRetries: 3, RetryBackoff: time.Millisecond}

	t.Run("transient failures are retried", func(t *testing.T) {
		calls := 0
		resp, err := retry(context.Background(), opts, testLogger(), func() (*Response, error) {
			calls++
			if calls < 3 {
				return nil, status.Error(codes.Unavailable, "alpha down")
			}
			return &Response{}, nil
		})

		require.NoError(t, err)
		assert.NotNil(t, resp)
		assert.Equal(t, 3, calls)
	})

	t.Run("non-transient failures are not retried", func(t *testing.T) {
		calls := 0
		_, err := retry(context.Background(), opts, testLogger(), func() (*Response, error) {
			calls++
			return nil, errors.New("bad request")
		})

		require.Error(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("retry budget is bounded", func(t *testing.T) {
		calls := 0
		_, err := retry(context.Background(), StoreOptions{MaxRetries: 2, RetryBackoff: time.Millisecond}, testLogger(), func() (*Response, error) {
			calls++
			return nil, status.Error(codes.Unavailable, "still down")
		})

		require.Error(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("cancellation stops the backoff wait", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := retry(ctx, StoreOptions{MaxRetries: 5, RetryBackoff: time.Minute}, testLogger(), func() (*Response, error) {
			return nil, status.Error(codes.Unavailable, "down")
		})

		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestTransient(t *testing.T) {
	t.Parallel()

	assert.True(t, transient(status.Error(codes.Unavailable, "")))
	assert.True(t, transient(status.Error(codes.DeadlineExceeded, "")))
	assert.True(t, transient(status.Error(codes.Aborted, "")))
	assert.False(t, transient(status.Error(codes.InvalidArgument, "")))
	assert.False(t, transient(errors.New("plain")))
	assert.False(t, transient(nil))
}

func TestOpenDgraphStoreDefaults(t *testing.T) {
	t.Parallel()

	// gRPC dials lazily, so constructing a store never touches the network.
	store, err := OpenDgraphStore("localhost:9080", StoreOptions{})
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, defaultRequestTimeout, store.opts.RequestTimeout)
	assert.Equal(t, defaultRetryBackoff, store.opts.RetryBackoff)
	assert.Nil(t, store.breaker)
}
