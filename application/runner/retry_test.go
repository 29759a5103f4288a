package runner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithRetry(t *testing.T) {
	log := quietLogger().WithField("test", t.Name())
	errFlaky := errors.New("flaky")

	t.Run("succeeds after failures", func(t *testing.T) {
		calls := 0
		err := withRetry(context.Background(), log, 3, time.Millisecond, func(context.Context) error {
			calls++
			if calls < 3 {
				return errFlaky
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("returns last error when attempts run out", func(t *testing.T) {
		calls := 0
		err := withRetry(context.Background(), log, 2, time.Millisecond, func(context.Context) error {
			calls++
			return errFlaky
		})
		assert.ErrorIs(t, err, errFlaky)
		assert.Equal(t, 2, calls)
	})

	t.Run("non-positive attempts run once", func(t *testing.T) {
		calls := 0
		_ = withRetry(context.Background(), log, 0, time.Millisecond, func(context.Context) error {
			calls++
			return errFlaky
		})
		assert.Equal(t, 1, calls)
	})

	t.Run("stops when context ends", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		calls := 0
		err := withRetry(ctx, log, 5, time.Hour, func(context.Context) error {
			calls++
			cancel()
			return errFlaky
		})
		assert.ErrorIs(t, err, errFlaky)
		assert.Equal(t, 1, calls)
	})
}

func TestSleep(t *testing.T) {
	assert.NoError(t, sleep(context.Background(), 0))
	assert.NoError(t, sleep(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleep(ctx, time.Hour), context.Canceled)
	assert.ErrorIs(t, sleep(ctx, 0), context.Canceled)
}
