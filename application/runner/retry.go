package runner

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// withRetry - runs op until it succeeds or attempts are used up, pausing
// between attempts. Only the last error is returned.
func withRetry(ctx context.Context, log *logrus.Entry, attempts int, pause time.Duration, op func(context.Context) error) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = op(ctx); err == nil {
			return nil
		}
		if attempt == attempts || ctx.Err() != nil {
			break
		}

		log.WithError(err).WithField("attempt", attempt).Warn("step failed, retrying")
		if sleepErr := sleep(ctx, pause); sleepErr != nil {
			return err
		}
	}
	return err
}

// sleep - suspends the caller for d unless ctx ends first
func sleep(ctx context.Context, d time.Duration) error {
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
