package retry

import (
	"context"
	"time"
)

// Clock abstracts time so retry loops are testable without real delays.
type Clock interface {
	Now() time.Time
	// Sleep blocks for d or until ctx is done, returning ctx.Err() in the
	// latter case.
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// RealClock returns a Clock backed by the wall clock.
func RealClock() Clock { return realClock{} }

// Do runs fn up to attempts times with a fixed interval between attempts.
// It stops early when fn reports success or ctx is done. The interval is
// only slept between attempts, never after the last one.
func Do(ctx context.Context, attempts int, interval time.Duration, clock Clock, fn func(ctx context.Context) bool) bool {
	for i := 0; i < attempts; i++ {
		if fn(ctx) {
			return true
		}
		if i == attempts-1 {
			break
		}
		if err := clock.Sleep(ctx, interval); err != nil {
			return false
		}
	}
	return false
}
