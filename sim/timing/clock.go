package timing

import (
	"context"
	"time"
)

// A Clock tells the real time and waits for real time to pass.
type Clock interface {
	Now() time.Time

	// Sleep blocks for d or until ctx is done, whichever comes first. It
	// returns the context error if ctx is done.
	Sleep(ctx context.Context, d time.Duration) error
}

// WallClock is the Clock of the host machine.
type WallClock struct{}

// Now returns the current local time.
func (WallClock) Now() time.Time {
	return time.Now()
}

// Sleep pauses the calling goroutine.
func (WallClock) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
