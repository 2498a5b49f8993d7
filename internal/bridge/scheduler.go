package bridge

import (
	"context"
	"time"
)

// StepFunc performs one tick and returns the delay before the next one.
// running false ends the schedule.
type StepFunc func() (delay time.Duration, running bool)

// RunScheduler calls step repeatedly, sleeping for the delay it returns,
// until step reports it is no longer running or ctx is cancelled. The first
// step runs immediately.
func RunScheduler(ctx context.Context, step StepFunc) error {
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}

		delay, running := step()
		if !running {
			return nil
		}
		timer.Reset(delay)
	}
}

// Run starts the bridge, drives Step until ctx is cancelled, then stops the
// bridge within stopTimeout.
func (b *Bridge) Run(ctx context.Context, stopTimeout time.Duration) error {
	if err := b.Start(); err != nil {
		return err
	}

	err := RunScheduler(ctx, b.Step)
	if stopErr := b.Stop(stopTimeout); stopErr != nil {
		return stopErr
	}
	if err == context.Canceled {
		return nil
	}
	return err
}
