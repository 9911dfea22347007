// Package scheduler repeats scan passes on a fixed interval.
package scheduler

import (
	"context"
	"time"
)

// Scheduler drives the daemon's pass loop
type Scheduler interface {
	// Start begins the scheduling loop
	Start(ctx context.Context) error

	// Stop gracefully stops the scheduler and waits for the loop to exit
	Stop() error

	// Status returns the current scheduler status
	Status() *Status
}

// Status represents the current state of a scheduler
type Status struct {
	Running        bool
	LastRunTime    time.Time
	NextRunTime    time.Time
	TotalRuns      int
	SuccessfulRuns int
	FailedRuns     int
	LastError      string
}

// Config contains scheduler configuration
type Config struct {
	// Interval is the sleep between passes
	Interval time.Duration

	// RunImmediately triggers the first pass at startup instead of waiting
	// a full interval
	RunImmediately bool
}

// PassRunner executes one scan pass
type PassRunner interface {
	RunPass(ctx context.Context) error
}
