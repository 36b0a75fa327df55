package revlimiter

import (
	"fmt"
	"log"
	"time"
)

// Option is a functional option for configuring a Throttler.
type Option func(*Throttler) error

// WithReclaimInterval sets how often the background reclaimer sweeps
// idle buckets. Default: DefaultReclaimInterval.
func WithReclaimInterval(interval time.Duration) Option {
	return func(t *Throttler) error {
		if interval <= 0 {
			return fmt.Errorf("%w: reclaim interval must be positive", ErrInvalidConfig)
		}
		t.reclaimInterval = interval
		return nil
	}
}

// WithLogger sets the logger used by the background reclaimer.
// Default: log.Default().
func WithLogger(logger *log.Logger) Option {
	return func(t *Throttler) error {
		if logger == nil {
			return fmt.Errorf("%w: logger cannot be nil", ErrInvalidConfig)
		}
		t.logger = logger
		return nil
	}
}

// WithSweepObserver registers a callback invoked after every sweep with
// the number of buckets removed and the number remaining. Used to feed
// metrics; the callback runs with the guard held, so it must not call
// back into the Throttler.
func WithSweepObserver(fn func(removed, remaining int)) Option {
	return func(t *Throttler) error {
		if fn == nil {
			return fmt.Errorf("%w: sweep observer cannot be nil", ErrInvalidConfig)
		}
		t.sweepObserver = fn
		return nil
	}
}
