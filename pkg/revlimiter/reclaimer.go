package revlimiter

import "time"

// DefaultReclaimInterval is how often the background reclaimer sweeps
// idle buckets unless overridden with WithReclaimInterval.
const DefaultReclaimInterval = 30 * time.Second

// Start launches the background reclaimer goroutine, which sweeps the
// store every reclaim interval until the returned stop function is called.
// Each sweep takes the same guard as Admit, so a sweep never interleaves
// with an in-flight admission decision.
func (t *Throttler) Start() func() {
	ticker := time.NewTicker(t.reclaimInterval)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.C:
				swept := t.Sweep(time.Now())
				t.logger.Printf("throttler: periodic reclaim swept %d buckets", swept)
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	return func() {
		close(done)
	}
}
