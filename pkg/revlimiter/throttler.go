package revlimiter

import (
	"log"
	"sync"
	"time"

	"github.com/yourusername/revlimiter/core"
)

// DenialDetails is the message returned with every denied admission.
const DenialDetails = "token bucket for requester is empty"

// Decision is the outcome of a single admission check.
type Decision struct {
	// Allow indicates whether the request should proceed
	Allow bool

	// DenialDetails carries a message back to the requester.
	// It is empty exactly when Allow is true.
	DenialDetails string
}

// Throttler is a request-admission gate implementing the token bucket
// algorithm over a per-(resource, requester) bucket store.
//
// A single mutex serializes every admission decision and every reclamation
// sweep for the instance: the critical section is pure in-memory arithmetic
// and map access, so one coarse guard is simpler than per-key locking and
// fast enough. Distinct Throttler instances share nothing.
type Throttler struct {
	mu       sync.Mutex
	settings core.Settings
	store    *bucketStore

	reclaimInterval time.Duration
	logger          *log.Logger
	sweepObserver   func(removed, remaining int)
}

// New creates a Throttler for the given settings.
// It fails if the settings do not validate; an invalid policy is a
// construction-time error, never a runtime one.
func New(settings core.Settings, opts ...Option) (*Throttler, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	t := &Throttler{
		settings:        settings,
		store:           newBucketStore(),
		reclaimInterval: DefaultReclaimInterval,
		logger:          log.Default(),
	}

	for _, opt := range opts {
		if err := opt(t); err != nil {
			return nil, err
		}
	}

	return t, nil
}

// Settings returns the immutable policy this throttler enforces.
func (t *Throttler) Settings() core.Settings {
	return t.settings
}

// Admit decides whether one request by requesterID against resourceID is
// allowed at the given time. The whole get-or-create, refill and consume
// sequence runs under the guard, so concurrent requests for the same key
// can never lose an update to each other.
//
// Admit is total: valid identifiers and any timestamp always produce a
// Decision, never an error.
func (t *Throttler) Admit(resourceID, requesterID string, now time.Time) Decision {
	t.mu.Lock()
	defer t.mu.Unlock()

	st := t.store.getOrCreate(resourceID, requesterID, t.settings, now)

	if core.Consume(st, t.settings, now) {
		return Decision{Allow: true}
	}
	return Decision{Allow: false, DenialDetails: DenialDetails}
}

// Sweep reclaims idle buckets in two phases under the guard. Mark: refill
// every bucket to now, which also keeps buckets that are never queried
// consistent. Sweep: remove every bucket that is back at full capacity —
// full means the key has been idle at least long enough to owe nothing.
//
// A requester evicted here and seen again later simply starts over at
// BucketStart; the accepted cost of keeping the store bounded by activity.
func (t *Throttler) Sweep(now time.Time) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	swept := 0
	t.store.forEach(func(resourceID, requesterID string, st *core.BucketState) {
		core.Refill(st, t.settings, now)
		if st.Full(t.settings) {
			t.store.remove(resourceID, requesterID)
			swept++
		}
	})

	if t.sweepObserver != nil {
		t.sweepObserver(swept, t.store.size())
	}
	return swept
}

// Size returns the number of live buckets.
func (t *Throttler) Size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.store.size()
}
