package core

import (
	"errors"
	"time"
)

var (
	// ErrNonPositiveBucketMax is returned when bucket max is zero or negative
	ErrNonPositiveBucketMax = errors.New("bucket max must be positive")

	// ErrNegativeFillRate is returned when fill rate is negative
	ErrNegativeFillRate = errors.New("fill rate must not be negative")

	// ErrBucketStartOutOfRange is returned when bucket start is negative or exceeds bucket max
	ErrBucketStartOutOfRange = errors.New("bucket start must be within [0, bucket max]")
)

// Settings defines the throttling policy for one resource route.
type Settings struct {
	FillRate    float64 // Tokens gained per second
	BucketMax   float64 // Maximum tokens a requester can accrue
	BucketStart float64 // Tokens granted to a freshly created bucket
}

// Validate checks that the settings describe a usable token bucket.
// A zero FillRate is legal: buckets never refill, so each requester gets
// exactly BucketStart admissions, ever.
func (s Settings) Validate() error {
	if s.BucketMax <= 0 {
		return ErrNonPositiveBucketMax
	}
	if s.FillRate < 0 {
		return ErrNegativeFillRate
	}
	if s.BucketStart < 0 || s.BucketStart > s.BucketMax {
		return ErrBucketStartOutOfRange
	}
	return nil
}

// BucketState is the per-(resource, requester) record the throttler mutates.
// Callers are expected to serialize access to it externally.
type BucketState struct {
	Tokens     float64   // Current token balance
	LastAccess time.Time // Last time the balance was brought up to date
}

// NewBucketState initializes the state for a previously unseen key.
func NewBucketState(s Settings, now time.Time) *BucketState {
	return &BucketState{
		Tokens:     s.BucketStart,
		LastAccess: now,
	}
}

// Full reports whether the bucket is back at maximum capacity.
// The reclaimer uses this as its idleness proxy: a full bucket has been
// untouched long enough to carry no outstanding debt.
func (st *BucketState) Full(s Settings) bool {
	return st.Tokens >= s.BucketMax
}
