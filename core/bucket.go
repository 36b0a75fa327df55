package core

import (
	"math"
	"time"
)

// Refill brings a bucket up to date with the wall clock. Tokens accrue at
// FillRate per second since the last access and are capped at BucketMax.
//
// A now earlier than LastAccess (clock skew, out-of-order timestamps) adds
// zero tokens rather than subtracting any: the elapsed delta is clamped at
// zero, so a bad time comparison can never corrupt the balance.
func Refill(st *BucketState, s Settings, now time.Time) {
	elapsed := now.Sub(st.LastAccess).Seconds()

	delta := math.Max(0, s.FillRate*elapsed)

	st.Tokens = math.Min(s.BucketMax, st.Tokens+delta)
	st.LastAccess = now
}

// Consume refills a bucket to now and then attempts to spend one token.
// It returns true if the token was spent, false if the balance was below
// one token, in which case the refilled balance is left untouched.
//
// This is the only way an admission decision mutates bucket state.
func Consume(st *BucketState, s Settings, now time.Time) bool {
	Refill(st, s, now)

	candidate := st.Tokens - 1
	if candidate < 0 {
		return false
	}
	st.Tokens = candidate
	return true
}
