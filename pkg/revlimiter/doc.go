// Package revlimiter implements a request-admission gate built on the
// token bucket algorithm.
//
// Clients submit a (requester, resource) pair and receive an allow/deny
// decision governed by a per-(requester, resource) token bucket. Each
// bucket holds up to BucketMax tokens, gains FillRate tokens per second,
// and every admitted request spends exactly one token.
//
// # Quick Start
//
//	throttler, err := revlimiter.New(core.Settings{
//	    FillRate:    10,
//	    BucketMax:   100,
//	    BucketStart: 100,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	stop := throttler.Start() // background reclaimer
//	defer stop()
//
//	decision := throttler.Admit("api.example.com/resource", "token-123", time.Now())
//	if !decision.Allow {
//	    fmt.Println(decision.DenialDetails)
//	}
//
// # Concurrency
//
// A Throttler is safe for concurrent use. One mutex per instance
// serializes every admission decision and every reclamation sweep: the
// guarded section is pure in-memory arithmetic and map access, so a
// single coarse lock keeps the read-modify-write of each request atomic
// without per-key lock bookkeeping. Distinct Throttler instances (one
// per configured route) are fully independent.
//
// # Reclamation
//
// A background task started with Start sweeps the store every reclaim
// interval. Each sweep refills every bucket to the current time and
// evicts the ones back at full capacity: a full bucket has been idle at
// least (BucketMax - tokens) / FillRate seconds and carries no state
// worth retaining. A requester that reappears after eviction starts a
// fresh bucket at BucketStart, which may be more or less generous than
// its pre-eviction balance; that approximation is the price of keeping
// the store bounded by recent activity.
//
// Between sweeps the store grows without bound under many distinct
// requester identities, and a bucket whose BucketStart is below
// BucketMax with a zero FillRate can never refill to full and is never
// evicted. Both are accepted tradeoffs of the full-capacity idleness
// proxy, inherited from the design this package implements.
//
// # State
//
// Bucket state lives in process memory only. It does not survive
// restarts and is not shared across instances; every replica enforces
// its own budget.
package revlimiter
