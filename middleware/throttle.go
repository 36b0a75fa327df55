// Package middleware embeds a revlimiter Throttler directly in front of
// net/http handlers, for services that want the admission gate in-process
// instead of as a separate endpoint.
package middleware

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/yourusername/revlimiter/pkg/revlimiter"
)

// KeyFunc extracts the requester identity from a request
type KeyFunc func(*http.Request) string

// Throttle wraps handlers with an admission check against one resource.
type Throttle struct {
	throttler *revlimiter.Throttler
	resource  string
	keyFunc   KeyFunc
	now       func() time.Time
}

// Config for creating a throttle middleware
type Config struct {
	Throttler *revlimiter.Throttler // Required: the admission gate
	Resource  string                // Resource ID buckets are partitioned under
	KeyFunc   KeyFunc               // Optional: requester extraction, defaults to client IP
}

// New creates a throttling middleware.
func New(config Config) *Throttle {
	if config.KeyFunc == nil {
		config.KeyFunc = ClientIP
	}
	return &Throttle{
		throttler: config.Throttler,
		resource:  config.Resource,
		keyFunc:   config.KeyFunc,
		now:       time.Now,
	}
}

// ClientIP extracts the requester identity from the client IP address,
// honoring X-Forwarded-For for deployments behind a proxy.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		return strings.TrimSpace(ips[0])
	}

	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}

// Middleware wraps an http.Handler with the admission check.
// Denied requests get a 429 with a JSON body; admitted requests pass
// through untouched.
func (t *Throttle) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requester := t.keyFunc(r)

		decision := t.throttler.Admit(t.resource, requester, t.now())
		if !decision.Allow {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"error":          "throttled",
				"denial_details": decision.DenialDetails,
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}
