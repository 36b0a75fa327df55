package revlimiter

import (
	limiter "github.com/yourusername/revlimiter/pkg/revlimiter"
)

// Re-export main types for convenience
type (
	Config    = limiter.Config
	Decision  = limiter.Decision
	Option    = limiter.Option
	Throttler = limiter.Throttler
)

// New creates a new throttler
var New = limiter.New

// LoadConfigFromFile loads and validates a YAML service configuration
var LoadConfigFromFile = limiter.LoadConfigFromFile
