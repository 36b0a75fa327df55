package revlimiter

import "errors"

var (
	// ErrInvalidConfig is returned when configuration is invalid
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrNoRoutes is returned when a config declares no throttled routes
	ErrNoRoutes = errors.New("configuration declares no routes")

	// ErrInvalidSocket is returned when the socket section is unusable
	ErrInvalidSocket = errors.New("invalid socket configuration")
)
