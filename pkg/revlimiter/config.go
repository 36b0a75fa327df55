package revlimiter

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yourusername/revlimiter/core"
)

// Socket binding modes.
const (
	SocketModeNet  = "net"  // bind a TCP port
	SocketModeUnix = "unix" // bind a local filesystem socket
)

// Config holds the service configuration: one throttling policy per route,
// the socket to serve on, and the reclaimer cadence.
type Config struct {
	// Routes maps a request path to its throttling policy.
	// Each route gets its own fully independent Throttler.
	Routes map[string]RouteConfig `yaml:"routes"`

	// Socket describes where the server listens.
	Socket SocketConfig `yaml:"socket"`

	// ReclaimInterval is how often each route's reclaimer sweeps idle
	// buckets. Format: "30s", "5m". Empty means the default.
	ReclaimInterval string `yaml:"reclaim_interval,omitempty"`
}

// RouteConfig defines the token bucket policy for one route.
type RouteConfig struct {
	// FillRate is the number of tokens gained per second
	FillRate float64 `yaml:"fill_rate"`

	// BucketMax is the maximum number of tokens a requester can accrue
	BucketMax float64 `yaml:"bucket_max"`

	// BucketStart is the number of tokens a fresh bucket begins with.
	// When omitted it defaults to BucketMax.
	BucketStart *float64 `yaml:"bucket_start,omitempty"`
}

// SocketConfig describes the listening socket.
type SocketConfig struct {
	Mode string `yaml:"mode"`           // "net" or "unix"
	Port int    `yaml:"port,omitempty"` // required for mode "net"
	Path string `yaml:"path,omitempty"` // required for mode "unix"
}

// ToSettings converts a route policy into core settings, applying the
// BucketStart default.
func (r RouteConfig) ToSettings() core.Settings {
	start := r.BucketMax
	if r.BucketStart != nil {
		start = *r.BucketStart
	}
	return core.Settings{
		FillRate:    r.FillRate,
		BucketMax:   r.BucketMax,
		BucketStart: start,
	}
}

// LoadConfigFromFile loads and validates configuration from a YAML file.
func LoadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read config file: %v", ErrInvalidConfig, err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse YAML: %v", ErrInvalidConfig, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks the whole configuration.
func (c *Config) Validate() error {
	if len(c.Routes) == 0 {
		return ErrNoRoutes
	}

	for route, rc := range c.Routes {
		if err := rc.ToSettings().Validate(); err != nil {
			return fmt.Errorf("%w: route %s: %v", ErrInvalidConfig, route, err)
		}
	}

	if err := c.Socket.Validate(); err != nil {
		return err
	}

	if _, err := c.ParseReclaimInterval(); err != nil {
		return err
	}

	return nil
}

// Validate checks the socket section.
func (s SocketConfig) Validate() error {
	switch s.Mode {
	case SocketModeNet:
		if s.Port <= 0 || s.Port > 65535 {
			return fmt.Errorf("%w: port %d out of range", ErrInvalidSocket, s.Port)
		}
	case SocketModeUnix:
		if s.Path == "" {
			return fmt.Errorf("%w: unix mode requires a path", ErrInvalidSocket)
		}
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidSocket, s.Mode)
	}
	return nil
}

// ParseReclaimInterval returns the configured sweep cadence, or the
// default when the field is empty.
func (c *Config) ParseReclaimInterval() (time.Duration, error) {
	if c.ReclaimInterval == "" {
		return DefaultReclaimInterval, nil
	}
	d, err := time.ParseDuration(c.ReclaimInterval)
	if err != nil {
		return 0, fmt.Errorf("%w: bad reclaim_interval: %v", ErrInvalidConfig, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: reclaim_interval must be positive", ErrInvalidConfig)
	}
	return d, nil
}
