package config

import "time"

// ServerConfig holds the planner gRPC service configuration
type ServerConfig struct {
	// TCP listen address (host:port), used when daemon.socket_path is empty
	Address string `mapstructure:"address" validate:"required"`

	// Rate limiting settings
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`

	// Per-request timeout for clients
	Timeout time.Duration `mapstructure:"timeout" validate:"required"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	// Maximum requests per second
	Requests int `mapstructure:"requests" validate:"min=1"`

	// Burst size for token bucket
	Burst int `mapstructure:"burst" validate:"min=1"`
}
