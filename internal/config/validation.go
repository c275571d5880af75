package config

import (
	"errors"
	"fmt"
)

var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrInvalidModelName indicates the model name is empty.
	ErrInvalidModelName = errors.New("invalid model name")

	// ErrInvalidTemperature indicates the temperature value is out of range.
	ErrInvalidTemperature = errors.New("invalid temperature")

	// ErrInvalidServerAddr indicates the server listen address is empty.
	ErrInvalidServerAddr = errors.New("invalid server address")

	// ErrInvalidRateLimit indicates the rate limit settings are out of range.
	ErrInvalidRateLimit = errors.New("invalid rate limit")

	// ErrInvalidSessionBounds indicates the session bounds are out of range.
	ErrInvalidSessionBounds = errors.New("invalid session bounds")

	// ErrInvalidPostgresHost indicates the PostgreSQL host is empty.
	ErrInvalidPostgresHost = errors.New("invalid PostgreSQL host")

	// ErrInvalidPostgresPort indicates the PostgreSQL port is out of range.
	ErrInvalidPostgresPort = errors.New("invalid PostgreSQL port")

	// ErrInvalidPostgresDBName indicates the PostgreSQL database name is empty.
	ErrInvalidPostgresDBName = errors.New("invalid PostgreSQL database name")
)

// Validate checks the configuration for obviously broken values. Called by
// Load so the application fails fast at startup.
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigNil
	}

	if c.ModelName == "" {
		return fmt.Errorf("%w: model name must not be empty", ErrInvalidModelName)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("%w: %v not in [0, 2]", ErrInvalidTemperature, c.Temperature)
	}

	if c.ServerAddr == "" {
		return fmt.Errorf("%w: listen address must not be empty", ErrInvalidServerAddr)
	}
	if c.RateLimit <= 0 || c.RateBurst <= 0 {
		return fmt.Errorf("%w: rate_limit=%v rate_burst=%d must be positive", ErrInvalidRateLimit, c.RateLimit, c.RateBurst)
	}

	if c.SessionMaxMessages <= 0 {
		return fmt.Errorf("%w: session_max_messages=%d must be positive", ErrInvalidSessionBounds, c.SessionMaxMessages)
	}
	if c.SessionHistoryLimit <= 0 || c.SessionHistoryLimit > c.SessionMaxMessages {
		return fmt.Errorf("%w: session_history_limit=%d must be in [1, %d]",
			ErrInvalidSessionBounds, c.SessionHistoryLimit, c.SessionMaxMessages)
	}
	if c.SessionMaxAge <= 0 || c.SweepInterval <= 0 {
		return fmt.Errorf("%w: session_max_age and sweep_interval must be positive", ErrInvalidSessionBounds)
	}

	if c.PostgresHost == "" {
		return fmt.Errorf("%w: host must not be empty", ErrInvalidPostgresHost)
	}
	if c.PostgresPort < 1 || c.PostgresPort > 65535 {
		return fmt.Errorf("%w: %d not in [1, 65535]", ErrInvalidPostgresPort, c.PostgresPort)
	}
	if c.PostgresDBName == "" {
		return fmt.Errorf("%w: database name must not be empty", ErrInvalidPostgresDBName)
	}

	return nil
}
