package resilience

import "time"

// CircuitBreakerConfig is parsed from env under a caller-chosen prefix, for
// example CFBD_CIRCUIT_FAILURE_COUNT. Unset keys keep the preset value.
type CircuitBreakerConfig struct {
	Enabled          bool          `env:"ENABLED"`
	FailureThreshold int           `env:"FAILURE_COUNT" validate:"gte=1"`
	OpenTimeout      time.Duration `env:"OPEN_TIMEOUT" validate:"gt=0"`
	HalfOpenMaxReq   int           `env:"HALF_OPEN_MAX_REQ" validate:"gte=1"`
}

func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 5,
		OpenTimeout:      30 * time.Second,
		HalfOpenMaxReq:   2,
	}
}

// Normalize fills non-positive limits from DefaultCircuitBreakerConfig.
func (c CircuitBreakerConfig) Normalize() CircuitBreakerConfig {
	defaults := DefaultCircuitBreakerConfig()
	if c.FailureThreshold < 1 {
		c.FailureThreshold = defaults.FailureThreshold
	}
	if c.OpenTimeout <= 0 {
		c.OpenTimeout = defaults.OpenTimeout
	}
	if c.HalfOpenMaxReq < 1 {
		c.HalfOpenMaxReq = defaults.HalfOpenMaxReq
	}
	return c
}
