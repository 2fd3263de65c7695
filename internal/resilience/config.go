package resilience

import (
	"time"

	"github.com/kimberlite-group/matprofile/internal/config"
)

// FromRetryConfig converts application config into a RetryConfig.
func FromRetryConfig(cfg config.RetryConfig) RetryConfig {
	out := DefaultRetryConfig()
	if cfg.MaxAttempts > 0 {
		out.MaxAttempts = cfg.MaxAttempts
	}
	if cfg.InitialBackoffMs > 0 {
		out.InitialBackoff = time.Duration(cfg.InitialBackoffMs) * time.Millisecond
	}
	if cfg.MaxBackoffMs > 0 {
		out.MaxBackoff = time.Duration(cfg.MaxBackoffMs) * time.Millisecond
	}
	if cfg.Multiplier > 0 {
		out.Multiplier = cfg.Multiplier
	}
	if cfg.JitterFraction >= 0 {
		out.JitterFraction = cfg.JitterFraction
	}
	return out
}

// FromCircuitConfig converts application config into a CircuitBreakerConfig.
func FromCircuitConfig(cfg config.CircuitConfig) CircuitBreakerConfig {
	out := DefaultCircuitBreakerConfig()
	if cfg.FailureThreshold > 0 {
		out.FailureThreshold = cfg.FailureThreshold
	}
	if cfg.ResetTimeoutSecs > 0 {
		out.ResetTimeout = time.Duration(cfg.ResetTimeoutSecs) * time.Second
	}
	return out
}
