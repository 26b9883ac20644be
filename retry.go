package tabletalk

import (
	"math/rand"
	"time"
)

// RetryConfig holds backoff parameters for transient dataset fetch
// failures. Reasoning sessions are never retried; this applies only to
// the comparison source.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (default: 3).
	// The initial request counts as attempt 1.
	MaxAttempts int

	// InitialDelay is the base delay before the first retry (default: 500ms).
	InitialDelay time.Duration

	// MaxDelay is the maximum delay between retries (default: 5s).
	MaxDelay time.Duration

	// Multiplier is the exponential backoff multiplier (default: 2.0).
	Multiplier float64

	// Jitter adds randomness to prevent thundering herd (default: 0.1 = 10%).
	Jitter float64
}

// DefaultRetryConfig returns the default fetch retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  3,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2.0,
		Jitter:       0.1,
	}
}

// DisabledRetryConfig returns a configuration that disables retries.
func DisabledRetryConfig() RetryConfig {
	return RetryConfig{MaxAttempts: 1}
}

// Delay returns the backoff delay before the given retry (attempt is
// 1-indexed; Delay(1) is the wait after the first failed attempt).
func (c RetryConfig) Delay(attempt int) time.Duration {
	d := float64(c.InitialDelay)
	for i := 1; i < attempt; i++ {
		d *= c.Multiplier
	}
	if max := float64(c.MaxDelay); c.MaxDelay > 0 && d > max {
		d = max
	}
	if c.Jitter > 0 {
		d *= 1 + c.Jitter*(2*rand.Float64()-1)
	}
	return time.Duration(d)
}
