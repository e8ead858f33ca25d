package storage

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// RetryConfig is an exponential backoff policy for schema source reads
type RetryConfig struct {
	MaxAttempts  int           `json:"max_attempts" yaml:"max_attempts"`
	InitialDelay time.Duration `json:"initial_delay" yaml:"initial_delay"`
	MaxDelay     time.Duration `json:"max_delay" yaml:"max_delay"`
	Multiplier   float64       `json:"multiplier" yaml:"multiplier"`
	Jitter       bool          `json:"jitter" yaml:"jitter"`
}

// DefaultRetryConfig returns the policy used while loading schemas at startup
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:  3,
		InitialDelay: 50 * time.Millisecond,
		MaxDelay:     time.Second,
		Multiplier:   2,
		Jitter:       true,
	}
}

// Backoff returns the wait before retry number n (starting at 1)
func (c *RetryConfig) Backoff(n int) time.Duration {
	multiplier := c.Multiplier
	if multiplier < 1 {
		multiplier = 1
	}
	delay := float64(c.InitialDelay) * math.Pow(multiplier, float64(n-1))
	if c.MaxDelay > 0 {
		delay = math.Min(delay, float64(c.MaxDelay))
	}
	if c.Jitter {
		delay += rand.Float64() * delay / 10
	}
	return time.Duration(delay)
}

// Retry runs op until it succeeds, returns a permanent error or the attempts
// run out. Only errors accepted by IsRetryable are retried.
func Retry[T any](ctx context.Context, config *RetryConfig, op func(context.Context) (T, error)) (T, error) {
	if config == nil {
		config = DefaultRetryConfig()
	}
	attempts := config.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var zero T
	for n := 1; ; n++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		v, err := op(ctx)
		if err == nil {
			return v, nil
		}
		if n >= attempts || !IsRetryable(err) {
			return zero, err
		}

		timer := time.NewTimer(config.Backoff(n))
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}
}

// RetryingSource retries transient failures of the wrapped source
type RetryingSource struct {
	SchemaSource
	config *RetryConfig
}

// NewRetryingSource wraps source with config, or the default policy when nil
func NewRetryingSource(source SchemaSource, config *RetryConfig) *RetryingSource {
	if config == nil {
		config = DefaultRetryConfig()
	}
	return &RetryingSource{SchemaSource: source, config: config}
}

func (r *RetryingSource) Retrieve(ctx context.Context, key string) ([]byte, error) {
	return Retry(ctx, r.config, func(ctx context.Context) ([]byte, error) {
		return r.SchemaSource.Retrieve(ctx, key)
	})
}

func (r *RetryingSource) List(ctx context.Context, opts *ListOptions) (*ListResult, error) {
	return Retry(ctx, r.config, func(ctx context.Context) (*ListResult, error) {
		return r.SchemaSource.List(ctx, opts)
	})
}
