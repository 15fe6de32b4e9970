package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/felixgeelhaar/fortify/ratelimit"
	"github.com/felixgeelhaar/fortify/retry"
)

// ResilientProvider wraps a provider with bounded retries and rate limiting.
// Requests are retried up to the attempt cap with exponential backoff and
// jitter; nothing is retried indefinitely.
type ResilientProvider struct {
	provider  Provider
	retrier   retry.Retry[*Response]
	rateLimit ratelimit.RateLimiter
	name      string
}

// ResilientConfig holds the retry and rate limit parameters.
type ResilientConfig struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	RatePerSecond int
}

// DefaultResilientConfig returns the reference bounds: 3 attempts with
// exponential backoff, 2 requests per second.
func DefaultResilientConfig() ResilientConfig {
	return ResilientConfig{
		MaxAttempts:   3,
		InitialDelay:  time.Second,
		MaxDelay:      20 * time.Second,
		RatePerSecond: 2,
	}
}

// NewResilientProvider wraps provider with retry and rate limiting.
func NewResilientProvider(provider Provider, cfg ResilientConfig) *ResilientProvider {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.InitialDelay <= 0 {
		cfg.InitialDelay = time.Second
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = 20 * time.Second
	}
	rate := cfg.RatePerSecond
	if rate <= 0 {
		rate = 2
	}

	return &ResilientProvider{
		provider: provider,
		name:     provider.Name(),
		retrier: retry.New[*Response](retry.Config{
			MaxAttempts:   cfg.MaxAttempts,
			InitialDelay:  cfg.InitialDelay,
			MaxDelay:      cfg.MaxDelay,
			Multiplier:    2.0,
			BackoffPolicy: retry.BackoffExponential,
			Jitter:        true,
			IsRetryable:   isRetryableHTTPError,
		}),
		rateLimit: ratelimit.New(&ratelimit.Config{
			Rate:     rate,
			Burst:    rate * 3,
			Interval: time.Second,
		}),
	}
}

func (p *ResilientProvider) Name() string {
	return p.name
}

// Generate applies rate limiting and bounded retry around the wrapped
// provider.
func (p *ResilientProvider) Generate(ctx context.Context, req *Request) (*Response, error) {
	if !p.rateLimit.Allow(ctx, p.name) {
		return nil, fmt.Errorf("rate limit exceeded for provider %s", p.name)
	}

	return p.retrier.Do(ctx, func(ctx context.Context) (*Response, error) {
		return p.provider.Generate(ctx, req)
	})
}

// Close releases the rate limiter's resources.
func (p *ResilientProvider) Close() error {
	if p.rateLimit != nil {
		return p.rateLimit.Close()
	}
	return nil
}

// isRetryableHTTPError treats timeouts, throttling, and transient server
// failures as retryable; everything else fails fast.
func isRetryableHTTPError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrRequestTimeout) {
		return true
	}

	msg := err.Error()
	for _, code := range []int{
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout,
	} {
		if strings.Contains(msg, fmt.Sprintf("status %d", code)) {
			return true
		}
	}
	return false
}
