// Package resilience wraps outbound HTTP calls to the routing, geocoding,
// and incident providers with retries, circuit breaking, and health tracking.
package resilience

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"
)

// Predefined errors for resilient operations.
var (
	// ErrCircuitOpen is returned when the circuit breaker is open.
	ErrCircuitOpen = errors.New("circuit breaker is open")

	// ErrMaxRetriesExceeded is returned when all retry attempts have been exhausted.
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
)

// ClientConfig holds configuration for the resilient HTTP client.
type ClientConfig struct {
	// Name identifies this client for circuit breaker naming and registry entries.
	Name string

	// Timeout is the request timeout for individual HTTP calls.
	// Default: 10 seconds
	Timeout time.Duration

	// MaxRetries is the maximum number of retry attempts.
	// Default: 3
	MaxRetries uint64

	// InitialInterval is the initial retry backoff interval.
	// Default: 100ms
	InitialInterval time.Duration

	// MaxInterval is the maximum retry backoff interval.
	// Default: 5 seconds
	MaxInterval time.Duration

	// Breaker is the circuit breaker configuration.
	// If nil, uses DefaultBreakerConfig.
	Breaker *BreakerConfig

	// Registry receives this client for health reporting (optional).
	Registry *Registry
}

// DefaultClientConfig returns sensible defaults for the resilient client.
func DefaultClientConfig(name string) ClientConfig {
	breaker := DefaultBreakerConfig(name)
	return ClientConfig{
		Name:            name,
		Timeout:         10 * time.Second,
		MaxRetries:      3,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     5 * time.Second,
		Breaker:         &breaker,
	}
}

// Client is a resilient HTTP client with circuit breaker and retry logic.
type Client struct {
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*http.Response]
	config     ClientConfig
	registry   *Registry
}

// NewClient creates a new resilient HTTP client. When a registry is
// configured the client registers itself under its name.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.InitialInterval == 0 {
		cfg.InitialInterval = 100 * time.Millisecond
	}
	if cfg.MaxInterval == 0 {
		cfg.MaxInterval = 5 * time.Second
	}

	breakerCfg := cfg.Breaker
	if breakerCfg == nil {
		def := DefaultBreakerConfig(cfg.Name)
		breakerCfg = &def
	}

	c := &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		breaker:  NewBreaker[*http.Response](*breakerCfg), //nolint:bodyclose // type param, not response
		config:   cfg,
		registry: cfg.Registry,
	}

	if cfg.Registry != nil {
		cfg.Registry.Register(cfg.Name, c)
	}

	return c
}

// Do executes an HTTP request with circuit breaker protection and retries.
// Transient failures (5xx, network errors) are retried with exponential
// backoff; an open circuit fails fast with ErrCircuitOpen.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.DoWithContext(req.Context(), req)
}

// DoWithContext executes an HTTP request with the given context.
func (c *Client) DoWithContext(ctx context.Context, req *http.Request) (*http.Response, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.config.InitialInterval
	bo.MaxInterval = c.config.MaxInterval
	bo.MaxElapsedTime = 0 // retries are bounded by MaxRetries, not elapsed time

	policy := backoff.WithContext(backoff.WithMaxRetries(bo, c.config.MaxRetries), ctx)

	var lastResp *http.Response

	operation := func() error {
		// 5xx responses are surfaced as errors so the breaker counts them.
		resp, err := c.breaker.Execute(func() (*http.Response, error) { //nolint:bodyclose // caller closes
			r, doErr := c.httpClient.Do(req.Clone(ctx))
			if doErr != nil {
				return nil, doErr
			}
			if r.StatusCode >= 500 {
				return r, &ServerError{StatusCode: r.StatusCode}
			}
			return r, nil
		})

		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return backoff.Permanent(ErrCircuitOpen)
			}
			if resp != nil {
				lastResp = resp
			}
			return err
		}

		lastResp = resp
		return nil
	}

	err := backoff.Retry(operation, policy)
	if err != nil {
		c.recordFailure(err)
		// A 5xx that exhausted retries still carries a usable response.
		if lastResp != nil {
			return lastResp, nil
		}
		return nil, err
	}

	c.recordSuccess()
	return lastResp, nil
}

func (c *Client) recordSuccess() {
	if c.registry != nil {
		c.registry.RecordSuccess(c.config.Name)
	}
}

func (c *Client) recordFailure(err error) {
	if c.registry != nil {
		c.registry.RecordFailure(c.config.Name, err)
	}
}

// ServerError represents an HTTP 5xx server error.
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return "server error: " + http.StatusText(e.StatusCode)
}

// BreakerState returns the current state of the circuit breaker.
func (c *Client) BreakerState() gobreaker.State {
	return c.breaker.State()
}

// BreakerCounts returns the current counts of the circuit breaker.
func (c *Client) BreakerCounts() gobreaker.Counts {
	return c.breaker.Counts()
}
