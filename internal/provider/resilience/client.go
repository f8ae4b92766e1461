// Package resilience provides the retrying, circuit-broken HTTP client used
// for all upstream data provider calls, and classifies failures into the
// fetch-error kinds the acquisition ladder falls back on.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"
)

// FetchErrorKind classifies why a provider fetch failed.
type FetchErrorKind string

const (
	// FetchTimeout means the request exceeded its deadline.
	FetchTimeout FetchErrorKind = "timeout"
	// FetchHTTPStatus means the provider answered with a server error status.
	FetchHTTPStatus FetchErrorKind = "http_status"
	// FetchUnreachable means the provider could not be reached, including
	// when the circuit breaker is open.
	FetchUnreachable FetchErrorKind = "unreachable"
)

// FetchError is the terminal error for a failed provider fetch.
// Callers treat any FetchError as "tier unavailable" and proceed to the
// next fallback tier.
type FetchError struct {
	Provider   string
	Kind       FetchErrorKind
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s fetch failed (%s, status %d): %v", e.Provider, e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s fetch failed (%s): %v", e.Provider, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsFetchError reports whether err is a FetchError, returning it if so.
func IsFetchError(err error) (*FetchError, bool) {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// Config holds configuration for the resilient client.
type Config struct {
	// Name identifies the provider in errors and breaker state.
	Name string

	// Timeout bounds each individual HTTP attempt. Default: 10s.
	Timeout time.Duration

	// MaxRetries is the number of retry attempts after the first try.
	// Default: 3.
	MaxRetries uint64

	// InitialInterval and MaxInterval bound the exponential backoff.
	// Defaults: 100ms and 5s.
	InitialInterval time.Duration
	MaxInterval     time.Duration

	// ConsecutiveFailures trips the breaker open. Default: 5.
	ConsecutiveFailures uint32

	// OpenTimeout is how long the breaker stays open before probing.
	// Default: 30s.
	OpenTimeout time.Duration
}

// DefaultConfig returns sensible defaults for a provider client.
func DefaultConfig(name string) Config {
	return Config{
		Name:                name,
		Timeout:             10 * time.Second,
		MaxRetries:          3,
		InitialInterval:     100 * time.Millisecond,
		MaxInterval:         5 * time.Second,
		ConsecutiveFailures: 5,
		OpenTimeout:         30 * time.Second,
	}
}

// Client is a resilient HTTP client. Transient failures (5xx, network
// errors) are retried with exponential backoff; sustained failure opens a
// circuit breaker that fails fast until the provider recovers.
type Client struct {
	name       string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*http.Response]
	config     Config
}

// NewClient creates a resilient HTTP client.
func NewClient(cfg Config) *Client {
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
	if cfg.ConsecutiveFailures == 0 {
		cfg.ConsecutiveFailures = 5
	}
	if cfg.OpenTimeout == 0 {
		cfg.OpenTimeout = 30 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:    cfg.Name,
		Timeout: cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
		},
	})

	return &Client{
		name:       cfg.Name,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		breaker:    breaker,
		config:     cfg,
	}
}

// Do executes the request with retries and circuit breaking. Responses with
// a status below 500 are returned to the caller as-is; everything else
// terminates in a *FetchError carrying the failure kind.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.config.InitialInterval
	bo.MaxInterval = c.config.MaxInterval
	bo.MaxElapsedTime = 0 // bounded by WithMaxRetries instead

	policy := backoff.WithContext(backoff.WithMaxRetries(bo, c.config.MaxRetries), ctx)

	var resp *http.Response
	var lastStatus int

	operation := func() error {
		r, err := c.breaker.Execute(func() (*http.Response, error) {
			attempt, err := c.httpClient.Do(req.Clone(ctx))
			if err != nil {
				return nil, err
			}
			// 5xx counts as a failure so it both retries and trips the breaker.
			if attempt.StatusCode >= 500 {
				attempt.Body.Close()
				return nil, &serverError{status: attempt.StatusCode}
			}
			return attempt, nil
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return backoff.Permanent(err)
			}
			var se *serverError
			if errors.As(err, &se) {
				lastStatus = se.status
			}
			return err
		}

		resp = r
		return nil
	}

	if err := backoff.Retry(operation, policy); err != nil {
		return nil, c.classify(err, lastStatus)
	}
	return resp, nil
}

// classify maps a terminal transport failure to a FetchError kind.
func (c *Client) classify(err error, lastStatus int) *FetchError {
	fe := &FetchError{Provider: c.name, Err: err}

	switch {
	case errors.Is(err, context.DeadlineExceeded), isNetTimeout(err):
		fe.Kind = FetchTimeout
	case lastStatus >= 500:
		fe.Kind = FetchHTTPStatus
		fe.StatusCode = lastStatus
	default:
		fe.Kind = FetchUnreachable
	}
	return fe
}

// BreakerState returns the circuit breaker's current state.
func (c *Client) BreakerState() gobreaker.State {
	return c.breaker.State()
}

// Name returns the provider name this client was configured with.
func (c *Client) Name() string {
	return c.name
}

type serverError struct {
	status int
}

func (e *serverError) Error() string {
	return "server error: " + http.StatusText(e.status)
}

func isNetTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
