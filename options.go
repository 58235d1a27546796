package ledgersync

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/ledgersync/ledgersync/internal/transport"
	"github.com/ledgersync/ledgersync/pkg/errors"
	"github.com/ledgersync/ledgersync/pkg/reconcile"
)

// Option is a function that configures a Client instance.
type Option func(*config) error

// config holds the client configuration assembled from options.
type config struct {
	baseURL     string
	apiKey      string
	timeout     time.Duration
	logger      *zerolog.Logger
	stalePolicy reconcile.StalePolicy
	maxInFlight int
}

func defaultConfig() *config {
	return &config{
		timeout:     transport.DefaultHTTPTimeout,
		stalePolicy: reconcile.StaleReject,
	}
}

func (c *config) validate() error {
	if c.baseURL == "" {
		return errors.NewConfigError("client", "base URL is required", errors.ErrInvalidInput)
	}
	return nil
}

// WithBaseURL configures the backend base URL. Required.
func WithBaseURL(url string) Option {
	return func(c *config) error {
		if url == "" {
			return errors.NewConfigError("client", "base URL cannot be empty", errors.ErrInvalidInput)
		}
		c.baseURL = url
		return nil
	}
}

// WithAPIKey configures the bearer API key. An empty key disables
// authentication.
func WithAPIKey(key string) Option {
	return func(c *config) error {
		c.apiKey = key
		return nil
	}
}

// WithHTTPTimeout configures the per-request HTTP timeout.
func WithHTTPTimeout(timeout time.Duration) Option {
	return func(c *config) error {
		if timeout <= 0 {
			return errors.NewConfigError("client", "timeout must be positive", errors.ErrInvalidInput)
		}
		c.timeout = timeout
		return nil
	}
}

// WithLogger configures the logger used by the client.
func WithLogger(logger *zerolog.Logger) Option {
	return func(c *config) error {
		c.logger = logger
		return nil
	}
}

// WithStalePolicy configures how desired lines carrying unknown identifiers
// are handled. The default rejects the whole save before anything is
// dispatched; StaleRecreate strips the stale identifier and creates the line
// fresh.
func WithStalePolicy(policy reconcile.StalePolicy) Option {
	return func(c *config) error {
		c.stalePolicy = policy
		return nil
	}
}

// WithMaxInFlight bounds how many line operations a save dispatches
// concurrently. Zero (the default) leaves the batch unbounded.
func WithMaxInFlight(n int) Option {
	return func(c *config) error {
		if n < 0 {
			return errors.NewConfigError("client", "max in flight cannot be negative", errors.ErrInvalidInput)
		}
		c.maxInFlight = n
		return nil
	}
}
