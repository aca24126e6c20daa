package client

// This file defines functional options that configure the Client during
// construction. Keeping them in a standalone file makes it easy to discover
// all available knobs at a glance.

import (
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

// Option configures a Client during construction in New.
//
// Options are applied before the bearer-token transport wrapper is installed,
// so transport-related options are placed underneath it. Options must be
// deterministic and side-effect free.
type Option func(*Client) error

// WithHTTPTimeout sets the underlying http.Client Timeout used by the SDK.
//
// Prefer per-request context deadlines where possible; this timeout is a
// coarse safety net that bounds the total time spent on a single HTTP
// request. The value must be greater than zero.
func WithHTTPTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("http timeout must be > 0")
		}
		c.http.Timeout = d
		return nil
	}
}

// WithLogger replaces the client's logger. The default logger discards
// everything below warn level.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) error {
		c.log = l
		return nil
	}
}

// WithReconnectBackoff overrides the backoff policy used when the realtime
// connection drops. The factory is invoked once per reconnect cycle so state
// never leaks between attempts.
func WithReconnectBackoff(factory func() backoff.BackOff) Option {
	return func(c *Client) error {
		if factory == nil {
			return fmt.Errorf("backoff factory must not be nil")
		}
		c.backoffFactory = factory
		return nil
	}
}

// WithCredentialStore attaches external credential storage shared with other
// login surfaces. The session adopts the stored token at construction and
// follows later changes: removal forces logout, a replacement token is
// installed as a fresh login. A non-positive poll interval uses the default.
func WithCredentialStore(store CredentialStore, pollInterval time.Duration) Option {
	return func(c *Client) error {
		if store == nil {
			return fmt.Errorf("credential store must not be nil")
		}
		c.credStore = store
		c.credPollInterval = pollInterval
		return nil
	}
}

// WithSessionWarning sets how long before token expiry the session moves to
// StateExpiring so the UI can prompt for renewal.
func WithSessionWarning(d time.Duration) Option {
	return func(c *Client) error {
		if d < 0 {
			return fmt.Errorf("session warning must be >= 0")
		}
		c.session.warning = d
		return nil
	}
}

func defaultBackoffFactory() backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = 500 * time.Millisecond
	exp.Multiplier = 2
	exp.MaxInterval = 30 * time.Second
	exp.MaxElapsedTime = 0 // keep retrying until Close
	return exp
}
