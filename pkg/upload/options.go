package upload

import (
	"time"

	"github.com/bft-labs/towership/pkg/log"
)

// Option configures a Client.
type Option func(*Client)

// WithFallback shares f with the client. Clients created without this option
// own a private Fallback.
func WithFallback(f *Fallback) Option {
	return func(c *Client) {
		if f != nil {
			c.fallback = f
		}
	}
}

// WithReporter sets the diagnostic reporter.
func WithReporter(r Reporter) Option {
	return func(c *Client) {
		if r != nil {
			c.reporter = r
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l log.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithTimeouts overrides the connect and read timeouts. Zero values keep the defaults.
func WithTimeouts(t Timeouts) Option {
	return func(c *Client) {
		c.timeouts = t.orDefault()
	}
}

// WithTransportBuilder replaces BuildTransport, mainly for tests.
func WithTransportBuilder(b TransportBuilder) Option {
	return func(c *Client) {
		if b != nil {
			c.build = b
		}
	}
}

// WithClock sets the time source used for datafile names.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// WithFilePrefix sets the prefix of uploaded datafile names.
func WithFilePrefix(prefix string) Option {
	return func(c *Client) {
		if prefix != "" {
			c.prefix = prefix
		}
	}
}
