package upload

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"
)

// Default timeouts applied to every attempt.
const (
	DefaultConnectTimeout = 20 * time.Second
	DefaultReadTimeout    = 60 * time.Second
)

// Timeouts bounds a single round trip.
type Timeouts struct {
	// Connect bounds dialing and the TLS handshake.
	Connect time.Duration

	// Read bounds the wait for the response.
	Read time.Duration
}

// DefaultTimeouts returns the standard connect and read timeouts.
func DefaultTimeouts() Timeouts {
	return Timeouts{Connect: DefaultConnectTimeout, Read: DefaultReadTimeout}
}

func (t Timeouts) orDefault() Timeouts {
	if t.Connect <= 0 {
		t.Connect = DefaultConnectTimeout
	}
	if t.Read <= 0 {
		t.Read = DefaultReadTimeout
	}
	return t
}

// TransportBuilder creates the HTTP client for one attempt.
type TransportBuilder func(secure bool, t Timeouts) *http.Client

// BuildTransport returns an HTTP client for one upload attempt.
//
// The secure client requires TLS 1.2 or newer. The clear-text client carries
// no TLS configuration at all and is only ever given http:// URLs. Neither
// follows redirects.
func BuildTransport(secure bool, t Timeouts) *http.Client {
	t = t.orDefault()
	dialer := &net.Dialer{
		Timeout:   t.Connect,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ResponseHeaderTimeout: t.Read,
		MaxIdleConns:          2,
		IdleConnTimeout:       90 * time.Second,
		ExpectContinueTimeout: time.Second,
	}
	if secure {
		transport.TLSClientConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		transport.TLSHandshakeTimeout = t.Connect
		transport.ForceAttemptHTTP2 = true
	}
	return &http.Client{
		Transport:     transport,
		Timeout:       t.Connect + t.Read,
		CheckRedirect: noRedirects,
	}
}

func noRedirects(*http.Request, []*http.Request) error {
	return http.ErrUseLastResponse
}
