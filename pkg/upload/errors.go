package upload

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"syscall"
)

// ErrorKind classifies a failed round trip.
type ErrorKind int

const (
	// KindIO is any I/O failure not covered by another kind.
	KindIO ErrorKind = iota

	// KindTimeout is a connect, handshake or read timeout.
	KindTimeout

	// KindRefused means the server actively refused the connection.
	KindRefused

	// KindTLSUnsupported means the local TLS stack and the server share no
	// protocol version or cipher suite.
	KindTLSUnsupported
)

func (k ErrorKind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindTimeout:
		return "timeout"
	case KindRefused:
		return "refused"
	case KindTLSUnsupported:
		return "tls-unsupported"
	default:
		return "unknown"
	}
}

// TransportError is a round-trip failure together with its kind.
type TransportError struct {
	Kind  ErrorKind
	Cause error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("upload transport %s: %v", e.Kind, e.Cause)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// Outcome maps the failure to the result reported to callers.
func (e *TransportError) Outcome() Outcome {
	switch e.Kind {
	case KindTimeout, KindRefused:
		return ConnectionError
	default:
		return Failure
	}
}

// TLS alert descriptions that mean negotiation is impossible rather than
// interrupted.
const (
	alertHandshakeFailure     tls.AlertError = 40
	alertProtocolVersion      tls.AlertError = 70
	alertInsufficientSecurity tls.AlertError = 71
)

// Fragments of crypto/tls error messages for the same conditions. Alerts
// received over TCP are not exposed as tls.AlertError, only as text.
var tlsUnsupportedMessages = []string{
	"tls: handshake failure",
	"tls: protocol version not supported",
	"tls: insufficient security level",
	"tls: no supported versions",
	"tls: server selected unsupported protocol version",
	"tls: no cipher suite supported",
	"tls: server chose an unconfigured cipher suite",
}

// ClassifyTransportError wraps err with its kind. It returns nil for a nil err.
func ClassifyTransportError(err error) *TransportError {
	if err == nil {
		return nil
	}
	var te *TransportError
	if errors.As(err, &te) {
		return te
	}
	return &TransportError{Kind: kindOf(err), Cause: err}
}

func kindOf(err error) ErrorKind {
	if isTLSUnsupported(err) {
		return KindTLSUnsupported
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return KindRefused
	}
	return KindIO
}

func isTLSUnsupported(err error) bool {
	var alert tls.AlertError
	if errors.As(err, &alert) {
		switch alert {
		case alertHandshakeFailure, alertProtocolVersion, alertInsufficientSecurity:
			return true
		}
	}
	msg := err.Error()
	for _, m := range tlsUnsupportedMessages {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}
