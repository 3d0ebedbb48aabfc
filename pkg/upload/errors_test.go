package upload

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"syscall"
	"testing"
	"time"
)

func TestClassifyTransportError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantKind    ErrorKind
		wantOutcome Outcome
	}{
		{"deadline", context.DeadlineExceeded, KindTimeout, ConnectionError},
		{"os deadline", &net.OpError{Op: "read", Err: os.ErrDeadlineExceeded}, KindTimeout, ConnectionError},
		{"url timeout", &url.Error{Op: "Post", URL: "https://x", Err: context.DeadlineExceeded}, KindTimeout, ConnectionError},
		{"refused", &net.OpError{Op: "dial", Err: &os.SyscallError{Syscall: "connect", Err: syscall.ECONNREFUSED}}, KindRefused, ConnectionError},
		{"remote protocol version alert", &url.Error{Op: "Post", URL: "https://x", Err: &net.OpError{Op: "remote error", Err: errors.New("tls: protocol version not supported")}}, KindTLSUnsupported, Failure},
		{"remote handshake failure alert", errors.New("remote error: tls: handshake failure"), KindTLSUnsupported, Failure},
		{"local version mismatch", errors.New("tls: server selected unsupported protocol version 301"), KindTLSUnsupported, Failure},
		{"alert error", fmt.Errorf("quic: %w", tls.AlertError(71)), KindTLSUnsupported, Failure},
		{"other alert", fmt.Errorf("quic: %w", tls.AlertError(42)), KindIO, Failure},
		{"reset", &net.OpError{Op: "read", Err: syscall.ECONNRESET}, KindIO, Failure},
		{"unexpected eof", io.ErrUnexpectedEOF, KindIO, Failure},
		{"bad certificate", errors.New("x509: certificate signed by unknown authority"), KindIO, Failure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			te := ClassifyTransportError(tt.err)
			if te == nil {
				t.Fatal("ClassifyTransportError returned nil")
			}
			if te.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", te.Kind, tt.wantKind)
			}
			if te.Outcome() != tt.wantOutcome {
				t.Errorf("Outcome() = %v, want %v", te.Outcome(), tt.wantOutcome)
			}
			if !errors.Is(te, tt.err) {
				t.Error("TransportError does not unwrap to its cause")
			}
		})
	}
}

func TestClassifyTransportError_Nil(t *testing.T) {
	if te := ClassifyTransportError(nil); te != nil {
		t.Errorf("ClassifyTransportError(nil) = %v, want nil", te)
	}
}

func TestClassifyTransportError_KeepsExisting(t *testing.T) {
	orig := &TransportError{Kind: KindRefused, Cause: errors.New("x")}
	if got := ClassifyTransportError(fmt.Errorf("wrapped: %w", orig)); got != orig {
		t.Errorf("got %v, want the wrapped TransportError", got)
	}
}

func TestClassifyTransportError_RealRefusal(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	ln.Close()

	client := BuildTransport(false, Timeouts{Connect: time.Second, Read: time.Second})
	_, err = client.Post("http://"+addr+"/upload", "text/plain", nil)
	if err == nil {
		t.Fatal("expected connection error")
	}
	if te := ClassifyTransportError(err); te.Kind != KindRefused {
		t.Errorf("Kind = %v, want refused (err: %v)", te.Kind, err)
	}
}

func TestClassifyTransportError_RealProtocolMismatch(t *testing.T) {
	ts := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "0,OK")
	}))
	ts.TLS = &tls.Config{MinVersion: tls.VersionTLS10, MaxVersion: tls.VersionTLS11}
	ts.StartTLS()
	defer ts.Close()

	client := BuildTransport(true, Timeouts{Connect: 2 * time.Second, Read: 2 * time.Second})
	_, err := client.Post(ts.URL, "text/plain", nil)
	if err == nil {
		t.Fatal("expected handshake error")
	}
	if te := ClassifyTransportError(err); te.Kind != KindTLSUnsupported {
		t.Errorf("Kind = %v, want tls-unsupported (err: %v)", te.Kind, err)
	}
}
