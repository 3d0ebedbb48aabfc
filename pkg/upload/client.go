package upload

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/bft-labs/towership/pkg/log"
)

// maxResponseBytes caps how much of a response body is read. Protocol
// responses are a few bytes long.
const maxResponseBytes = 64 << 10

// Client uploads measurement batches to one Endpoint. It is safe for
// concurrent use; the only state shared between calls is its Fallback.
type Client struct {
	endpoint Endpoint
	fallback *Fallback
	reporter Reporter
	logger   log.Logger
	timeouts Timeouts
	build    TransportBuilder
	now      func() time.Time
	prefix   string
}

// New creates a Client for endpoint.
func New(endpoint Endpoint, opts ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		fallback: NewFallback(),
		reporter: NopReporter{},
		logger:   log.NewNoopLogger(),
		timeouts: DefaultTimeouts(),
		build:    BuildTransport,
		now:      time.Now,
		prefix:   DefaultFilePrefix,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the endpoint the client uploads to.
func (c *Client) Endpoint() Endpoint {
	return c.endpoint
}

// Fallback returns the client's fallback switch.
func (c *Client) Fallback() *Fallback {
	return c.fallback
}

// Upload sends one CSV batch and returns the outcome. It blocks for at most
// two sequential round trips and never returns an error: every failure is
// folded into the Outcome.
func (c *Client) Upload(ctx context.Context, batch string) Outcome {
	if c.fallback.Enabled() {
		outcome, _ := c.uploadClearText(ctx, batch)
		return outcome
	}

	outcome, terr := c.uploadEncrypted(ctx, batch)
	if terr == nil || terr.Kind != KindTLSUnsupported {
		return outcome
	}

	// Another call may have tripped the switch first; the retry still belongs
	// to this call.
	if c.fallback.Trip() {
		c.logger.Warn("switching to clear text uploads for the rest of the process",
			log.String("url", c.endpoint.URL),
			log.Err(terr.Cause))
	}
	outcome, _ = c.uploadClearText(ctx, batch)
	return outcome
}

func (c *Client) uploadEncrypted(ctx context.Context, batch string) (Outcome, *TransportError) {
	c.logger.Debug("sending encrypted upload", log.String("url", c.endpoint.URL))
	return c.send(ctx, true, c.endpoint.URL, batch)
}

func (c *Client) uploadClearText(ctx context.Context, batch string) (Outcome, *TransportError) {
	url := c.endpoint.ClearTextURL()
	c.logger.Warn("sending clear text upload", log.String("url", url))
	return c.send(ctx, false, url, batch)
}

// send performs one round trip. The TransportError is non-nil only when no
// response was received.
func (c *Client) send(ctx context.Context, secure bool, url string, batch string) (Outcome, *TransportError) {
	enc, err := Encode(c.endpoint, batch, Filename(c.prefix, c.now()))
	if err != nil {
		c.logger.Error("encode upload request", log.Err(err))
		c.reporter.ReportException(err)
		return Failure, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(enc.Body))
	if err != nil {
		c.logger.Error("create upload request", log.String("url", url), log.Err(err))
		c.reporter.ReportException(err)
		return Failure, nil
	}
	req.Header.Set("Content-Type", enc.ContentType)
	req.Header.Set("User-Agent", UserAgent)

	client := c.build(secure, c.timeouts)
	defer client.CloseIdleConnections()

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return c.transportFailure(ctx, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return c.transportFailure(ctx, err)
	}

	outcome := Classify(resp.StatusCode, string(body), c.reporter)
	c.logger.Debug("upload response",
		log.Int("status", resp.StatusCode),
		log.Stringer("outcome", outcome),
		log.Bool("encrypted", secure),
		log.Duration("elapsed", time.Since(start)))
	return outcome, nil
}

func (c *Client) transportFailure(ctx context.Context, err error) (Outcome, *TransportError) {
	terr := ClassifyTransportError(err)

	if ctx.Err() != nil {
		// Cancelled by the caller; nothing to diagnose.
		c.logger.Debug("upload interrupted", log.Err(ctx.Err()))
		return ConnectionError, terr
	}

	switch terr.Kind {
	case KindTimeout, KindRefused:
		c.logger.Debug("upload connection failed",
			log.Stringer("kind", terr.Kind), log.Err(err))
	case KindTLSUnsupported:
		c.logger.Warn("upload tls negotiation unsupported", log.Err(err))
	default:
		c.logger.Debug("upload failed", log.Err(err))
		c.reporter.ReportExceptionWithSuppress(terr)
	}
	return terr.Outcome(), terr
}
