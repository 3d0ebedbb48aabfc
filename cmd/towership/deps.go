package main

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/bft-labs/towership/internal/adapters/fs"
	"github.com/bft-labs/towership/internal/adapters/metrics"
	"github.com/bft-labs/towership/internal/adapters/report"
	"github.com/bft-labs/towership/internal/adapters/sqlite"
	"github.com/bft-labs/towership/internal/ports"
	"github.com/bft-labs/towership/pkg/log"
	"github.com/bft-labs/towership/pkg/upload"
)

func (c *cli) logger() log.Logger {
	return log.NewZerologLogger(c.log)
}

// newClient builds the upload client. Every client of one process shares
// fallback so a clear-text transition is never repeated.
func (c *cli) newClient(fallback *upload.Fallback) (*upload.Client, error) {
	if err := c.cfg.ValidateEndpoint(); err != nil {
		return nil, err
	}
	logger := c.logger()
	return upload.New(c.cfg.Endpoint(),
		upload.WithFallback(fallback),
		upload.WithReporter(report.NewLogReporter(logger, report.DefaultSuppressWindow)),
		upload.WithLogger(logger),
		upload.WithTimeouts(c.cfg.Timeouts()),
		upload.WithFilePrefix(c.cfg.FilePrefix),
	), nil
}

// uploader builds the client for long-running commands. With a metrics
// address configured it is instrumented and metrics are served until ctx ends.
func (c *cli) uploader(ctx context.Context) (ports.Uploader, error) {
	fallback := upload.NewFallback()
	client, err := c.newClient(fallback)
	if err != nil {
		return nil, err
	}
	if c.cfg.MetricsAddr == "" {
		return client, nil
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg, fallback)
	go func() {
		if err := metrics.Serve(ctx, c.cfg.MetricsAddr, reg, c.logger()); err != nil {
			c.log.Error().Err(err).Msg("metrics server failed")
		}
	}()
	return m.Instrument(client), nil
}

func (c *cli) stateRepo() *fs.StateFileRepository {
	return fs.NewStateFileRepository(c.cfg.StateDir)
}

func (c *cli) openStore() (*sqlite.Store, error) {
	return sqlite.Open(c.cfg.DBPath, c.logger())
}
