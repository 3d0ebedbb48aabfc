// Package metrics exposes upload activity as Prometheus metrics.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bft-labs/towership/internal/ports"
	"github.com/bft-labs/towership/pkg/log"
	"github.com/bft-labs/towership/pkg/upload"
)

const namespace = "towership"

// Metrics holds the upload collectors.
type Metrics struct {
	uploads  *prometheus.CounterVec
	duration prometheus.Histogram
}

// New creates the collectors and registers them with reg. fallback, when
// not nil, is exported as a 0/1 gauge.
func New(reg prometheus.Registerer, fallback *upload.Fallback) *Metrics {
	m := &Metrics{
		uploads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "uploads_total",
				Help:      "Upload calls by outcome",
			},
			[]string{"outcome"},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "upload_duration_seconds",
				Help:      "Wall time of one upload call including a fallback retry",
				Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
		),
	}
	reg.MustRegister(m.uploads, m.duration)

	if fallback != nil {
		reg.MustRegister(prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "cleartext_fallback",
				Help:      "1 once uploads have fallen back to clear text",
			},
			func() float64 {
				if fallback.Enabled() {
					return 1
				}
				return 0
			},
		))
	}
	return m
}

// Instrument wraps u so that every call is counted and timed.
func (m *Metrics) Instrument(u ports.Uploader) ports.Uploader {
	return &instrumentedUploader{next: u, m: m}
}

type instrumentedUploader struct {
	next ports.Uploader
	m    *Metrics
}

func (u *instrumentedUploader) Upload(ctx context.Context, batch string) upload.Outcome {
	start := time.Now()
	outcome := u.next.Upload(ctx, batch)
	u.m.duration.Observe(time.Since(start).Seconds())
	u.m.uploads.WithLabelValues(outcome.String()).Inc()
	return outcome
}

// Serve exposes g on addr under /metrics until ctx is canceled.
func Serve(ctx context.Context, addr string, g prometheus.Gatherer, logger log.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	logger.Info("serving metrics", log.String("addr", addr))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
