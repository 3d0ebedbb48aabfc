// Package report turns upload diagnostics into structured log events.
//
// Each report gets a UUID so that a line in a user's log can be matched to
// the exact failure. Suppressed reports are logged at warn level and
// identical ones are dropped while a suppression window is open.
package report

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bft-labs/towership/pkg/log"
)

// DefaultSuppressWindow is how long an identical suppressed report is dropped.
const DefaultSuppressWindow = 10 * time.Minute

// LogReporter implements upload.Reporter on top of a log.Logger.
type LogReporter struct {
	logger log.Logger
	window time.Duration
	now    func() time.Time
	newID  func() string

	mu       sync.Mutex
	lastSeen map[string]time.Time
	dropped  int
}

// NewLogReporter creates a reporter. A window <= 0 uses DefaultSuppressWindow.
func NewLogReporter(logger log.Logger, window time.Duration) *LogReporter {
	if window <= 0 {
		window = DefaultSuppressWindow
	}
	return &LogReporter{
		logger:   logger,
		window:   window,
		now:      time.Now,
		newID:    func() string { return uuid.NewString() },
		lastSeen: make(map[string]time.Time),
	}
}

// ReportException logs err at error level.
func (r *LogReporter) ReportException(err error) {
	if err == nil {
		return
	}
	r.logger.Error("diagnostic report",
		log.String("report_id", r.newID()),
		log.Err(err))
}

// ReportExceptionWithSuppress logs err at warn level unless the same error
// text was reported within the suppression window.
func (r *LogReporter) ReportExceptionWithSuppress(err error) {
	if err == nil {
		return
	}
	key := err.Error()
	now := r.now()

	r.mu.Lock()
	last, seen := r.lastSeen[key]
	if seen && now.Sub(last) < r.window {
		r.dropped++
		r.mu.Unlock()
		return
	}
	r.lastSeen[key] = now
	r.pruneLocked(now)
	r.mu.Unlock()

	r.logger.Warn("diagnostic report",
		log.String("report_id", r.newID()),
		log.Bool("suppressible", true),
		log.Err(err))
}

// Dropped returns how many suppressed reports were discarded.
func (r *LogReporter) Dropped() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped
}

func (r *LogReporter) pruneLocked(now time.Time) {
	for k, t := range r.lastSeen {
		if now.Sub(t) >= r.window {
			delete(r.lastSeen, k)
		}
	}
}
