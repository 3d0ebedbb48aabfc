package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/towership/internal/domain"
	"github.com/bft-labs/towership/internal/ports"
	"github.com/bft-labs/towership/pkg/log"
	"github.com/bft-labs/towership/pkg/upload"
)

// Spool subdirectories for processed batch files.
const (
	SentDir     = "sent"
	RejectedDir = "rejected"
)

// Default spooler timings.
const (
	DefaultPollInterval  = time.Minute
	DefaultDebounceDelay = 500 * time.Millisecond
)

// SpoolerConfig contains configuration for the spool watcher.
type SpoolerConfig struct {
	// Dir holds *.csv batch files. Files whose name starts with "." are
	// ignored, so writers can create a hidden file and rename it into place.
	Dir string

	// PollInterval is how often the directory is rescanned without events.
	PollInterval time.Duration

	// DebounceDelay is the quiet period after a file event before uploading.
	DebounceDelay time.Duration

	BackoffInitial time.Duration
	BackoffMax     time.Duration

	// Cleanup bounds the size of the sent/ and rejected/ archives.
	Cleanup CleanupConfig

	// Once processes the files present at start and returns.
	Once bool
}

// Spooler uploads batch files dropped into a spool directory.
type Spooler struct {
	config   SpoolerConfig
	uploader ports.Uploader
	repo     ports.StateRepository
	logger   log.Logger
	now      func() time.Time

	mu       sync.Mutex
	debounce *time.Timer
}

// NewSpooler creates a spooler with the given dependencies.
func NewSpooler(config SpoolerConfig, uploader ports.Uploader, repo ports.StateRepository, logger log.Logger) *Spooler {
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultPollInterval
	}
	if config.DebounceDelay <= 0 {
		config.DebounceDelay = DefaultDebounceDelay
	}
	config.Cleanup = config.Cleanup.withDefaults()
	return &Spooler{
		config:   config,
		uploader: uploader,
		repo:     repo,
		logger:   logger,
		now:      time.Now,
	}
}

// Run uploads every pending file, then keeps watching the directory until
// ctx is canceled. It returns domain.ErrInvalidAPIKey as soon as the
// service rejects the credentials. In Once mode a retryable outcome ends
// the run with an *OutcomeError and leaves the file in place.
func (s *Spooler) Run(ctx context.Context) error {
	for _, dir := range []string{s.config.Dir, s.sentDir(), s.rejectedDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create spool directory: %w", err)
		}
	}

	st := loadStats(ctx, s.repo, s.logger, s.now)

	if s.config.Once {
		blocked, err := s.drain(ctx, st)
		if err != nil {
			return err
		}
		s.cleanup(ctx)
		if blocked != nil {
			return blocked
		}
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(s.config.Dir); err != nil {
		return fmt.Errorf("watch %s: %w", s.config.Dir, err)
	}
	defer s.stopDebounce()

	s.logger.Info("watching spool directory", log.String("dir", s.config.Dir))

	kick := make(chan struct{}, 1)
	poll := time.NewTicker(s.config.PollInterval)
	defer poll.Stop()
	sweep := time.NewTicker(s.config.Cleanup.CheckInterval)
	defer sweep.Stop()

	bo := newBackoff(s.config.BackoffInitial, s.config.BackoffMax)
	var retry <-chan time.Time

	pass := func() error {
		blocked, err := s.drain(ctx, st)
		if err != nil {
			return err
		}
		if blocked == nil {
			bo.Reset()
			retry = nil
			return nil
		}
		d := bo.Next()
		s.logger.Warn("upload deferred",
			log.String("file", blocked.Source),
			log.Stringer("outcome", blocked.Outcome),
			log.Duration("retry_in", d),
		)
		retry = time.After(d)
		return nil
	}

	if err := pass(); err != nil {
		return err
	}
	s.cleanup(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isBatchFile(filepath.Base(event.Name)) {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			// While backing off, new files wait for the retry timer.
			if retry != nil {
				continue
			}
			s.debounceKick(kick)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("spool watcher error", log.Err(err))

		case <-kick:
			if retry != nil {
				continue
			}
			if err := pass(); err != nil {
				return err
			}

		case <-poll.C:
			if retry != nil {
				continue
			}
			if err := pass(); err != nil {
				return err
			}

		case <-retry:
			retry = nil
			if err := pass(); err != nil {
				return err
			}

		case <-sweep.C:
			s.cleanup(ctx)
		}
	}
}

func (s *Spooler) debounceKick(kick chan<- struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.debounce != nil {
		s.debounce.Stop()
	}
	s.debounce = time.AfterFunc(s.config.DebounceDelay, func() {
		select {
		case kick <- struct{}{}:
		default:
		}
	})
}

func (s *Spooler) stopDebounce() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.debounce != nil {
		s.debounce.Stop()
	}
}

// drain uploads pending files in name order. It stops at the first
// retryable outcome and returns it as blocked so later files keep their
// order behind it.
func (s *Spooler) drain(ctx context.Context, st *stats) (blocked *OutcomeError, err error) {
	files, err := s.pending()
	if err != nil {
		return nil, err
	}

	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		outcome, rows, err := s.uploadFile(ctx, name)
		if err != nil {
			s.logger.Warn("rejecting unreadable batch file", log.String("file", name), log.Err(err))
			s.move(name, s.rejectedDir())
			continue
		}
		st.record(ctx, outcome, rows)

		switch {
		case outcome == upload.Success:
			s.logger.Info("batch uploaded", log.String("file", name), log.Int("rows", rows))
			s.move(name, s.sentDir())
		case outcome == upload.ConfigurationError:
			s.logger.Warn("batch rejected by service", log.String("file", name))
			s.move(name, s.rejectedDir())
		case outcome.Fatal():
			s.logger.Error("api key rejected, stopping", log.String("file", name))
			return nil, domain.ErrInvalidAPIKey
		default:
			return &OutcomeError{Outcome: outcome, Source: name}, nil
		}
	}
	return nil, nil
}

// uploadFile uploads one file. The file content is sent as read so the
// service sees exactly what the producer wrote; only files without data
// rows are refused locally.
func (s *Spooler) uploadFile(ctx context.Context, name string) (upload.Outcome, int, error) {
	data, err := os.ReadFile(filepath.Join(s.config.Dir, name))
	if err != nil {
		return 0, 0, fmt.Errorf("read: %w", err)
	}
	rows, err := domain.CountRows(bytes.NewReader(data))
	if err != nil {
		return 0, 0, err
	}

	start := time.Now()
	outcome := s.uploader.Upload(ctx, string(data))
	s.logger.Debug("upload finished",
		log.String("file", name),
		log.Stringer("outcome", outcome),
		log.Duration("duration", time.Since(start)),
	)
	return outcome, rows, nil
}

// pending lists batch files in name order.
func (s *Spooler) pending() ([]string, error) {
	entries, err := os.ReadDir(s.config.Dir)
	if err != nil {
		return nil, fmt.Errorf("list spool: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() && isBatchFile(e.Name()) {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

func (s *Spooler) move(name, dir string) {
	src := filepath.Join(s.config.Dir, name)
	if err := os.Rename(src, filepath.Join(dir, name)); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Error("failed to move batch file", log.String("file", name), log.Err(err))
		}
	}
}

func (s *Spooler) cleanup(ctx context.Context) {
	dirs := []string{s.sentDir(), s.rejectedDir()}
	if _, err := cleanupArchives(ctx, s.config.Cleanup, dirs, s.logger); err != nil {
		s.logger.Error("archive cleanup failed", log.Err(err))
	}
}

func (s *Spooler) sentDir() string     { return filepath.Join(s.config.Dir, SentDir) }
func (s *Spooler) rejectedDir() string { return filepath.Join(s.config.Dir, RejectedDir) }

func isBatchFile(name string) bool {
	return !strings.HasPrefix(name, ".") && strings.EqualFold(filepath.Ext(name), ".csv")
}
