package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bft-labs/towership/internal/domain"
	"github.com/bft-labs/towership/pkg/upload"
)

func writeBatch(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestSpooler_OnceRoutesByOutcome(t *testing.T) {
	dir := t.TempDir()
	writeBatch(t, dir, "001.csv", testBatch)
	writeBatch(t, dir, "002.csv", testBatch)
	writeBatch(t, dir, "003.csv", "cid,lac,mcc,mnc\n1,2,3,4\n")
	writeBatch(t, dir, "005.csv", "mcc,mnc\n")
	writeBatch(t, dir, "notes.txt", "ignored")
	writeBatch(t, dir, ".004.csv", testBatch)

	up := &fakeUploader{outcomes: []upload.Outcome{upload.Success, upload.ConfigurationError}}
	repo := &memStateRepo{}
	s := NewSpooler(SpoolerConfig{Dir: dir, Once: true}, up, repo, nopLogger)

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if up.Calls() != 3 {
		t.Fatalf("uploads = %d, want 3", up.Calls())
	}
	if up.batches[0] != testBatch {
		t.Errorf("uploaded content = %q, want file content unchanged", up.batches[0])
	}
	if up.batches[2] != "cid,lac,mcc,mnc\n1,2,3,4\n" {
		t.Errorf("foreign header batch = %q, want it sent as written", up.batches[2])
	}
	for _, p := range []string{
		filepath.Join(dir, SentDir, "001.csv"),
		filepath.Join(dir, RejectedDir, "002.csv"),
		filepath.Join(dir, SentDir, "003.csv"),
		filepath.Join(dir, RejectedDir, "005.csv"),
		filepath.Join(dir, "notes.txt"),
		filepath.Join(dir, ".004.csv"),
	} {
		if !exists(p) {
			t.Errorf("%s missing", p)
		}
	}

	st := repo.State()
	if st.Uploads != 3 || st.Rows != 2 {
		t.Errorf("state = %+v, want 3 uploads and 2 rows", st)
	}
	if st.Outcomes["Success"] != 2 || st.Outcomes["ConfigurationError"] != 1 {
		t.Errorf("outcomes = %v", st.Outcomes)
	}
}

func TestSpooler_OnceStopsOnRetryable(t *testing.T) {
	dir := t.TempDir()
	writeBatch(t, dir, "001.csv", testBatch)
	writeBatch(t, dir, "002.csv", testBatch)

	up := &fakeUploader{outcomes: []upload.Outcome{upload.ConnectionError}}
	s := NewSpooler(SpoolerConfig{Dir: dir, Once: true}, up, &memStateRepo{}, nopLogger)

	err := s.Run(context.Background())
	var oe *OutcomeError
	if !errors.As(err, &oe) {
		t.Fatalf("Run() error = %v, want *OutcomeError", err)
	}
	if oe.Outcome != upload.ConnectionError || oe.Source != "001.csv" {
		t.Errorf("OutcomeError = %+v", oe)
	}
	if up.Calls() != 1 {
		t.Errorf("uploads = %d, want 1 (later files wait)", up.Calls())
	}
	if !exists(filepath.Join(dir, "001.csv")) || !exists(filepath.Join(dir, "002.csv")) {
		t.Error("files should stay in the spool")
	}
}

func TestSpooler_InvalidAPIKeyStops(t *testing.T) {
	dir := t.TempDir()
	writeBatch(t, dir, "001.csv", testBatch)
	writeBatch(t, dir, "002.csv", testBatch)

	up := &fakeUploader{outcomes: []upload.Outcome{upload.InvalidAPIKey}}
	s := NewSpooler(SpoolerConfig{Dir: dir}, up, &memStateRepo{}, nopLogger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.Run(ctx); !errors.Is(err, domain.ErrInvalidAPIKey) {
		t.Fatalf("Run() error = %v, want ErrInvalidAPIKey", err)
	}
	if up.Calls() != 1 {
		t.Errorf("uploads = %d, want 1", up.Calls())
	}
	if !exists(filepath.Join(dir, "001.csv")) {
		t.Error("file should stay in the spool")
	}
}

func TestSpooler_WatchPicksUpNewFiles(t *testing.T) {
	dir := t.TempDir()
	up := &fakeUploader{}
	s := NewSpooler(SpoolerConfig{
		Dir:           dir,
		DebounceDelay: 10 * time.Millisecond,
		PollInterval:  50 * time.Millisecond,
	}, up, &memStateRepo{}, nopLogger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	// Wait for Run to create the subdirectories before dropping a file.
	deadline := time.Now().Add(5 * time.Second)
	for !exists(filepath.Join(dir, SentDir)) && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	writeBatch(t, dir, "001.csv", testBatch)

	sent := filepath.Join(dir, SentDir, "001.csv")
	for !exists(sent) && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if !exists(sent) {
		t.Fatal("file was not uploaded")
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}

func TestSpooler_WatchRetriesAfterBackoff(t *testing.T) {
	dir := t.TempDir()
	writeBatch(t, dir, "001.csv", testBatch)

	up := &fakeUploader{outcomes: []upload.Outcome{upload.ServerError, upload.ServerError}}
	s := NewSpooler(SpoolerConfig{
		Dir:            dir,
		PollInterval:   time.Hour,
		BackoffInitial: 10 * time.Millisecond,
		BackoffMax:     20 * time.Millisecond,
	}, up, &memStateRepo{}, nopLogger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	sent := filepath.Join(dir, SentDir, "001.csv")
	deadline := time.Now().Add(5 * time.Second)
	for !exists(sent) && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	<-done

	if !exists(sent) {
		t.Fatal("file was not uploaded after retries")
	}
	if up.Calls() != 3 {
		t.Errorf("uploads = %d, want 3", up.Calls())
	}
}

func TestIsBatchFile(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"batch.csv", true},
		{"BATCH.CSV", true},
		{".batch.csv", false},
		{"batch.csv.tmp", false},
		{"batch.txt", false},
	}
	for _, tt := range tests {
		if got := isBatchFile(tt.name); got != tt.want {
			t.Errorf("isBatchFile(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
