package app

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/bft-labs/towership/internal/domain"
	"github.com/bft-labs/towership/pkg/log"
	"github.com/bft-labs/towership/pkg/upload"
)

const testBatch = "mcc,mnc,lac,cellid,lon,lat,signal,measured_at,rating,speed,direction,act\n" +
	"260,2,1234,56789,21.0122,52.2297,-85,1700000000123,12.5,1.5,270,LTE\n"

// fakeUploader returns scripted outcomes in order, then Success.
type fakeUploader struct {
	mu       sync.Mutex
	outcomes []upload.Outcome
	batches  []string
}

func (f *fakeUploader) Upload(ctx context.Context, batch string) upload.Outcome {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, batch)
	if len(f.outcomes) == 0 {
		return upload.Success
	}
	o := f.outcomes[0]
	f.outcomes = f.outcomes[1:]
	return o
}

func (f *fakeUploader) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.batches)
}

type memStateRepo struct {
	mu    sync.Mutex
	state domain.State
	saves int
}

func (r *memStateRepo) Load(ctx context.Context) (domain.State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state, nil
}

func (r *memStateRepo) Save(ctx context.Context, s domain.State) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = s
	r.saves++
	return nil
}

func (r *memStateRepo) State() domain.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// memStore is an in-memory ports.MeasurementStore ordered by insertion.
type memStore struct {
	rows     []domain.Measurement
	uploaded map[string]bool
	rejected map[string]bool
	purged   time.Time
}

func newMemStore(ms ...domain.Measurement) *memStore {
	s := &memStore{uploaded: make(map[string]bool), rejected: make(map[string]bool)}
	s.Store(context.Background(), ms)
	return s
}

func (s *memStore) Store(ctx context.Context, ms []domain.Measurement) error {
	for i := range ms {
		if ms[i].ID == "" {
			ms[i].ID = string(rune('a' + len(s.rows)))
		}
		s.rows = append(s.rows, ms[i])
	}
	return nil
}

func (s *memStore) Pending(ctx context.Context, limit int) ([]domain.Measurement, error) {
	var out []domain.Measurement
	for _, m := range s.rows {
		if s.pending(m.ID) && len(out) < limit {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *memStore) MarkUploaded(ctx context.Context, ids []string) error {
	for _, id := range ids {
		s.uploaded[id] = true
	}
	return nil
}

func (s *memStore) MarkRejected(ctx context.Context, ids []string) error {
	for _, id := range ids {
		s.rejected[id] = true
	}
	return nil
}

func (s *memStore) pending(id string) bool {
	return !s.uploaded[id] && !s.rejected[id]
}

func (s *memStore) PendingCount(ctx context.Context) (int, error) {
	n := 0
	for _, m := range s.rows {
		if s.pending(m.ID) {
			n++
		}
	}
	return n, nil
}

func (s *memStore) Purge(ctx context.Context, cutoff time.Time) (int, error) {
	s.purged = cutoff
	n := 0
	var keep []domain.Measurement
	for _, m := range s.rows {
		if !s.pending(m.ID) {
			n++
			continue
		}
		keep = append(keep, m)
	}
	s.rows = keep
	return n, nil
}

func (s *memStore) UploadedIDs() []string {
	var ids []string
	for id := range s.uploaded {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func testMeasurement(cell int64) domain.Measurement {
	return domain.Measurement{
		MCC: 260, MNC: 2, LAC: 1234, CellID: cell,
		Longitude: 21, Latitude: 52, Signal: -85,
		MeasuredAt: time.UnixMilli(1700000000000).UTC(),
		Radio:      domain.RadioLTE,
	}
}

var nopLogger = log.NewNoopLogger()
