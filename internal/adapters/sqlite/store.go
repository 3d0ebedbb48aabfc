// Package sqlite buffers measurements in a local SQLite database until they
// have been uploaded.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/bft-labs/towership/internal/domain"
	"github.com/bft-labs/towership/pkg/log"
)

const schema = `
	CREATE TABLE IF NOT EXISTS measurements (
		id          TEXT PRIMARY KEY,
		mcc         INTEGER NOT NULL,
		mnc         INTEGER NOT NULL,
		lac         INTEGER NOT NULL,
		cell_id     INTEGER NOT NULL,
		lon         REAL NOT NULL,
		lat         REAL NOT NULL,
		signal      INTEGER NOT NULL,
		measured_at INTEGER NOT NULL,
		rating      REAL NOT NULL,
		speed       REAL NOT NULL,
		direction   REAL NOT NULL,
		radio       TEXT NOT NULL,
		stored_at   INTEGER NOT NULL,
		uploaded    INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_measurements_uploaded ON measurements(uploaded, stored_at);
`

// Values of the uploaded column.
const (
	statusPending  = 0
	statusUploaded = 1
	statusRejected = 2
)

// Store implements ports.MeasurementStore.
type Store struct {
	db     *sql.DB
	logger log.Logger
	now    func() time.Time
}

// Open opens or creates the database at path.
func Open(path string, logger log.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create buffer directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open buffer: %w", err)
	}
	// One writer at a time keeps SQLite away from "database is locked".
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping buffer: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate buffer: %w", err)
	}

	return &Store{db: db, logger: logger, now: time.Now}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Store inserts measurements in one transaction. IDs are assigned in place.
func (s *Store) Store(ctx context.Context, ms []domain.Measurement) error {
	if len(ms) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin store: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO measurements
			(id, mcc, mnc, lac, cell_id, lon, lat, signal, measured_at, rating, speed, direction, radio, stored_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare store: %w", err)
	}
	defer stmt.Close()

	storedAt := s.now().UnixMilli()
	for i := range ms {
		m := &ms[i]
		if m.ID == "" {
			m.ID = uuid.NewString()
		}
		if _, err := stmt.ExecContext(ctx,
			m.ID, m.MCC, m.MNC, m.LAC, m.CellID, m.Longitude, m.Latitude, m.Signal,
			m.MeasuredAt.UnixMilli(), m.Rating, m.Speed, m.Direction, m.Radio, storedAt,
		); err != nil {
			return fmt.Errorf("store measurement %s: %w", m.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit store: %w", err)
	}
	s.logger.Debug("measurements buffered", log.Int("count", len(ms)))
	return nil
}

// Pending returns up to limit measurements not yet uploaded, oldest first.
func (s *Store) Pending(ctx context.Context, limit int) ([]domain.Measurement, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, mcc, mnc, lac, cell_id, lon, lat, signal, measured_at, rating, speed, direction, radio
		FROM measurements
		WHERE uploaded = ?
		ORDER BY stored_at ASC, measured_at ASC
		LIMIT ?`, statusPending, limit)
	if err != nil {
		return nil, fmt.Errorf("query pending: %w", err)
	}
	defer rows.Close()

	var out []domain.Measurement
	for rows.Next() {
		var (
			m          domain.Measurement
			measuredAt int64
		)
		if err := rows.Scan(&m.ID, &m.MCC, &m.MNC, &m.LAC, &m.CellID, &m.Longitude, &m.Latitude,
			&m.Signal, &measuredAt, &m.Rating, &m.Speed, &m.Direction, &m.Radio); err != nil {
			return nil, fmt.Errorf("scan pending: %w", err)
		}
		m.MeasuredAt = time.UnixMilli(measuredAt).UTC()
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending: %w", err)
	}
	return out, nil
}

// MarkUploaded flags the given measurements as uploaded.
func (s *Store) MarkUploaded(ctx context.Context, ids []string) error {
	if err := s.setStatus(ctx, ids, statusUploaded); err != nil {
		return fmt.Errorf("mark uploaded: %w", err)
	}
	return nil
}

// MarkRejected takes the given measurements out of the pending set without
// counting them as uploaded.
func (s *Store) MarkRejected(ctx context.Context, ids []string) error {
	if err := s.setStatus(ctx, ids, statusRejected); err != nil {
		return fmt.Errorf("mark rejected: %w", err)
	}
	return nil
}

func (s *Store) setStatus(ctx context.Context, ids []string, status int) error {
	if len(ids) == 0 {
		return nil
	}
	args := make([]interface{}, 0, len(ids)+1)
	args = append(args, status)
	for _, id := range ids {
		args = append(args, id)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	query := "UPDATE measurements SET uploaded = ? WHERE id IN (" + placeholders + ")"
	_, err := s.db.ExecContext(ctx, query, args...)
	return err
}

// PendingCount returns the number of measurements not yet uploaded.
func (s *Store) PendingCount(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM measurements WHERE uploaded = ?", statusPending).Scan(&n); err != nil {
		return 0, fmt.Errorf("count pending: %w", err)
	}
	return n, nil
}

// Purge deletes uploaded and rejected measurements stored before cutoff.
func (s *Store) Purge(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM measurements WHERE uploaded <> ? AND stored_at < ?", statusPending, cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("purge: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge: %w", err)
	}
	return int(n), nil
}
