// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/danielhkuo/tallykit/election"
)

var (
	ErrUnknownDriver = errors.New("database type must be sqlite or postgres")
	ErrRunNotFound   = errors.New("run not found")
)

// Store persists finished election runs: one run row plus one
// round_snapshot row per round, payload serialized as JSON.
type Store struct {
	db *sql.DB
}

// Open connects to the configured database. dbType selects the driver:
// "sqlite" (pure-Go driver, also used in-memory by tests) or "postgres".
func Open(dbType, url string) (*Store, error) {
	var driver string
	switch dbType {
	case "sqlite":
		driver = "sqlite"
	case "postgres":
		driver = "postgres"
	default:
		return nil, fmt.Errorf("%w: got %q", ErrUnknownDriver, dbType)
	}

	db, err := sql.Open(driver, url)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error { return s.db.Close() }

// Init creates all tables needed for run persistence.
// Safe to call multiple times - uses IF NOT EXISTS.
func (s *Store) Init() error {
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

const schema = `
-- Finished election runs
CREATE TABLE IF NOT EXISTS run (
    id TEXT PRIMARY KEY,
    method TEXT NOT NULL,
    seats INTEGER NOT NULL,
    seed TEXT,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_run_method ON run(method);

-- One snapshot per round, payload is the round's JSON record
CREATE TABLE IF NOT EXISTS round_snapshot (
    id TEXT PRIMARY KEY,
    run_id TEXT NOT NULL REFERENCES run(id) ON DELETE CASCADE,
    number INTEGER NOT NULL,
    payload TEXT NOT NULL,
    UNIQUE (run_id, number)
);

CREATE INDEX IF NOT EXISTS idx_round_snapshot_run_id ON round_snapshot(run_id);
`

// RunMeta describes one stored run.
type RunMeta struct {
	ID        string
	Method    election.Method
	Seats     int
	Seed      *int64
	CreatedAt time.Time
}

// SaveRun persists an outcome under a fresh uuid and returns the run id.
func (s *Store) SaveRun(out *election.Outcome, seed *int64) (string, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("starting save transaction: %w", err)
	}
	defer tx.Rollback()

	runID := uuid.NewString()
	var seedVal sql.NullString
	if seed != nil {
		seedVal = sql.NullString{String: fmt.Sprintf("%d", *seed), Valid: true}
	}
	_, err = tx.Exec(
		`INSERT INTO run (id, method, seats, seed, created_at) VALUES ($1, $2, $3, $4, $5)`,
		runID, string(out.Method()), out.Seats(), seedVal, time.Now().UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}

	for _, rec := range out.Records() {
		payload, err := json.Marshal(rec)
		if err != nil {
			return "", fmt.Errorf("encoding round %d: %w", rec.Number, err)
		}
		_, err = tx.Exec(
			`INSERT INTO round_snapshot (id, run_id, number, payload) VALUES ($1, $2, $3, $4)`,
			uuid.NewString(), runID, rec.Number, string(payload),
		)
		if err != nil {
			return "", fmt.Errorf("inserting round %d: %w", rec.Number, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing run: %w", err)
	}
	slog.Info("run saved", "run_id", runID, "method", out.Method(), "rounds", out.NumRounds())
	return runID, nil
}

// LoadRun restores the serialized rounds of a stored run, in round order,
// for replay comparison.
func (s *Store) LoadRun(runID string) ([]election.Record, error) {
	var exists int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM run WHERE id = $1`, runID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("looking up run: %w", err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}

	rows, err := s.db.Query(
		`SELECT payload FROM round_snapshot WHERE run_id = $1 ORDER BY number`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying rounds: %w", err)
	}
	defer rows.Close()

	var records []election.Record
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scanning round: %w", err)
		}
		var rec election.Record
		if err := json.Unmarshal([]byte(payload), &rec); err != nil {
			return nil, fmt.Errorf("decoding round: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ListRuns returns stored run metadata, newest first.
func (s *Store) ListRuns() ([]RunMeta, error) {
	rows, err := s.db.Query(
		`SELECT id, method, seats, seed, created_at FROM run ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []RunMeta
	for rows.Next() {
		var (
			meta   RunMeta
			method string
			seed   sql.NullString
		)
		if err := rows.Scan(&meta.ID, &method, &meta.Seats, &seed, &meta.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		meta.Method = election.Method(method)
		if seed.Valid {
			var v int64
			if _, err := fmt.Sscanf(seed.String, "%d", &v); err != nil {
				return nil, fmt.Errorf("decoding seed %q: %w", seed.String, err)
			}
			meta.Seed = &v
		}
		runs = append(runs, meta)
	}
	return runs, rows.Err()
}
