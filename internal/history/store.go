// Package history keeps a small SQLite ledger of dataset assembly runs so a
// dataset on disk can be traced back to the exports, split and seed that
// produced it.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// DefaultDir is the history directory inside the work directory.
const DefaultDir = ".yolocustom"

// DBName is the history database file name.
const DBName = "history.db"

// timeFormat sorts lexically in time order.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// ErrNotFound is returned by Get for an unknown run id.
var ErrNotFound = errors.New("run not found")

// Run is one recorded assembly run.
type Run struct {
	ID           string
	Config       string
	FinishedAt   time.Time
	Exports      []string
	Train        int
	Val          int
	NC           int
	Names        []string
	ManifestPath string
	Seed         *uint64
}

// Store manages the run history database.
type Store struct {
	db     *sql.DB
	dbPath string
	mu     sync.Mutex
}

// NewStore creates or opens the history database inside dir.
func NewStore(dir string) (*Store, error) {
	dbPath := filepath.Join(dir, DBName)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{
		db:     db,
		dbPath: dbPath,
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		config TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		exports_json TEXT NOT NULL,
		train INTEGER NOT NULL,
		val INTEGER NOT NULL,
		nc INTEGER NOT NULL,
		names_json TEXT NOT NULL,
		manifest_path TEXT NOT NULL,
		seed TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_runs_finished ON runs(finished_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Record stores a run. FinishedAt defaults to now.
func (s *Store) Record(ctx context.Context, r Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.ID == "" {
		return fmt.Errorf("run id required")
	}
	if r.FinishedAt.IsZero() {
		r.FinishedAt = time.Now()
	}

	exportsJSON, err := json.Marshal(nonNil(r.Exports))
	if err != nil {
		return fmt.Errorf("failed to encode exports: %w", err)
	}
	namesJSON, err := json.Marshal(nonNil(r.Names))
	if err != nil {
		return fmt.Errorf("failed to encode names: %w", err)
	}

	var seed sql.NullString
	if r.Seed != nil {
		seed = sql.NullString{String: strconv.FormatUint(*r.Seed, 10), Valid: true}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (id, config, finished_at, exports_json, train, val, nc,
			names_json, manifest_path, seed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.Config, r.FinishedAt.UTC().Format(timeFormat), string(exportsJSON),
		r.Train, r.Val, r.NC, string(namesJSON), r.ManifestPath, seed)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// List returns the most recent runs first. A limit <= 0 returns all runs.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `SELECT id, config, finished_at, exports_json, train, val, nc,
		names_json, manifest_path, seed FROM runs ORDER BY finished_at DESC, id`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

// Get returns the run with the given id.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.db.QueryRowContext(ctx, `SELECT id, config, finished_at, exports_json,
		train, val, nc, names_json, manifest_path, seed FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return r, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*Run, error) {
	var (
		r           Run
		finishedAt  string
		exportsJSON string
		namesJSON   string
		seed        sql.NullString
	)
	err := sc.Scan(&r.ID, &r.Config, &finishedAt, &exportsJSON, &r.Train, &r.Val,
		&r.NC, &namesJSON, &r.ManifestPath, &seed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to read run: %w", err)
	}

	if r.FinishedAt, err = time.Parse(timeFormat, finishedAt); err != nil {
		return nil, fmt.Errorf("run %s: bad timestamp: %w", r.ID, err)
	}
	if err := json.Unmarshal([]byte(exportsJSON), &r.Exports); err != nil {
		return nil, fmt.Errorf("run %s: bad exports: %w", r.ID, err)
	}
	if err := json.Unmarshal([]byte(namesJSON), &r.Names); err != nil {
		return nil, fmt.Errorf("run %s: bad names: %w", r.ID, err)
	}
	if seed.Valid {
		v, err := strconv.ParseUint(seed.String, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("run %s: bad seed: %w", r.ID, err)
		}
		r.Seed = &v
	}
	return &r, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
