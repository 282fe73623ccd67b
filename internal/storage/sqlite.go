// Package storage provides SQLite-based persistence for run history.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Store manages the SQLite database connection for run records.
type Store struct {
	db *sql.DB
}

// RunRecord summarizes one finished run of a script.
// It holds host timings only, never script state.
type RunRecord struct {
	ID          int64
	Script      string
	Origin      string // "local", "bench" or "ssh:<user>"
	StartedAt   time.Time
	Ticks       int
	LoadMs      float64
	InitMs      float64
	AvgFrameMs  float64
	AvgUpdateMs float64
	AvgDrawMs   float64
	Faults      int
	CreatedAt   time.Time
}

// FPS derives the average frame rate from AvgFrameMs.
func (r RunRecord) FPS() float64 {
	if r.AvgFrameMs <= 0 {
		return 0
	}
	return 1000 / r.AvgFrameMs
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	// Open database
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	// Run migrations
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			script TEXT NOT NULL,
			origin TEXT NOT NULL DEFAULT 'local',
			started_at INTEGER NOT NULL,
			ticks INTEGER NOT NULL DEFAULT 0,
			load_ms REAL NOT NULL DEFAULT 0,
			init_ms REAL NOT NULL DEFAULT 0,
			avg_frame_ms REAL NOT NULL DEFAULT 0,
			avg_update_ms REAL NOT NULL DEFAULT 0,
			avg_draw_ms REAL NOT NULL DEFAULT 0,
			faults INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_runs_script ON runs(script);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveRun records a finished run.
// Returns the ID of the inserted record.
func (s *Store) SaveRun(r RunRecord) (int64, error) {
	if r.Origin == "" {
		r.Origin = "local"
	}

	result, err := s.db.Exec(
		`INSERT INTO runs
		 (script, origin, started_at, ticks, load_ms, init_ms, avg_frame_ms, avg_update_ms, avg_draw_ms, faults)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Script,
		r.Origin,
		r.StartedAt.UnixMilli(),
		r.Ticks,
		r.LoadMs,
		r.InitMs,
		r.AvgFrameMs,
		r.AvgUpdateMs,
		r.AvgDrawMs,
		r.Faults,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

const runColumns = `id, script, origin, started_at, ticks, load_ms, init_ms,
		        avg_frame_ms, avg_update_ms, avg_draw_ms, faults, created_at`

// RecentRuns retrieves the most recent runs, newest first.
// An empty script matches every script.
func (s *Store) RecentRuns(script string, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	var (
		rows *sql.Rows
		err  error
	)
	if script == "" {
		rows, err = s.db.Query(
			`SELECT `+runColumns+`
			 FROM runs
			 ORDER BY id DESC
			 LIMIT ?`,
			limit,
		)
	} else {
		rows, err = s.db.Query(
			`SELECT `+runColumns+`
			 FROM runs
			 WHERE script = ?
			 ORDER BY id DESC
			 LIMIT ?`,
			script, limit,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return records, nil
}

// RunByID retrieves a single run. Returns nil if it does not exist.
func (s *Store) RunByID(id int64) (*RunRecord, error) {
	row := s.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = ?`, id)

	r, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// RunCount returns the number of runs stored for script, or for every
// script when script is empty.
func (s *Store) RunCount(script string) (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM runs WHERE ? = '' OR script = ?", script, script).Scan(&n); err != nil {
		return 0, fmt.Errorf("storage: cannot count runs: %w", err)
	}
	return n, nil
}

// Scripts returns the distinct script names that have runs, sorted.
func (s *Store) Scripts() ([]string, error) {
	rows, err := s.db.Query("SELECT DISTINCT script FROM runs ORDER BY script")
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query scripts: %w", err)
	}
	defer rows.Close()

	var scripts []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		scripts = append(scripts, name)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return scripts, nil
}

// ClearRuns deletes all runs for the given script, or every run when
// script is empty.
func (s *Store) ClearRuns(script string) error {
	_, err := s.db.Exec("DELETE FROM runs WHERE ? = '' OR script = ?", script, script)
	if err != nil {
		return fmt.Errorf("storage: cannot clear runs: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (RunRecord, error) {
	var (
		r         RunRecord
		startedAt int64
		createdAt any
	)
	err := row.Scan(
		&r.ID,
		&r.Script,
		&r.Origin,
		&startedAt,
		&r.Ticks,
		&r.LoadMs,
		&r.InitMs,
		&r.AvgFrameMs,
		&r.AvgUpdateMs,
		&r.AvgDrawMs,
		&r.Faults,
		&createdAt,
	)
	if err == sql.ErrNoRows {
		return r, err
	}
	if err != nil {
		return r, fmt.Errorf("storage: cannot scan row: %w", err)
	}

	r.StartedAt = time.UnixMilli(startedAt)

	// Parse the datetime - handle both time.Time and string
	switch v := createdAt.(type) {
	case time.Time:
		r.CreatedAt = v
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", v); err == nil {
			r.CreatedAt = parsed
		}
	}

	return r, nil
}
