package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists archive history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS export_runs (
			id          TEXT PRIMARY KEY,
			timestamp   INTEGER NOT NULL,
			date        TEXT NOT NULL,
			start_time  TEXT,
			end_time    TEXT,
			status      TEXT NOT NULL,
			series      INTEGER,
			up_count    INTEGER,
			down_count  INTEGER,
			records     INTEGER,
			files       TEXT,
			note        TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_export_date ON export_runs(date)`,
		`CREATE INDEX IF NOT EXISTS idx_export_ts ON export_runs(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordExport(run *ExportRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.At.IsZero() {
		run.At = time.Now()
	}
	_, err := r.db.Exec(`INSERT INTO export_runs
		(id, timestamp, date, start_time, end_time, status, series, up_count, down_count, records, files, note)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		run.ID, run.At.UnixNano(), run.Date, run.Start, run.End, run.Status,
		run.Series, run.Up, run.Down, run.Records,
		strings.Join(run.Files, "\n"), run.Note,
	)
	return err
}

func (r *SQLiteRecorder) ArchivedDates() (map[string]bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT DISTINCT date FROM export_runs WHERE status IN (?, ?)`, StatusOK, StatusEmpty)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	dates := make(map[string]bool)
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates[d] = true
	}
	return dates, rows.Err()
}

func (r *SQLiteRecorder) RecentExports(limit int) ([]ExportRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT id, timestamp, date, start_time, end_time, status,
		series, up_count, down_count, records, files, note
		FROM export_runs ORDER BY timestamp DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []ExportRun
	for rows.Next() {
		var run ExportRun
		var ts int64
		var files string
		if err := rows.Scan(&run.ID, &ts, &run.Date, &run.Start, &run.End, &run.Status,
			&run.Series, &run.Up, &run.Down, &run.Records, &files, &run.Note); err != nil {
			return nil, err
		}
		run.At = time.Unix(0, ts)
		if files != "" {
			run.Files = strings.Split(files, "\n")
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
