// Package history keeps a log of finished conversions in sqlite. It records
// statistics only; duplicate tracking never outlives a run.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/nconklindev/pricesheet/internal/types"

	_ "modernc.org/sqlite"
)

type Store struct {
	conn *sql.DB
}

// Run is one recorded conversion.
type Run struct {
	ID         int64
	InputFile  string
	OutputFile string
	Format     types.Format
	Stats      types.Stats
	FinishedAt time.Time
}

func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	s := &Store{conn: conn}
	if err := s.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  inputFile TEXT NOT NULL,
  outputFile TEXT NOT NULL,
  format TEXT NOT NULL,
  totalRead INTEGER NOT NULL,
  blank INTEGER NOT NULL,
  invalid INTEGER NOT NULL,
  duplicate INTEGER NOT NULL,
  admitted INTEGER NOT NULL,
  emptyLines INTEGER NOT NULL,
  columns INTEGER NOT NULL,
  durationMs INTEGER NOT NULL,
  finishedAt TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_finishedAt ON runs(finishedAt);
`
	_, err := s.conn.Exec(schema)
	return err
}

// Record stores a finished conversion and returns its id
func (s *Store) Record(res *types.ConversionResult) (int64, error) {
	finished := res.FinishedAt
	if finished.IsZero() {
		finished = time.Now()
	}
	st := res.Stats
	out, err := s.conn.Exec(`
INSERT INTO runs (inputFile, outputFile, format, totalRead, blank, invalid, duplicate, admitted, emptyLines, columns, durationMs, finishedAt)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.InputFile, res.OutputFile, string(res.Format),
		st.TotalRead, st.Blank, st.Invalid, st.Duplicate, st.Admitted, st.EmptyLines, st.Columns,
		st.Duration.Milliseconds(), finished.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("record run: %w", err)
	}
	return out.LastInsertId()
}

// Recent returns up to limit runs, newest first
func (s *Store) Recent(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.conn.Query(`
SELECT id, inputFile, outputFile, format, totalRead, blank, invalid, duplicate, admitted, emptyLines, columns, durationMs, finishedAt
FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var format, finished string
		var durationMs int64
		if err := rows.Scan(&r.ID, &r.InputFile, &r.OutputFile, &format,
			&r.Stats.TotalRead, &r.Stats.Blank, &r.Stats.Invalid, &r.Stats.Duplicate, &r.Stats.Admitted,
			&r.Stats.EmptyLines, &r.Stats.Columns, &durationMs, &finished); err != nil {
			return nil, err
		}
		r.Format = types.Format(format)
		r.Stats.Duration = time.Duration(durationMs) * time.Millisecond
		r.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished)
		out = append(out, r)
	}
	return out, rows.Err()
}
