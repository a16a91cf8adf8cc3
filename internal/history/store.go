// Package history records every document written by the editor in sqlite.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Operation names the kind of document operation that produced an output.
type Operation string

const (
	OpMerge  Operation = "merge"
	OpDelete Operation = "delete"
	OpRotate Operation = "rotate"
)

type Entry struct {
	ID        int64
	Operation Operation
	Sources   []string
	Output    string
	Detail    string
	CreatedAt time.Time
}

type Store struct {
	db *sql.DB
}

func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS outputs (
  id         INTEGER PRIMARY KEY AUTOINCREMENT,
  operation  TEXT NOT NULL,
  sources    TEXT NOT NULL,
  output     TEXT NOT NULL,
  created_at INTEGER NOT NULL
);
`)
	if err != nil {
		return err
	}
	return s.ensureColumn("detail", "TEXT")
}

func (s *Store) ensureColumn(name, typ string) error {
	query := fmt.Sprintf(`ALTER TABLE outputs ADD COLUMN %s %s`, name, typ)
	_, err := s.db.Exec(query)
	if err != nil {
		errLower := strings.ToLower(err.Error())
		if strings.Contains(errLower, "duplicate column name") {
			return nil
		}
	}
	return err
}

// Record stores e and returns its id. A zero CreatedAt is set to now.
func (s *Store) Record(ctx context.Context, e Entry) (int64, error) {
	if strings.TrimSpace(e.Output) == "" {
		return 0, fmt.Errorf("history entry has no output path")
	}
	created := e.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	sources, err := joinSources(e.Sources)
	if err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx, `
INSERT INTO outputs (operation, sources, output, detail, created_at)
VALUES (?, ?, ?, ?, ?)`,
		string(e.Operation), sources, e.Output, e.Detail, created.UnixNano(),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, operation, sources, output, IFNULL(detail, ''), created_at
  FROM outputs
 ORDER BY created_at DESC, id DESC
 LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]Entry, 0, limit)
	for rows.Next() {
		var (
			e       Entry
			op      string
			sources string
			created int64
		)
		if err := rows.Scan(&e.ID, &op, &sources, &e.Output, &e.Detail, &created); err != nil {
			return nil, err
		}
		e.Operation = Operation(op)
		if e.Sources, err = splitSources(sources); err != nil {
			return nil, err
		}
		e.CreatedAt = time.Unix(0, created)
		results = append(results, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// sources are stored as a JSON array so any path survives the round trip
func joinSources(paths []string) (string, error) {
	if paths == nil {
		paths = []string{}
	}
	data, err := json.Marshal(paths)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func splitSources(raw string) ([]string, error) {
	if raw == "" || raw == "[]" {
		return nil, nil
	}
	var paths []string
	if err := json.Unmarshal([]byte(raw), &paths); err != nil {
		return nil, fmt.Errorf("decode sources: %w", err)
	}
	return paths, nil
}
