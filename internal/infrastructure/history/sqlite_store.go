// Package history records one row per pipeline run, in SQLite when available
// and in a JSON-lines file otherwise.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Endromia-9027/CodeRefactorGPT/internal/domain"
	"github.com/Endromia-9027/CodeRefactorGPT/internal/ports"
)

// timestampLayout is fixed width so text ordering matches time ordering.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

const schema = `CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	timestamp TEXT NOT NULL,
	source TEXT,
	mode TEXT,
	provider TEXT,
	model TEXT,
	stage TEXT,
	syntax_ok INTEGER,
	runtime_ok INTEGER,
	timed_out INTEGER,
	semantic_ok INTEGER,
	refactor_path TEXT,
	refactor_written INTEGER,
	missing_packages INTEGER,
	exit_code INTEGER,
	elapsed_ms INTEGER
);`

// SQLiteStore persists run history in a SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// Open returns a SQLite store at path, or a JSON-lines store next to it when
// the database cannot be opened.
func Open(path string, logger ports.Logger) ports.HistoryRepository {
	store, err := NewSQLiteStore(path)
	if err == nil {
		return store
	}
	fallback := NewFileStore(strings.TrimSuffix(path, filepath.Ext(path)) + ".jsonl")
	if logger != nil {
		logger.Warn("history database unavailable, using file store", map[string]interface{}{
			"path":     path,
			"fallback": fallback.Path(),
			"error":    err.Error(),
		})
	}
	return fallback
}

// NewSQLiteStore creates (or opens) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init history db: %w", err)
	}
	return &SQLiteStore{db: db, path: path}, nil
}

// Record inserts a run.
func (s *SQLiteStore) Record(ctx context.Context, rec domain.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `INSERT INTO runs
		(id, timestamp, source, mode, provider, model, stage, syntax_ok, runtime_ok, timed_out,
		 semantic_ok, refactor_path, refactor_written, missing_packages, exit_code, elapsed_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.Timestamp.UTC().Format(timestampLayout),
		rec.SourcePath,
		string(rec.Mode),
		rec.Provider,
		rec.Model,
		string(rec.Stage),
		boolToInt(rec.SyntaxOK),
		boolToInt(rec.RuntimeOK),
		boolToInt(rec.TimedOut),
		boolToInt(rec.SemanticOK),
		rec.RefactorPath,
		boolToInt(rec.RefactorWritten),
		rec.MissingPackages,
		rec.ExitCode,
		rec.ElapsedMS,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// Recent returns the newest runs first; limit <= 0 returns everything.
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]domain.RunRecord, error) {
	query := `SELECT id, timestamp, source, mode, provider, model, stage, syntax_ok, runtime_ok, timed_out,
		semantic_ok, refactor_path, refactor_written, missing_packages, exit_code, elapsed_ms
		FROM runs ORDER BY timestamp DESC`
	var args []interface{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var records []domain.RunRecord
	for rows.Next() {
		var rec domain.RunRecord
		var ts, mode, stage string
		var syntaxOK, runtimeOK, timedOut, semanticOK, written int
		if err := rows.Scan(&rec.ID, &ts, &rec.SourcePath, &mode, &rec.Provider, &rec.Model, &stage,
			&syntaxOK, &runtimeOK, &timedOut, &semanticOK, &rec.RefactorPath, &written,
			&rec.MissingPackages, &rec.ExitCode, &rec.ElapsedMS); err != nil {
			return nil, err
		}
		if t, err := time.Parse(timestampLayout, ts); err == nil {
			rec.Timestamp = t
		}
		rec.Mode = domain.Mode(mode)
		rec.Stage = domain.Stage(stage)
		rec.SyntaxOK = syntaxOK == 1
		rec.RuntimeOK = runtimeOK == 1
		rec.TimedOut = timedOut == 1
		rec.SemanticOK = semanticOK == 1
		rec.RefactorWritten = written == 1
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Clear deletes all runs.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, "DELETE FROM runs")
	return err
}

// Path returns the sqlite database path.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

var _ ports.HistoryRepository = (*SQLiteStore)(nil)
