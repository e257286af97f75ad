package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Record is one stored research run.
type Record struct {
	ID          string    `json:"id"`
	Query       string    `json:"query"`
	Summary     string    `json:"summary"`
	KeyFindings []string  `json:"key_findings"`
	Sources     []string  `json:"sources"`
	Provider    string    `json:"provider"`
	CreatedAt   time.Time `json:"created_at"`
}

// Store keeps past research runs in a local SQLite database.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open opens the SQLite-backed history store at the given path.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	s := &Store{db: db}

	if err := s.init(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return s, nil
}

func (s *Store) init() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS research_runs (
			id            TEXT PRIMARY KEY,
			query         TEXT NOT NULL,
			summary       TEXT,
			key_findings  TEXT,
			sources       TEXT,
			provider      TEXT,
			created_at    TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_runs_created ON research_runs(created_at);
		CREATE INDEX IF NOT EXISTS idx_runs_query ON research_runs(query);
	`)
	return err
}

// Save inserts a research run. A missing ID gets generated.
func (s *Store) Save(ctx context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO research_runs (id, query, summary, key_findings, sources, provider, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.Query, rec.Summary, toJSON(rec.KeyFindings), toJSON(rec.Sources),
		rec.Provider, rec.CreatedAt.Format(time.RFC3339))
	return err
}

// Get returns the run with the given id, or nil when none exists.
func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, query, summary, key_findings, sources, provider, created_at
		FROM research_runs
		WHERE id = ?
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records, err := scanRecords(rows)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

// Recent returns the most recent research runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, query, summary, key_findings, sources, provider, created_at
		FROM research_runs
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRecords(rows)
}

// Search returns runs whose query or summary contains the keyword.
func (s *Store) Search(ctx context.Context, keyword string, limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, query, summary, key_findings, sources, provider, created_at
		FROM research_runs
		WHERE query LIKE ? OR summary LIKE ?
		ORDER BY created_at DESC
		LIMIT ?
	`, "%"+keyword+"%", "%"+keyword+"%", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	var records []Record
	for rows.Next() {
		var rec Record
		var findings, sources sql.NullString
		var createdAt string

		err := rows.Scan(&rec.ID, &rec.Query, &rec.Summary, &findings, &sources, &rec.Provider, &createdAt)
		if err != nil {
			return nil, err
		}

		if findings.Valid {
			_ = fromJSON(findings.String, &rec.KeyFindings)
		}
		if sources.Valid {
			_ = fromJSON(sources.String, &rec.Sources)
		}
		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			rec.CreatedAt = t
		}

		records = append(records, rec)
	}

	return records, rows.Err()
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func toJSON(v interface{}) string {
	if v == nil {
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

func fromJSON(s string, v interface{}) error {
	if s == "" {
		return nil
	}
	return json.Unmarshal([]byte(s), v)
}
