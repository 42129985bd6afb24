// Package store wraps SQLite access for page visits and cached AI
// summaries.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Store owns the database handle. Visits are append-only; summaries are
// written once per proposal and treated as immutable.
type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS page_visits (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            eip_no INTEGER NOT NULL,
            family TEXT,
            created_at TIMESTAMP NOT NULL
        );`,
		`CREATE INDEX IF NOT EXISTS idx_page_visits_created ON page_visits(created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_page_visits_no ON page_visits(eip_no);`,
		`CREATE TABLE IF NOT EXISTS ai_summaries (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            eip_no INTEGER NOT NULL,
            summary TEXT NOT NULL,
            eip_status TEXT NOT NULL,
            created_at TIMESTAMP NOT NULL
        );`,
		`CREATE INDEX IF NOT EXISTS idx_ai_summaries_no ON ai_summaries(eip_no);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// SummaryRecord is a cached AI summary for one proposal.
type SummaryRecord struct {
	EIPNo     int       `json:"eipNo"`
	Summary   string    `json:"summary"`
	EIPStatus string    `json:"eipStatus"`
	CreatedAt time.Time `json:"createdAt"`
}

// TrendingEntry is one row of the top-visited ranking. The field names
// mirror the aggregation output the frontend already consumes.
type TrendingEntry struct {
	EIPNo int `json:"_id"`
	Count int `json:"count"`
}

// LogVisit appends one page-visit event.
func (s *Store) LogVisit(ctx context.Context, eipNo int, family string, at time.Time) error {
	var fam any
	if family != "" {
		fam = family
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO page_visits(eip_no, family, created_at) VALUES(?, ?, ?)`,
		eipNo, fam, at.UTC())
	return err
}

// TopVisited ranks proposals by visit count since the cutoff, count
// descending. Ties break on ascending proposal number so the ranking is
// stable across runs.
func (s *Store) TopVisited(ctx context.Context, since time.Time, limit int) ([]TrendingEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT eip_no, COUNT(*) AS visits
         FROM page_visits
         WHERE created_at >= ?
         GROUP BY eip_no
         ORDER BY visits DESC, eip_no ASC
         LIMIT ?`, since.UTC(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	entries := []TrendingEntry{}
	for rows.Next() {
		var e TrendingEntry
		if err := rows.Scan(&e.EIPNo, &e.Count); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// FindSummary returns the cached summary for a proposal, or nil when none
// exists. If the check-then-create race ever produced duplicates, the
// oldest row wins consistently.
func (s *Store) FindSummary(ctx context.Context, eipNo int) (*SummaryRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT eip_no, summary, eip_status, created_at
         FROM ai_summaries WHERE eip_no = ?
         ORDER BY created_at ASC LIMIT 1`, eipNo)
	var rec SummaryRecord
	switch err := row.Scan(&rec.EIPNo, &rec.Summary, &rec.EIPStatus, &rec.CreatedAt); err {
	case nil:
		return &rec, nil
	case sql.ErrNoRows:
		return nil, nil
	default:
		return nil, err
	}
}

// SaveSummary stores a freshly generated summary.
func (s *Store) SaveSummary(ctx context.Context, rec SummaryRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ai_summaries(eip_no, summary, eip_status, created_at) VALUES(?, ?, ?, ?)`,
		rec.EIPNo, rec.Summary, rec.EIPStatus, rec.CreatedAt.UTC())
	return err
}

// Health returns an error if the database is not reachable.
func (s *Store) Health(ctx context.Context) error {
	row := s.db.QueryRowContext(ctx, `SELECT 1`)
	var v int
	if err := row.Scan(&v); err != nil {
		return fmt.Errorf("db health: %w", err)
	}
	return nil
}
