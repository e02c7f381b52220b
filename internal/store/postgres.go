// Package store persists event records to Postgres for offline analysis.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"nbpulse/internal/event"
	"nbpulse/internal/stats"
)

// Open opens a Postgres connection using the given DSN. Caller must call
// Close when done.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Store reads and writes event records.
type Store struct {
	db *sql.DB
}

// New returns a store over db.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// CreateSchema creates the event_records table if it does not exist.
func (s *Store) CreateSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS event_records (
			id         BIGSERIAL PRIMARY KEY,
			identity   TEXT        NOT NULL,
			event_name TEXT        NOT NULL,
			notebook   TEXT        NOT NULL DEFAULT '',
			properties JSONB       NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("store: create schema: %w", err)
	}
	return nil
}

// SaveBatch inserts records in one transaction.
func (s *Store) SaveBatch(ctx context.Context, records []*event.Record) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO event_records (identity, event_name, notebook, properties, created_at)
		VALUES ($1, $2, $3, $4, $5)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, rec := range records {
		props, err := json.Marshal(rec.Properties)
		if err != nil {
			return fmt.Errorf("store: marshal properties: %w", err)
		}
		createdAt := rec.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		if _, err := stmt.ExecContext(ctx,
			rec.Identity, string(rec.Name), rec.Properties["notebook_name"], props, createdAt,
		); err != nil {
			return fmt.Errorf("store: insert record: %w", err)
		}
	}
	return tx.Commit()
}

// Summary computes the same aggregates stats.Compute produces, in SQL.
func (s *Store) Summary(ctx context.Context) (*stats.Summary, error) {
	sum := &stats.Summary{ByEvent: make(map[string]int)}

	var first, last sql.NullTime
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(DISTINCT identity),
		       COUNT(DISTINCT notebook) FILTER (WHERE notebook <> ''),
		       MIN(created_at), MAX(created_at)
		FROM event_records`,
	).Scan(&sum.Total, &sum.Identities, &sum.Notebooks, &first, &last)
	if err != nil {
		return nil, fmt.Errorf("store: summary: %w", err)
	}
	if first.Valid {
		sum.First = first.Time
	}
	if last.Valid {
		sum.Last = last.Time
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT event_name, COUNT(*) FROM event_records GROUP BY event_name`)
	if err != nil {
		return nil, fmt.Errorf("store: summary by event: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		var n int
		if err := rows.Scan(&name, &n); err != nil {
			return nil, err
		}
		sum.ByEvent[name] = n
	}
	return sum, rows.Err()
}
