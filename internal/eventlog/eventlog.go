// Package eventlog keeps a capped sqlite journal of poll events for the
// dashboard debug console. It stores operational events only, never device
// history or rate series.
package eventlog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/wrtmon/wrtmon/internal/model"
)

const DefaultLimit = 200

type Journal struct {
	db    *sql.DB
	limit int
}

func Open(ctx context.Context, dbPath string, limit int) (*Journal, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if limit <= 0 {
		limit = DefaultLimit
	}
	j := &Journal{db: db, limit: limit}
	if err := j.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return j, nil
}

func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

func (j *Journal) migrate(ctx context.Context) error {
	statements := []string{
		`PRAGMA journal_mode = WAL;`,
		`CREATE TABLE IF NOT EXISTS events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			poll_id TEXT NOT NULL,
			level TEXT NOT NULL,
			message TEXT NOT NULL,
			created_at TEXT NOT NULL
		);`,
	}
	for _, stmt := range statements {
		if _, err := j.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate failed: %w", err)
		}
	}
	return nil
}

// Append stores one event and prunes the journal down to its cap.
func (j *Journal) Append(ctx context.Context, event model.Event) error {
	createdAt := event.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO events (poll_id, level, message, created_at) VALUES (?, ?, ?, ?)`,
		event.PollID, event.Level, event.Message, createdAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return j.prune(ctx)
}

func (j *Journal) prune(ctx context.Context) error {
	_, err := j.db.ExecContext(ctx,
		`DELETE FROM events WHERE id NOT IN (SELECT id FROM events ORDER BY id DESC LIMIT ?)`,
		j.limit,
	)
	if err != nil {
		return fmt.Errorf("prune events: %w", err)
	}
	return nil
}

// Recent returns up to limit events, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]model.Event, error) {
	if limit <= 0 || limit > j.limit {
		limit = j.limit
	}
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, poll_id, level, message, created_at FROM events ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]model.Event, 0, limit)
	for rows.Next() {
		var event model.Event
		var createdAt string
		if err := rows.Scan(&event.ID, &event.PollID, &event.Level, &event.Message, &createdAt); err != nil {
			return nil, err
		}
		if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			event.CreatedAt = ts.UTC()
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// Clear truncates the journal.
func (j *Journal) Clear(ctx context.Context) error {
	if _, err := j.db.ExecContext(ctx, `DELETE FROM events`); err != nil {
		return fmt.Errorf("clear events: %w", err)
	}
	return nil
}
