package storage

import (
	"context"
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shohag/hookbridge/internal/models"
)

type SQLiteStorage struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return &SQLiteStorage{db: db}, nil
}

func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS events (
			id TEXT PRIMARY KEY,
			event_id TEXT NOT NULL UNIQUE,
			event_type TEXT NOT NULL,
			role TEXT NOT NULL,
			payload TEXT NOT NULL,
			received_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_type ON events(event_type)`,
		`CREATE INDEX IF NOT EXISTS idx_events_role ON events(role)`,
	}

	for _, q := range queries {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func (s *SQLiteStorage) RecordEvent(ctx context.Context, ev *models.Event) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO events (id, event_id, event_type, role, payload, received_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		ev.ID, ev.EventID, ev.EventType, string(ev.Role), string(ev.Payload), ev.ReceivedAt,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *SQLiteStorage) GetEventByEventID(ctx context.Context, eventID string) (*models.Event, error) {
	var ev models.Event
	var role, payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, event_id, event_type, role, payload, received_at FROM events WHERE event_id = ?`, eventID,
	).Scan(&ev.ID, &ev.EventID, &ev.EventType, &role, &payload, &ev.ReceivedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	ev.Role = models.Role(role)
	ev.Payload = []byte(payload)
	return &ev, nil
}

func (s *SQLiteStorage) ListEvents(ctx context.Context, limit, offset int) ([]models.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, event_id, event_type, role, payload, received_at FROM events
		 ORDER BY received_at DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var ev models.Event
		var role, payload string
		if err := rows.Scan(&ev.ID, &ev.EventID, &ev.EventType, &role, &payload, &ev.ReceivedAt); err != nil {
			return nil, err
		}
		ev.Role = models.Role(role)
		ev.Payload = []byte(payload)
		events = append(events, ev)
	}
	return events, rows.Err()
}

func (s *SQLiteStorage) CountEvents(ctx context.Context) (*Counts, error) {
	var c Counts
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*),
			COALESCE(SUM(role = 'customer'), 0),
			COALESCE(SUM(role = 'subscription'), 0),
			COALESCE(SUM(role = 'payment'), 0)
		 FROM events`,
	).Scan(&c.Total, &c.Customer, &c.Subscription, &c.Payment)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
