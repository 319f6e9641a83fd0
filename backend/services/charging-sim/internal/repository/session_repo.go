package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"chargesim/backend/services/charging-sim/internal/models"
)

// ErrSessionNotFound indicates the journal has no row for the session.
var ErrSessionNotFound = errors.New("session not found")

const schema = `
	CREATE TABLE IF NOT EXISTS charging_sessions (
		session_id     TEXT PRIMARY KEY,
		station_id     TEXT NOT NULL,
		connector_id   TEXT NOT NULL,
		status         TEXT NOT NULL,
		start_time     TIMESTAMPTZ,
		kwh_delivered  DOUBLE PRECISION NOT NULL DEFAULT 0,
		duration       DOUBLE PRECISION NOT NULL DEFAULT 0,
		completion     TEXT,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)
`

// JournalEntry is a session row as persisted.
type JournalEntry struct {
	Session    models.ChargingSession
	Completion string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// SessionRepository journals session transitions to postgres. It is write
// only from the API's point of view; nothing is restored from it on startup.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository returns repository.
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// EnsureSchema creates the journal table when it does not exist yet.
func (r *SessionRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure charging_sessions schema: %w", err)
	}
	return nil
}

// Record upserts the latest state of a session.
func (r *SessionRepository) Record(ctx context.Context, session models.ChargingSession, completion string) error {
	const query = `
		INSERT INTO charging_sessions (session_id, station_id, connector_id, status, start_time, kwh_delivered, duration, completion, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), NOW(), NOW())
		ON CONFLICT (session_id) DO UPDATE SET
			status = EXCLUDED.status,
			start_time = EXCLUDED.start_time,
			kwh_delivered = EXCLUDED.kwh_delivered,
			duration = EXCLUDED.duration,
			completion = COALESCE(EXCLUDED.completion, charging_sessions.completion),
			updated_at = NOW()
	`
	var startTime sql.NullTime
	if session.StartTime != nil {
		startTime = sql.NullTime{Time: *session.StartTime, Valid: true}
	}
	_, err := r.db.ExecContext(ctx, query,
		session.ID,
		session.StationID,
		session.ConnectorID,
		string(session.Status),
		startTime,
		session.KWhDelivered,
		session.Duration,
		completion,
	)
	if err != nil {
		return fmt.Errorf("record session %s: %w", session.ID, err)
	}
	return nil
}

// Get returns the journaled row for a session.
func (r *SessionRepository) Get(ctx context.Context, sessionID string) (JournalEntry, error) {
	const query = `
		SELECT session_id, station_id, connector_id, status, start_time, kwh_delivered, duration, COALESCE(completion, ''), created_at, updated_at
		FROM charging_sessions
		WHERE session_id = $1
	`
	var (
		entry     JournalEntry
		status    string
		startTime sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, query, sessionID).Scan(
		&entry.Session.ID,
		&entry.Session.StationID,
		&entry.Session.ConnectorID,
		&status,
		&startTime,
		&entry.Session.KWhDelivered,
		&entry.Session.Duration,
		&entry.Completion,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return JournalEntry{}, ErrSessionNotFound
	}
	if err != nil {
		return JournalEntry{}, err
	}
	entry.Session.Status = models.SessionStatus(status)
	if startTime.Valid {
		t := startTime.Time
		entry.Session.StartTime = &t
	}
	return entry, nil
}

// Name implements events.Sink.
func (r *SessionRepository) Name() string { return "postgres" }

// Handle implements events.Sink.
func (r *SessionRepository) Handle(ctx context.Context, event models.SessionEvent) error {
	return r.Record(ctx, event.Session, event.Reason)
}
