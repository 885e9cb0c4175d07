package analytics

import (
	"context"
	"database/sql"
	"fmt"
)

// Store persists session analytics in Postgres. All writes are single
// conditional upserts keyed on (tenant_id, visitor_id); there is no
// read-check-write anywhere, so concurrent turns cannot race.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// UpsertTurn records one visitor message: it creates the session row on
// first contact and increments the message count on every later turn, in a
// single atomic statement. first_message is set by the first counted turn
// and never changes after that; the session-start event creates the row
// with a zero count, so the conflict branch must still claim it.
func (s *Store) UpsertTurn(ctx context.Context, tenantID, visitorID, message string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO chat_sessions (tenant_id, visitor_id, first_message, last_message, messages_count, started_at, ended_at, updated_at)
		VALUES ($1, $2, $3, $3, 1, NOW(), NOW(), NOW())
		ON CONFLICT (tenant_id, visitor_id) DO UPDATE SET
		    messages_count = chat_sessions.messages_count + 1,
		    first_message = CASE WHEN chat_sessions.messages_count = 0
		                         THEN EXCLUDED.first_message
		                         ELSE chat_sessions.first_message END,
		    last_message = EXCLUDED.last_message,
		    ended_at = NOW(),
		    updated_at = NOW()`,
		tenantID, visitorID, message)
	if err != nil {
		return fmt.Errorf("analytics: failed to record turn: %w", err)
	}
	return nil
}

// UpsertVisitorInfo attaches a visitor's name and email to their session.
// The message count is untouched; the contact turn is counted by UpsertTurn
// like any other message.
func (s *Store) UpsertVisitorInfo(ctx context.Context, tenantID, visitorID, name, email string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO chat_sessions (tenant_id, visitor_id, visitor_name, visitor_email, messages_count, started_at, ended_at, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), 0, NOW(), NOW(), NOW())
		ON CONFLICT (tenant_id, visitor_id) DO UPDATE SET
		    visitor_name = COALESCE(NULLIF(EXCLUDED.visitor_name, ''), chat_sessions.visitor_name),
		    visitor_email = COALESCE(NULLIF(EXCLUDED.visitor_email, ''), chat_sessions.visitor_email),
		    updated_at = NOW()`,
		tenantID, visitorID, name, email)
	if err != nil {
		return fmt.Errorf("analytics: failed to record visitor info: %w", err)
	}
	return nil
}

// UpsertVisitorIP records the visitor's address at session start. The first
// observed address wins; later starts never overwrite it.
func (s *Store) UpsertVisitorIP(ctx context.Context, tenantID, visitorID, ip string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO chat_sessions (tenant_id, visitor_id, visitor_ip, messages_count, started_at, ended_at, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), 0, NOW(), NOW(), NOW())
		ON CONFLICT (tenant_id, visitor_id) DO UPDATE SET
		    visitor_ip = COALESCE(chat_sessions.visitor_ip, EXCLUDED.visitor_ip),
		    updated_at = NOW()`,
		tenantID, visitorID, ip)
	if err != nil {
		return fmt.Errorf("analytics: failed to record visitor ip: %w", err)
	}
	return nil
}

// ListSessions returns a tenant's sessions, most recently active first.
func (s *Store) ListSessions(ctx context.Context, tenantID string, limit int) ([]Session, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, tenant_id, visitor_id, COALESCE(visitor_name, ''), COALESCE(visitor_email, ''),
		       COALESCE(visitor_ip, ''), first_message, last_message, messages_count,
		       started_at, ended_at, updated_at
		FROM chat_sessions
		WHERE tenant_id = $1
		ORDER BY updated_at DESC
		LIMIT $2`,
		tenantID, limit)
	if err != nil {
		return nil, fmt.Errorf("analytics: failed to list sessions: %w", err)
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		var sess Session
		if err := rows.Scan(&sess.ID, &sess.TenantID, &sess.VisitorID, &sess.VisitorName,
			&sess.VisitorEmail, &sess.VisitorIP, &sess.FirstMessage, &sess.LastMessage,
			&sess.MessagesCount, &sess.StartedAt, &sess.EndedAt, &sess.UpdatedAt); err != nil {
			return nil, fmt.Errorf("analytics: failed to scan session: %w", err)
		}
		out = append(out, sess)
	}
	if out == nil {
		out = []Session{}
	}
	return out, rows.Err()
}
