package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"homehold/internal/session/domain"
)

// PostgresRepository persists sessions with plain SQL over database/sql.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a session repository backed by the given db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const sessionColumns = "sid, user_id, role, created_at, last_seen_at, expires_at, impersonated_by, is_kiosk, client_ip"

// sessionRow is the typed shape of one sessions row; scanRow maps it to the
// domain entity in one place so null handling never leaks past this file.
type sessionRow struct {
	sid            string
	userID         int64
	role           string
	createdAt      time.Time
	lastSeenAt     time.Time
	expiresAt      time.Time
	impersonatedBy sql.NullInt64
	isKiosk        bool
	clientIP       sql.NullString
}

func (r *sessionRow) toDomain() *domain.Session {
	s := &domain.Session{
		SID:        r.sid,
		UserID:     r.userID,
		Role:       r.role,
		CreatedAt:  r.createdAt,
		LastSeenAt: r.lastSeenAt,
		ExpiresAt:  r.expiresAt,
		IsKiosk:    r.isKiosk,
	}
	if r.impersonatedBy.Valid {
		v := r.impersonatedBy.Int64
		s.ImpersonatedBy = &v
	}
	if r.clientIP.Valid {
		s.ClientIP = r.clientIP.String
	}
	return s
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(sc rowScanner) (*domain.Session, error) {
	var row sessionRow
	err := sc.Scan(
		&row.sid, &row.userID, &row.role,
		&row.createdAt, &row.lastSeenAt, &row.expiresAt,
		&row.impersonatedBy, &row.isKiosk, &row.clientIP,
	)
	if err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

// GetBySID returns the session for sid, or (nil, nil) when no row exists.
func (r *PostgresRepository) GetBySID(ctx context.Context, sid string) (*domain.Session, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+sessionColumns+" FROM sessions WHERE sid = $1", sid)
	s, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("session get: %w", err)
	}
	return s, nil
}

// Create inserts the session row. The primary-key constraint rejects sid
// collisions with an error.
func (r *PostgresRepository) Create(ctx context.Context, s *domain.Session) error {
	var impersonatedBy sql.NullInt64
	if s.ImpersonatedBy != nil {
		impersonatedBy = sql.NullInt64{Int64: *s.ImpersonatedBy, Valid: true}
	}
	clientIP := sql.NullString{String: s.ClientIP, Valid: s.ClientIP != ""}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (`+sessionColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		s.SID, s.UserID, s.Role, s.CreatedAt, s.LastSeenAt, s.ExpiresAt,
		impersonatedBy, s.IsKiosk, clientIP,
	)
	if err != nil {
		return fmt.Errorf("session insert: %w", err)
	}
	return nil
}

// UpdateSeen sets last_seen_at and expires_at for the given sid.
func (r *PostgresRepository) UpdateSeen(ctx context.Context, sid string, lastSeenAt, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE sessions SET last_seen_at = $2, expires_at = $3 WHERE sid = $1",
		sid, lastSeenAt, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("session update seen: %w", err)
	}
	return nil
}

// Delete removes the row for sid. Absent rows are not an error.
func (r *PostgresRepository) Delete(ctx context.Context, sid string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM sessions WHERE sid = $1", sid)
	if err != nil {
		return fmt.Errorf("session delete: %w", err)
	}
	return nil
}

// DeleteExpired removes all rows whose expires_at is at or before now.
// The expires_at index keeps this a range delete.
func (r *PostgresRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at <= $1", now)
	if err != nil {
		return 0, fmt.Errorf("session delete expired: %w", err)
	}
	// RowsAffected is informational here; the delete already succeeded.
	n, _ := res.RowsAffected()
	return n, nil
}

// ListActive returns all live sessions, most recently seen first.
func (r *PostgresRepository) ListActive(ctx context.Context, now time.Time) ([]*domain.Session, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+sessionColumns+" FROM sessions WHERE expires_at > $1 ORDER BY last_seen_at DESC", now)
	if err != nil {
		return nil, fmt.Errorf("session list active: %w", err)
	}
	return collectSessions(rows)
}

// ListByUser returns the user's live sessions, most recently seen first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64, now time.Time) ([]*domain.Session, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+sessionColumns+" FROM sessions WHERE user_id = $1 AND expires_at > $2 ORDER BY last_seen_at DESC",
		userID, now)
	if err != nil {
		return nil, fmt.Errorf("session list by user: %w", err)
	}
	return collectSessions(rows)
}

func collectSessions(rows *sql.Rows) ([]*domain.Session, error) {
	defer rows.Close()
	var out []*domain.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("session scan: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("session rows: %w", err)
	}
	return out, nil
}
