package repository

import (
	"context"
	"database/sql"
	"fmt"

	"homehold/internal/audit/domain"
)

// PostgresRepository persists audit events with plain SQL.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an audit repository backed by the given db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Save persists the event.
func (r *PostgresRepository) Save(ctx context.Context, e *domain.Event) error {
	var userID sql.NullInt64
	if e.UserID != nil {
		userID = sql.NullInt64{Int64: *e.UserID, Valid: true}
	}
	meta := sql.NullString{String: e.Metadata, Valid: e.Metadata != ""}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_logs (id, user_id, action, resource, ip, metadata, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.ID, userID, e.Action, e.Resource, e.IP, meta, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("audit insert: %w", err)
	}
	return nil
}

// ListRecent returns the newest events first.
func (r *PostgresRepository) ListRecent(ctx context.Context, limit, offset int32) ([]*domain.Event, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, action, resource, ip, metadata, created_at
		 FROM audit_logs ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("audit list: %w", err)
	}
	defer rows.Close()

	var out []*domain.Event
	for rows.Next() {
		var e domain.Event
		var userID sql.NullInt64
		var meta sql.NullString
		if err := rows.Scan(&e.ID, &userID, &e.Action, &e.Resource, &e.IP, &meta, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("audit scan: %w", err)
		}
		if userID.Valid {
			v := userID.Int64
			e.UserID = &v
		}
		if meta.Valid {
			e.Metadata = meta.String
		}
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("audit rows: %w", err)
	}
	return out, nil
}
