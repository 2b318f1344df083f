package repository

import (
	"context"
	"time"

	"homehold/internal/session/domain"
)

// Repository defines persistence for sessions. The session service is the
// only writer; no other component touches session storage directly.
type Repository interface {
	// GetBySID returns the session for sid, or (nil, nil) when no row exists.
	// A non-nil error always means a storage failure, never a missing row.
	GetBySID(ctx context.Context, sid string) (*domain.Session, error)
	// Create inserts the session. A primary-key collision surfaces as an
	// error from the unique constraint; it is never a silent overwrite.
	Create(ctx context.Context, s *domain.Session) error
	// UpdateSeen sets last_seen_at and expires_at for the given sid.
	UpdateSeen(ctx context.Context, sid string, lastSeenAt, expiresAt time.Time) error
	// Delete removes the row if present. Deleting an absent sid is not an error.
	Delete(ctx context.Context, sid string) error
	// DeleteExpired removes every row whose expires_at is at or before now
	// and returns how many rows were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
	// ListActive returns all sessions whose expires_at is after now,
	// most recently seen first.
	ListActive(ctx context.Context, now time.Time) ([]*domain.Session, error)
	// ListByUser returns the user's sessions whose expires_at is after now.
	ListByUser(ctx context.Context, userID int64, now time.Time) ([]*domain.Session, error)
}
