// Package service implements the session authority: creation, lookup with
// lazy expiry, sliding-expiration touch, and destruction of sessions.
package service

import (
	"context"
	"time"

	"homehold/internal/security"
	"homehold/internal/session/domain"
	"homehold/internal/session/repository"
)

// CreateOptions carries the optional attributes of a new session.
type CreateOptions struct {
	// ImpersonatedBy is the admin user acting as the session's user, or nil.
	ImpersonatedBy *int64
	// IsKiosk marks a restricted shared-device session.
	IsKiosk bool
	// ClientIP is recorded as-is; informational only.
	ClientIP string
}

// Service owns the full lifecycle of session records. All reads and writes
// of session storage go through it; each operation is a single keyed
// database call, so the database's row-level atomicity is the only locking.
type Service struct {
	repo repository.Repository
	now  func() time.Time
}

// NewService returns a session service backed by the given repository.
func NewService(repo repository.Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Create generates a fresh opaque identifier and persists a session for the
// user with the given role and idle TTL. A generated-identifier collision
// surfaces as the repository's unique-constraint error.
func (s *Service) Create(ctx context.Context, userID int64, role string, ttl time.Duration, opts CreateOptions) (*domain.Session, error) {
	sid, err := security.NewSID()
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	sess := &domain.Session{
		SID:            sid,
		UserID:         userID,
		Role:           role,
		CreatedAt:      now,
		LastSeenAt:     now,
		ExpiresAt:      now.Add(ttl),
		ImpersonatedBy: opts.ImpersonatedBy,
		IsKiosk:        opts.IsKiosk,
		ClientIP:       opts.ClientIP,
	}
	if err := s.repo.Create(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Get returns the live session for sid, or (nil, nil) when there is none.
// An expired row is deleted synchronously before returning nil, so no
// caller ever observes an expired session as valid, whether or not the
// janitor has run. A non-nil error always means a storage failure.
func (s *Service) Get(ctx context.Context, sid string) (*domain.Session, error) {
	sess, err := s.repo.GetBySID(ctx, sid)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, nil
	}
	if sess.Expired(s.now().UTC()) {
		if err := s.repo.Delete(ctx, sid); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return sess, nil
}

// Touch slides the session's idle window: last_seen_at becomes now and
// expires_at becomes now plus ttl. Touching an absent sid is a no-op.
func (s *Service) Touch(ctx context.Context, sid string, ttl time.Duration) error {
	now := s.now().UTC()
	return s.repo.UpdateSeen(ctx, sid, now, now.Add(ttl))
}

// Destroy deletes the session unconditionally. Idempotent: destroying an
// absent sid is not an error.
func (s *Service) Destroy(ctx context.Context, sid string) error {
	return s.repo.Delete(ctx, sid)
}

// DeleteExpired removes every expired row. Correctness never depends on it;
// Get enforces expiry inline. The janitor calls this on its schedule.
func (s *Service) DeleteExpired(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpired(ctx, s.now().UTC())
}

// ListActive returns all live sessions, most recently seen first.
func (s *Service) ListActive(ctx context.Context) ([]*domain.Session, error) {
	return s.repo.ListActive(ctx, s.now().UTC())
}

// ListByUser returns the user's live sessions, most recently seen first.
func (s *Service) ListByUser(ctx context.Context, userID int64) ([]*domain.Session, error) {
	return s.repo.ListByUser(ctx, userID, s.now().UTC())
}
