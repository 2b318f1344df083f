package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"homehold/internal/session/domain"
)

type memSessionRepo struct {
	mu sync.Mutex
	m  map[string]*domain.Session

	failAll bool // when set, every call returns a storage error
}

var errStorage = errors.New("storage down")

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{m: make(map[string]*domain.Session)}
}

func (r *memSessionRepo) GetBySID(ctx context.Context, sid string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return nil, errStorage
	}
	s, ok := r.m[sid]
	if !ok {
		return nil, nil
	}
	s2 := *s
	return &s2, nil
}

func (r *memSessionRepo) Create(ctx context.Context, s *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return errStorage
	}
	if _, exists := r.m[s.SID]; exists {
		return errors.New("duplicate key value violates unique constraint \"sessions_pkey\"")
	}
	s2 := *s
	r.m[s.SID] = &s2
	return nil
}

func (r *memSessionRepo) UpdateSeen(ctx context.Context, sid string, lastSeenAt, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return errStorage
	}
	if s, ok := r.m[sid]; ok {
		s.LastSeenAt = lastSeenAt
		s.ExpiresAt = expiresAt
	}
	return nil
}

func (r *memSessionRepo) Delete(ctx context.Context, sid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return errStorage
	}
	delete(r.m, sid)
	return nil
}

func (r *memSessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return 0, errStorage
	}
	var n int64
	for sid, s := range r.m {
		if !s.ExpiresAt.After(now) {
			delete(r.m, sid)
			n++
		}
	}
	return n, nil
}

func (r *memSessionRepo) ListActive(ctx context.Context, now time.Time) ([]*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return nil, errStorage
	}
	var out []*domain.Session
	for _, s := range r.m {
		if s.ExpiresAt.After(now) {
			s2 := *s
			out = append(out, &s2)
		}
	}
	return out, nil
}

func (r *memSessionRepo) ListByUser(ctx context.Context, userID int64, now time.Time) ([]*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return nil, errStorage
	}
	var out []*domain.Session
	for _, s := range r.m {
		if s.UserID == userID && s.ExpiresAt.After(now) {
			s2 := *s
			out = append(out, &s2)
		}
	}
	return out, nil
}

// newTestService returns a service over an in-memory repo with a controllable
// clock. Advance the clock by updating *now.
func newTestService() (*Service, *memSessionRepo, *time.Time) {
	repo := newMemSessionRepo()
	svc := NewService(repo)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	return svc, repo, &now
}

func TestCreateThenGetRoundTrip(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	admin := int64(7)
	created, err := svc.Create(ctx, 42, "member", 30*time.Minute, CreateOptions{
		ImpersonatedBy: &admin,
		IsKiosk:        false,
		ClientIP:       "192.168.1.20",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.SID == "" {
		t.Fatal("Create: empty sid")
	}
	if got := created.ExpiresAt.Sub(created.LastSeenAt); got != 30*time.Minute {
		t.Errorf("ttl: got %v, want 30m", got)
	}

	got, err := svc.Get(ctx, created.SID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil {
		t.Fatal("Get: nil for a just-created session")
	}
	if got.UserID != 42 || got.Role != "member" || got.ClientIP != "192.168.1.20" {
		t.Errorf("Get: got %+v", got)
	}
	if got.ImpersonatedBy == nil || *got.ImpersonatedBy != admin {
		t.Errorf("Get: impersonated_by = %v, want %d", got.ImpersonatedBy, admin)
	}
}

func TestGetUnknownSIDIsNilNil(t *testing.T) {
	svc, _, _ := newTestService()
	got, err := svc.Get(context.Background(), "no-such-sid")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Fatalf("Get unknown sid: got %+v, want nil", got)
	}
}

func TestZeroTTLExpiresImmediately(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, 1, "member", 0, CreateOptions{})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := svc.Get(ctx, created.SID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Fatal("Get: zero-ttl session observed as valid")
	}
	// Lazy expiry must also have removed the row.
	repo.mu.Lock()
	_, exists := repo.m[created.SID]
	repo.mu.Unlock()
	if exists {
		t.Error("expired row still present after Get")
	}
	// And the session stays unrecoverable.
	if got, _ := svc.Get(ctx, created.SID); got != nil {
		t.Error("expired session recovered on second Get")
	}
}

func TestTouchSlidesExpiry(t *testing.T) {
	svc, _, now := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, 1, "member", 5*time.Second, CreateOptions{})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	*now = now.Add(1 * time.Second)
	if err := svc.Touch(ctx, created.SID, 30*time.Second); err != nil {
		t.Fatalf("Touch: %v", err)
	}

	// Past the original 5s window; only the touched window keeps it alive.
	*now = now.Add(9 * time.Second)
	got, err := svc.Get(ctx, created.SID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil {
		t.Fatal("session expired despite touch extending it")
	}
	if !got.LastSeenAt.After(created.LastSeenAt) {
		t.Error("Touch did not advance last_seen_at")
	}
	if !got.ExpiresAt.After(got.LastSeenAt) {
		t.Error("expires_at not after last_seen_at")
	}
}

func TestTouchAbsentSIDIsNoop(t *testing.T) {
	svc, _, _ := newTestService()
	if err := svc.Touch(context.Background(), "no-such-sid", time.Minute); err != nil {
		t.Fatalf("Touch absent sid: %v", err)
	}
}

func TestDestroyIsIdempotent(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, 1, "member", time.Hour, CreateOptions{})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := svc.Destroy(ctx, created.SID); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	if err := svc.Destroy(ctx, created.SID); err != nil {
		t.Fatalf("second Destroy: %v", err)
	}
	if got, _ := svc.Get(ctx, created.SID); got != nil {
		t.Error("Get after Destroy: session still present")
	}
}

func TestStorageFailureIsNotNoSession(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, 1, "member", time.Hour, CreateOptions{})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	repo.failAll = true
	got, err := svc.Get(ctx, created.SID)
	if err == nil {
		t.Fatal("Get during outage: want error, got nil")
	}
	if got != nil {
		t.Error("Get during outage: returned a session alongside the error")
	}
	if _, err := svc.Create(ctx, 2, "member", time.Hour, CreateOptions{}); err == nil {
		t.Error("Create during outage: want error")
	}
}

func TestDeleteExpiredSweeps(t *testing.T) {
	svc, _, now := newTestService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, 1, "member", time.Minute, CreateOptions{}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	keep, err := svc.Create(ctx, 2, "member", time.Hour, CreateOptions{})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	*now = now.Add(10 * time.Minute)
	n, err := svc.DeleteExpired(ctx)
	if err != nil {
		t.Fatalf("DeleteExpired: %v", err)
	}
	if n != 1 {
		t.Errorf("DeleteExpired: removed %d rows, want 1", n)
	}
	if got, _ := svc.Get(ctx, keep.SID); got == nil {
		t.Error("DeleteExpired removed a live session")
	}
}

func TestListByUserSkipsExpired(t *testing.T) {
	svc, _, now := newTestService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, 5, "member", time.Minute, CreateOptions{}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Create(ctx, 5, "member", time.Hour, CreateOptions{}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	*now = now.Add(10 * time.Minute)
	list, err := svc.ListByUser(ctx, 5)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("ListByUser: got %d sessions, want 1", len(list))
	}
}
