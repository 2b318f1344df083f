package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"homehold/internal/server/middleware"
	"homehold/internal/session/domain"
	"homehold/internal/session/service"
)

type memRepo struct {
	sessions map[string]*domain.Session
}

func newMemRepo() *memRepo {
	return &memRepo{sessions: make(map[string]*domain.Session)}
}

func (m *memRepo) GetBySID(_ context.Context, sid string) (*domain.Session, error) {
	s, ok := m.sessions[sid]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (m *memRepo) Create(_ context.Context, s *domain.Session) error {
	cp := *s
	m.sessions[s.SID] = &cp
	return nil
}

func (m *memRepo) UpdateSeen(_ context.Context, sid string, lastSeenAt, expiresAt time.Time) error {
	if s, ok := m.sessions[sid]; ok {
		s.LastSeenAt = lastSeenAt
		s.ExpiresAt = expiresAt
	}
	return nil
}

func (m *memRepo) Delete(_ context.Context, sid string) error {
	delete(m.sessions, sid)
	return nil
}

func (m *memRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for sid, s := range m.sessions {
		if !s.ExpiresAt.After(now) {
			delete(m.sessions, sid)
			n++
		}
	}
	return n, nil
}

func (m *memRepo) ListActive(_ context.Context, now time.Time) ([]*domain.Session, error) {
	var out []*domain.Session
	for _, s := range m.sessions {
		if s.ExpiresAt.After(now) {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memRepo) ListByUser(_ context.Context, userID int64, now time.Time) ([]*domain.Session, error) {
	var out []*domain.Session
	for _, s := range m.sessions {
		if s.UserID == userID && s.ExpiresAt.After(now) {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func newTestHandler(t *testing.T) (*HTTP, *service.Service, *memRepo) {
	t.Helper()
	repo := newMemRepo()
	svc := service.NewService(repo)
	h := NewHTTP(svc, nil, zap.NewNop(), "homehold_session", time.Hour, 10*time.Hour, "kiosk")
	return h, svc, repo
}

func asUser(r *http.Request, sess *domain.Session) *http.Request {
	return r.WithContext(middleware.WithSession(r.Context(), sess))
}

func TestListMine_OnlyCallersSessions(t *testing.T) {
	h, svc, _ := newTestHandler(t)
	mine, _ := svc.Create(context.Background(), 7, "member", time.Hour, service.CreateOptions{})
	if _, err := svc.Create(context.Background(), 8, "member", time.Hour, service.CreateOptions{}); err != nil {
		t.Fatalf("create: %v", err)
	}

	rec := httptest.NewRecorder()
	h.ListMine(rec, asUser(httptest.NewRequest(http.MethodGet, "/v1/sessions", nil), mine))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Sessions []struct {
			SID     string `json:"sid"`
			UserID  int64  `json:"userId"`
			Current bool   `json:"current"`
		} `json:"sessions"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Sessions) != 1 {
		t.Fatalf("got %d sessions, want 1", len(body.Sessions))
	}
	if body.Sessions[0].UserID != 7 || !body.Sessions[0].Current {
		t.Fatalf("unexpected session: %+v", body.Sessions[0])
	}
}

func TestLogout_DestroysAndClearsCookie(t *testing.T) {
	h, svc, repo := newTestHandler(t)
	sess, _ := svc.Create(context.Background(), 7, "member", time.Hour, service.CreateOptions{})

	rec := httptest.NewRecorder()
	h.Logout(rec, asUser(httptest.NewRequest(http.MethodDelete, "/v1/sessions/current", nil), sess))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if _, ok := repo.sessions[sess.SID]; ok {
		t.Fatal("session row not deleted")
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge != -1 {
		t.Fatalf("cookie not cleared: %+v", cookies)
	}
}

func TestImpersonate_CreatesSessionWithProvenance(t *testing.T) {
	h, _, repo := newTestHandler(t)
	admin := &domain.Session{SID: "admin-sid", UserID: 1, Role: "admin"}

	body, _ := json.Marshal(map[string]any{"userId": 7, "role": "member"})
	req := asUser(httptest.NewRequest(http.MethodPost, "/v1/admin/impersonations", bytes.NewReader(body)), admin)
	rec := httptest.NewRecorder()
	h.Impersonate(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Session struct {
			SID            string `json:"sid"`
			UserID         int64  `json:"userId"`
			Role           string `json:"role"`
			ImpersonatedBy *int64 `json:"impersonatedBy"`
		} `json:"session"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Session.UserID != 7 || resp.Session.Role != "member" {
		t.Fatalf("unexpected session: %+v", resp.Session)
	}
	if resp.Session.ImpersonatedBy == nil || *resp.Session.ImpersonatedBy != 1 {
		t.Fatalf("impersonatedBy = %v, want 1", resp.Session.ImpersonatedBy)
	}
	stored := repo.sessions[resp.Session.SID]
	if stored == nil || stored.ImpersonatedBy == nil || *stored.ImpersonatedBy != 1 {
		t.Fatal("stored session missing impersonation provenance")
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Value != resp.Session.SID {
		t.Fatalf("cookie not switched to impersonated session: %+v", cookies)
	}
}

func TestImpersonate_RejectsBadBody(t *testing.T) {
	h, _, _ := newTestHandler(t)
	admin := &domain.Session{SID: "admin-sid", UserID: 1, Role: "admin"}

	for _, body := range []string{`{}`, `{"userId":7}`, `not json`} {
		req := asUser(httptest.NewRequest(http.MethodPost, "/v1/admin/impersonations", bytes.NewReader([]byte(body))), admin)
		rec := httptest.NewRecorder()
		h.Impersonate(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %q: status = %d, want 400", body, rec.Code)
		}
	}
}

func TestActivateKiosk_RestrictedRoleAndTTL(t *testing.T) {
	h, _, repo := newTestHandler(t)
	admin := &domain.Session{SID: "admin-sid", UserID: 1, Role: "admin"}

	body, _ := json.Marshal(map[string]any{"userId": 9})
	req := asUser(httptest.NewRequest(http.MethodPost, "/v1/kiosk/sessions", bytes.NewReader(body)), admin)
	rec := httptest.NewRecorder()
	h.ActivateKiosk(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Session struct {
			SID     string `json:"sid"`
			Role    string `json:"role"`
			IsKiosk bool   `json:"isKiosk"`
		} `json:"session"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Session.Role != "kiosk" || !resp.Session.IsKiosk {
		t.Fatalf("unexpected kiosk session: %+v", resp.Session)
	}
	stored := repo.sessions[resp.Session.SID]
	if stored == nil {
		t.Fatal("kiosk session not stored")
	}
	// kioskTTL (10h) applies, not the normal window (1h).
	if stored.ExpiresAt.Before(stored.CreatedAt.Add(9 * time.Hour)) {
		t.Fatalf("kiosk session given non-kiosk ttl: expires %v", stored.ExpiresAt)
	}
}

func TestAdminRevoke_Idempotent(t *testing.T) {
	h, svc, repo := newTestHandler(t)
	admin := &domain.Session{SID: "admin-sid", UserID: 1, Role: "admin"}
	victim, _ := svc.Create(context.Background(), 7, "member", time.Hour, service.CreateOptions{})

	router := chi.NewRouter()
	router.Delete("/v1/admin/sessions/{sid}", func(w http.ResponseWriter, r *http.Request) {
		h.AdminRevoke(w, asUser(r, admin))
	})

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/v1/admin/sessions/"+victim.SID, nil))
		if rec.Code != http.StatusNoContent {
			t.Fatalf("attempt %d: status = %d, want 204", i+1, rec.Code)
		}
	}
	if _, ok := repo.sessions[victim.SID]; ok {
		t.Fatal("session not revoked")
	}
}
