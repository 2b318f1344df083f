// Package handler exposes session management over HTTP: logout, session
// listing, admin impersonation, kiosk activation, and admin revocation.
package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"homehold/internal/audit"
	"homehold/internal/server/middleware"
	"homehold/internal/session/domain"
	"homehold/internal/session/service"
)

// HTTP serves the session endpoints. All routes assume the session loader
// ran; the guarded ones additionally assume RequireSession/RequireAction.
type HTTP struct {
	sessions   *service.Service
	audit      *audit.Logger
	log        *zap.Logger
	cookieName string
	ttl        time.Duration
	kioskTTL   time.Duration
	kioskRole  string
}

// NewHTTP returns the session HTTP handler.
func NewHTTP(sessions *service.Service, auditLog *audit.Logger, log *zap.Logger, cookieName string, ttl, kioskTTL time.Duration, kioskRole string) *HTTP {
	return &HTTP{
		sessions:   sessions,
		audit:      auditLog,
		log:        log,
		cookieName: cookieName,
		ttl:        ttl,
		kioskTTL:   kioskTTL,
		kioskRole:  kioskRole,
	}
}

type sessionJSON struct {
	SID            string    `json:"sid"`
	UserID         int64     `json:"userId"`
	Role           string    `json:"role"`
	CreatedAt      time.Time `json:"createdAt"`
	LastSeenAt     time.Time `json:"lastSeenAt"`
	ExpiresAt      time.Time `json:"expiresAt"`
	ImpersonatedBy *int64    `json:"impersonatedBy,omitempty"`
	IsKiosk        bool      `json:"isKiosk"`
	ClientIP       string    `json:"clientIp,omitempty"`
	Current        bool      `json:"current,omitempty"`
}

func toJSON(s *domain.Session, currentSID string) sessionJSON {
	return sessionJSON{
		SID:            s.SID,
		UserID:         s.UserID,
		Role:           s.Role,
		CreatedAt:      s.CreatedAt,
		LastSeenAt:     s.LastSeenAt,
		ExpiresAt:      s.ExpiresAt,
		ImpersonatedBy: s.ImpersonatedBy,
		IsKiosk:        s.IsKiosk,
		ClientIP:       s.ClientIP,
		Current:        s.SID == currentSID,
	}
}

// ListMine returns the caller's live sessions.
func (h *HTTP) ListMine(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.GetSession(r.Context())
	list, err := h.sessions.ListByUser(r.Context(), sess.UserID)
	if err != nil {
		h.fail(w, "session list failed", err)
		return
	}
	out := make([]sessionJSON, 0, len(list))
	for _, s := range list {
		out = append(out, toJSON(s, sess.SID))
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": out})
}

// Logout destroys the caller's session and clears the cookie.
func (h *HTTP) Logout(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.GetSession(r.Context())
	if err := h.sessions.Destroy(r.Context(), sess.SID); err != nil {
		h.fail(w, "logout failed", err)
		return
	}
	h.audit.Event(r.Context(), &sess.UserID, "session.logout", "session", r.RemoteAddr, "")
	h.clearCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

type impersonateRequest struct {
	UserID int64  `json:"userId"`
	Role   string `json:"role"`
}

// Impersonate creates a session for another user with impersonated_by set
// to the calling admin, and switches the caller's cookie to it. The target
// role is supplied by the caller, which owns the user directory.
func (h *HTTP) Impersonate(w http.ResponseWriter, r *http.Request) {
	admin, _ := middleware.GetSession(r.Context())

	var req impersonateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == 0 || req.Role == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "userId and role are required"})
		return
	}

	adminID := admin.UserID
	sess, err := h.sessions.Create(r.Context(), req.UserID, req.Role, h.ttl, service.CreateOptions{
		ImpersonatedBy: &adminID,
		ClientIP:       r.RemoteAddr,
	})
	if err != nil {
		h.fail(w, "impersonation failed", err)
		return
	}
	h.audit.Event(r.Context(), &adminID, "admin.impersonate", "session", r.RemoteAddr, "")
	h.setCookie(w, sess)
	writeJSON(w, http.StatusCreated, map[string]any{"session": toJSON(sess, sess.SID)})
}

type kioskRequest struct {
	UserID int64 `json:"userId"`
}

// ActivateKiosk creates a restricted shared-device session for the given
// user and hands the device its cookie.
func (h *HTTP) ActivateKiosk(w http.ResponseWriter, r *http.Request) {
	admin, _ := middleware.GetSession(r.Context())

	var req kioskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "userId is required"})
		return
	}

	sess, err := h.sessions.Create(r.Context(), req.UserID, h.kioskRole, h.kioskTTL, service.CreateOptions{
		IsKiosk:  true,
		ClientIP: r.RemoteAddr,
	})
	if err != nil {
		h.fail(w, "kiosk activation failed", err)
		return
	}
	h.audit.Event(r.Context(), &admin.UserID, "kiosk.activate", "session", r.RemoteAddr, "")
	h.setCookie(w, sess)
	writeJSON(w, http.StatusCreated, map[string]any{"session": toJSON(sess, sess.SID)})
}

// AdminList returns every live session.
func (h *HTTP) AdminList(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.GetSession(r.Context())
	list, err := h.sessions.ListActive(r.Context())
	if err != nil {
		h.fail(w, "session list failed", err)
		return
	}
	out := make([]sessionJSON, 0, len(list))
	for _, s := range list {
		out = append(out, toJSON(s, caller.SID))
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": out})
}

// AdminRevoke destroys the session named in the URL. Idempotent.
func (h *HTTP) AdminRevoke(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.GetSession(r.Context())
	sid := chi.URLParam(r, "sid")
	if err := h.sessions.Destroy(r.Context(), sid); err != nil {
		h.fail(w, "session revoke failed", err)
		return
	}
	h.audit.Event(r.Context(), &caller.UserID, "admin.sessions.revoke", "session", r.RemoteAddr, "")
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTP) setCookie(w http.ResponseWriter, s *domain.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    s.SID,
		Path:     "/",
		Expires:  s.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *HTTP) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *HTTP) fail(w http.ResponseWriter, msg string, err error) {
	h.log.Error(msg, zap.Error(err))
	writeJSON(w, http.StatusServiceUnavailable, map[string]any{"error": "service unavailable"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
