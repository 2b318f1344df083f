// Package handler exposes the one-time bootstrap flow over HTTP.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"homehold/internal/audit"
	"homehold/internal/bootstrap"
	"homehold/internal/nettrust"
	"homehold/internal/session/domain"
)

// HTTP serves the bootstrap endpoints.
type HTTP struct {
	svc        *bootstrap.Service
	trust      nettrust.Classifier
	audit      *audit.Logger
	log        *zap.Logger
	cookieName string
}

// NewHTTP returns the bootstrap HTTP handler.
func NewHTTP(svc *bootstrap.Service, trust nettrust.Classifier, auditLog *audit.Logger, log *zap.Logger, cookieName string) *HTTP {
	return &HTTP{svc: svc, trust: trust, audit: auditLog, log: log, cookieName: cookieName}
}

// Status reports whether bootstrap has completed, so the setup UI knows
// whether to offer the flow.
func (h *HTTP) Status(w http.ResponseWriter, r *http.Request) {
	done, err := h.svc.Completed(r.Context())
	if err != nil {
		h.log.Error("bootstrap status failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"error": "service unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"completed": done})
}

type completeRequest struct {
	UserID int64  `json:"userId"`
	Secret string `json:"secret"`
}

// Complete runs the one-time bootstrap. Refusals for a non-local origin and
// for a wrong secret are the same generic 403, so a remote prober cannot
// tell which gate stopped it.
func (h *HTTP) Complete(w http.ResponseWriter, r *http.Request) {
	var req completeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "userId and secret are required"})
		return
	}

	isLocal := h.trust.Classify(r)
	sess, err := h.svc.Complete(r.Context(), req.UserID, req.Secret, isLocal, r.RemoteAddr)
	if err != nil {
		switch {
		case errors.Is(err, bootstrap.ErrDisabled):
			writeJSON(w, http.StatusNotFound, map[string]any{"error": "not found"})
		case errors.Is(err, bootstrap.ErrNotLocal), errors.Is(err, bootstrap.ErrBadSecret):
			h.audit.Event(r.Context(), nil, "bootstrap.denied", "bootstrap", r.RemoteAddr, "")
			writeJSON(w, http.StatusForbidden, map[string]any{"error": "forbidden"})
		case errors.Is(err, bootstrap.ErrAlreadyBootstrapped):
			writeJSON(w, http.StatusConflict, map[string]any{"error": "already completed"})
		default:
			h.log.Error("bootstrap failed", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"error": "service unavailable"})
		}
		return
	}

	h.audit.Event(r.Context(), &sess.UserID, "bootstrap.complete", "bootstrap", r.RemoteAddr, "")
	h.setCookie(w, sess)
	writeJSON(w, http.StatusCreated, map[string]any{
		"session": map[string]any{
			"userId":    sess.UserID,
			"role":      sess.Role,
			"expiresAt": sess.ExpiresAt.Format(time.RFC3339),
		},
	})
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

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
