// Package handler exposes the audit trail over HTTP for administrators.
package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"homehold/internal/audit/domain"
	auditrepo "homehold/internal/audit/repository"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

// HTTP serves the audit read endpoints.
type HTTP struct {
	repo auditrepo.Repository
	log  *zap.Logger
}

// NewHTTP returns the audit HTTP handler.
func NewHTTP(repo auditrepo.Repository, log *zap.Logger) *HTTP {
	return &HTTP{repo: repo, log: log}
}

type eventJSON struct {
	ID        string    `json:"id"`
	UserID    *int64    `json:"userId,omitempty"`
	Action    string    `json:"action"`
	Resource  string    `json:"resource"`
	IP        string    `json:"ip,omitempty"`
	Metadata  string    `json:"metadata,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func toJSON(e *domain.Event) eventJSON {
	return eventJSON{
		ID:        e.ID,
		UserID:    e.UserID,
		Action:    e.Action,
		Resource:  e.Resource,
		IP:        e.IP,
		Metadata:  e.Metadata,
		CreatedAt: e.CreatedAt,
	}
}

// List returns the newest audit events first. limit and offset come from the
// query string; limit is capped so one request cannot drag the whole table.
func (h *HTTP) List(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	offset := queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	events, err := h.repo.ListRecent(r.Context(), int32(limit), int32(offset))
	if err != nil {
		h.log.Error("audit list failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"error": "service unavailable"})
		return
	}
	out := make([]eventJSON, 0, len(events))
	for _, e := range events {
		out = append(out, toJSON(e))
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": out})
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
