// Package handler serves liveness and readiness probes.
package handler

import (
	"context"
	"net/http"
)

// Pinger checks storage connectivity, e.g. *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HTTP serves /healthz and /readyz.
type HTTP struct {
	pinger Pinger
}

// NewHTTP returns the health handler. pinger may be nil; readiness then
// skips the storage check.
func NewHTTP(pinger Pinger) *HTTP {
	return &HTTP{pinger: pinger}
}

// Live always reports ok while the process serves.
func (h *HTTP) Live(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// Ready reports ok only when storage answers a ping.
func (h *HTTP) Ready(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if h.pinger != nil {
		if err := h.pinger.PingContext(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
