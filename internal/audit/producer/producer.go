// Package producer ships audit events to the event stream (Kafka). Callers
// use it best-effort: log and ignore errors.
package producer

import (
	"context"
	"encoding/json"
	"time"

	"homehold/internal/audit/domain"
)

// Producer emits audit events. Implementations may block briefly; call from
// a goroutine when the caller must not wait.
type Producer interface {
	Emit(ctx context.Context, e *domain.Event) error
	// Close releases resources. Safe to call if already closed.
	Close() error
}

// wireEvent is the JSON shape on the stream, consumed by cmd/worker; field
// names are part of the stream contract.
type wireEvent struct {
	ID        string `json:"id"`
	UserID    *int64 `json:"userId,omitempty"`
	Action    string `json:"action"`
	Resource  string `json:"resource"`
	IP        string `json:"ip,omitempty"`
	Metadata  string `json:"metadata,omitempty"`
	CreatedAt string `json:"createdAt"`
}

// MarshalEvent serializes an event for the stream.
func MarshalEvent(e *domain.Event) ([]byte, error) {
	return json.Marshal(wireEvent{
		ID:        e.ID,
		UserID:    e.UserID,
		Action:    e.Action,
		Resource:  e.Resource,
		IP:        e.IP,
		Metadata:  e.Metadata,
		CreatedAt: e.CreatedAt.Format(time.RFC3339Nano),
	})
}
