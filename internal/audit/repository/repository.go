package repository

import (
	"context"

	"homehold/internal/audit/domain"
)

// Repository defines persistence for audit events.
type Repository interface {
	// Save persists the event. The event must have ID set.
	Save(ctx context.Context, e *domain.Event) error
	// ListRecent returns the newest events, paginated by limit and offset.
	ListRecent(ctx context.Context, limit, offset int32) ([]*domain.Event, error)
}
