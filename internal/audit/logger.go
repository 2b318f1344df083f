// Package audit records security-relevant events: session creation and
// destruction, bootstrap attempts, and authorization denials. Recording is
// best-effort and never affects the outcome of the audited request.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"homehold/internal/audit/domain"
	"homehold/internal/audit/producer"
	auditrepo "homehold/internal/audit/repository"
)

// Logger writes audit events to storage and, when a producer is configured,
// ships a copy to the event stream.
type Logger struct {
	repo     auditrepo.Repository
	producer producer.Producer
	log      *zap.Logger
}

// NewLogger returns an audit logger. repo may be nil (events are dropped);
// prod may be nil (no stream shipping).
func NewLogger(repo auditrepo.Repository, prod producer.Producer, log *zap.Logger) *Logger {
	return &Logger{repo: repo, producer: prod, log: log}
}

// Event writes one audit entry. Best-effort: failures are logged, never
// returned, so an audit outage cannot fail the audited operation.
func (l *Logger) Event(ctx context.Context, userID *int64, action, resource, ip, metadata string) {
	if l == nil || l.repo == nil {
		return
	}
	e := &domain.Event{
		ID:        uuid.New().String(),
		UserID:    userID,
		Action:    action,
		Resource:  resource,
		IP:        ip,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}
	if err := l.repo.Save(ctx, e); err != nil {
		l.log.Warn("audit save failed",
			zap.String("action", action),
			zap.String("resource", resource),
			zap.Error(err))
	}
	EmitAsync(l.producer, e, l.log)
}
