package audit

import (
	"context"
	"time"

	"go.uber.org/zap"

	"homehold/internal/audit/domain"
	"homehold/internal/audit/producer"
)

// emitTimeout bounds a single async emit. ShutdownDrainDuration must stay
// at least this long so in-flight emits can finish before the producer closes.
const emitTimeout = 5 * time.Second

// ShutdownDrainDuration is how long to wait after the HTTP server drains
// before closing the producer, so fire-and-forget emits complete.
const ShutdownDrainDuration = emitTimeout

// EmitAsync ships the event on a background goroutine so the caller is never
// blocked on the stream. Uses a detached context with emitTimeout so request
// cancellation does not abort an in-flight emit. Errors are logged.
func EmitAsync(prod producer.Producer, e *domain.Event, log *zap.Logger) {
	if prod == nil || e == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), emitTimeout)
		defer cancel()
		if err := prod.Emit(ctx, e); err != nil {
			log.Warn("audit emit failed", zap.String("action", e.Action), zap.Error(err))
		}
	}()
}
