// Package middleware carries the request pipeline around the session and
// authorization core: session resolution from the cookie, sliding-expiry
// touch, and deny-precedence action gating.
package middleware

import (
	"context"

	"homehold/internal/session/domain"
)

type contextKey struct{ name string }

var sessionKey = contextKey{"session"}

// WithSession returns a context carrying the resolved session. Handlers and
// downstream middleware read it via GetSession.
func WithSession(ctx context.Context, s *domain.Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// GetSession returns the session from ctx and true if one was resolved.
func GetSession(ctx context.Context) (*domain.Session, bool) {
	s, ok := ctx.Value(sessionKey).(*domain.Session)
	return s, ok && s != nil
}
