package middleware

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	sessionservice "homehold/internal/session/service"
)

// SessionLoader resolves the session cookie on every request, slides the
// session's idle window, and stashes the session in the request context.
// Requests without a valid session pass through unauthenticated; route
// guards decide whether that matters.
type SessionLoader struct {
	sessions   *sessionservice.Service
	cookieName string
	ttl        time.Duration
	kioskTTL   time.Duration
	log        *zap.Logger
}

// NewSessionLoader returns the session-resolution middleware. ttl and
// kioskTTL are the sliding idle windows applied on each touch.
func NewSessionLoader(sessions *sessionservice.Service, cookieName string, ttl, kioskTTL time.Duration, log *zap.Logger) *SessionLoader {
	return &SessionLoader{
		sessions:   sessions,
		cookieName: cookieName,
		ttl:        ttl,
		kioskTTL:   kioskTTL,
		log:        log,
	}
}

// Load is the middleware. A storage failure is a 503, never treated as
// "not logged in": conflating the two would either lock users out or
// fail open.
func (m *SessionLoader) Load(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(m.cookieName)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		sess, err := m.sessions.Get(r.Context(), cookie.Value)
		if err != nil {
			m.log.Error("session lookup failed", zap.Error(err))
			writeError(w, http.StatusServiceUnavailable, "service unavailable")
			return
		}
		if sess == nil {
			// Missing or lazily expired: proceed unauthenticated.
			next.ServeHTTP(w, r)
			return
		}

		ttl := m.ttl
		if sess.IsKiosk {
			ttl = m.kioskTTL
		}
		if err := m.sessions.Touch(r.Context(), sess.SID, ttl); err != nil {
			m.log.Error("session touch failed", zap.Error(err))
			writeError(w, http.StatusServiceUnavailable, "service unavailable")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
	})
}

// RequireSession rejects unauthenticated requests with 401.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetSession(r.Context()); !ok {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"error":"` + msg + `"}`))
}
