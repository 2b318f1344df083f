package domain

import "time"

// Session binds an opaque token to an identity, role, and expiry.
type Session struct {
	SID            string
	UserID         int64
	Role           string
	CreatedAt      time.Time
	LastSeenAt     time.Time
	ExpiresAt      time.Time
	ImpersonatedBy *int64 // nil unless an admin is acting as this user
	IsKiosk        bool
	ClientIP       string // informational only; empty when unknown
}

// Expired reports whether the session is logically dead at the given instant.
// A session whose ExpiresAt has passed is dead even before physical deletion.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}
