package domain

import "time"

// Event is one audit record: who did (or was refused) what, from where.
type Event struct {
	ID        string
	UserID    *int64 // nil for anonymous events (e.g. a failed bootstrap attempt)
	Action    string
	Resource  string
	IP        string
	Metadata  string
	CreatedAt time.Time
}
