package repository

import "context"

// Repository persists named boolean system flags, e.g. whether the one-time
// administrative bootstrap has completed.
type Repository interface {
	// Get returns the flag's value; an absent flag reads as false.
	Get(ctx context.Context, name string) (bool, error)
	// Set upserts the flag.
	Set(ctx context.Context, name string, value bool) error
}
