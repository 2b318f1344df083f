package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// PostgresRepository persists system flags with plain SQL.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a flag repository backed by the given db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Get returns the flag's value; an absent flag reads as false.
func (r *PostgresRepository) Get(ctx context.Context, name string) (bool, error) {
	var value bool
	err := r.db.QueryRowContext(ctx,
		"SELECT value FROM system_flags WHERE name = $1", name).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("flag get: %w", err)
	}
	return value, nil
}

// Set upserts the flag.
func (r *PostgresRepository) Set(ctx context.Context, name string, value bool) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO system_flags (name, value, updated_at) VALUES ($1, $2, $3)
		 ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		name, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("flag set: %w", err)
	}
	return nil
}
