package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"homehold/internal/policy/domain"
)

// PostgresRepository persists role rule sets with plain SQL.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a rule repository backed by the given db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// RulesForRole returns the role's rules ordered by creation. Roles with no
// rows return an empty slice, not an error.
func (r *PostgresRepository) RulesForRole(ctx context.Context, role string) ([]domain.Rule, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT action_pattern, effect, local_only FROM role_rules WHERE role = $1 ORDER BY created_at, id",
		role)
	if err != nil {
		return nil, fmt.Errorf("rules query: %w", err)
	}
	defer rows.Close()

	var out []domain.Rule
	for rows.Next() {
		var rule domain.Rule
		var effect string
		if err := rows.Scan(&rule.ActionPattern, &effect, &rule.LocalOnly); err != nil {
			return nil, fmt.Errorf("rules scan: %w", err)
		}
		rule.Effect = domain.Effect(effect)
		out = append(out, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rules rows: %w", err)
	}
	return out, nil
}

// ReplaceRulesForRole swaps the role's rule set inside one transaction so
// readers never observe a half-written set.
func (r *PostgresRepository) ReplaceRulesForRole(ctx context.Context, role string, rules []domain.Rule) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("rules replace begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM role_rules WHERE role = $1", role); err != nil {
		return fmt.Errorf("rules replace clear: %w", err)
	}
	now := time.Now().UTC()
	for _, rule := range rules {
		if !rule.Valid() {
			return fmt.Errorf("rules replace: invalid effect %q for pattern %q", rule.Effect, rule.ActionPattern)
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO role_rules (id, role, action_pattern, effect, local_only, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			uuid.New().String(), role, rule.ActionPattern, string(rule.Effect), rule.LocalOnly, now,
		)
		if err != nil {
			return fmt.Errorf("rules replace insert: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("rules replace commit: %w", err)
	}
	return nil
}
