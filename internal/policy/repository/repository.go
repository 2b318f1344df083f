package repository

import (
	"context"

	"homehold/internal/policy/domain"
)

// Repository defines persistence for per-role rule sets.
type Repository interface {
	// RulesForRole returns the role's rules, empty when none are defined.
	// A role with no rules evaluates to default deny.
	RulesForRole(ctx context.Context, role string) ([]domain.Rule, error)
	// ReplaceRulesForRole atomically swaps the role's rule set.
	ReplaceRulesForRole(ctx context.Context, role string, rules []domain.Rule) error
}
