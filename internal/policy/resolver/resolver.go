// Package resolver maps a session role to its rule set, caching lookups so
// every authorized request does not hit the rules table.
package resolver

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"homehold/internal/policy/domain"
)

// Source loads a role's rules from storage.
type Source interface {
	RulesForRole(ctx context.Context, role string) ([]domain.Rule, error)
}

// CachingResolver caches rule sets per role with a bounded TTL. Rule edits
// become visible within the TTL; policy data tolerates that staleness.
// Empty rule sets are cached too: an unknown role is a stable default-deny,
// not a reason to re-query.
type CachingResolver struct {
	source Source
	cache  *ttlcache.Cache[string, []domain.Rule]
}

// New returns a resolver over source with the given cache TTL.
// Call Stop when shutting down.
func New(source Source, ttl time.Duration) *CachingResolver {
	cache := ttlcache.New(
		ttlcache.WithTTL[string, []domain.Rule](ttl),
		ttlcache.WithDisableTouchOnHit[string, []domain.Rule](),
	)
	go cache.Start()
	return &CachingResolver{source: source, cache: cache}
}

// RulesForRole returns the role's rules, from cache when fresh. Load
// failures are never cached; they surface as storage errors.
func (r *CachingResolver) RulesForRole(ctx context.Context, role string) ([]domain.Rule, error) {
	if item := r.cache.Get(role); item != nil {
		return item.Value(), nil
	}
	rules, err := r.source.RulesForRole(ctx, role)
	if err != nil {
		return nil, err
	}
	r.cache.Set(role, rules, ttlcache.DefaultTTL)
	return rules, nil
}

// Invalidate drops the cached rules for role, forcing the next lookup to
// hit storage. Used after rule edits (e.g. seeding).
func (r *CachingResolver) Invalidate(role string) {
	r.cache.Delete(role)
}

// Stop halts the cache's expiry goroutine.
func (r *CachingResolver) Stop() {
	r.cache.Stop()
}
