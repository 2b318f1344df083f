package middleware

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"homehold/internal/audit"
	"homehold/internal/nettrust"
	policydomain "homehold/internal/policy/domain"
	"homehold/internal/policy/engine"
)

// RuleSource resolves a role to its rule set before each evaluation.
type RuleSource interface {
	RulesForRole(ctx context.Context, role string) ([]policydomain.Rule, error)
}

// Authorizer gates actions: it resolves the caller's rules, classifies the
// request's locality, and asks the evaluator. "No rule matched" and
// "explicit deny matched" produce the identical generic 403 so untrusted
// clients cannot probe the policy structure.
type Authorizer struct {
	rules RuleSource
	trust nettrust.Classifier
	audit *audit.Logger
	log   *zap.Logger
}

// NewAuthorizer returns an authorizer. auditLog may be nil.
func NewAuthorizer(rules RuleSource, trust nettrust.Classifier, auditLog *audit.Logger, log *zap.Logger) *Authorizer {
	return &Authorizer{rules: rules, trust: trust, audit: auditLog, log: log}
}

// RequireAction returns middleware admitting only callers whose rule set
// allows action. It must run after SessionLoader.
func (a *Authorizer) RequireAction(action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := GetSession(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			rules, err := a.rules.RulesForRole(r.Context(), sess.Role)
			if err != nil {
				a.log.Error("rule resolution failed", zap.String("role", sess.Role), zap.Error(err))
				writeError(w, http.StatusServiceUnavailable, "service unavailable")
				return
			}

			isLocal := a.trust.Classify(r)
			decision := engine.Evaluate(action, rules, isLocal)
			if !decision.Allowed {
				a.audit.Event(r.Context(), &sess.UserID, "authz.denied", action, r.RemoteAddr, "")
				writeError(w, http.StatusForbidden, "forbidden")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
