// Package engine decides whether an action is permitted under a rule set.
// Evaluation is pure and deterministic: deny rules win outright, allows are
// filtered by locality, and the most specific matching allow is reported.
package engine

import (
	"regexp"
	"strings"

	"homehold/internal/policy/domain"
)

// Decision is the outcome of one evaluation. MatchedRule is the deny that
// defeated the action, or the most specific allow that granted it; nil when
// nothing matched (default deny).
type Decision struct {
	Allowed     bool
	MatchedRule *domain.Rule
}

// Evaluate decides whether action is permitted under rules for a request of
// the given locality.
//
// Any matching deny defeats the action regardless of LocalOnly and of any
// number of matching allows. Otherwise the allows whose pattern matches and
// whose LocalOnly constraint is satisfied compete on specificity: fewer
// wildcards wins, ties broken by longer literal length. No matching allow
// means denied; absence of an explicit allow is never implicit permission.
//
// When two allows tie on both wildcard count and literal length there is no
// guaranteed stable winner across rule orderings; the first in slice order
// is reported.
func Evaluate(action string, rules []domain.Rule, isLocalRequest bool) Decision {
	for i := range rules {
		if rules[i].Effect == domain.EffectDeny && patternMatches(rules[i].ActionPattern, action) {
			return Decision{Allowed: false, MatchedRule: &rules[i]}
		}
	}

	var best *domain.Rule
	for i := range rules {
		r := &rules[i]
		if r.Effect != domain.EffectAllow {
			continue
		}
		if r.LocalOnly && !isLocalRequest {
			continue
		}
		if !patternMatches(r.ActionPattern, action) {
			continue
		}
		if best == nil || moreSpecific(r.ActionPattern, best.ActionPattern) {
			best = r
		}
	}
	if best == nil {
		return Decision{}
	}
	return Decision{Allowed: true, MatchedRule: best}
}

// patternMatches reports whether pattern matches the whole action string.
// `*` matches any possibly-empty substring; everything else is literal, so
// regex metacharacters in action names cannot change the match.
func patternMatches(pattern, action string) bool {
	re, err := compilePattern(pattern)
	if err != nil {
		return false
	}
	return re.MatchString(action)
}

func compilePattern(pattern string) (*regexp.Regexp, error) {
	parts := strings.Split(pattern, "*")
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	return regexp.Compile("^" + strings.Join(parts, ".*") + "$")
}

// moreSpecific reports whether pattern a outranks pattern b: fewer
// wildcards first, then longer literal length.
func moreSpecific(a, b string) bool {
	aw, bw := strings.Count(a, "*"), strings.Count(b, "*")
	if aw != bw {
		return aw < bw
	}
	return len(a)-aw > len(b)-bw
}
