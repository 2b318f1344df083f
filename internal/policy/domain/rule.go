package domain

// Effect is the outcome a rule contributes: allow or deny.
type Effect string

const (
	EffectAllow Effect = "allow"
	EffectDeny  Effect = "deny"
)

// Rule is one clause of an access policy. Patterns may contain `*`
// wildcards; every other character matches literally.
type Rule struct {
	ActionPattern string
	Effect        Effect
	// LocalOnly restricts an allow to requests classified as local.
	// Meaningless on deny rules; deny is absolute.
	LocalOnly bool
}

// Valid reports whether the rule has a recognized effect.
func (r *Rule) Valid() bool {
	return r.Effect == EffectAllow || r.Effect == EffectDeny
}
