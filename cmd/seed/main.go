// seed installs the default role rule sets (admin, member, kiosk).
// Idempotent: each run replaces the named roles' rules wholesale.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"homehold/internal/config"
	"homehold/internal/db"
	policydomain "homehold/internal/policy/domain"
	policyrepo "homehold/internal/policy/repository"
)

// Default policy: admins can do everything except complete a remote
// bootstrap; members get the household features but nothing administrative;
// kiosk sessions are read-mostly and locked out of settings and admin.
var defaultRules = map[string][]policydomain.Rule{
	"admin": {
		{ActionPattern: "*", Effect: policydomain.EffectAllow},
		{ActionPattern: "admin.bootstrap", Effect: policydomain.EffectAllow, LocalOnly: true},
	},
	"member": {
		{ActionPattern: "chores.*", Effect: policydomain.EffectAllow},
		{ActionPattern: "meals.*", Effect: policydomain.EffectAllow},
		{ActionPattern: "shopping.*", Effect: policydomain.EffectAllow},
		{ActionPattern: "budgets.*", Effect: policydomain.EffectAllow},
		{ActionPattern: "calendar.*", Effect: policydomain.EffectAllow},
		{ActionPattern: "settings.read", Effect: policydomain.EffectAllow},
		{ActionPattern: "admin.*", Effect: policydomain.EffectDeny},
	},
	"kiosk": {
		{ActionPattern: "chores.read", Effect: policydomain.EffectAllow},
		{ActionPattern: "chores.complete", Effect: policydomain.EffectAllow},
		{ActionPattern: "meals.read", Effect: policydomain.EffectAllow},
		{ActionPattern: "shopping.read", Effect: policydomain.EffectAllow},
		{ActionPattern: "shopping.add", Effect: policydomain.EffectAllow},
		{ActionPattern: "calendar.read", Effect: policydomain.EffectAllow},
		{ActionPattern: "settings.*", Effect: policydomain.EffectDeny},
		{ActionPattern: "admin.*", Effect: policydomain.EffectDeny},
	},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	if cfg.DatabaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is not set; create a .env or set DATABASE_URL")
		os.Exit(1)
	}

	pool, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "db:", err)
		os.Exit(1)
	}
	defer pool.Close()

	repo := policyrepo.NewPostgresRepository(pool)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for role, rules := range defaultRules {
		if err := repo.ReplaceRulesForRole(ctx, role, rules); err != nil {
			fmt.Fprintf(os.Stderr, "seed role %s: %v\n", role, err)
			os.Exit(1)
		}
		fmt.Printf("seeded %d rules for role %s\n", len(rules), role)
	}
}
