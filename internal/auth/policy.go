package auth

import (
	_ "embed"
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

//go:embed model.conf
var casbinModelContent string

// Policy decides which authorities may perform an action on an object.
type Policy struct {
	enforcer *casbin.SyncedEnforcer
}

// NewPolicy creates a casbin enforcer from the embedded model, seeded with policies.
// Passing no policies seeds DefaultPolicies.
func NewPolicy(policies ...[]string) (*Policy, error) {
	m, err := model.NewModelFromString(casbinModelContent)
	if err != nil {
		return nil, fmt.Errorf("parse casbin model: %w", err)
	}

	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("create casbin enforcer: %w", err)
	}

	if len(policies) == 0 {
		policies = DefaultPolicies
	}
	if _, err := enforcer.AddPolicies(policies); err != nil {
		return nil, fmt.Errorf("seed casbin policies: %w", err)
	}

	return &Policy{enforcer: enforcer}, nil
}

// Allowed reports whether any of the authorities may perform act on obj.
func (p *Policy) Allowed(authorities []Role, obj, act string) (bool, error) {
	for _, role := range authorities {
		ok, err := p.enforcer.Enforce(string(role), obj, act)
		if err != nil {
			return false, fmt.Errorf("enforce %s %s:%s: %w", role, obj, act, err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
