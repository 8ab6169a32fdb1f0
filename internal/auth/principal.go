package auth

import (
	"fmt"
	"maps"
	"slices"
)

// Principal is the identity behind an authenticated session, independent of the provider that issued it.
type Principal interface {
	SubjectID() string
	Attributes() map[string]any
	Authorities() []Role
	HasAuthority(role Role) bool
}

type principal struct {
	subject     string
	attributes  map[string]any
	authorities []Role
}

// NewPrincipal builds an immutable Principal. Attributes and authorities are copied and
// duplicate authorities collapsed.
func NewPrincipal(subject string, attributes map[string]any, authorities []Role) Principal {
	attrs := make(map[string]any, len(attributes))
	maps.Copy(attrs, attributes)

	roles := make([]Role, 0, len(authorities))
	for _, r := range authorities {
		if !containsRole(roles, r) {
			roles = append(roles, r)
		}
	}
	return &principal{subject: subject, attributes: attrs, authorities: roles}
}

// WithAuthorities returns a Principal with the same subject and attributes as p and the given authorities.
func WithAuthorities(p Principal, authorities []Role) Principal {
	return NewPrincipal(p.SubjectID(), p.Attributes(), authorities)
}

func (p *principal) SubjectID() string { return p.subject }

func (p *principal) Attributes() map[string]any {
	return maps.Clone(p.attributes)
}

func (p *principal) Authorities() []Role {
	return slices.Clone(p.authorities)
}

func (p *principal) HasAuthority(role Role) bool {
	return containsRole(p.authorities, role)
}

// PrincipalFromClaims adapts verified ID token claims. The subject comes from "sub", the
// authorities from the groups claim, and every claim is kept as an attribute.
func PrincipalFromClaims(claims map[string]any, groupsClaim string) (Principal, error) {
	subject, err := ExtractClaimString(claims, "sub")
	if err != nil {
		return nil, fmt.Errorf("principal from claims: %w", err)
	}
	groups, err := ExtractGroups(claims, groupsClaim)
	if err != nil {
		return nil, fmt.Errorf("principal from claims: %w", err)
	}
	return NewPrincipal(subject, claims, ResolveRoleNames(groups)), nil
}
