package auth

import (
	"errors"
	"fmt"

	"github.com/tharsikan/shop-web-app-backend/internal/okta"
)

// Role is an application authority. Each role maps one-to-one to an Okta group of the same name.
type Role string

const (
	RoleMember Role = "Muzfi_Member"
	RoleElite  Role = "Muzfi_Elite"
	RoleAdmin  Role = "Muzfi_Admin"
)

// KnownRoles is the closed set of roles the application recognises.
var KnownRoles = []Role{RoleMember, RoleElite, RoleAdmin}

// ErrUnknownRole is returned when a name is not one of KnownRoles.
var ErrUnknownRole = errors.New("unknown role")

// ParseRole matches name exactly against KnownRoles.
func ParseRole(name string) (Role, error) {
	for _, role := range KnownRoles {
		if string(role) == name {
			return role, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRole, name)
}

// RoleEditAction is the single membership change applied by a role edit.
type RoleEditAction string

const (
	RoleEditAdd    RoleEditAction = "ADD"
	RoleEditRemove RoleEditAction = "REMOVE"
)

// ResolveApplicationRoles keeps the groups whose profile name is a known role.
// Input order is preserved and unrelated groups are dropped.
func ResolveApplicationRoles(groups []okta.Group) []Role {
	names := make([]string, 0, len(groups))
	for _, g := range groups {
		names = append(names, g.Profile.Name)
	}
	return ResolveRoleNames(names)
}

// ResolveRoleNames is ResolveApplicationRoles over plain group names, as found in ID token claims.
func ResolveRoleNames(names []string) []Role {
	roles := make([]Role, 0, len(names))
	for _, name := range names {
		role, err := ParseRole(name)
		if err != nil {
			continue
		}
		if containsRole(roles, role) {
			continue
		}
		roles = append(roles, role)
	}
	return roles
}

// ApplyEdit returns the authority set after action: union for ADD, difference for REMOVE.
// The input slice is never modified.
func ApplyEdit(current []Role, role Role, action RoleEditAction) []Role {
	out := make([]Role, 0, len(current)+1)
	switch action {
	case RoleEditAdd:
		out = append(out, current...)
		if !containsRole(out, role) {
			out = append(out, role)
		}
	case RoleEditRemove:
		for _, r := range current {
			if r != role {
				out = append(out, r)
			}
		}
	default:
		out = append(out, current...)
	}
	return out
}

// RoleStrings converts roles to their persisted string form.
func RoleStrings(roles []Role) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}

// RolesFromStrings is the inverse of RoleStrings. Unknown names are dropped.
func RolesFromStrings(names []string) []Role {
	return ResolveRoleNames(names)
}

func containsRole(roles []Role, role Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// SameRoles reports whether a and b hold the same roles, ignoring order.
func SameRoles(a, b []Role) bool {
	for _, r := range a {
		if !containsRole(b, r) {
			return false
		}
	}
	for _, r := range b {
		if !containsRole(a, r) {
			return false
		}
	}
	return true
}
