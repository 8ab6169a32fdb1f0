package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tharsikan/shop-web-app-backend/internal/okta"
)

func oktaGroup(name string) okta.Group {
	return okta.Group{ID: "00g-" + name, Profile: okta.GroupProfile{Name: name}}
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole("Muzfi_Elite")
	require.NoError(t, err)
	assert.Equal(t, RoleElite, role)

	for _, name := range []string{"", "muzfi_elite", "Muzfi_Elite_Old", "Everyone"} {
		_, err := ParseRole(name)
		assert.ErrorIs(t, err, ErrUnknownRole, name)
	}
}

func TestResolveApplicationRoles(t *testing.T) {
	groups := []okta.Group{
		oktaGroup("Everyone"),
		oktaGroup("Muzfi_Elite"),
		oktaGroup("Muzfi_Elite_Old"),
		oktaGroup("Muzfi_Member"),
		oktaGroup("Engineering"),
	}

	roles := ResolveApplicationRoles(groups)
	assert.Equal(t, []Role{RoleElite, RoleMember}, roles)

	// deterministic for the same input
	assert.Equal(t, roles, ResolveApplicationRoles(groups))
	assert.Empty(t, ResolveApplicationRoles(nil))
}

func TestResolveRoleNames_Dedup(t *testing.T) {
	assert.Equal(t, []Role{RoleMember, RoleAdmin}, ResolveRoleNames([]string{"Muzfi_Member", "Muzfi_Admin", "Muzfi_Member"}))
}

func TestApplyEdit(t *testing.T) {
	member := []Role{RoleMember}

	t.Run("add is union", func(t *testing.T) {
		assert.Equal(t, []Role{RoleMember, RoleElite}, ApplyEdit(member, RoleElite, RoleEditAdd))
	})

	t.Run("add existing is idempotent", func(t *testing.T) {
		assert.Equal(t, []Role{RoleMember}, ApplyEdit(member, RoleMember, RoleEditAdd))
	})

	t.Run("remove is difference", func(t *testing.T) {
		assert.Equal(t, []Role{RoleMember}, ApplyEdit([]Role{RoleMember, RoleElite}, RoleElite, RoleEditRemove))
		assert.Equal(t, []Role{RoleMember}, ApplyEdit(member, RoleAdmin, RoleEditRemove))
	})

	t.Run("add then remove round trips", func(t *testing.T) {
		added := ApplyEdit(member, RoleElite, RoleEditAdd)
		assert.Equal(t, member, ApplyEdit(added, RoleElite, RoleEditRemove))
	})

	t.Run("input is not modified", func(t *testing.T) {
		current := make([]Role, 1, 4)
		current[0] = RoleMember
		_ = ApplyEdit(current, RoleElite, RoleEditAdd)
		assert.Equal(t, []Role{RoleMember}, current)
	})
}

func TestRoleStrings(t *testing.T) {
	assert.Equal(t, []string{"Muzfi_Member", "Muzfi_Elite"}, RoleStrings([]Role{RoleMember, RoleElite}))
	assert.Equal(t, []Role{RoleAdmin}, RolesFromStrings([]string{"bogus", "Muzfi_Admin"}))
}

func TestSameRoles(t *testing.T) {
	assert.True(t, SameRoles([]Role{RoleMember, RoleElite}, []Role{RoleElite, RoleMember}))
	assert.True(t, SameRoles(nil, []Role{}))
	assert.False(t, SameRoles([]Role{RoleMember}, []Role{RoleMember, RoleElite}))
	assert.False(t, SameRoles([]Role{RoleMember, RoleAdmin}, []Role{RoleMember}))
}
