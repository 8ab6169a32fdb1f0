package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPrincipal(t *testing.T) {
	attrs := map[string]any{"sub": "okta-123", "email": "ada@muzfi.test"}
	roles := []Role{RoleMember, RoleMember, RoleElite}

	p := NewPrincipal("okta-123", attrs, roles)
	assert.Equal(t, "okta-123", p.SubjectID())
	assert.Equal(t, []Role{RoleMember, RoleElite}, p.Authorities())
	assert.True(t, p.HasAuthority(RoleElite))
	assert.False(t, p.HasAuthority(RoleAdmin))

	// callers cannot mutate the principal through inputs or outputs
	attrs["email"] = "changed"
	roles[0] = RoleAdmin
	p.Authorities()[0] = RoleAdmin
	p.Attributes()["sub"] = "someone-else"

	assert.Equal(t, "ada@muzfi.test", p.Attributes()["email"])
	assert.Equal(t, "okta-123", p.Attributes()["sub"])
	assert.Equal(t, []Role{RoleMember, RoleElite}, p.Authorities())
}

func TestWithAuthorities(t *testing.T) {
	p := NewPrincipal("okta-123", map[string]any{"name": "Ada"}, []Role{RoleMember})
	q := WithAuthorities(p, []Role{RoleMember, RoleAdmin})

	assert.Equal(t, p.SubjectID(), q.SubjectID())
	assert.Equal(t, p.Attributes(), q.Attributes())
	assert.Equal(t, []Role{RoleMember, RoleAdmin}, q.Authorities())
	assert.Equal(t, []Role{RoleMember}, p.Authorities())
}

func TestPrincipalFromClaims(t *testing.T) {
	claims := map[string]any{
		"sub":    "okta-123",
		"email":  "ada@muzfi.test",
		"groups": []any{"Everyone", "Muzfi_Member", "Muzfi_Elite"},
	}

	p, err := PrincipalFromClaims(claims, "groups")
	require.NoError(t, err)
	assert.Equal(t, "okta-123", p.SubjectID())
	assert.Equal(t, []Role{RoleMember, RoleElite}, p.Authorities())
	assert.Equal(t, "ada@muzfi.test", p.Attributes()["email"])

	_, err = PrincipalFromClaims(map[string]any{"email": "x"}, "groups")
	assert.Error(t, err)

	_, err = PrincipalFromClaims(map[string]any{"sub": "okta-1", "groups": 42}, "groups")
	assert.Error(t, err)
}

func TestExtractGroups(t *testing.T) {
	groups, err := ExtractGroups(map[string]any{}, "groups")
	require.NoError(t, err)
	assert.Empty(t, groups)

	groups, err = ExtractGroups(map[string]any{"groups": []string{"a", "b"}}, "groups")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, groups)

	groups, err = ExtractGroups(map[string]any{"roles": []any{"a", 1, "b"}}, "roles")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, groups)

	groups, err = ExtractGroups(map[string]any{"groups": "solo"}, "groups")
	require.NoError(t, err)
	assert.Equal(t, []string{"solo"}, groups)
}

func TestExtractClaimString(t *testing.T) {
	claims := map[string]any{"sub": "okta-1", "empty": "", "num": 3}

	v, err := ExtractClaimString(claims, "sub")
	require.NoError(t, err)
	assert.Equal(t, "okta-1", v)

	for _, field := range []string{"missing", "empty", "num"} {
		_, err := ExtractClaimString(claims, field)
		assert.Error(t, err, field)
	}
	assert.Equal(t, "", ExtractOptionalString(claims, "num"))
}
