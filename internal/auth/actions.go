package auth

// Policy objects
const (
	ObjectUsers = "users"
	ObjectPosts = "posts"
	ObjectRoles = "roles"
)

// Policy actions
const (
	// ActionSocial covers follow, unfollow, block and unblock.
	ActionSocial = "social"

	// ActionLike covers liking and removing a like.
	ActionLike = "like"

	// ActionSelf covers editing one's own roles.
	ActionSelf = "self"

	// ActionAdmin covers editing any user's roles.
	ActionAdmin = "admin"
)

// DefaultPolicies grants each authority its permissions. Muzfi_Elite carries no extra grants.
var DefaultPolicies = [][]string{
	{string(RoleMember), ObjectUsers, ActionSocial},
	{string(RoleMember), ObjectPosts, ActionLike},
	{string(RoleMember), ObjectRoles, ActionSelf},
	{string(RoleAdmin), ObjectRoles, ActionAdmin},
}
