package okta

// User is the subset of an Okta user record the application reads.
type User struct {
	ID      string      `json:"id"`
	Status  string      `json:"status"`
	Profile UserProfile `json:"profile"`
}

// UserProfile holds the Okta user profile attributes.
type UserProfile struct {
	Login     string `json:"login"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Group is an Okta group. Profile.Name is the address used to match application roles.
type Group struct {
	ID      string       `json:"id"`
	Type    string       `json:"type"`
	Profile GroupProfile `json:"profile"`
}

// GroupProfile holds the Okta group profile attributes.
type GroupProfile struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// GroupNames returns the profile names of groups in order.
func GroupNames(groups []Group) []string {
	names := make([]string, len(groups))
	for i, g := range groups {
		names[i] = g.Profile.Name
	}
	return names
}
