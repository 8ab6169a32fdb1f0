package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// RoleList is the persisted set of application role names for a user.
// Stored as a JSON array so the same column works on Postgres and SQLite.
type RoleList []string

// Scan implements sql.Scanner for reading from database
func (r *RoleList) Scan(value any) error {
	if value == nil {
		*r = RoleList{}
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("failed to scan RoleList: expected []byte or string, got %T", value)
	}
	return json.Unmarshal(raw, r)
}

// Value implements driver.Valuer for writing to database
func (r RoleList) Value() (driver.Value, error) {
	if r == nil {
		return "[]", nil
	}
	bytes, err := json.Marshal([]string(r))
	if err != nil {
		return nil, err
	}
	return string(bytes), nil
}

// Contains reports whether name is in the list.
func (r RoleList) Contains(name string) bool {
	for _, role := range r {
		if role == name {
			return true
		}
	}
	return false
}

// User is the local mirror of an Okta-managed identity.
// Roles is a cache of the user's Okta group membership; Okta stays the source of truth.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID          string     `bun:"id,pk"`
	Subject     string     `bun:"subject,notnull,unique"` // Okta user id (ID token "sub")
	Email       string     `bun:"email,notnull"`
	Name        string     `bun:"name"`
	Roles       RoleList   `bun:"roles,type:text,notnull"`
	CreatedAt   time.Time  `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt   time.Time  `bun:"updated_at,notnull,default:current_timestamp"`
	LastLoginAt *time.Time `bun:"last_login_at"`
}
