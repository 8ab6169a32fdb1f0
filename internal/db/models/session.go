package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// AttributeMap stores opaque identity-provider attributes (ID token claims) as JSON.
type AttributeMap map[string]any

// Scan implements sql.Scanner for reading from database
func (a *AttributeMap) Scan(value any) error {
	if value == nil {
		*a = AttributeMap{}
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("failed to scan AttributeMap: expected []byte or string, got %T", value)
	}
	return json.Unmarshal(raw, a)
}

// Value implements driver.Valuer for writing to database
func (a AttributeMap) Value() (driver.Value, error) {
	if a == nil {
		return "{}", nil
	}
	bytes, err := json.Marshal(map[string]any(a))
	if err != nil {
		return nil, err
	}
	return string(bytes), nil
}

// Session is the durable record of a login session.
// The live principal (with its authorities) is held in memory by the session store;
// this row lets the store rebuild it after eviction or restart.
type Session struct {
	bun.BaseModel `bun:"table:sessions,alias:sess"`

	ID         string       `bun:"id,pk"`
	UserID     string       `bun:"user_id,notnull"`
	TokenHash  string       `bun:"token_hash,notnull,unique"` // SHA256 hash of the cookie token
	Attributes AttributeMap `bun:"attributes,type:text,notnull"`
	ExpiresAt  time.Time    `bun:"expires_at,notnull"`
	CreatedAt  time.Time    `bun:"created_at,notnull,default:current_timestamp"`
	LastUsedAt time.Time    `bun:"last_used_at,notnull,default:current_timestamp"`
	Revoked    bool         `bun:"revoked,notnull"`
}
