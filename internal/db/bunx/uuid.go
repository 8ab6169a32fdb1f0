package bunx

import "github.com/google/uuid"

// NewUUIDv7 generates a time-ordered UUIDv7 string for primary keys.
// Works on both Postgres and SQLite since no database default is involved.
func NewUUIDv7() string {
	return uuid.Must(uuid.NewV7()).String()
}
