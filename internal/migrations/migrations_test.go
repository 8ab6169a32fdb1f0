package migrations

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tharsikan/shop-web-app-backend/internal/db/bunx"
)

func TestMigrate_SQLite(t *testing.T) {
	ctx := context.Background()
	db, err := bunx.NewDB(ctx, ":memory:")
	require.NoError(t, err)
	defer bunx.Close(db)

	assert.True(t, IsSQLite(db))
	assert.False(t, IsPostgreSQL(db))

	group, err := Migrate(ctx, db)
	require.NoError(t, err)
	assert.NotZero(t, group.ID)

	for _, table := range []string{"users", "sessions", "user_follows", "user_blocks", "posts", "post_likes"} {
		_, err := db.NewSelect().Table(table).Limit(1).Exec(ctx)
		assert.NoError(t, err, "table %s should exist", table)
	}

	// Second run is a no-op.
	group, err = Migrate(ctx, db)
	require.NoError(t, err)
	assert.True(t, group.IsZero())
}
