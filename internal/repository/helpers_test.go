package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tharsikan/shop-web-app-backend/internal/db/bunx"
	"github.com/tharsikan/shop-web-app-backend/internal/db/models"
	"github.com/tharsikan/shop-web-app-backend/internal/migrations"
	"github.com/uptrace/bun"
)

// setupTestDB opens a migrated in-memory SQLite database
func setupTestDB(t *testing.T) *bun.DB {
	t.Helper()

	ctx := context.Background()
	db, err := bunx.NewDB(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = bunx.Close(db) })

	_, err = migrations.Migrate(ctx, db)
	require.NoError(t, err)
	return db
}

func createTestUser(t *testing.T, repo UserRepository, subject string, roles ...string) *models.User {
	t.Helper()

	user := &models.User{
		Subject: subject,
		Email:   subject + "@muzfi.test",
		Name:    subject,
		Roles:   models.RoleList(roles),
	}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}
