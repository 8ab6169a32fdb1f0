package migrations

import (
	"context"
	"fmt"

	"github.com/tharsikan/shop-web-app-backend/internal/db/models"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(up_20260301000000, down_20260301000000)
}

// up_20260301000000 creates the users and sessions tables
func up_20260301000000(ctx context.Context, db *bun.DB) error {
	if _, err := db.NewCreateTable().
		Model((*models.User)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}

	if _, err := db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)`); err != nil {
		return fmt.Errorf("failed to create users email index: %w", err)
	}

	if _, err := db.NewCreateTable().
		Model((*models.Session)(nil)).
		IfNotExists().
		ForeignKey(`(user_id) REFERENCES users(id) ON DELETE CASCADE`).
		Exec(ctx); err != nil {
		return fmt.Errorf("failed to create sessions table: %w", err)
	}

	if _, err := db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_sessions_user_id ON sessions(user_id)`); err != nil {
		return fmt.Errorf("failed to create sessions user_id index: %w", err)
	}
	return nil
}

// down_20260301000000 drops the sessions and users tables
func down_20260301000000(ctx context.Context, db *bun.DB) error {
	for _, model := range []any{(*models.Session)(nil), (*models.User)(nil)} {
		if _, err := db.NewDropTable().Model(model).IfExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to drop table: %w", err)
		}
	}
	return nil
}
