package migrations

import (
	"context"
	"fmt"

	"github.com/tharsikan/shop-web-app-backend/internal/db/models"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(up_20260302000000, down_20260302000000)
}

// up_20260302000000 creates follow, block, post and like tables
func up_20260302000000(ctx context.Context, db *bun.DB) error {
	if _, err := db.NewCreateTable().
		Model((*models.Follow)(nil)).
		IfNotExists().
		ForeignKey(`(follower_id) REFERENCES users(id) ON DELETE CASCADE`).
		ForeignKey(`(following_id) REFERENCES users(id) ON DELETE CASCADE`).
		Exec(ctx); err != nil {
		return fmt.Errorf("failed to create user_follows table: %w", err)
	}

	if _, err := db.NewCreateTable().
		Model((*models.Block)(nil)).
		IfNotExists().
		ForeignKey(`(blocker_id) REFERENCES users(id) ON DELETE CASCADE`).
		ForeignKey(`(blocked_id) REFERENCES users(id) ON DELETE CASCADE`).
		Exec(ctx); err != nil {
		return fmt.Errorf("failed to create user_blocks table: %w", err)
	}

	if _, err := db.NewCreateTable().
		Model((*models.Post)(nil)).
		IfNotExists().
		ForeignKey(`(author_id) REFERENCES users(id) ON DELETE CASCADE`).
		Exec(ctx); err != nil {
		return fmt.Errorf("failed to create posts table: %w", err)
	}

	if _, err := db.NewCreateTable().
		Model((*models.Like)(nil)).
		IfNotExists().
		ForeignKey(`(post_id) REFERENCES posts(id) ON DELETE CASCADE`).
		ForeignKey(`(user_id) REFERENCES users(id) ON DELETE CASCADE`).
		Exec(ctx); err != nil {
		return fmt.Errorf("failed to create post_likes table: %w", err)
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_user_follows_following ON user_follows(following_id)`,
		`CREATE INDEX IF NOT EXISTS idx_user_blocks_blocked ON user_blocks(blocked_id)`,
		`CREATE INDEX IF NOT EXISTS idx_post_likes_user ON post_likes(user_id)`,
	}
	for _, stmt := range indexes {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}

// down_20260302000000 drops the social tables
func down_20260302000000(ctx context.Context, db *bun.DB) error {
	for _, model := range []any{
		(*models.Like)(nil),
		(*models.Post)(nil),
		(*models.Block)(nil),
		(*models.Follow)(nil),
	} {
		if _, err := db.NewDropTable().Model(model).IfExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to drop table: %w", err)
		}
	}
	return nil
}
