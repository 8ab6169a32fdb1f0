package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tharsikan/shop-web-app-backend/internal/db/models"
	"github.com/uptrace/bun"
)

// BunFollowRepository implements FollowRepository using Bun ORM
type BunFollowRepository struct {
	db *bun.DB
}

// NewBunFollowRepository creates a new Bun-based follow repository
func NewBunFollowRepository(db *bun.DB) *BunFollowRepository {
	return &BunFollowRepository{db: db}
}

func (r *BunFollowRepository) Create(ctx context.Context, followerID, followingID string) error {
	follow := &models.Follow{FollowerID: followerID, FollowingID: followingID, CreatedAt: time.Now().UTC()}
	_, err := r.db.NewInsert().
		Model(follow).
		On("CONFLICT (follower_id, following_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create follow: %w", err)
	}
	return nil
}

func (r *BunFollowRepository) Delete(ctx context.Context, followerID, followingID string) error {
	result, err := r.db.NewDelete().
		Model((*models.Follow)(nil)).
		Where("follower_id = ?", followerID).
		Where("following_id = ?", followingID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete follow: %w", err)
	}
	return expectRows(result, "follow", followerID+"->"+followingID)
}

func (r *BunFollowRepository) Exists(ctx context.Context, followerID, followingID string) (bool, error) {
	exists, err := r.db.NewSelect().
		Model((*models.Follow)(nil)).
		Where("follower_id = ?", followerID).
		Where("following_id = ?", followingID).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("check follow: %w", err)
	}
	return exists, nil
}

func (r *BunFollowRepository) ListFollowing(ctx context.Context, followerID string) ([]string, error) {
	var ids []string
	err := r.db.NewSelect().
		Model((*models.Follow)(nil)).
		Column("following_id").
		Where("follower_id = ?", followerID).
		Order("created_at ASC").
		Scan(ctx, &ids)
	if err != nil {
		return nil, fmt.Errorf("list following: %w", err)
	}
	return ids, nil
}

func (r *BunFollowRepository) ListFollowers(ctx context.Context, followingID string) ([]string, error) {
	var ids []string
	err := r.db.NewSelect().
		Model((*models.Follow)(nil)).
		Column("follower_id").
		Where("following_id = ?", followingID).
		Order("created_at ASC").
		Scan(ctx, &ids)
	if err != nil {
		return nil, fmt.Errorf("list followers: %w", err)
	}
	return ids, nil
}

// BunBlockRepository implements BlockRepository using Bun ORM
type BunBlockRepository struct {
	db *bun.DB
}

// NewBunBlockRepository creates a new Bun-based block repository
func NewBunBlockRepository(db *bun.DB) *BunBlockRepository {
	return &BunBlockRepository{db: db}
}

func (r *BunBlockRepository) Create(ctx context.Context, blockerID, blockedID string) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		block := &models.Block{BlockerID: blockerID, BlockedID: blockedID, CreatedAt: time.Now().UTC()}
		if _, err := tx.NewInsert().
			Model(block).
			On("CONFLICT (blocker_id, blocked_id) DO NOTHING").
			Exec(ctx); err != nil {
			return fmt.Errorf("create block: %w", err)
		}

		if _, err := tx.NewDelete().
			Model((*models.Follow)(nil)).
			Where("(follower_id = ? AND following_id = ?) OR (follower_id = ? AND following_id = ?)",
				blockerID, blockedID, blockedID, blockerID).
			Exec(ctx); err != nil {
			return fmt.Errorf("drop follows for block: %w", err)
		}
		return nil
	})
}

func (r *BunBlockRepository) Delete(ctx context.Context, blockerID, blockedID string) error {
	result, err := r.db.NewDelete().
		Model((*models.Block)(nil)).
		Where("blocker_id = ?", blockerID).
		Where("blocked_id = ?", blockedID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete block: %w", err)
	}
	return expectRows(result, "block", blockerID+"->"+blockedID)
}

func (r *BunBlockRepository) Exists(ctx context.Context, blockerID, blockedID string) (bool, error) {
	exists, err := r.db.NewSelect().
		Model((*models.Block)(nil)).
		Where("blocker_id = ?", blockerID).
		Where("blocked_id = ?", blockedID).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("check block: %w", err)
	}
	return exists, nil
}

// BunPostRepository implements PostRepository using Bun ORM
type BunPostRepository struct {
	db *bun.DB
}

// NewBunPostRepository creates a new Bun-based post repository
func NewBunPostRepository(db *bun.DB) *BunPostRepository {
	return &BunPostRepository{db: db}
}

func (r *BunPostRepository) Create(ctx context.Context, post *models.Post) error {
	if post.Type == "" {
		post.Type = models.PostTypePost
	}
	post.CreatedAt = time.Now().UTC()
	if _, err := r.db.NewInsert().Model(post).Exec(ctx); err != nil {
		return fmt.Errorf("create post: %w", err)
	}
	return nil
}

func (r *BunPostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	post := new(models.Post)
	err := r.db.NewSelect().
		Model(post).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("post %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get post by ID: %w", err)
	}
	return post, nil
}

// BunLikeRepository implements LikeRepository using Bun ORM
type BunLikeRepository struct {
	db *bun.DB
}

// NewBunLikeRepository creates a new Bun-based like repository
func NewBunLikeRepository(db *bun.DB) *BunLikeRepository {
	return &BunLikeRepository{db: db}
}

func (r *BunLikeRepository) Create(ctx context.Context, postID, userID string) error {
	like := &models.Like{PostID: postID, UserID: userID, CreatedAt: time.Now().UTC()}
	_, err := r.db.NewInsert().
		Model(like).
		On("CONFLICT (post_id, user_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create like: %w", err)
	}
	return nil
}

func (r *BunLikeRepository) Delete(ctx context.Context, postID, userID string) error {
	result, err := r.db.NewDelete().
		Model((*models.Like)(nil)).
		Where("post_id = ?", postID).
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete like: %w", err)
	}
	return expectRows(result, "like", postID+"/"+userID)
}

// ListUsersByPost returns the users who liked a post, oldest like first
func (r *BunLikeRepository) ListUsersByPost(ctx context.Context, postID string) ([]models.User, error) {
	var users []models.User
	err := r.db.NewSelect().
		Model(&users).
		Join("JOIN post_likes AS pl ON pl.user_id = u.id").
		Where("pl.post_id = ?", postID).
		Order("pl.created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list liked users: %w", err)
	}
	return users, nil
}
