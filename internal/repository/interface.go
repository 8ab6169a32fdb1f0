package repository

import (
	"context"
	"errors"

	"github.com/tharsikan/shop-web-app-backend/internal/db/models"
)

// ErrNotFound is returned when the requested row does not exist.
var ErrNotFound = errors.New("not found")

// UserRepository exposes persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetBySubject(ctx context.Context, subject string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	// UpdateRoles replaces the persisted role list of the user.
	UpdateRoles(ctx context.Context, id string, roles models.RoleList) error
	UpdateLastLogin(ctx context.Context, id string) error
	List(ctx context.Context) ([]models.User, error)
}

// SessionRepository exposes persistence operations for login sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.Session, error)
	UpdateLastUsed(ctx context.Context, id string) error
	Revoke(ctx context.Context, id string) error
	RevokeByUserID(ctx context.Context, userID string) (int64, error)
	DeleteExpired(ctx context.Context) (int64, error)
}

// FollowRepository exposes persistence operations for follow edges.
type FollowRepository interface {
	// Create is idempotent: following twice keeps a single edge.
	Create(ctx context.Context, followerID, followingID string) error
	Delete(ctx context.Context, followerID, followingID string) error
	Exists(ctx context.Context, followerID, followingID string) (bool, error)
	ListFollowing(ctx context.Context, followerID string) ([]string, error)
	ListFollowers(ctx context.Context, followingID string) ([]string, error)
}

// BlockRepository exposes persistence operations for blocks.
type BlockRepository interface {
	// Create is idempotent and drops follow edges in both directions in the same transaction.
	Create(ctx context.Context, blockerID, blockedID string) error
	Delete(ctx context.Context, blockerID, blockedID string) error
	Exists(ctx context.Context, blockerID, blockedID string) (bool, error)
}

// PostRepository exposes the post lookups likes depend on.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id string) (*models.Post, error)
}

// LikeRepository exposes persistence operations for post likes.
type LikeRepository interface {
	// Create is idempotent: liking twice keeps a single like.
	Create(ctx context.Context, postID, userID string) error
	// Delete returns ErrNotFound when the like did not exist.
	Delete(ctx context.Context, postID, userID string) error
	ListUsersByPost(ctx context.Context, postID string) ([]models.User, error)
}
