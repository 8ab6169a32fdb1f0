// Package social implements follows, blocks and likes. Every mutation is made on behalf of a
// user named in the request and is rejected unless the session belongs to that user.
package social

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tharsikan/shop-web-app-backend/internal/db/models"
	"github.com/tharsikan/shop-web-app-backend/internal/repository"
)

var (
	// ErrSelfAction is returned when a user targets themselves.
	ErrSelfAction = errors.New("cannot target yourself")

	// ErrBlocked is returned when a block between the two users forbids the action.
	ErrBlocked = errors.New("blocked")
)

// Gate authorizes user-scoped mutations.
type Gate interface {
	RequireActingAsUser(ctx context.Context, userID string) error
}

// Service is the social graph and likes API.
type Service struct {
	gate    Gate
	users   repository.UserRepository
	follows repository.FollowRepository
	blocks  repository.BlockRepository
	posts   repository.PostRepository
	likes   repository.LikeRepository
	logger  zerolog.Logger
}

// Dependencies contains all dependencies for social service construction.
type Dependencies struct {
	Gate    Gate
	Users   repository.UserRepository
	Follows repository.FollowRepository
	Blocks  repository.BlockRepository
	Posts   repository.PostRepository
	Likes   repository.LikeRepository
	Logger  zerolog.Logger
}

// NewService creates the social service.
func NewService(deps Dependencies) *Service {
	return &Service{
		gate:    deps.Gate,
		users:   deps.Users,
		follows: deps.Follows,
		blocks:  deps.Blocks,
		posts:   deps.Posts,
		likes:   deps.Likes,
		logger:  deps.Logger,
	}
}

// Follow makes userID follow targetID.
func (s *Service) Follow(ctx context.Context, userID, targetID string) error {
	if err := s.authorizePair(ctx, userID, targetID); err != nil {
		return err
	}
	for _, pair := range [][2]string{{targetID, userID}, {userID, targetID}} {
		blocked, err := s.blocks.Exists(ctx, pair[0], pair[1])
		if err != nil {
			return err
		}
		if blocked {
			return ErrBlocked
		}
	}
	if err := s.follows.Create(ctx, userID, targetID); err != nil {
		return err
	}
	s.logger.Debug().Str("user_id", userID).Str("target_id", targetID).Msg("follow")
	return nil
}

// Unfollow removes the follow edge from userID to targetID.
func (s *Service) Unfollow(ctx context.Context, userID, targetID string) error {
	if err := s.gate.RequireActingAsUser(ctx, userID); err != nil {
		return err
	}
	return s.follows.Delete(ctx, userID, targetID)
}

// Block makes userID block targetID and drops follows between them in both directions.
func (s *Service) Block(ctx context.Context, userID, targetID string) error {
	if err := s.authorizePair(ctx, userID, targetID); err != nil {
		return err
	}
	if err := s.blocks.Create(ctx, userID, targetID); err != nil {
		return err
	}
	s.logger.Info().Str("user_id", userID).Str("target_id", targetID).Msg("user blocked")
	return nil
}

// Unblock removes a block made by userID.
func (s *Service) Unblock(ctx context.Context, userID, targetID string) error {
	if err := s.gate.RequireActingAsUser(ctx, userID); err != nil {
		return err
	}
	return s.blocks.Delete(ctx, userID, targetID)
}

// Following lists the ids userID follows.
func (s *Service) Following(ctx context.Context, userID string) ([]string, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.follows.ListFollowing(ctx, userID)
}

// Followers lists the ids following userID.
func (s *Service) Followers(ctx context.Context, userID string) ([]string, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.follows.ListFollowers(ctx, userID)
}

// Like records userID's like on postID. Liking twice keeps one like.
func (s *Service) Like(ctx context.Context, postID, userID string) error {
	if err := s.gate.RequireActingAsUser(ctx, userID); err != nil {
		return err
	}
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return err
	}
	return s.likes.Create(ctx, postID, userID)
}

// Unlike removes userID's like on postID.
func (s *Service) Unlike(ctx context.Context, postID, userID string) error {
	if err := s.gate.RequireActingAsUser(ctx, userID); err != nil {
		return err
	}
	return s.likes.Delete(ctx, postID, userID)
}

// LikedUsers returns the users who liked postID.
func (s *Service) LikedUsers(ctx context.Context, postID string) ([]models.User, error) {
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	return s.likes.ListUsersByPost(ctx, postID)
}

// authorizePair runs the gate, then checks that target is another existing user.
func (s *Service) authorizePair(ctx context.Context, userID, targetID string) error {
	if err := s.gate.RequireActingAsUser(ctx, userID); err != nil {
		return err
	}
	if userID == targetID {
		return ErrSelfAction
	}
	if _, err := s.users.GetByID(ctx, targetID); err != nil {
		return fmt.Errorf("target user: %w", err)
	}
	return nil
}
