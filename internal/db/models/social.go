package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Follow records that FollowerID follows FollowingID.
type Follow struct {
	bun.BaseModel `bun:"table:user_follows,alias:uf"`

	FollowerID  string    `bun:"follower_id,pk"`
	FollowingID string    `bun:"following_id,pk"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// Block records that BlockerID blocked BlockedID.
type Block struct {
	bun.BaseModel `bun:"table:user_blocks,alias:ub"`

	BlockerID string    `bun:"blocker_id,pk"`
	BlockedID string    `bun:"blocked_id,pk"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// PostType distinguishes plain posts from marketplace listings.
type PostType string

const (
	PostTypePost    PostType = "post"
	PostTypeListing PostType = "listing"
)

// Post carries only what likes need; post and listing content live elsewhere.
type Post struct {
	bun.BaseModel `bun:"table:posts,alias:p"`

	ID        string    `bun:"id,pk"`
	AuthorID  string    `bun:"author_id,notnull"`
	Title     string    `bun:"title,notnull"`
	Type      PostType  `bun:"type,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// Like records a user's like on a post.
type Like struct {
	bun.BaseModel `bun:"table:post_likes,alias:pl"`

	PostID    string    `bun:"post_id,pk"`
	UserID    string    `bun:"user_id,pk"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}
