// Package repository defines the storage interfaces the service layer
// programs against. The sqlite subpackage provides the concrete
// implementation; tests substitute in-memory mocks.
package repository

import (
	"context"

	"github.com/sakif/socialhub/internal/model"
)

// ListOptions carries LIMIT/OFFSET pagination for list queries.
type ListOptions struct {
	Limit  int
	Offset int
}

// ProfileUpdate carries the mutable profile fields. A nil pointer means
// "leave unchanged" — all other account fields are immutable through this
// path.
type ProfileUpdate struct {
	FullName       *string
	Bio            *string
	ProfilePicture *string
}

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	UpdateProfile(ctx context.Context, id string, upd ProfileUpdate) (*model.User, error)
	// Delete removes the account and cascades to its posts, comments,
	// likes, and both sides of its follow edges.
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, query string, limit int) ([]model.Profile, error)
}

type FollowRepository interface {
	// Create inserts a follow edge. Returns apperror.ErrDuplicate if the
	// edge already exists.
	Create(ctx context.Context, followerID, followingID string) (*model.Follow, error)
	// Delete removes a follow edge. Returns apperror.ErrNotFound if the
	// edge does not exist.
	Delete(ctx context.Context, followerID, followingID string) error
	Exists(ctx context.Context, followerID, followingID string) (bool, error)
	Followers(ctx context.Context, userID string) ([]model.FollowEntry, error)
	Following(ctx context.Context, userID string) ([]model.FollowEntry, error)
	// Counts returns the number of followers of and accounts followed by
	// the given account.
	Counts(ctx context.Context, userID string) (followers, following int, err error)
}

type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	// GetByID returns the post with author and likes populated (comments
	// are attached by the feed assembler).
	GetByID(ctx context.Context, id string) (*model.PostView, error)
	// List returns a page of the global feed, newest-first, plus the total
	// post count for pagination.
	List(ctx context.Context, opts ListOptions) ([]model.PostView, int, error)
	// ListFollowed is List restricted to posts authored by accounts the
	// viewer follows.
	ListFollowed(ctx context.Context, viewerID string, opts ListOptions) ([]model.PostView, int, error)
	ListByUser(ctx context.Context, userID string) ([]model.PostView, error)
	UpdateContent(ctx context.Context, id, content string) error
	Delete(ctx context.Context, id string) error
	// ToggleLike flips the acting account's membership in the post's
	// like-set and reports the new state plus the full like list.
	ToggleLike(ctx context.Context, postID, userID string) (liked bool, likes []string, err error)
}

type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	GetByID(ctx context.Context, id string) (*model.CommentView, error)
	// ListByPost returns a post's comments newest-first with authors and
	// likes populated. limit <= 0 means all.
	ListByPost(ctx context.Context, postID string, limit int) ([]model.CommentView, error)
	CountByPost(ctx context.Context, postID string) (int, error)
	UpdateContent(ctx context.Context, id, content string) error
	Delete(ctx context.Context, id string) error
	ToggleLike(ctx context.Context, commentID, userID string) (liked bool, likes []string, err error)
}
