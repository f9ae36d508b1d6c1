// Package service — post lifecycle and feed assembly.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/socialhub/internal/apperror"
	"github.com/sakif/socialhub/internal/model"
	"github.com/sakif/socialhub/internal/repository"
)

// Validation and pagination constants for posts.
const (
	MaxPostLength = 2000

	DefaultFeedLimit = 10
	MaxFeedLimit     = 50

	// FeedCommentPreview is how many of a post's most recent comments ride
	// along with it in feed responses.
	FeedCommentPreview = 3
)

// PostService handles post CRUD, like toggling, and feed assembly.
type PostService struct {
	posts    repository.PostRepository
	comments repository.CommentRepository
	logger   *slog.Logger
}

func NewPostService(
	posts repository.PostRepository,
	comments repository.CommentRepository,
	logger *slog.Logger,
) *PostService {
	return &PostService{
		posts:    posts,
		comments: comments,
		logger:   logger,
	}
}

// FeedPage is one page of a feed plus its pagination envelope.
// TotalPages = ceil(TotalPosts / limit).
type FeedPage struct {
	Posts       []model.PostView `json:"posts"`
	CurrentPage int              `json:"currentPage"`
	TotalPages  int              `json:"totalPages"`
	TotalPosts  int              `json:"totalPosts"`
}

// Create validates and saves a new post. At least one of content and image
// must be present; the image is immutable after this point.
func (s *PostService) Create(ctx context.Context, userID, content, imageURL string) (*model.PostView, error) {
	content = strings.TrimSpace(content)

	if content == "" && imageURL == "" {
		return nil, apperror.ValidationFailed("content", "Post content or image is required")
	}
	if len(content) > MaxPostLength {
		return nil, apperror.ValidationFailed("content",
			fmt.Sprintf("Post cannot exceed %d characters", MaxPostLength))
	}

	post := &model.Post{
		UserID:   userID,
		Content:  content,
		ImageURL: imageURL,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		s.logger.Error("failed to create post",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating post: %w", err)
	}

	s.logger.Info("post created",
		slog.String("id", post.ID),
		slog.String("userID", userID),
	)

	// Re-read through the repository so the response carries the author's
	// public fields, same as posts served from the feed.
	return s.posts.GetByID(ctx, post.ID)
}

// Feed returns one page of the global feed: all posts newest-first, each
// carrying its author, like-set, comment count, and up to
// FeedCommentPreview most-recent comments.
func (s *PostService) Feed(ctx context.Context, page, limit int) (*FeedPage, error) {
	page, limit = clampPage(page, limit)

	views, total, err := s.posts.List(ctx, repository.ListOptions{
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		s.logger.Error("failed to list posts", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing posts: %w", err)
	}

	if err := s.attachComments(ctx, views); err != nil {
		return nil, err
	}

	return &FeedPage{
		Posts:       views,
		CurrentPage: page,
		TotalPages:  totalPages(total, limit),
		TotalPosts:  total,
	}, nil
}

// FollowingFeed is Feed restricted to posts authored by accounts the viewer
// follows. Same pagination envelope as the global feed.
func (s *PostService) FollowingFeed(ctx context.Context, viewerID string, page, limit int) (*FeedPage, error) {
	page, limit = clampPage(page, limit)

	views, total, err := s.posts.ListFollowed(ctx, viewerID, repository.ListOptions{
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		s.logger.Error("failed to list followed posts",
			slog.String("viewerID", viewerID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing followed posts: %w", err)
	}

	if err := s.attachComments(ctx, views); err != nil {
		return nil, err
	}

	return &FeedPage{
		Posts:       views,
		CurrentPage: page,
		TotalPages:  totalPages(total, limit),
		TotalPosts:  total,
	}, nil
}

// UserPosts returns all of one account's posts, newest first.
func (s *PostService) UserPosts(ctx context.Context, userID string) ([]model.PostView, error) {
	views, err := s.posts.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing posts for user %s: %w", userID, err)
	}

	if err := s.attachComments(ctx, views); err != nil {
		return nil, err
	}
	return views, nil
}

// Update edits a post's text. Owner-only; a missing post is 404 and someone
// else's post is 403 — the two cases stay distinct.
func (s *PostService) Update(ctx context.Context, actorID, postID, content string) (*model.PostView, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.UserID != actorID {
		return nil, apperror.Forbidden("Not authorized to update this post")
	}

	content = strings.TrimSpace(content)
	if len(content) > MaxPostLength {
		return nil, apperror.ValidationFailed("content",
			fmt.Sprintf("Post cannot exceed %d characters", MaxPostLength))
	}
	if content == "" && post.ImageURL == "" {
		return nil, apperror.ValidationFailed("content", "Post content or image is required")
	}

	if err := s.posts.UpdateContent(ctx, postID, content); err != nil {
		return nil, fmt.Errorf("updating post %s: %w", postID, err)
	}

	s.logger.Info("post updated", slog.String("id", postID))
	return s.posts.GetByID(ctx, postID)
}

// Delete removes an own post (comments and likes go with it).
func (s *PostService) Delete(ctx context.Context, actorID, postID string) error {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.UserID != actorID {
		return apperror.Forbidden("Not authorized to delete this post")
	}

	if err := s.posts.Delete(ctx, postID); err != nil {
		return fmt.Errorf("deleting post %s: %w", postID, err)
	}

	s.logger.Info("post deleted", slog.String("id", postID))
	return nil
}

// ToggleLike flips the acting account's membership in the post's like-set.
// Each call inverts the current state, so repeated calls alternate outcome.
// Returns the new state and the full like list.
func (s *PostService) ToggleLike(ctx context.Context, actorID, postID string) (bool, []string, error) {
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return false, nil, err
	}

	liked, likes, err := s.posts.ToggleLike(ctx, postID, actorID)
	if err != nil {
		return false, nil, fmt.Errorf("toggling like on post %s: %w", postID, err)
	}
	return liked, likes, nil
}

// attachComments hydrates each post view with its comment count and the
// most recent comments. This is the "populate" half of feed assembly.
func (s *PostService) attachComments(ctx context.Context, views []model.PostView) error {
	for i := range views {
		comments, err := s.comments.ListByPost(ctx, views[i].ID, FeedCommentPreview)
		if err != nil {
			return fmt.Errorf("listing comments for post %s: %w", views[i].ID, err)
		}
		count, err := s.comments.CountByPost(ctx, views[i].ID)
		if err != nil {
			return fmt.Errorf("counting comments for post %s: %w", views[i].ID, err)
		}
		views[i].Comments = comments
		views[i].CommentsCount = count
	}
	return nil
}

// clampPage normalizes page/limit query values to sane bounds.
func clampPage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultFeedLimit
	}
	if limit > MaxFeedLimit {
		limit = MaxFeedLimit
	}
	return page, limit
}

// totalPages = ceil(total / limit).
func totalPages(total, limit int) int {
	return (total + limit - 1) / limit
}
