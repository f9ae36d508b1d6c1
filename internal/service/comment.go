// Package service — comment lifecycle.
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

// MaxCommentLength caps comment text.
const MaxCommentLength = 500

// CommentService handles comment CRUD and like toggling. Comments hang off
// their parent post by id; the post itself is only read to confirm it
// exists before attaching a new comment.
type CommentService struct {
	comments repository.CommentRepository
	posts    repository.PostRepository
	logger   *slog.Logger
}

func NewCommentService(
	comments repository.CommentRepository,
	posts repository.PostRepository,
	logger *slog.Logger,
) *CommentService {
	return &CommentService{
		comments: comments,
		posts:    posts,
		logger:   logger,
	}
}

// Create validates and attaches a comment to a post. Unknown post → 404.
func (s *CommentService) Create(ctx context.Context, actorID, postID, content string) (*model.CommentView, error) {
	content = strings.TrimSpace(content)

	if content == "" {
		return nil, apperror.ValidationFailed("content", "Comment content is required")
	}
	if len(content) > MaxCommentLength {
		return nil, apperror.ValidationFailed("content",
			fmt.Sprintf("Comment cannot exceed %d characters", MaxCommentLength))
	}

	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return nil, err
	}

	comment := &model.Comment{
		PostID:  postID,
		UserID:  actorID,
		Content: content,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		s.logger.Error("failed to create comment",
			slog.String("postID", postID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating comment: %w", err)
	}

	s.logger.Info("comment created",
		slog.String("id", comment.ID),
		slog.String("postID", postID),
	)

	return s.comments.GetByID(ctx, comment.ID)
}

// ListForPost returns all of a post's comments, newest first. Unknown post
// → 404 rather than an empty list.
func (s *CommentService) ListForPost(ctx context.Context, postID string) ([]model.CommentView, error) {
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	return s.comments.ListByPost(ctx, postID, 0)
}

// Update edits an own comment's text. 404 vs 403 stay distinct.
func (s *CommentService) Update(ctx context.Context, actorID, commentID, content string) (*model.CommentView, error) {
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.UserID != actorID {
		return nil, apperror.Forbidden("Not authorized to update this comment")
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperror.ValidationFailed("content", "Comment content is required")
	}
	if len(content) > MaxCommentLength {
		return nil, apperror.ValidationFailed("content",
			fmt.Sprintf("Comment cannot exceed %d characters", MaxCommentLength))
	}

	if err := s.comments.UpdateContent(ctx, commentID, content); err != nil {
		return nil, fmt.Errorf("updating comment %s: %w", commentID, err)
	}

	s.logger.Info("comment updated", slog.String("id", commentID))
	return s.comments.GetByID(ctx, commentID)
}

// Delete removes an own comment. One atomic DELETE — the parent post has no
// stored comment list to clean up.
func (s *CommentService) Delete(ctx context.Context, actorID, commentID string) error {
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.UserID != actorID {
		return apperror.Forbidden("Not authorized to delete this comment")
	}

	if err := s.comments.Delete(ctx, commentID); err != nil {
		return fmt.Errorf("deleting comment %s: %w", commentID, err)
	}

	s.logger.Info("comment deleted", slog.String("id", commentID))
	return nil
}

// ToggleLike flips the acting account's membership in the comment's
// like-set, same semantics as post likes.
func (s *CommentService) ToggleLike(ctx context.Context, actorID, commentID string) (bool, []string, error) {
	if _, err := s.comments.GetByID(ctx, commentID); err != nil {
		return false, nil, err
	}

	liked, likes, err := s.comments.ToggleLike(ctx, commentID, actorID)
	if err != nil {
		return false, nil, fmt.Errorf("toggling like on comment %s: %w", commentID, err)
	}
	return liked, likes, nil
}
