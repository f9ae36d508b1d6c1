package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/socialhub/internal/apperror"
	"github.com/sakif/socialhub/internal/model"
	"github.com/sakif/socialhub/internal/repository"
)

// Comments is the CommentRepository implementation. A post's comment list
// is derived from this table by post_id — there is no stored id list on the
// post, so create/delete here never touch the posts table.
type Comments struct {
	db *DB
}

var _ repository.CommentRepository = (*Comments)(nil)

// CommentStore returns the comment repository backed by this database.
func (db *DB) CommentStore() *Comments {
	return &Comments{db: db}
}

const commentSelect = `
	SELECT c.id, c.post_id, c.user_id, c.content, c.created_at, c.updated_at,
	       u.username, u.full_name, u.profile_picture
	FROM comments c
	JOIN users u ON u.id = c.user_id`

func (r *Comments) Create(ctx context.Context, comment *model.Comment) error {
	comment.ID = xid.New().String()

	now := time.Now()
	comment.CreatedAt = now
	comment.UpdatedAt = now

	_, err := r.db.conn.ExecContext(ctx,
		`INSERT INTO comments (id, post_id, user_id, content, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		comment.ID,
		comment.PostID,
		comment.UserID,
		comment.Content,
		comment.CreatedAt,
		comment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating comment: %w", err)
	}

	return nil
}

func (r *Comments) GetByID(ctx context.Context, id string) (*model.CommentView, error) {
	row := r.db.conn.QueryRowContext(ctx, commentSelect+` WHERE c.id = ?`, id)

	view, err := scanCommentView(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("Comment")
		}
		return nil, fmt.Errorf("sqlite: getting comment %s: %w", id, err)
	}

	view.Likes, err = likeList(ctx, r.db.conn, "comment_likes", "comment_id", view.ID)
	if err != nil {
		return nil, err
	}

	return view, nil
}

// ListByPost returns a post's comments newest-first. limit <= 0 returns all
// of them; the feed assembler passes 3 for the per-post preview.
func (r *Comments) ListByPost(ctx context.Context, postID string, limit int) ([]model.CommentView, error) {
	query := commentSelect + `
		 WHERE c.post_id = ?
		 ORDER BY c.created_at DESC, c.id DESC`
	args := []any{postID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing comments: %w", err)
	}
	defer rows.Close()

	views := []model.CommentView{}
	for rows.Next() {
		view, err := scanCommentView(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning comment row: %w", err)
		}
		views = append(views, *view)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating comments: %w", err)
	}

	for i := range views {
		views[i].Likes, err = likeList(ctx, r.db.conn, "comment_likes", "comment_id", views[i].ID)
		if err != nil {
			return nil, err
		}
	}

	return views, nil
}

func (r *Comments) CountByPost(ctx context.Context, postID string) (int, error) {
	var n int
	err := r.db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM comments WHERE post_id = ?`, postID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting comments: %w", err)
	}
	return n, nil
}

func (r *Comments) UpdateContent(ctx context.Context, id, content string) error {
	result, err := r.db.conn.ExecContext(ctx,
		`UPDATE comments SET content = ?, updated_at = ? WHERE id = ?`,
		content, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating comment %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("Comment")
	}

	return nil
}

// Delete removes the comment (likes cascade). Because the parent post holds
// no comment-id list, this single DELETE is the entire operation — nothing
// to detach, nothing to dangle.
func (r *Comments) Delete(ctx context.Context, id string) error {
	result, err := r.db.conn.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting comment %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("Comment")
	}

	return nil
}

// ToggleLike flips the acting account's membership in the comment's
// like-set, same semantics as post likes.
func (r *Comments) ToggleLike(ctx context.Context, commentID, userID string) (bool, []string, error) {
	return toggleLike(ctx, r.db.conn, "comment_likes", "comment_id", commentID, userID)
}

func scanCommentView(s scanner) (*model.CommentView, error) {
	var v model.CommentView
	err := s.Scan(
		&v.ID,
		&v.PostID,
		&v.UserID,
		&v.Content,
		&v.CreatedAt,
		&v.UpdatedAt,
		&v.User.Username,
		&v.User.FullName,
		&v.User.ProfilePicture,
	)
	if err != nil {
		return nil, err
	}
	v.User.ID = v.UserID
	v.Likes = []string{}
	return &v, nil
}
