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

// Posts is the PostRepository implementation.
type Posts struct {
	db *DB
}

var _ repository.PostRepository = (*Posts)(nil)

// PostStore returns the post repository backed by this database.
func (db *DB) PostStore() *Posts {
	return &Posts{db: db}
}

// postSelect joins each post with its author's public fields. Newest-first
// ordering uses id DESC as a tie-break; xid is time-ordered, so the
// secondary key agrees with creation order and only makes same-timestamp
// rows deterministic.
const postSelect = `
	SELECT p.id, p.user_id, p.content, p.image_url, p.created_at, p.updated_at,
	       u.username, u.full_name, u.profile_picture
	FROM posts p
	JOIN users u ON u.id = p.user_id`

func (r *Posts) Create(ctx context.Context, post *model.Post) error {
	post.ID = xid.New().String()

	now := time.Now()
	post.CreatedAt = now
	post.UpdatedAt = now

	_, err := r.db.conn.ExecContext(ctx,
		`INSERT INTO posts (id, user_id, content, image_url, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		post.ID,
		post.UserID,
		post.Content,
		post.ImageURL,
		post.CreatedAt,
		post.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating post: %w", err)
	}

	return nil
}

// GetByID returns the post with author and like-set populated.
func (r *Posts) GetByID(ctx context.Context, id string) (*model.PostView, error) {
	row := r.db.conn.QueryRowContext(ctx, postSelect+` WHERE p.id = ?`, id)

	view, err := scanPostView(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("Post")
		}
		return nil, fmt.Errorf("sqlite: getting post %s: %w", id, err)
	}

	view.Likes, err = r.likes(ctx, view.ID)
	if err != nil {
		return nil, err
	}

	return view, nil
}

// List returns one page of the global feed plus the total post count.
func (r *Posts) List(ctx context.Context, opts repository.ListOptions) ([]model.PostView, int, error) {
	views, err := r.queryViews(ctx,
		postSelect+`
		 ORDER BY p.created_at DESC, p.id DESC
		 LIMIT ? OFFSET ?`,
		opts.Limit, opts.Offset,
	)
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("sqlite: counting posts: %w", err)
	}

	return views, total, nil
}

// ListFollowed restricts the feed to posts whose author the viewer follows.
func (r *Posts) ListFollowed(ctx context.Context, viewerID string, opts repository.ListOptions) ([]model.PostView, int, error) {
	views, err := r.queryViews(ctx,
		postSelect+`
		 JOIN follows f ON f.following_id = p.user_id
		 WHERE f.follower_id = ?
		 ORDER BY p.created_at DESC, p.id DESC
		 LIMIT ? OFFSET ?`,
		viewerID, opts.Limit, opts.Offset,
	)
	if err != nil {
		return nil, 0, err
	}

	var total int
	err = r.db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*)
		 FROM posts p
		 JOIN follows f ON f.following_id = p.user_id
		 WHERE f.follower_id = ?`,
		viewerID,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("sqlite: counting followed posts: %w", err)
	}

	return views, total, nil
}

// ListByUser returns all of one account's posts, newest first.
func (r *Posts) ListByUser(ctx context.Context, userID string) ([]model.PostView, error) {
	return r.queryViews(ctx,
		postSelect+`
		 WHERE p.user_id = ?
		 ORDER BY p.created_at DESC, p.id DESC`,
		userID,
	)
}

// UpdateContent edits the post text. The image is immutable after creation,
// so content is the only updatable column.
func (r *Posts) UpdateContent(ctx context.Context, id, content string) error {
	result, err := r.db.conn.ExecContext(ctx,
		`UPDATE posts SET content = ?, updated_at = ? WHERE id = ?`,
		content, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating post %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("Post")
	}

	return nil
}

// Delete removes the post; its comments and likes cascade with it.
func (r *Posts) Delete(ctx context.Context, id string) error {
	result, err := r.db.conn.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting post %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("Post")
	}

	return nil
}

// ToggleLike flips the acting account's membership in the post's like-set:
// delete the row if present, insert it otherwise. The whole flip plus the
// re-read of the like list runs in one transaction, so concurrent toggles
// on the same post each see a consistent before-state.
func (r *Posts) ToggleLike(ctx context.Context, postID, userID string) (bool, []string, error) {
	return toggleLike(ctx, r.db.conn, "post_likes", "post_id", postID, userID)
}

func (r *Posts) likes(ctx context.Context, postID string) ([]string, error) {
	return likeList(ctx, r.db.conn, "post_likes", "post_id", postID)
}

func (r *Posts) queryViews(ctx context.Context, query string, args ...any) ([]model.PostView, error) {
	rows, err := r.db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing posts: %w", err)
	}
	defer rows.Close()

	views := []model.PostView{}
	for rows.Next() {
		view, err := scanPostView(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning post row: %w", err)
		}
		views = append(views, *view)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating posts: %w", err)
	}

	// Populate like-sets per post. One query per row is fine at feed page
	// sizes (<= 50) and keeps the SQL readable.
	for i := range views {
		views[i].Likes, err = r.likes(ctx, views[i].ID)
		if err != nil {
			return nil, err
		}
	}

	return views, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanPostView(s scanner) (*model.PostView, error) {
	var v model.PostView
	err := s.Scan(
		&v.ID,
		&v.UserID,
		&v.Content,
		&v.ImageURL,
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

// toggleLike implements the flip-current-membership semantic shared by post
// and comment likes: each call inverts the acting account's membership, so
// repeated calls alternate outcome.
func toggleLike(ctx context.Context, conn *sql.DB, table, column, resourceID, userID string) (bool, []string, error) {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return false, nil, fmt.Errorf("sqlite: beginning like toggle: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`DELETE FROM `+table+` WHERE `+column+` = ? AND user_id = ?`,
		resourceID, userID,
	)
	if err != nil {
		return false, nil, fmt.Errorf("sqlite: toggling like: %w", err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return false, nil, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}

	liked := removed == 0
	if liked {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO `+table+` (`+column+`, user_id, created_at) VALUES (?, ?, ?)`,
			resourceID, userID, time.Now(),
		)
		if err != nil {
			return false, nil, fmt.Errorf("sqlite: inserting like: %w", err)
		}
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT user_id FROM `+table+` WHERE `+column+` = ? ORDER BY created_at`,
		resourceID,
	)
	if err != nil {
		return false, nil, fmt.Errorf("sqlite: reading likes: %w", err)
	}

	likes, err := collectIDs(rows)
	if err != nil {
		return false, nil, err
	}

	if err := tx.Commit(); err != nil {
		return false, nil, fmt.Errorf("sqlite: committing like toggle: %w", err)
	}

	return liked, likes, nil
}

func likeList(ctx context.Context, conn *sql.DB, table, column, resourceID string) ([]string, error) {
	rows, err := conn.QueryContext(ctx,
		`SELECT user_id FROM `+table+` WHERE `+column+` = ? ORDER BY created_at`,
		resourceID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: reading likes: %w", err)
	}
	return collectIDs(rows)
}

func collectIDs(rows *sql.Rows) ([]string, error) {
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("sqlite: scanning like row: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating likes: %w", err)
	}
	return ids, nil
}
