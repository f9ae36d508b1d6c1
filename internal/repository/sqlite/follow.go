package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/sakif/socialhub/internal/apperror"
	"github.com/sakif/socialhub/internal/model"
	"github.com/sakif/socialhub/internal/repository"
)

// Follows is the FollowRepository implementation.
//
// WHY A WRAPPER TYPE?
// UserRepository already claims Create/Delete on *DB with user semantics.
// Go has no method overloading, so the follow-edge variants get their own
// receiver type sharing the same connection pool.
type Follows struct {
	db *DB
}

var _ repository.FollowRepository = (*Follows)(nil)

// FollowStore returns the follow-graph repository backed by this database.
func (db *DB) FollowStore() *Follows {
	return &Follows{db: db}
}

// Create inserts a follow edge. The composite primary key turns a repeat
// follow into a constraint violation, which surfaces as an explicit
// duplicate error rather than a silent success.
func (f *Follows) Create(ctx context.Context, followerID, followingID string) (*model.Follow, error) {
	edge := &model.Follow{
		FollowerID:  followerID,
		FollowingID: followingID,
		CreatedAt:   time.Now(),
	}

	_, err := f.db.conn.ExecContext(ctx,
		`INSERT INTO follows (follower_id, following_id, created_at) VALUES (?, ?, ?)`,
		edge.FollowerID, edge.FollowingID, edge.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "follows.follower_id") {
			return nil, apperror.Duplicate("Already following this user")
		}
		return nil, fmt.Errorf("sqlite: creating follow: %w", err)
	}

	return edge, nil
}

// Delete removes a follow edge; absent edge → not-found.
func (f *Follows) Delete(ctx context.Context, followerID, followingID string) error {
	result, err := f.db.conn.ExecContext(ctx,
		`DELETE FROM follows WHERE follower_id = ? AND following_id = ?`,
		followerID, followingID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting follow: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("Follow")
	}

	return nil
}

func (f *Follows) Exists(ctx context.Context, followerID, followingID string) (bool, error) {
	var n int
	err := f.db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM follows WHERE follower_id = ? AND following_id = ?`,
		followerID, followingID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking follow: %w", err)
	}
	return n > 0, nil
}

// Followers lists the accounts following userID, newest edge first, each
// resolved to the peer's public fields.
func (f *Follows) Followers(ctx context.Context, userID string) ([]model.FollowEntry, error) {
	return f.listEdges(ctx,
		`SELECT u.id, u.username, u.full_name, u.profile_picture, fl.created_at
		 FROM follows fl
		 JOIN users u ON u.id = fl.follower_id
		 WHERE fl.following_id = ?
		 ORDER BY fl.created_at DESC`,
		userID,
	)
}

// Following lists the accounts userID follows, newest edge first.
func (f *Follows) Following(ctx context.Context, userID string) ([]model.FollowEntry, error) {
	return f.listEdges(ctx,
		`SELECT u.id, u.username, u.full_name, u.profile_picture, fl.created_at
		 FROM follows fl
		 JOIN users u ON u.id = fl.following_id
		 WHERE fl.follower_id = ?
		 ORDER BY fl.created_at DESC`,
		userID,
	)
}

func (f *Follows) listEdges(ctx context.Context, query, userID string) ([]model.FollowEntry, error) {
	rows, err := f.db.conn.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing follows: %w", err)
	}
	defer rows.Close()

	entries := []model.FollowEntry{}
	for rows.Next() {
		var e model.FollowEntry
		if err := rows.Scan(&e.ID, &e.Username, &e.FullName, &e.ProfilePicture, &e.FollowedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning follow row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating follows: %w", err)
	}

	return entries, nil
}

// Counts returns follower and following totals for a profile view.
func (f *Follows) Counts(ctx context.Context, userID string) (followers, following int, err error) {
	err = f.db.conn.QueryRowContext(ctx,
		`SELECT
			(SELECT COUNT(*) FROM follows WHERE following_id = ?),
			(SELECT COUNT(*) FROM follows WHERE follower_id = ?)`,
		userID, userID,
	).Scan(&followers, &following)
	if err != nil {
		return 0, 0, fmt.Errorf("sqlite: counting follows: %w", err)
	}
	return followers, following, nil
}
