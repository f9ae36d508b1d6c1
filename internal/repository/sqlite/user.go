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

// Users is the UserRepository implementation. Each repository gets its own
// receiver type over the shared connection pool because Create/Delete mean
// different things per store and Go methods can't overload.
type Users struct {
	db *DB
}

// Compile-time check that *Users implements repository.UserRepository.
var _ repository.UserRepository = (*Users)(nil)

// UserStore returns the account repository backed by this database.
func (db *DB) UserStore() *Users {
	return &Users{db: db}
}

const userColumns = `id, username, email, password_hash, full_name, bio, profile_picture, created_at, updated_at`

// Create inserts a new account. The caller's struct gets the generated ID
// and timestamps filled in. Duplicate username/email are translated into
// apperror.Duplicate with a field-specific message, matching the unique
// constraints on the table.
func (r *Users) Create(ctx context.Context, user *model.User) error {
	user.ID = xid.New().String()

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := r.db.conn.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.FullName,
		user.Bio,
		user.ProfilePicture,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		switch {
		case isUniqueViolation(err, "users.username"):
			return apperror.Duplicate("Username is already taken")
		case isUniqueViolation(err, "users.email"):
			return apperror.Duplicate("Email is already registered")
		}
		return fmt.Errorf("sqlite: creating user: %w", err)
	}

	return nil
}

func (r *Users) GetByID(ctx context.Context, id string) (*model.User, error) {
	return r.getWhere(ctx, "id = ?", id)
}

func (r *Users) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getWhere(ctx, "email = ?", email)
}

func (r *Users) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.getWhere(ctx, "username = ?", username)
}

func (r *Users) getWhere(ctx context.Context, where string, arg any) (*model.User, error) {
	var u model.User
	err := r.db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE `+where, arg,
	).Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.FullName,
		&u.Bio,
		&u.ProfilePicture,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("User")
		}
		return nil, fmt.Errorf("sqlite: getting user: %w", err)
	}

	return &u, nil
}

// UpdateProfile applies the partial profile update and returns the fresh
// record. Only full_name, bio, and profile_picture are reachable through
// this path; nil pointers leave the column untouched.
func (r *Users) UpdateProfile(ctx context.Context, id string, upd repository.ProfileUpdate) (*model.User, error) {
	set := "updated_at = ?"
	args := []any{time.Now()}

	if upd.FullName != nil {
		set += ", full_name = ?"
		args = append(args, *upd.FullName)
	}
	if upd.Bio != nil {
		set += ", bio = ?"
		args = append(args, *upd.Bio)
	}
	if upd.ProfilePicture != nil {
		set += ", profile_picture = ?"
		args = append(args, *upd.ProfilePicture)
	}
	args = append(args, id)

	result, err := r.db.conn.ExecContext(ctx,
		`UPDATE users SET `+set+` WHERE id = ?`, args...,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: updating user %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, apperror.NotFound("User")
	}

	return r.GetByID(ctx, id)
}

// Delete removes the account. Posts, comments, likes, and follow edges go
// with it via the ON DELETE CASCADE foreign keys — one statement, no
// partial cleanup.
func (r *Users) Delete(ctx context.Context, id string) error {
	result, err := r.db.conn.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting user %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("User")
	}

	return nil
}

// Search finds accounts whose username or display name contains the query,
// case-insensitively (SQLite LIKE is case-insensitive for ASCII). Only
// public fields come back. The query string is escaped so user input can't
// smuggle LIKE wildcards.
func (r *Users) Search(ctx context.Context, query string, limit int) ([]model.Profile, error) {
	pattern := "%" + escapeLike(query) + "%"

	rows, err := r.db.conn.QueryContext(ctx,
		`SELECT id, username, full_name, profile_picture
		 FROM users
		 WHERE username LIKE ? ESCAPE '\' OR full_name LIKE ? ESCAPE '\'
		 ORDER BY username
		 LIMIT ?`,
		pattern, pattern, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: searching users: %w", err)
	}
	defer rows.Close()

	profiles := make([]model.Profile, 0, limit)
	for rows.Next() {
		var p model.Profile
		if err := rows.Scan(&p.ID, &p.Username, &p.FullName, &p.ProfilePicture); err != nil {
			return nil, fmt.Errorf("sqlite: scanning user row: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating users: %w", err)
	}

	return profiles, nil
}

// escapeLike escapes LIKE metacharacters in user-supplied search input.
func escapeLike(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '%', '_', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}
