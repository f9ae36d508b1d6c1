package model

import "time"

// Post is a content item owned by an account. At creation at least one of
// Content and ImageURL must be present; the image is immutable afterwards.
type Post struct {
	ID        string    `json:"id"        db:"id"`
	UserID    string    `json:"userId"    db:"user_id"`
	Content   string    `json:"content"   db:"content"`  // max 2000 chars, may be empty if image set
	ImageURL  string    `json:"image"     db:"image_url"` // empty when the post is text-only
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// PostView is the response projection of a post: the post itself plus the
// author's public fields, the ids of accounts that liked it, and (in feeds)
// its most recent comments.
//
// Likes is always non-nil so it serializes as [] rather than null — the
// frontend calls .includes() on it without guarding.
type PostView struct {
	Post
	User          Profile       `json:"user"`
	Likes         []string      `json:"likes"`
	Comments      []CommentView `json:"comments,omitempty"`
	CommentsCount int           `json:"commentsCount"`
}
