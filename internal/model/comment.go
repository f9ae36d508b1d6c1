package model

import "time"

// Comment is a content item attached to a post. The parent post's comment
// list is a derived view (comments are queried by PostID), so deleting a
// comment is a single atomic operation — there is no stored id list on the
// post that could dangle.
type Comment struct {
	ID        string    `json:"id"        db:"id"`
	PostID    string    `json:"postId"    db:"post_id"`
	UserID    string    `json:"userId"    db:"user_id"`
	Content   string    `json:"content"   db:"content"` // required, max 500 chars
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// CommentView is the response projection of a comment: the comment plus the
// author's public fields and the ids of accounts that liked it.
type CommentView struct {
	Comment
	User  Profile  `json:"user"`
	Likes []string `json:"likes"`
}
