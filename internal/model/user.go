// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account.
//
// WHY PasswordHash WITH json:"-"?
// The bcrypt hash must never leave the server. The `json:"-"` tag tells
// encoding/json to skip the field entirely, so even a careless handler that
// serializes a full User cannot leak the credential.
type User struct {
	ID             string    `json:"id"             db:"id"`
	Username       string    `json:"username"       db:"username"`        // unique handle, 3–30 chars
	Email          string    `json:"email"          db:"email"`           // unique, stored lowercase
	PasswordHash   string    `json:"-"              db:"password_hash"`   // bcrypt, never serialized
	FullName       string    `json:"fullName"       db:"full_name"`       // display name, max 50 chars
	Bio            string    `json:"bio"            db:"bio"`             // max 500 chars
	ProfilePicture string    `json:"profilePicture" db:"profile_picture"` // avatar URL (may be empty)
	CreatedAt      time.Time `json:"createdAt"      db:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt"      db:"updated_at"`
}

// Profile is the public projection of a User — the subset of fields embedded
// in posts, comments, follower lists, and search results.
type Profile struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	FullName       string `json:"fullName"`
	ProfilePicture string `json:"profilePicture"`
}

// PublicProfile returns the user's public projection.
func (u *User) PublicProfile() Profile {
	return Profile{
		ID:             u.ID,
		Username:       u.Username,
		FullName:       u.FullName,
		ProfilePicture: u.ProfilePicture,
	}
}
