package model

import "time"

// Follow is a directed edge in the follow graph: the follower's feed
// includes the followee's posts. The (FollowerID, FollowingID) pair is
// unique and self-edges are rejected at the service layer.
type Follow struct {
	FollowerID  string    `json:"follower"  db:"follower_id"`
	FollowingID string    `json:"following" db:"following_id"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// FollowEntry is one row of a followers/following listing: the edge
// resolved to the peer account's public fields.
type FollowEntry struct {
	Profile
	FollowedAt time.Time `json:"followedAt"`
}
