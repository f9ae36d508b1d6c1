package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sakif/socialhub/internal/apperror"
	"github.com/sakif/socialhub/internal/model"
	"github.com/sakif/socialhub/internal/repository"
)

func profileUpdate(fullName, bio *string) repository.ProfileUpdate {
	return repository.ProfileUpdate{FullName: fullName, Bio: bio}
}

func addUser(t *testing.T, users *mockUserRepo, username string) *model.User {
	t.Helper()
	user := &model.User{Username: username, Email: username + "@example.com", PasswordHash: "hash"}
	if err := users.Create(context.Background(), user); err != nil {
		t.Fatalf("adding user %q: %v", username, err)
	}
	return user
}

func TestGetProfile(t *testing.T) {
	svc, users, follows := newTestUserService(t)
	ctx := context.Background()

	alice := addUser(t, users, "alice")
	bob := addUser(t, users, "bob")
	if _, err := follows.Create(ctx, bob.ID, alice.ID); err != nil {
		t.Fatalf("setup follow: %v", err)
	}

	// Bob viewing alice: he follows her.
	view, err := svc.GetProfile(ctx, bob.ID, alice.ID)
	if err != nil {
		t.Fatalf("GetProfile() error = %v", err)
	}
	if view.User.Username != "alice" {
		t.Errorf("Username = %q, want %q", view.User.Username, "alice")
	}
	if view.Followers != 1 || view.Following != 0 {
		t.Errorf("counts = (%d, %d), want (1, 0)", view.Followers, view.Following)
	}
	if !view.IsFollowing {
		t.Error("IsFollowing = false, bob follows alice")
	}

	// Alice viewing herself: isFollowing stays false.
	self, err := svc.GetProfile(ctx, alice.ID, alice.ID)
	if err != nil {
		t.Fatalf("GetProfile() self error = %v", err)
	}
	if self.IsFollowing {
		t.Error("IsFollowing = true on own profile")
	}
}

func TestGetProfile_NotFound(t *testing.T) {
	svc, _, _ := newTestUserService(t)

	_, err := svc.GetProfile(context.Background(), "", "nonexistent")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetProfile() error = %v, want ErrNotFound", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	svc, users, _ := newTestUserService(t)
	ctx := context.Background()

	alice := addUser(t, users, "alice")

	name := "  Alice Liddell  "
	updated, err := svc.UpdateProfile(ctx, alice.ID, profileUpdate(&name, nil))
	if err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}
	if updated.FullName != "Alice Liddell" {
		t.Errorf("FullName = %q, want trimmed %q", updated.FullName, "Alice Liddell")
	}
}

func TestUpdateProfile_Validation(t *testing.T) {
	svc, users, _ := newTestUserService(t)
	ctx := context.Background()

	alice := addUser(t, users, "alice")

	longName := strings.Repeat("x", MaxFullNameLength+1)
	if _, err := svc.UpdateProfile(ctx, alice.ID, profileUpdate(&longName, nil)); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("long full name: error = %v, want ErrValidation", err)
	}

	longBio := strings.Repeat("x", MaxBioLength+1)
	if _, err := svc.UpdateProfile(ctx, alice.ID, profileUpdate(nil, &longBio)); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("long bio: error = %v, want ErrValidation", err)
	}
}

func TestDeleteAccount(t *testing.T) {
	svc, users, _ := newTestUserService(t)
	ctx := context.Background()

	alice := addUser(t, users, "alice")
	if err := svc.DeleteAccount(ctx, alice.ID); err != nil {
		t.Fatalf("DeleteAccount() error = %v", err)
	}
	if _, err := users.GetByID(ctx, alice.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("account after delete: error = %v, want ErrNotFound", err)
	}
}

func TestFollow(t *testing.T) {
	svc, users, follows := newTestUserService(t)
	ctx := context.Background()

	alice := addUser(t, users, "alice")
	bob := addUser(t, users, "bob")

	edge, err := svc.Follow(ctx, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("Follow() error = %v", err)
	}
	if edge.FollowerID != alice.ID || edge.FollowingID != bob.ID {
		t.Errorf("edge = %s→%s, want %s→%s", edge.FollowerID, edge.FollowingID, alice.ID, bob.ID)
	}

	exists, err := follows.Exists(ctx, alice.ID, bob.ID)
	if err != nil || !exists {
		t.Errorf("Exists() = (%v, %v) after Follow(), want (true, nil)", exists, err)
	}
}

func TestFollow_Self(t *testing.T) {
	svc, users, _ := newTestUserService(t)

	alice := addUser(t, users, "alice")
	_, err := svc.Follow(context.Background(), alice.ID, alice.ID)
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("self-follow: error = %v, want ErrValidation", err)
	}
}

// Self-follow is rejected before the target lookup, so it fails the same
// way even when the target ID doesn't exist.
func TestFollow_SelfBeforeExistence(t *testing.T) {
	svc, _, _ := newTestUserService(t)

	_, err := svc.Follow(context.Background(), "ghost", "ghost")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("self-follow of unknown ID: error = %v, want ErrValidation", err)
	}
}

func TestFollow_UnknownTarget(t *testing.T) {
	svc, users, _ := newTestUserService(t)

	alice := addUser(t, users, "alice")
	_, err := svc.Follow(context.Background(), alice.ID, "nonexistent")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Follow() unknown target: error = %v, want ErrNotFound", err)
	}
}

func TestFollow_Duplicate(t *testing.T) {
	svc, users, _ := newTestUserService(t)
	ctx := context.Background()

	alice := addUser(t, users, "alice")
	bob := addUser(t, users, "bob")

	if _, err := svc.Follow(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("first Follow() error = %v", err)
	}
	_, err := svc.Follow(ctx, alice.ID, bob.ID)
	if !errors.Is(err, apperror.ErrDuplicate) {
		t.Errorf("second Follow() error = %v, want ErrDuplicate", err)
	}
}

func TestUnfollow(t *testing.T) {
	svc, users, follows := newTestUserService(t)
	ctx := context.Background()

	alice := addUser(t, users, "alice")
	bob := addUser(t, users, "bob")

	if _, err := svc.Follow(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("Follow() error = %v", err)
	}
	if err := svc.Unfollow(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("Unfollow() error = %v", err)
	}

	exists, _ := follows.Exists(ctx, alice.ID, bob.ID)
	if exists {
		t.Error("edge still exists after Unfollow()")
	}
}

// Unfollowing someone you don't follow is a validation failure, mirroring
// the duplicate rejection on the follow side.
func TestUnfollow_NotFollowing(t *testing.T) {
	svc, users, _ := newTestUserService(t)

	alice := addUser(t, users, "alice")
	bob := addUser(t, users, "bob")

	err := svc.Unfollow(context.Background(), alice.ID, bob.ID)
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Unfollow() without edge: error = %v, want ErrValidation", err)
	}
}

func TestSearch(t *testing.T) {
	svc, users, _ := newTestUserService(t)
	ctx := context.Background()

	addUser(t, users, "alice")
	addUser(t, users, "alicia")
	addUser(t, users, "bob")

	results, err := svc.Search(ctx, "ali")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 2 {
		t.Errorf("Search() returned %d results, want 2", len(results))
	}
}

// An empty or whitespace query returns nothing rather than everyone.
func TestSearch_EmptyQuery(t *testing.T) {
	svc, users, _ := newTestUserService(t)

	addUser(t, users, "alice")

	for _, query := range []string{"", "   "} {
		results, err := svc.Search(context.Background(), query)
		if err != nil {
			t.Fatalf("Search(%q) error = %v", query, err)
		}
		if len(results) != 0 {
			t.Errorf("Search(%q) returned %d results, want 0", query, len(results))
		}
	}
}
