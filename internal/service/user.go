// Package service — profile management and the follow graph.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/socialhub/internal/apperror"
	"github.com/sakif/socialhub/internal/model"
	"github.com/sakif/socialhub/internal/repository"
)

// SearchLimit caps user-search results.
const SearchLimit = 10

// UserService handles profile views/updates, account deletion, and all
// follow-graph operations.
type UserService struct {
	users   repository.UserRepository
	follows repository.FollowRepository
	logger  *slog.Logger
}

func NewUserService(
	users repository.UserRepository,
	follows repository.FollowRepository,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		users:   users,
		follows: follows,
		logger:  logger,
	}
}

// ProfileView is a profile page: the account's public record, its follow
// counts, and whether the viewer follows it.
type ProfileView struct {
	User        *model.User `json:"user"`
	Followers   int         `json:"followers"`
	Following   int         `json:"following"`
	IsFollowing bool        `json:"isFollowing"`
}

// GetProfile returns the profile view of id as seen by viewerID.
func (s *UserService) GetProfile(ctx context.Context, viewerID, id string) (*ProfileView, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	followers, following, err := s.follows.Counts(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("counting follows for %s: %w", id, err)
	}

	isFollowing := false
	if viewerID != "" && viewerID != id {
		isFollowing, err = s.follows.Exists(ctx, viewerID, id)
		if err != nil {
			return nil, fmt.Errorf("checking follow state: %w", err)
		}
	}

	return &ProfileView{
		User:        user,
		Followers:   followers,
		Following:   following,
		IsFollowing: isFollowing,
	}, nil
}

// UpdateProfile applies a partial profile edit. Only the display name, bio,
// and avatar are mutable through this path; nil means "leave unchanged".
func (s *UserService) UpdateProfile(ctx context.Context, userID string, upd repository.ProfileUpdate) (*model.User, error) {
	if upd.FullName != nil {
		trimmed := strings.TrimSpace(*upd.FullName)
		if len(trimmed) > MaxFullNameLength {
			return nil, apperror.ValidationFailed("fullName",
				fmt.Sprintf("Full name cannot exceed %d characters", MaxFullNameLength))
		}
		upd.FullName = &trimmed
	}
	if upd.Bio != nil && len(*upd.Bio) > MaxBioLength {
		return nil, apperror.ValidationFailed("bio",
			fmt.Sprintf("Bio cannot exceed %d characters", MaxBioLength))
	}

	user, err := s.users.UpdateProfile(ctx, userID, upd)
	if err != nil {
		return nil, err
	}

	s.logger.Info("profile updated", slog.String("userID", userID))
	return user, nil
}

// DeleteAccount removes the acting account. The storage layer cascades to
// posts, comments, likes, and both sides of the account's follow edges —
// the cascade policy is explicit, not incidental.
func (s *UserService) DeleteAccount(ctx context.Context, userID string) error {
	if err := s.users.Delete(ctx, userID); err != nil {
		return err
	}

	s.logger.Info("account deleted", slog.String("userID", userID))
	return nil
}

// Follow creates a follow edge from followerID to targetID. The self-follow
// check runs before the target lookup, so following yourself fails the same
// way regardless of target existence.
func (s *UserService) Follow(ctx context.Context, followerID, targetID string) (*model.Follow, error) {
	if followerID == targetID {
		return nil, apperror.ValidationFailed("id", "Cannot follow yourself")
	}

	if _, err := s.users.GetByID(ctx, targetID); err != nil {
		return nil, err
	}

	edge, err := s.follows.Create(ctx, followerID, targetID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("follow created",
		slog.String("follower", followerID),
		slog.String("following", targetID),
	)
	return edge, nil
}

// Unfollow removes the edge. A missing edge is reported as a validation
// failure ("Not following this user"), mirroring the duplicate-follow
// rejection on the create side.
func (s *UserService) Unfollow(ctx context.Context, followerID, targetID string) error {
	err := s.follows.Delete(ctx, followerID, targetID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return apperror.ValidationFailed("id", "Not following this user")
		}
		return err
	}

	s.logger.Info("follow removed",
		slog.String("follower", followerID),
		slog.String("following", targetID),
	)
	return nil
}

// Followers lists accounts following id, newest edge first.
func (s *UserService) Followers(ctx context.Context, id string) ([]model.FollowEntry, error) {
	return s.follows.Followers(ctx, id)
}

// Following lists accounts id follows, newest edge first.
func (s *UserService) Following(ctx context.Context, id string) ([]model.FollowEntry, error) {
	return s.follows.Following(ctx, id)
}

// Search finds up to SearchLimit accounts matching the query on username or
// display name. An empty query returns an empty list rather than everyone.
func (s *UserService) Search(ctx context.Context, query string) ([]model.Profile, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []model.Profile{}, nil
	}

	return s.users.Search(ctx, query, SearchLimit)
}
