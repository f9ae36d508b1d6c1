package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/sakif/socialhub/internal/apperror"
	"github.com/sakif/socialhub/internal/auth"
	"github.com/sakif/socialhub/internal/model"
	"github.com/sakif/socialhub/internal/repository"
)

// Hand-written in-memory mocks for the repository interfaces. The service
// never knows whether it's talking to SQLite or a map — that's the point
// of programming against the interfaces.

// ---------------------------------------------------------------------------
// users

type mockUserRepo struct {
	users  map[string]*model.User
	nextID int
}

var _ repository.UserRepository = (*mockUserRepo)(nil)

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if u.Username == user.Username {
			return apperror.Duplicate("Username is already taken")
		}
		if u.Email == user.Email {
			return apperror.Duplicate("Email is already registered")
		}
	}
	m.nextID++
	user.ID = fmt.Sprintf("user-%d", m.nextID)
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, apperror.NotFound("User")
	}
	result := *user
	return &result, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			result := *u
			return &result, nil
		}
	}
	return nil, apperror.NotFound("User")
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			result := *u
			return &result, nil
		}
	}
	return nil, apperror.NotFound("User")
}

func (m *mockUserRepo) UpdateProfile(_ context.Context, id string, upd repository.ProfileUpdate) (*model.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, apperror.NotFound("User")
	}
	if upd.FullName != nil {
		user.FullName = *upd.FullName
	}
	if upd.Bio != nil {
		user.Bio = *upd.Bio
	}
	if upd.ProfilePicture != nil {
		user.ProfilePicture = *upd.ProfilePicture
	}
	result := *user
	return &result, nil
}

func (m *mockUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.users[id]; !ok {
		return apperror.NotFound("User")
	}
	delete(m.users, id)
	return nil
}

func (m *mockUserRepo) Search(_ context.Context, query string, limit int) ([]model.Profile, error) {
	results := []model.Profile{}
	for _, u := range m.users {
		if len(results) == limit {
			break
		}
		if strings.Contains(u.Username, query) || strings.Contains(u.FullName, query) {
			results = append(results, u.PublicProfile())
		}
	}
	return results, nil
}

// ---------------------------------------------------------------------------
// follows

type mockFollowRepo struct {
	edges map[string]*model.Follow
}

var _ repository.FollowRepository = (*mockFollowRepo)(nil)

func newMockFollowRepo() *mockFollowRepo {
	return &mockFollowRepo{edges: make(map[string]*model.Follow)}
}

func edgeKey(followerID, followingID string) string {
	return followerID + "->" + followingID
}

func (m *mockFollowRepo) Create(_ context.Context, followerID, followingID string) (*model.Follow, error) {
	key := edgeKey(followerID, followingID)
	if _, ok := m.edges[key]; ok {
		return nil, apperror.Duplicate("Already following this user")
	}
	edge := &model.Follow{FollowerID: followerID, FollowingID: followingID}
	m.edges[key] = edge
	result := *edge
	return &result, nil
}

func (m *mockFollowRepo) Delete(_ context.Context, followerID, followingID string) error {
	key := edgeKey(followerID, followingID)
	if _, ok := m.edges[key]; !ok {
		return apperror.NotFound("Follow")
	}
	delete(m.edges, key)
	return nil
}

func (m *mockFollowRepo) Exists(_ context.Context, followerID, followingID string) (bool, error) {
	_, ok := m.edges[edgeKey(followerID, followingID)]
	return ok, nil
}

func (m *mockFollowRepo) Followers(_ context.Context, userID string) ([]model.FollowEntry, error) {
	entries := []model.FollowEntry{}
	for _, e := range m.edges {
		if e.FollowingID == userID {
			entries = append(entries, model.FollowEntry{Profile: model.Profile{ID: e.FollowerID}})
		}
	}
	return entries, nil
}

func (m *mockFollowRepo) Following(_ context.Context, userID string) ([]model.FollowEntry, error) {
	entries := []model.FollowEntry{}
	for _, e := range m.edges {
		if e.FollowerID == userID {
			entries = append(entries, model.FollowEntry{Profile: model.Profile{ID: e.FollowingID}})
		}
	}
	return entries, nil
}

func (m *mockFollowRepo) Counts(_ context.Context, userID string) (int, int, error) {
	followers, following := 0, 0
	for _, e := range m.edges {
		if e.FollowingID == userID {
			followers++
		}
		if e.FollowerID == userID {
			following++
		}
	}
	return followers, following, nil
}

// ---------------------------------------------------------------------------
// posts

// mockPostRepo keeps posts in a slice so list order is creation order
// reversed (newest first), matching the real repository.
type mockPostRepo struct {
	posts  []*model.PostView
	likes  map[string][]string // post ID → like list
	nextID int

	// followedAuthors fakes the follow graph for ListFollowed:
	// viewer ID → author IDs whose posts the viewer should see.
	followedAuthors map[string][]string
}

var _ repository.PostRepository = (*mockPostRepo)(nil)

func newMockPostRepo() *mockPostRepo {
	return &mockPostRepo{
		likes:           make(map[string][]string),
		followedAuthors: make(map[string][]string),
	}
}

func (m *mockPostRepo) Create(_ context.Context, post *model.Post) error {
	m.nextID++
	post.ID = fmt.Sprintf("post-%d", m.nextID)
	view := &model.PostView{Post: *post, Likes: []string{}}
	view.User.ID = post.UserID
	m.posts = append(m.posts, view)
	return nil
}

func (m *mockPostRepo) find(id string) *model.PostView {
	for _, p := range m.posts {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (m *mockPostRepo) GetByID(_ context.Context, id string) (*model.PostView, error) {
	post := m.find(id)
	if post == nil {
		return nil, apperror.NotFound("Post")
	}
	result := *post
	result.Likes = append([]string{}, m.likes[id]...)
	return &result, nil
}

func (m *mockPostRepo) newestFirst(keep func(*model.PostView) bool) []model.PostView {
	views := []model.PostView{}
	for i := len(m.posts) - 1; i >= 0; i-- {
		if keep(m.posts[i]) {
			view := *m.posts[i]
			view.Likes = append([]string{}, m.likes[view.ID]...)
			views = append(views, view)
		}
	}
	return views
}

func paginate(views []model.PostView, opts repository.ListOptions) []model.PostView {
	if opts.Offset >= len(views) {
		return []model.PostView{}
	}
	views = views[opts.Offset:]
	if opts.Limit > 0 && opts.Limit < len(views) {
		views = views[:opts.Limit]
	}
	return views
}

func (m *mockPostRepo) List(_ context.Context, opts repository.ListOptions) ([]model.PostView, int, error) {
	all := m.newestFirst(func(*model.PostView) bool { return true })
	return paginate(all, opts), len(all), nil
}

func (m *mockPostRepo) ListFollowed(_ context.Context, viewerID string, opts repository.ListOptions) ([]model.PostView, int, error) {
	// The mock has no follow graph; tests wire followedAuthors directly.
	all := m.newestFirst(func(p *model.PostView) bool {
		for _, id := range m.followedAuthors[viewerID] {
			if p.UserID == id {
				return true
			}
		}
		return false
	})
	return paginate(all, opts), len(all), nil
}

func (m *mockPostRepo) ListByUser(_ context.Context, userID string) ([]model.PostView, error) {
	return m.newestFirst(func(p *model.PostView) bool { return p.UserID == userID }), nil
}

func (m *mockPostRepo) UpdateContent(_ context.Context, id, content string) error {
	post := m.find(id)
	if post == nil {
		return apperror.NotFound("Post")
	}
	post.Content = content
	return nil
}

func (m *mockPostRepo) Delete(_ context.Context, id string) error {
	for i, p := range m.posts {
		if p.ID == id {
			m.posts = append(m.posts[:i], m.posts[i+1:]...)
			delete(m.likes, id)
			return nil
		}
	}
	return apperror.NotFound("Post")
}

func (m *mockPostRepo) ToggleLike(_ context.Context, postID, userID string) (bool, []string, error) {
	if m.find(postID) == nil {
		return false, nil, apperror.NotFound("Post")
	}
	likes := m.likes[postID]
	for i, id := range likes {
		if id == userID {
			m.likes[postID] = append(likes[:i], likes[i+1:]...)
			return false, append([]string{}, m.likes[postID]...), nil
		}
	}
	m.likes[postID] = append(likes, userID)
	return true, append([]string{}, m.likes[postID]...), nil
}

// ---------------------------------------------------------------------------
// comments

type mockCommentRepo struct {
	comments []*model.CommentView
	likes    map[string][]string
	nextID   int
}

var _ repository.CommentRepository = (*mockCommentRepo)(nil)

func newMockCommentRepo() *mockCommentRepo {
	return &mockCommentRepo{likes: make(map[string][]string)}
}

func (m *mockCommentRepo) Create(_ context.Context, comment *model.Comment) error {
	m.nextID++
	comment.ID = fmt.Sprintf("comment-%d", m.nextID)
	view := &model.CommentView{Comment: *comment, Likes: []string{}}
	view.User.ID = comment.UserID
	m.comments = append(m.comments, view)
	return nil
}

func (m *mockCommentRepo) find(id string) *model.CommentView {
	for _, c := range m.comments {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func (m *mockCommentRepo) GetByID(_ context.Context, id string) (*model.CommentView, error) {
	comment := m.find(id)
	if comment == nil {
		return nil, apperror.NotFound("Comment")
	}
	result := *comment
	result.Likes = append([]string{}, m.likes[id]...)
	return &result, nil
}

func (m *mockCommentRepo) ListByPost(_ context.Context, postID string, limit int) ([]model.CommentView, error) {
	views := []model.CommentView{}
	for i := len(m.comments) - 1; i >= 0; i-- {
		if m.comments[i].PostID != postID {
			continue
		}
		if limit > 0 && len(views) == limit {
			break
		}
		views = append(views, *m.comments[i])
	}
	return views, nil
}

func (m *mockCommentRepo) CountByPost(_ context.Context, postID string) (int, error) {
	count := 0
	for _, c := range m.comments {
		if c.PostID == postID {
			count++
		}
	}
	return count, nil
}

func (m *mockCommentRepo) UpdateContent(_ context.Context, id, content string) error {
	comment := m.find(id)
	if comment == nil {
		return apperror.NotFound("Comment")
	}
	comment.Content = content
	return nil
}

func (m *mockCommentRepo) Delete(_ context.Context, id string) error {
	for i, c := range m.comments {
		if c.ID == id {
			m.comments = append(m.comments[:i], m.comments[i+1:]...)
			delete(m.likes, id)
			return nil
		}
	}
	return apperror.NotFound("Comment")
}

func (m *mockCommentRepo) ToggleLike(_ context.Context, commentID, userID string) (bool, []string, error) {
	if m.find(commentID) == nil {
		return false, nil, apperror.NotFound("Comment")
	}
	likes := m.likes[commentID]
	for i, id := range likes {
		if id == userID {
			m.likes[commentID] = append(likes[:i], likes[i+1:]...)
			return false, append([]string{}, m.likes[commentID]...), nil
		}
	}
	m.likes[commentID] = append(likes, userID)
	return true, append([]string{}, m.likes[commentID]...), nil
}

// ---------------------------------------------------------------------------
// helpers

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestAuthService(t *testing.T) (*AuthService, *mockUserRepo) {
	t.Helper()
	users := newMockUserRepo()
	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars")
	if err != nil {
		t.Fatalf("creating token service: %v", err)
	}
	// Low bcrypt cost keeps the hashing out of the test runtime.
	svc := NewAuthService(users, tokens, auth.NewPasswordServiceForTest(4), testLogger())
	return svc, users
}

func newTestUserService(t *testing.T) (*UserService, *mockUserRepo, *mockFollowRepo) {
	t.Helper()
	users := newMockUserRepo()
	follows := newMockFollowRepo()
	return NewUserService(users, follows, testLogger()), users, follows
}

func newTestPostService(t *testing.T) (*PostService, *mockPostRepo, *mockCommentRepo) {
	t.Helper()
	posts := newMockPostRepo()
	comments := newMockCommentRepo()
	return NewPostService(posts, comments, testLogger()), posts, comments
}

func newTestCommentService(t *testing.T) (*CommentService, *mockCommentRepo, *mockPostRepo) {
	t.Helper()
	comments := newMockCommentRepo()
	posts := newMockPostRepo()
	return NewCommentService(comments, posts, testLogger()), comments, posts
}
