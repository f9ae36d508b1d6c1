package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/socialhub/internal/auth"
	"github.com/sakif/socialhub/internal/repository"
	"github.com/sakif/socialhub/internal/service"
	"github.com/sakif/socialhub/internal/upload"
)

// UserHandler covers profile management, the follow graph, and search.
type UserHandler struct {
	users   *service.UserService
	uploads *upload.Store
	logger  *slog.Logger
}

func NewUserHandler(users *service.UserService, uploads *upload.Store, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, uploads: uploads, logger: logger}
}

// HandleUpdateProfile edits the acting account's display name, bio, and
// optionally its avatar. Multipart because of the image; text fields ride
// along as form values.
//
// HTTP: PUT /api/users/profile (multipart: fullName?, bio?, profilePicture?)
//
// A form field that is absent means "leave unchanged"; an empty string
// clears the field. multipart.Form.Value distinguishes the two, which is
// why this reads the parsed form directly instead of r.FormValue.
func (h *UserHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	if err := r.ParseMultipartForm(upload.MaxFileSize); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid multipart form"})
		return
	}
	defer r.MultipartForm.RemoveAll() // releases multipart temp files

	var upd repository.ProfileUpdate
	if vals, ok := r.MultipartForm.Value["fullName"]; ok && len(vals) > 0 {
		upd.FullName = &vals[0]
	}
	if vals, ok := r.MultipartForm.Value["bio"]; ok && len(vals) > 0 {
		upd.Bio = &vals[0]
	}

	if files := r.MultipartForm.File["profilePicture"]; len(files) > 0 {
		url, err := h.uploads.Save(files[0], upload.KindAvatar)
		if err != nil {
			writeError(w, err)
			return
		}
		upd.ProfilePicture = &url
	}

	user, err := h.users.UpdateProfile(r.Context(), userID, upd)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Profile updated successfully",
		"user":    user,
	})
}

// HandleDeleteAccount removes the acting account and everything it owns.
//
// HTTP: DELETE /api/users/profile
func (h *UserHandler) HandleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	if err := h.users.DeleteAccount(r.Context(), userID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Account deleted successfully"})
}

// HandleGetProfile returns a profile with follow counts and whether the
// viewer follows it.
//
// HTTP: GET /api/users/{id}
func (h *UserHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	viewerID, _ := auth.UserIDFromContext(r.Context())

	profile, err := h.users.GetProfile(r.Context(), viewerID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// HandleFollow creates a follow edge from the viewer to {id}.
//
// HTTP: POST /api/users/{id}/follow
func (h *UserHandler) HandleFollow(w http.ResponseWriter, r *http.Request) {
	viewerID, _ := auth.UserIDFromContext(r.Context())

	follow, err := h.users.Follow(r.Context(), viewerID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Followed successfully",
		"follow":  follow,
	})
}

// HandleUnfollow removes the viewer's follow edge to {id}.
//
// HTTP: POST /api/users/{id}/unfollow
func (h *UserHandler) HandleUnfollow(w http.ResponseWriter, r *http.Request) {
	viewerID, _ := auth.UserIDFromContext(r.Context())

	if err := h.users.Unfollow(r.Context(), viewerID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Unfollowed successfully"})
}

// HandleFollowers lists accounts following {id}, newest first.
//
// HTTP: GET /api/users/{id}/followers
func (h *UserHandler) HandleFollowers(w http.ResponseWriter, r *http.Request) {
	followers, err := h.users.Followers(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"followers": followers})
}

// HandleFollowing lists accounts {id} follows, newest first.
//
// HTTP: GET /api/users/{id}/following
func (h *UserHandler) HandleFollowing(w http.ResponseWriter, r *http.Request) {
	following, err := h.users.Following(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"following": following})
}

// HandleSearch finds accounts by username or display name substring.
//
// HTTP: GET /api/users/search/users?query=...
func (h *UserHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.Search(r.Context(), r.URL.Query().Get("query"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}
