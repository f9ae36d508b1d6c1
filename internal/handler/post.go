package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sakif/socialhub/internal/auth"
	"github.com/sakif/socialhub/internal/service"
	"github.com/sakif/socialhub/internal/upload"
)

// PostHandler covers post CRUD, both feeds, and like toggling.
type PostHandler struct {
	posts   *service.PostService
	uploads *upload.Store
	logger  *slog.Logger
}

func NewPostHandler(posts *service.PostService, uploads *upload.Store, logger *slog.Logger) *PostHandler {
	return &PostHandler{posts: posts, uploads: uploads, logger: logger}
}

// HandleCreate saves a new post. Multipart because of the optional image;
// the text rides along as the "content" form value.
//
// HTTP: POST /api/posts (multipart: content?, image?)
func (h *PostHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	if err := r.ParseMultipartForm(upload.MaxFileSize); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid multipart form"})
		return
	}
	defer r.MultipartForm.RemoveAll()

	content := r.FormValue("content")

	imageURL := ""
	if files := r.MultipartForm.File["image"]; len(files) > 0 {
		url, err := h.uploads.Save(files[0], upload.KindPost)
		if err != nil {
			writeError(w, err)
			return
		}
		imageURL = url
	}

	post, err := h.posts.Create(r.Context(), userID, content, imageURL)
	if err != nil {
		// The stored image would be orphaned by a failed create; drop it.
		if imageURL != "" {
			if rmErr := h.uploads.Remove(imageURL); rmErr != nil {
				h.logger.Warn("failed to remove orphaned upload", slog.String("error", rmErr.Error()))
			}
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Post created successfully",
		"post":    post,
	})
}

// HandleFeed returns one page of the global feed.
//
// HTTP: GET /api/posts?page=1&limit=10
func (h *PostHandler) HandleFeed(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)

	feed, err := h.posts.Feed(r.Context(), page, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, feed)
}

// HandleFollowingFeed returns one page of posts by followed accounts.
//
// HTTP: GET /api/posts/following?page=1&limit=10
func (h *PostHandler) HandleFollowingFeed(w http.ResponseWriter, r *http.Request) {
	viewerID, _ := auth.UserIDFromContext(r.Context())
	page, limit := pageParams(r)

	feed, err := h.posts.FollowingFeed(r.Context(), viewerID, page, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, feed)
}

// HandleUserPosts returns all posts by one account.
//
// HTTP: GET /api/posts/user/{userId}
func (h *PostHandler) HandleUserPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.UserPosts(r.Context(), r.PathValue("userId"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"posts": posts})
}

type updatePostRequest struct {
	Content string `json:"content"`
}

// HandleUpdate edits an own post's text.
//
// HTTP: PUT /api/posts/{id}
func (h *PostHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req updatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON body"})
		return
	}

	post, err := h.posts.Update(r.Context(), userID, r.PathValue("id"), req.Content)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Post updated successfully",
		"post":    post,
	})
}

// HandleDelete removes an own post.
//
// HTTP: DELETE /api/posts/{id}
func (h *PostHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	if err := h.posts.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Post deleted successfully"})
}

// HandleLike toggles the viewer's like on a post. Each call flips the
// current state.
//
// HTTP: POST /api/posts/{id}/like
func (h *PostHandler) HandleLike(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	liked, likes, err := h.posts.ToggleLike(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	message := "Post unliked"
	if liked {
		message = "Post liked"
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": message,
		"likes":   likes,
	})
}

// pageParams reads page/limit query parameters; the service clamps them to
// sane bounds, this just parses.
func pageParams(r *http.Request) (page, limit int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	return page, limit
}
