package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/socialhub/internal/auth"
	"github.com/sakif/socialhub/internal/service"
)

// CommentHandler covers comment CRUD and like toggling.
type CommentHandler struct {
	comments *service.CommentService
	logger   *slog.Logger
}

func NewCommentHandler(comments *service.CommentService, logger *slog.Logger) *CommentHandler {
	return &CommentHandler{comments: comments, logger: logger}
}

type commentRequest struct {
	Content string `json:"content"`
}

// HandleCreate attaches a comment to a post.
//
// HTTP: POST /api/comments/{postId}
func (h *CommentHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON body"})
		return
	}

	comment, err := h.comments.Create(r.Context(), userID, r.PathValue("postId"), req.Content)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Comment added successfully",
		"comment": comment,
	})
}

// HandleList returns a post's comments, newest first.
//
// HTTP: GET /api/comments/{postId}
func (h *CommentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	comments, err := h.comments.ListForPost(r.Context(), r.PathValue("postId"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"comments": comments})
}

// HandleUpdate edits an own comment.
//
// HTTP: PUT /api/comments/{id}
func (h *CommentHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON body"})
		return
	}

	comment, err := h.comments.Update(r.Context(), userID, r.PathValue("id"), req.Content)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Comment updated successfully",
		"comment": comment,
	})
}

// HandleDelete removes an own comment.
//
// HTTP: DELETE /api/comments/{id}
func (h *CommentHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	if err := h.comments.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Comment deleted successfully"})
}

// HandleLike toggles the viewer's like on a comment.
//
// HTTP: POST /api/comments/{id}/like
func (h *CommentHandler) HandleLike(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	liked, likes, err := h.comments.ToggleLike(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	message := "Comment unliked"
	if liked {
		message = "Comment liked"
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": message,
		"likes":   likes,
	})
}
