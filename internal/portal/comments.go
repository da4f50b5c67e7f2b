package portal

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/miragepark/community-portal/internal/auth"
	"github.com/miragepark/community-portal/internal/db/models"
	"gorm.io/gorm"
)

// commentView is a comment with its author's public profile joined in.
type commentView struct {
	models.PostComment
	Author *profileSummary `json:"author,omitempty"`
}

// ListCommentsHandler returns a post's comments oldest-first with author
// usernames and avatars.
func ListCommentsHandler(database *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postID, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid post ID")
			return
		}

		var comments []models.PostComment
		if err := database.Where("post_id = ?", uint(postID)).
			Order("created_at ASC").Find(&comments).Error; err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to fetch comments")
			return
		}

		userIDs := make([]string, 0, len(comments))
		for _, c := range comments {
			userIDs = append(userIDs, c.UserID)
		}
		authors := profilesByUserID(database, userIDs)

		views := make([]commentView, 0, len(comments))
		for _, c := range comments {
			view := commentView{PostComment: c}
			if author, ok := authors[c.UserID]; ok {
				view.Author = &author
			}
			views = append(views, view)
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"comments": views,
			"count":    len(views),
		})
	}
}

// CreateCommentHandler adds a comment to a post for the signed-in user.
func CreateCommentHandler(database *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postID, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid post ID")
			return
		}

		var body struct {
			Content string `json:"content"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Content == "" {
			writeError(w, http.StatusBadRequest, "content is required")
			return
		}

		var post models.Post
		if err := database.First(&post, uint(postID)).Error; err != nil {
			writeError(w, http.StatusNotFound, "Post not found")
			return
		}

		comment := models.PostComment{
			ID:      uuid.New().String(),
			PostID:  uint(postID),
			UserID:  auth.UserIDFromContext(r.Context()),
			Content: body.Content,
		}
		if err := database.Create(&comment).Error; err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to create comment")
			return
		}
		writeJSON(w, http.StatusCreated, comment)
	}
}

// UpdateCommentHandler edits a comment. Only the author or an admin may edit.
func UpdateCommentHandler(database *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		commentID := chi.URLParam(r, "id")
		userID := auth.UserIDFromContext(r.Context())

		var comment models.PostComment
		if err := database.Where("id = ?", commentID).First(&comment).Error; err != nil {
			writeError(w, http.StatusNotFound, "Comment not found")
			return
		}
		if comment.UserID != userID && !isAdmin(database, userID) {
			writeError(w, http.StatusForbidden, "Not allowed to edit this comment")
			return
		}

		var body struct {
			Content string `json:"content"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Content == "" {
			writeError(w, http.StatusBadRequest, "content is required")
			return
		}

		if err := database.Model(&comment).Update("content", body.Content).Error; err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to update comment")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success": true}`))
	}
}

// DeleteCommentHandler removes a comment. Only the author or an admin may
// delete.
func DeleteCommentHandler(database *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		commentID := chi.URLParam(r, "id")
		userID := auth.UserIDFromContext(r.Context())

		var comment models.PostComment
		if err := database.Where("id = ?", commentID).First(&comment).Error; err != nil {
			writeError(w, http.StatusNotFound, "Comment not found")
			return
		}
		if comment.UserID != userID && !isAdmin(database, userID) {
			writeError(w, http.StatusForbidden, "Not allowed to delete this comment")
			return
		}

		if err := database.Delete(&comment).Error; err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to delete comment")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success": true}`))
	}
}
