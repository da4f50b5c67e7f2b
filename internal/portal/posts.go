package portal

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/miragepark/community-portal/internal/auth"
	"github.com/miragepark/community-portal/internal/db/models"
	"gorm.io/gorm"
)

// ListPostsHandler returns posts newest-first, filtered to what the viewer's
// tier may see. Supports ?featured=true and ?category=<name>.
func ListPostsHandler(database *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := database.Model(&models.Post{}).Order("date DESC")

		if r.URL.Query().Get("featured") == "true" {
			query = query.Where("featured = ?", true)
		}
		if category := r.URL.Query().Get("category"); category != "" {
			query = query.Where("category = ?", category)
		}

		var posts []models.Post
		if err := query.Find(&posts).Error; err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to fetch posts")
			return
		}

		rank := viewerRank(database, auth.UserIDFromContext(r.Context()))
		now := time.Now()
		visible := make([]models.Post, 0, len(posts))
		for _, p := range posts {
			if accessRank(p.AccessLevel) > rank {
				continue
			}
			if p.PublishAt != nil && p.PublishAt.After(now) {
				continue
			}
			visible = append(visible, p)
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"posts": visible,
			"count": len(visible),
		})
	}
}

// GetPostHandler returns a single post if the viewer's tier allows it.
func GetPostHandler(database *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid post ID")
			return
		}

		var post models.Post
		if err := database.First(&post, uint(id)).Error; err != nil {
			writeError(w, http.StatusNotFound, "Post not found")
			return
		}

		rank := viewerRank(database, auth.UserIDFromContext(r.Context()))
		if accessRank(post.AccessLevel) > rank {
			writeError(w, http.StatusForbidden, "This post requires a higher membership tier")
			return
		}

		writeJSON(w, http.StatusOK, post)
	}
}

// CreatePostHandler creates a post (admin only, routed behind RequireAdmin).
func CreatePostHandler(database *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var post models.Post
		if err := json.NewDecoder(r.Body).Decode(&post); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if post.Title == "" || post.Content == "" {
			writeError(w, http.StatusBadRequest, "title and content are required")
			return
		}
		if post.Date.IsZero() {
			post.Date = time.Now()
		}
		post.AuthorID = auth.UserIDFromContext(r.Context())

		if err := database.Create(&post).Error; err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to create post")
			return
		}
		writeJSON(w, http.StatusCreated, post)
	}
}

// UpdatePostHandler updates an existing post (admin only).
func UpdatePostHandler(database *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid post ID")
			return
		}

		var post models.Post
		if err := json.NewDecoder(r.Body).Decode(&post); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		post.ID = uint(id)

		if err := database.Save(&post).Error; err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to update post")
			return
		}
		writeJSON(w, http.StatusOK, post)
	}
}

// DeletePostHandler deletes a post and its comments (admin only).
func DeletePostHandler(database *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid post ID")
			return
		}

		if err := database.Delete(&models.Post{}, uint(id)).Error; err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to delete post")
			return
		}
		database.Delete(&models.PostComment{}, "post_id = ?", uint(id))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success": true}`))
	}
}
