package portal

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/miragepark/community-portal/internal/auth"
	"github.com/miragepark/community-portal/internal/db"
	"github.com/miragepark/community-portal/internal/db/models"
	"github.com/miragepark/community-portal/internal/patreon"
	"gorm.io/gorm"
)

// questionWindow is how long a user waits between Q&A submissions.
const questionWindow = 14 * 24 * time.Hour

// SubmitQuestionHandler accepts a Q&A question from an eligible supporter.
// Eligibility: supporter or founder tier, one question per window.
func SubmitQuestionHandler(database *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := auth.UserIDFromContext(r.Context())

		profile, err := db.GetProfileByUserID(database, userID)
		if err != nil {
			writeError(w, http.StatusNotFound, "Profile not found")
			return
		}

		tier := patreon.TierFromString(profile.PatreonTier)
		if tier < patreon.TierSupporter && !profile.IsAdmin {
			writeError(w, http.StatusForbidden, "Q&A is available to Supporter and Founder tiers")
			return
		}

		if profile.LastQuestionDate != nil && time.Since(*profile.LastQuestionDate) < questionWindow {
			writeError(w, http.StatusTooManyRequests, "You can ask one question per Q&A period")
			return
		}

		var body struct {
			Question string `json:"question"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Question == "" {
			writeError(w, http.StatusBadRequest, "question is required")
			return
		}

		question := models.Question{
			ID:       uuid.New().String(),
			UserID:   userID,
			Question: body.Question,
			UserTier: profile.PatreonTier,
		}
		if err := database.Create(&question).Error; err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to submit question")
			return
		}
		if err := db.RecordQuestionAsked(database, userID); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to record question")
			return
		}

		writeJSON(w, http.StatusCreated, question)
	}
}

// MyQuestionsHandler lists the signed-in user's questions newest-first.
func MyQuestionsHandler(database *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := auth.UserIDFromContext(r.Context())

		var questions []models.Question
		if err := database.Where("user_id = ?", userID).
			Order("created_at DESC").Find(&questions).Error; err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to fetch questions")
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"questions": questions,
			"count":     len(questions),
		})
	}
}

// ListQuestionsHandler returns all questions with submitter usernames
// (admin only).
func ListQuestionsHandler(database *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var questions []models.Question
		if err := database.Order("created_at DESC").Find(&questions).Error; err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to fetch questions")
			return
		}

		userIDs := make([]string, 0, len(questions))
		for _, q := range questions {
			userIDs = append(userIDs, q.UserID)
		}
		authors := profilesByUserID(database, userIDs)

		type questionView struct {
			models.Question
			Username string `json:"username,omitempty"`
		}
		views := make([]questionView, 0, len(questions))
		for _, q := range questions {
			view := questionView{Question: q}
			if author, ok := authors[q.UserID]; ok {
				view.Username = author.Username
			}
			views = append(views, view)
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"questions": views,
			"count":     len(views),
		})
	}
}

// AnswerQuestionHandler records an answer on a question (admin only).
func AnswerQuestionHandler(database *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		questionID := chi.URLParam(r, "id")

		var body struct {
			Answer string `json:"answer"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Answer == "" {
			writeError(w, http.StatusBadRequest, "answer is required")
			return
		}

		var question models.Question
		if err := database.Where("id = ?", questionID).First(&question).Error; err != nil {
			writeError(w, http.StatusNotFound, "Question not found")
			return
		}

		now := time.Now()
		if err := database.Model(&question).Updates(map[string]interface{}{
			"answer":      body.Answer,
			"answered_at": now,
		}).Error; err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to answer question")
			return
		}

		question.Answer = body.Answer
		question.AnsweredAt = &now
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data":    question,
		})
	}
}

// DeleteQuestionHandler removes a question (admin only).
func DeleteQuestionHandler(database *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		questionID := chi.URLParam(r, "id")

		if err := database.Delete(&models.Question{}, "id = ?", questionID).Error; err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to delete question")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success": true}`))
	}
}
