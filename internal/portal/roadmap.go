package portal

import (
	"encoding/json"
	"net/http"

	"github.com/miragepark/community-portal/internal/db/models"
	"gorm.io/gorm"
)

// GetFundingHandler returns the roadmap funding tracker state.
func GetFundingHandler(database *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var roadmap models.Roadmap
		if err := database.First(&roadmap).Error; err != nil {
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"success": false,
				"amount":  0,
				"error":   "Failed to fetch funding amount",
			})
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"amount":  roadmap.CurrentFunding,
			"goal":    roadmap.FundingGoal,
		})
	}
}

// UpdateFundingHandler sets the current funding amount (admin only).
func UpdateFundingHandler(database *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Amount *int64 `json:"amount"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Amount == nil {
			writeError(w, http.StatusBadRequest, "amount is required")
			return
		}

		var roadmap models.Roadmap
		if err := database.First(&roadmap).Error; err != nil {
			writeError(w, http.StatusInternalServerError, "Roadmap row missing")
			return
		}

		if err := database.Model(&roadmap).
			Update("current_funding", *body.Amount).Error; err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to update funding amount")
			return
		}

		roadmap.CurrentFunding = *body.Amount
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data":    roadmap,
		})
	}
}
