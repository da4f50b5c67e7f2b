// Package portal serves the community portal API: posts, comments, Q&A and
// the roadmap funding tracker. Premium content is gated by the viewer's
// resolved Patreon tier.
package portal

import (
	"encoding/json"
	"net/http"

	"github.com/miragepark/community-portal/internal/auth"
	"github.com/miragepark/community-portal/internal/db"
	"github.com/miragepark/community-portal/internal/db/models"
	"github.com/miragepark/community-portal/internal/patreon"
	"gorm.io/gorm"
)

// accessRank orders post access levels. Unknown levels gate as founder-only
// rather than leaking content.
func accessRank(level string) int {
	switch level {
	case "", "free":
		return 0
	case "basic":
		return 1
	case "supporter":
		return 2
	case "founder":
		return 3
	}
	return 3
}

// viewerRank returns the access rank of the requesting user: their resolved
// Patreon tier, or full access for admins. Anonymous viewers rank as free.
func viewerRank(database *gorm.DB, userID string) int {
	if userID == "" {
		return 0
	}
	profile, err := db.GetProfileByUserID(database, userID)
	if err != nil {
		return 0
	}
	if profile.IsAdmin || profile.Role == "admin" {
		return int(patreon.TierFounder)
	}
	return int(patreon.TierFromString(profile.PatreonTier))
}

// isAdmin reports whether the given user id belongs to an admin profile.
func isAdmin(database *gorm.DB, userID string) bool {
	if userID == "" {
		return false
	}
	profile, err := db.GetProfileByUserID(database, userID)
	if err != nil {
		return false
	}
	return profile.IsAdmin || profile.Role == "admin"
}

// RequireAdmin middleware rejects non-admin callers. Must run after
// auth.RequireUser.
func RequireAdmin(database *gorm.DB) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !isAdmin(database, auth.UserIDFromContext(r.Context())) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				w.Write([]byte(`{"error": "Admin access required"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// profileSummary is the author shape embedded in comment listings.
type profileSummary struct {
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// profilesByUserID loads a username/avatar map for a set of user ids.
func profilesByUserID(database *gorm.DB, userIDs []string) map[string]profileSummary {
	result := make(map[string]profileSummary)
	if len(userIDs) == 0 {
		return result
	}
	var profiles []models.Profile
	database.Where("user_id IN ?", userIDs).Find(&profiles)
	for _, p := range profiles {
		username := p.Username
		if username == "" {
			username = "Anonymous"
		}
		result[p.UserID] = profileSummary{Username: username, AvatarURL: p.AvatarURL}
	}
	return result
}
