package patreon

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/miragepark/community-portal/internal/auth"
	"github.com/miragepark/community-portal/internal/config"
	"github.com/miragepark/community-portal/internal/db"
	"github.com/miragepark/community-portal/internal/util"
	"gorm.io/gorm"
)

// ConnectHandler begins the link flow for the signed-in user: it builds the
// redirect into the OAuth handler, carrying the caller's bearer credential
// and a return address. Refuses to initiate when no user is signed in.
func ConnectHandler(database *gorm.DB, cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := auth.BearerFromRequest(r)
		if _, err := auth.VerifyToken(database, token); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error": "Not authenticated"}`))
			return
		}

		target := "/patreon-oauth?redirect_url=" + url.QueryEscape(cfg.AppOrigin+"/profile") +
			"&auth_token=" + url.QueryEscape(token)
		http.Redirect(w, r, target, http.StatusFound)
	}
}

// StatusHandler reports the current user's link state:
// {connected: bool, tier: string|null}.
func StatusHandler(database *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := auth.UserIDFromContext(r.Context())

		w.Header().Set("Content-Type", "application/json")

		profile, err := db.GetProfileByUserID(database, userID)
		if err != nil {
			json.NewEncoder(w).Encode(map[string]interface{}{
				"connected": false,
				"tier":      nil,
				"error":     "Profile not found",
			})
			return
		}

		var tier interface{}
		if profile.PatreonTier != "" {
			tier = profile.PatreonTier
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"connected": profile.PatreonConnected,
			"tier":      tier,
		})
	}
}

// DisconnectHandler clears the current user's link: connected flag and tier
// both go, honoring the no-tier-without-connection invariant.
func DisconnectHandler(database *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := auth.UserIDFromContext(r.Context())

		w.Header().Set("Content-Type", "application/json")

		if err := db.DisconnectPatreon(database, userID); err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"success": false,
				"error":   util.TruncateLog(err.Error(), 200),
			})
			return
		}
		w.Write([]byte(`{"success": true}`))
	}
}
