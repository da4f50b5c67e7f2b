package patreon

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/miragepark/community-portal/internal/config"
	"github.com/miragepark/community-portal/internal/db"
	"github.com/miragepark/community-portal/internal/db/models"
	"golang.org/x/oauth2"
	"gorm.io/gorm"
)

// RefreshManager keeps stored Patreon refresh tokens fresh so the link keeps
// working between user visits. Runs as a background loop; each pass refreshes
// tokens expiring within the lookahead window.
type RefreshManager struct {
	db  *gorm.DB
	cfg *config.Config
}

const (
	refreshInterval  = 6 * time.Hour
	refreshLookahead = 24 * time.Hour
)

// NewRefreshManager creates a refresh manager.
func NewRefreshManager(database *gorm.DB, cfg *config.Config) *RefreshManager {
	return &RefreshManager{db: database, cfg: cfg}
}

// StartRefreshLoop starts the background refresh.
func (m *RefreshManager) StartRefreshLoop() {
	ticker := time.NewTicker(refreshInterval)
	go func() {
		for range ticker.C {
			m.refreshExpiring()
		}
	}()
	log.Printf("Patreon token refresh loop started (interval: %s)", refreshInterval)
}

// refreshExpiring refreshes tokens for all connected profiles whose access
// token expires within the lookahead window.
func (m *RefreshManager) refreshExpiring() {
	var profiles []models.Profile
	threshold := time.Now().Add(refreshLookahead)
	m.db.Where("patreon_connected = ? AND patreon_refresh_token <> ? AND patreon_token_expiry < ?",
		true, "", threshold).Find(&profiles)

	for i := range profiles {
		m.RefreshProfile(&profiles[i])
	}
}

// RefreshProfile refreshes a single profile's Patreon tokens.
func (m *RefreshManager) RefreshProfile(profile *models.Profile) {
	conf := OAuthConfig(m.cfg, "")
	source := conf.TokenSource(context.Background(), &oauth2.Token{
		RefreshToken: profile.PatreonRefreshToken,
	})

	newToken, err := source.Token()
	if err != nil {
		log.Printf("Patreon refresh failed for user %s: %v", profile.UserID, err)
		if isPermanentRefreshError(err) {
			// The grant is dead; drop the credentials so we stop retrying.
			// The link itself stays until the user disconnects or relinks.
			db.UpdatePatreonTokens(m.db, profile.UserID, "", "", time.Time{})
			log.Printf("Patreon credentials cleared for user %s, relink required", profile.UserID)
		}
		return
	}

	refreshToken := profile.PatreonRefreshToken
	if newToken.RefreshToken != "" && newToken.RefreshToken != refreshToken {
		log.Printf("Patreon refresh token rotated for user %s", profile.UserID)
		refreshToken = newToken.RefreshToken
	}

	if err := db.UpdatePatreonTokens(m.db, profile.UserID, newToken.AccessToken, refreshToken, newToken.Expiry); err != nil {
		log.Printf("Failed to save refreshed Patreon token: %v", err)
		return
	}
	log.Printf("Refreshed Patreon token for user %s (expires: %s)", profile.UserID, newToken.Expiry.Format(time.RFC3339))
}

func isPermanentRefreshError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	permanentMarkers := []string{
		"invalid_grant",
		"invalid_client",
		"unauthorized_client",
		"revoked",
	}
	for _, marker := range permanentMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
