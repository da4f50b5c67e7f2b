package db

import (
	"time"

	"github.com/miragepark/community-portal/internal/db/models"
	"gorm.io/gorm"
)

// PatreonLink is the full link state written after a successful OAuth flow.
type PatreonLink struct {
	PatreonID    string
	Tier         string
	AccessToken  string
	RefreshToken string
	TokenExpiry  time.Time
}

// GetProfileByUserID returns the profile for a local user id.
func GetProfileByUserID(database *gorm.DB, userID string) (*models.Profile, error) {
	var profile models.Profile
	if err := database.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetProfileByPatreonID returns the profile correlated with an external
// Patreon member id. The member id is the only key the webhook path uses.
func GetProfileByPatreonID(database *gorm.DB, patreonID string) (*models.Profile, error) {
	var profile models.Profile
	if err := database.Where("patreon_id = ?", patreonID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpsertPatreonLink stores the Patreon link on the profile keyed by local
// user id. This is the terminal write of the OAuth flow; nothing is persisted
// before every upstream fetch has succeeded.
func UpsertPatreonLink(database *gorm.DB, userID string, link PatreonLink) error {
	return database.Model(&models.Profile{}).Where("user_id = ?", userID).Updates(map[string]interface{}{
		"patreon_id":            link.PatreonID,
		"patreon_connected":     true,
		"patreon_tier":          link.Tier,
		"patreon_token":         link.AccessToken,
		"patreon_refresh_token": link.RefreshToken,
		"patreon_token_expiry":  link.TokenExpiry,
	}).Error
}

// UpdatePatreonTier sets the resolved tier for the profile matched by Patreon
// member id and marks the link connected. Used by pledge create/update events.
func UpdatePatreonTier(database *gorm.DB, patreonID, tier string) error {
	return database.Model(&models.Profile{}).Where("patreon_id = ?", patreonID).Updates(map[string]interface{}{
		"patreon_tier":      tier,
		"patreon_connected": true,
	}).Error
}

// ClearPatreonTier clears the resolved tier for the profile matched by
// Patreon member id. Pledge deletion drops the tier but leaves the link
// connected; disconnecting is a separate, user-initiated action.
func ClearPatreonTier(database *gorm.DB, patreonID string) error {
	return database.Model(&models.Profile{}).Where("patreon_id = ?", patreonID).
		Update("patreon_tier", "").Error
}

// DisconnectPatreon clears the link for a local user. Tier is cleared along
// with the connected flag; a disconnected profile never keeps a tier.
func DisconnectPatreon(database *gorm.DB, userID string) error {
	return database.Model(&models.Profile{}).Where("user_id = ?", userID).Updates(map[string]interface{}{
		"patreon_connected": false,
		"patreon_tier":      "",
	}).Error
}

// UpdatePatreonTokens persists refreshed credentials for a profile.
func UpdatePatreonTokens(database *gorm.DB, userID, accessToken, refreshToken string, expiry time.Time) error {
	return database.Model(&models.Profile{}).Where("user_id = ?", userID).Updates(map[string]interface{}{
		"patreon_token":         accessToken,
		"patreon_refresh_token": refreshToken,
		"patreon_token_expiry":  expiry,
	}).Error
}

// RecordQuestionAsked bumps the Q&A counters after a successful submission.
func RecordQuestionAsked(database *gorm.DB, userID string) error {
	now := time.Now()
	return database.Model(&models.Profile{}).Where("user_id = ?", userID).Updates(map[string]interface{}{
		"questions_asked":    gorm.Expr("questions_asked + 1"),
		"last_question_date": now,
	}).Error
}
