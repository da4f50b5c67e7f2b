package patreon

import (
	"crypto/hmac"
	"crypto/md5"
	"encoding/hex"
	"path/filepath"
	"testing"
	"time"

	"github.com/miragepark/community-portal/internal/config"
	"github.com/miragepark/community-portal/internal/db"
	"github.com/miragepark/community-portal/internal/db/models"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := db.InitDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to init test database: %v", err)
	}
	return database
}

func testConfig() *config.Config {
	return &config.Config{
		AppOrigin:            "http://app.test",
		PatreonClientID:      "client-id",
		PatreonClientSecret:  "client-secret",
		PatreonWebhookSecret: "hook-secret",
		PatreonAuthURL:       "https://patreon.test/oauth2/authorize",
		PatreonTokenURL:      "https://patreon.test/api/oauth2/token",
		PatreonAPIBase:       "https://patreon.test/api/oauth2/v2",
	}
}

func seedProfile(t *testing.T, database *gorm.DB, profile models.Profile) models.Profile {
	t.Helper()
	if err := database.Create(&profile).Error; err != nil {
		t.Fatalf("Failed to seed profile: %v", err)
	}
	return profile
}

func seedSession(t *testing.T, database *gorm.DB, token, userID string) {
	t.Helper()
	err := database.Create(&models.Session{
		Token:     token,
		UserID:    userID,
		ExpiresAt: time.Now().Add(time.Hour),
	}).Error
	if err != nil {
		t.Fatalf("Failed to seed session: %v", err)
	}
}

func loadProfileByUserID(t *testing.T, database *gorm.DB, userID string) models.Profile {
	t.Helper()
	var profile models.Profile
	if err := database.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		t.Fatalf("Failed to load profile %s: %v", userID, err)
	}
	return profile
}

func signWebhook(body []byte, secret string) string {
	mac := hmac.New(md5.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
