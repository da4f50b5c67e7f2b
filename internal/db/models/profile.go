package models

import "time"

// Profile is the portal-side record for a signed-in user. Credentials live in
// the hosted identity provider; this row carries portal state and the Patreon
// membership link.
type Profile struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    string `gorm:"uniqueIndex"` // identity provider subject
	Username  string
	Email     string
	FullName  string
	AvatarURL string
	Role      string `gorm:"default:user"`
	IsAdmin   bool   `gorm:"default:false"`

	// Patreon membership link. Written only by the OAuth handler, the webhook
	// receiver and the explicit disconnect action. PatreonID is the sole
	// correlation key for webhook updates.
	PatreonID           string `gorm:"index"`
	PatreonConnected    bool   `gorm:"default:false"`
	PatreonTier         string // "", "basic", "supporter" or "founder"
	PatreonToken        string
	PatreonRefreshToken string
	PatreonTokenExpiry  time.Time

	// Q&A eligibility counters.
	QuestionsAsked   int
	LastQuestionDate *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
