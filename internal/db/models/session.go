package models

import "time"

// Session maps a bearer token issued by the hosted auth provider onto a local
// user id. The portal only consumes these rows; issuance happens upstream.
type Session struct {
	Token     string `gorm:"primaryKey"`
	UserID    string `gorm:"index"`
	ExpiresAt time.Time

	CreatedAt time.Time
}

// LinkState is a short-lived, single-use OAuth state record minted when a
// Patreon link flow begins. It stands in for the bearer credential across the
// external authorization hop.
type LinkState struct {
	State       string `gorm:"primaryKey"` // UUID
	UserID      string
	RedirectURL string
	ExpiresAt   time.Time

	CreatedAt time.Time
}
