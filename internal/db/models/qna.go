package models

import "time"

// Question is a supporter-submitted Q&A entry. UserTier records the
// submitter's resolved tier at submission time.
type Question struct {
	ID         string     `gorm:"primaryKey" json:"id"` // UUID
	UserID     string     `gorm:"index" json:"user_id"`
	Question   string     `json:"question"`
	Answer     string     `json:"answer,omitempty"`
	AnsweredAt *time.Time `json:"answered_at,omitempty"`
	UserTier   string     `json:"user_tier,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
