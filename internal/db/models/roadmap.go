package models

import "time"

// Roadmap is the single-row funding tracker shown on the roadmap page.
type Roadmap struct {
	ID             uint  `gorm:"primaryKey" json:"id"`
	CurrentFunding int64 `json:"current_funding"`
	FundingGoal    int64 `json:"funding_goal"`

	UpdatedAt time.Time `json:"updated_at"`
}
