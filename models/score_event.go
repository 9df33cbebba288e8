package models

import "time"

type ScoreSource string

const (
	SourceReferral        ScoreSource = "referral"
	SourceContribution    ScoreSource = "contribution"
	SourceEngagement      ScoreSource = "engagement"
	SourceCodeDevelopment ScoreSource = "code_development"
)

// ScoreEvent is an append-only ledger line for a point-source mutation.
type ScoreEvent struct {
	ID         string      `gorm:"primaryKey;type:varchar(36)" json:"id"`
	EntrantID  string      `gorm:"index;not null;type:varchar(36)" json:"entrant_id"`
	Source     ScoreSource `gorm:"size:32;not null" json:"source"`
	Points     int         `gorm:"not null" json:"points"`
	Note       string      `gorm:"size:500" json:"note,omitempty"`
	TotalAfter int         `gorm:"not null" json:"total_after"`
	CreatedAt  time.Time   `gorm:"autoCreateTime" json:"created_at"`
}
