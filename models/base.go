package models

import (
	"time"
)

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// MigrateModels lists every table owned by the waitlist service, in creation order.
var MigrateModels = []any{
	&Entrant{},
	&Referral{},
	&Contribution{},
	&ScoreEvent{},
	&SnapshotRun{},
}
