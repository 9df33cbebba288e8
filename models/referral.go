package models

import "time"

// Referral records that ReferredID signed up with ReferrerID's code. One row per referred
// entrant; PointsAwarded is false when the referrer was flagged as spam at the time.
type Referral struct {
	ID               string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ReferrerID       string    `gorm:"index;not null;type:varchar(36)" json:"referrer_id"`
	ReferredID       string    `gorm:"uniqueIndex;not null;type:varchar(36)" json:"referred_id"`
	ReferralCodeUsed string    `gorm:"not null;size:16" json:"referral_code_used"`
	PointsAwarded    bool      `gorm:"not null;default:false" json:"points_awarded"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
}
