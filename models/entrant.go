package models

import (
	"time"
)

type EntrantStatus string

const (
	StatusWaitlist EntrantStatus = "waitlist"
	StatusWave1    EntrantStatus = "wave1"
	StatusWave2    EntrantStatus = "wave2"
	StatusWave3    EntrantStatus = "wave3"
	StatusWave4    EntrantStatus = "wave4"
	StatusWave5    EntrantStatus = "wave5"
)

// AccessWaves are the release waves, earliest first.
var AccessWaves = []EntrantStatus{StatusWave1, StatusWave2, StatusWave3, StatusWave4, StatusWave5}

// FreeAccessLifetime is the free_access_months value granted to the top tier.
const FreeAccessLifetime = 999

// Entrant is one waitlist signup. The five point sources are the only inputs to TotalScore;
// TotalScore is written exclusively by the score engine's recompute step.
type Entrant struct {
	ID           string  `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Email        string  `gorm:"uniqueIndex;not null;size:255" json:"email"`
	Name         *string `gorm:"size:255" json:"name,omitempty"`
	ReferralCode string  `gorm:"uniqueIndex;not null;size:16" json:"referral_code"`
	ReferredBy   *string `gorm:"index;size:16" json:"referred_by,omitempty"`

	// Point sources
	ReferralCount         int `gorm:"not null;default:0" json:"referral_count"`
	ContributionPoints    int `gorm:"not null;default:0" json:"contribution_points"`
	EngagementPoints      int `gorm:"not null;default:0" json:"engagement_points"`
	EarlyCommitmentBonus  int `gorm:"not null;default:0" json:"early_commitment_bonus"`
	CodeDevelopmentPoints int `gorm:"not null;default:0" json:"code_development_points"`

	TotalScore int `gorm:"not null;default:0;index" json:"total_score"`

	// Set only by snapshots
	SnapshotRank *int       `json:"snapshot_rank,omitempty"`
	SnapshotAt   *time.Time `json:"snapshot_at,omitempty"`

	// Rewards
	FreeAccessMonths   int           `gorm:"not null;default:0" json:"free_access_months"`
	DiscountPercentage int           `gorm:"not null;default:0" json:"discount_percentage"`
	VotingWeight       int           `gorm:"not null;default:1" json:"voting_weight"`
	Badges             BadgeSet      `gorm:"type:text" json:"badges"`
	Status             EntrantStatus `gorm:"size:32;not null;default:'waitlist'" json:"status"`

	IsVerified bool `gorm:"not null;default:false" json:"is_verified"`
	IsSpam     bool `gorm:"not null;default:false;index" json:"is_spam"`

	Timestamps
}

// DisplayName is the public name shown on leaderboards.
func (e *Entrant) DisplayName() string {
	if e.Name == nil || *e.Name == "" {
		return "Anonymous"
	}
	return *e.Name
}

// ReferralPoints is the weighted contribution of referrals to the total score.
func (e *Entrant) ReferralPoints() int {
	return e.ReferralCount * ReferralWeight
}

// ReferralWeight is applied to referral_count when the total score is combined.
const ReferralWeight = 2
