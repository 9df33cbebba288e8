package models

import "time"

type ContributionStatus string

const (
	ContributionPending  ContributionStatus = "pending"
	ContributionApproved ContributionStatus = "approved"
	ContributionRejected ContributionStatus = "rejected"
)

// Contribution is a reviewed record of work an entrant submitted. Rows are never deleted.
type Contribution struct {
	ID          string             `gorm:"primaryKey;type:varchar(36)" json:"id"`
	EntrantID   string             `gorm:"index;not null;type:varchar(36)" json:"entrant_id"`
	Type        string             `gorm:"size:50;not null" json:"type"`
	Description string             `gorm:"size:500" json:"description"`
	Points      int                `gorm:"not null" json:"points"`
	Status      ContributionStatus `gorm:"size:16;not null;default:'pending';index" json:"status"`
	ReviewedBy  *string            `gorm:"size:255" json:"reviewed_by,omitempty"`
	ReviewedAt  *time.Time         `json:"reviewed_at,omitempty"`
	CreatedAt   time.Time          `gorm:"autoCreateTime" json:"created_at"`
}

// ContributionType bounds the points a contribution of that kind may be worth.
type ContributionType struct {
	Min   int    `json:"min"`
	Max   int    `json:"max"`
	Label string `json:"label"`
}

// ContributionPointValues are the only point values a contribution may carry.
var ContributionPointValues = []int{5, 10, 20}

var ContributionTypes = map[string]ContributionType{
	"bug_report":        {Min: 5, Max: 20, Label: "Bug Report"},
	"feature_feedback":  {Min: 5, Max: 10, Label: "Feature Feedback"},
	"testing":           {Min: 5, Max: 10, Label: "Release Testing"},
	"documentation":     {Min: 10, Max: 20, Label: "Documentation/Tutorial"},
	"demo_project":      {Min: 10, Max: 20, Label: "Demo Project/Integration"},
	"community_support": {Min: 5, Max: 10, Label: "Community Support"},
}
