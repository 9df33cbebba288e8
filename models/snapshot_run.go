package models

import "time"

// SnapshotRun is the audit row written by every global snapshot.
type SnapshotRun struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Label        string    `gorm:"size:100" json:"label"`
	TakenAt      time.Time `gorm:"not null;index" json:"taken_at"`
	EntrantCount int       `gorm:"not null" json:"entrant_count"`
	ArchiveKey   string    `gorm:"size:255" json:"archive_key,omitempty"`
}
