package testutil

import (
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"waitlist-rank-system/models"
	"waitlist-rank-system/utils"
)

// Epoch is a fixed instant after every default early-bonus cutoff.
var Epoch = time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

// NewDB returns a migrated in-memory SQLite database that is closed with the test.
func NewDB(t testing.TB) *gorm.DB {
	db, err := utils.OpenDatabase(utils.SQLitePrefix+":memory:", slog.LevelInfo)
	require.NoError(t, err)
	require.NoError(t, utils.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func Logger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// InsertEntrant stores e with its identity and defaults filled in. TotalScore is derived from
// the point sources so fixtures never start out of sync. Entrants inserted in sequence get
// increasing creation times.
func InsertEntrant(t testing.TB, db *gorm.DB, e models.Entrant) *models.Entrant {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Email == "" {
		e.Email = e.ID + "@example.com"
	}
	if e.ReferralCode == "" {
		e.ReferralCode = strings.ToUpper(strings.ReplaceAll(e.ID, "-", "")[:8])
	}
	if e.VotingWeight == 0 {
		e.VotingWeight = 1
	}
	if e.Status == "" {
		e.Status = models.StatusWaitlist
	}
	if e.Badges == nil {
		e.Badges = models.BadgeSet{}
	}
	if e.CreatedAt.IsZero() {
		var count int64
		require.NoError(t, db.Model(&models.Entrant{}).Count(&count).Error)
		e.CreatedAt = Epoch.Add(time.Duration(count) * time.Minute)
	}
	e.TotalScore = e.ReferralPoints() + e.ContributionPoints + e.EngagementPoints +
		e.EarlyCommitmentBonus + e.CodeDevelopmentPoints

	require.NoError(t, db.Create(&e).Error)
	return &e
}

// EntrantWithScore is shorthand for an entrant whose whole score is engagement points.
func EntrantWithScore(t testing.TB, db *gorm.DB, name string, score int) *models.Entrant {
	return InsertEntrant(t, db, models.Entrant{
		Email:            fmt.Sprintf("%s@example.com", strings.ToLower(name)),
		Name:             &name,
		EngagementPoints: score,
	})
}

// Reload reads e back from db.
func Reload(t testing.TB, db *gorm.DB, e *models.Entrant) *models.Entrant {
	var fresh models.Entrant
	require.NoError(t, db.Where("id = ?", e.ID).First(&fresh).Error)
	return &fresh
}
