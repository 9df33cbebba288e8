package workers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"waitlist-rank-system/metrics"
	"waitlist-rank-system/models"
	"waitlist-rank-system/testutil"
)

func TestAuditRepairsDrift(t *testing.T) {
	db := testutil.NewDB(t)
	ok := testutil.InsertEntrant(t, db, models.Entrant{ReferralCount: 2, EngagementPoints: 3})
	drifted := testutil.InsertEntrant(t, db, models.Entrant{ContributionPoints: 10, EarlyCommitmentBonus: 15})
	require.NoError(t, db.Model(drifted).UpdateColumn("total_score", 999).Error)

	w := NewScoreAuditWorker(db, time.Minute, testutil.Logger(), &metrics.Metrics{})
	repaired, err := w.Audit(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, repaired)

	require.Equal(t, 25, testutil.Reload(t, db, drifted).TotalScore)
	require.Equal(t, 7, testutil.Reload(t, db, ok).TotalScore)

	repaired, err = w.Audit(context.Background())
	require.NoError(t, err)
	require.Zero(t, repaired)
}

func TestAuditKeepsConcurrentScoreUpdate(t *testing.T) {
	db := testutil.NewDB(t)
	e := testutil.InsertEntrant(t, db, models.Entrant{EngagementPoints: 10})
	require.NoError(t, db.Model(e).UpdateColumn("total_score", 3).Error)

	// A score mutation commits after the audit read the batch and before it writes.
	mutated := false
	require.NoError(t, db.Callback().Update().Before("gorm:update").Register("test:mutate", func(tx *gorm.DB) {
		if mutated {
			return
		}
		mutated = true
		require.NoError(t, db.Exec(
			"UPDATE entrants SET engagement_points = ?, total_score = ? WHERE id = ?", 20, 20, e.ID,
		).Error)
	}))

	w := NewScoreAuditWorker(db, time.Minute, testutil.Logger(), nil)
	repaired, err := w.Audit(context.Background())
	require.NoError(t, err)
	require.Zero(t, repaired)
	require.True(t, mutated)

	fresh := testutil.Reload(t, db, e)
	require.Equal(t, 20, fresh.EngagementPoints)
	require.Equal(t, 20, fresh.TotalScore)
}

func TestAuditWorkerStopsWithContext(t *testing.T) {
	db := testutil.NewDB(t)
	drifted := testutil.InsertEntrant(t, db, models.Entrant{EngagementPoints: 4})
	require.NoError(t, db.Model(drifted).UpdateColumn("total_score", 0).Error)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	NewScoreAuditWorker(db, time.Hour, testutil.Logger(), nil).Start(ctx)

	require.Eventually(t, func() bool {
		return testutil.Reload(t, db, drifted).TotalScore == 4
	}, 5*time.Second, 20*time.Millisecond)
}
