package services

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"waitlist-rank-system/errorx"
	"waitlist-rank-system/models"
	"waitlist-rank-system/testutil"
)

func newContributionService(t *testing.T) *ContributionService {
	clock := clockwork.NewFakeClockAt(testutil.Epoch.Add(time.Hour))
	return NewContributionService(testutil.NewDB(t), clock, testutil.Logger())
}

func TestSubmitValidatesPoints(t *testing.T) {
	svc := newContributionService(t)
	ctx := context.Background()
	testutil.InsertEntrant(t, svc.DB, models.Entrant{Email: "tester@example.com"})

	_, err := svc.Submit(ctx, "tester@example.com", "testing", "found a crash", 20)
	require.True(t, errorx.Is(err, errorx.InvalidPoints))

	_, err = svc.Submit(ctx, "tester@example.com", "haiku", "", 5)
	require.True(t, errorx.Is(err, errorx.BadRequest))

	_, err = svc.Submit(ctx, "nobody@example.com", "testing", "", 10)
	require.True(t, errorx.Is(err, errorx.NotFound))

	c, err := svc.Submit(ctx, "tester@example.com", "testing", "  found a crash ", 10)
	require.NoError(t, err)
	require.Equal(t, models.ContributionPending, c.Status)
	require.Equal(t, "found a crash", c.Description)

	var count int64
	require.NoError(t, svc.DB.Model(&models.Contribution{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestApproveCreditsEntrant(t *testing.T) {
	svc := newContributionService(t)
	ctx := context.Background()
	e := testutil.InsertEntrant(t, svc.DB, models.Entrant{Email: "tester@example.com", EarlyCommitmentBonus: 15})

	c, err := svc.Submit(ctx, e.Email, "testing", "regression suite", 10)
	require.NoError(t, err)

	approved, err := svc.Approve(ctx, c.ID, "maintainer")
	require.NoError(t, err)
	require.Equal(t, models.ContributionApproved, approved.Status)
	require.Equal(t, "maintainer", *approved.ReviewedBy)
	require.NotNil(t, approved.ReviewedAt)

	fresh := testutil.Reload(t, svc.DB, e)
	require.Equal(t, 10, fresh.ContributionPoints)
	require.Equal(t, 25, fresh.TotalScore)

	var event models.ScoreEvent
	require.NoError(t, svc.DB.Where("entrant_id = ?", e.ID).First(&event).Error)
	require.Equal(t, models.SourceContribution, event.Source)
	require.Equal(t, c.ID, event.Note)
	require.Equal(t, 25, event.TotalAfter)

	// Approving twice would double count.
	_, err = svc.Approve(ctx, c.ID, "maintainer")
	require.True(t, errorx.Is(err, errorx.InvalidState))
	require.Equal(t, 25, testutil.Reload(t, svc.DB, e).TotalScore)
}

func TestRejectLeavesScore(t *testing.T) {
	svc := newContributionService(t)
	ctx := context.Background()
	e := testutil.InsertEntrant(t, svc.DB, models.Entrant{Email: "writer@example.com"})

	c, err := svc.Submit(ctx, e.Email, "documentation", "tutorial", 20)
	require.NoError(t, err)

	rejected, err := svc.Reject(ctx, c.ID, "")
	require.NoError(t, err)
	require.Equal(t, models.ContributionRejected, rejected.Status)
	require.Equal(t, "admin", *rejected.ReviewedBy)
	require.Zero(t, testutil.Reload(t, svc.DB, e).TotalScore)

	_, err = svc.Approve(ctx, c.ID, "admin")
	require.True(t, errorx.Is(err, errorx.InvalidState))

	_, err = svc.Reject(ctx, "missing", "admin")
	require.True(t, errorx.Is(err, errorx.NotFound))
}

func TestPendingAndForEntrant(t *testing.T) {
	svc := newContributionService(t)
	ctx := context.Background()
	a := testutil.InsertEntrant(t, svc.DB, models.Entrant{Email: "a@example.com"})
	testutil.InsertEntrant(t, svc.DB, models.Entrant{Email: "b@example.com"})

	first, err := svc.Submit(ctx, "a@example.com", "bug_report", "crash", 20)
	require.NoError(t, err)
	_, err = svc.Submit(ctx, "b@example.com", "community_support", "answered", 5)
	require.NoError(t, err)
	_, err = svc.Approve(ctx, first.ID, "admin")
	require.NoError(t, err)

	pending, err := svc.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, "b@example.com", pending[0].Email)
	require.Equal(t, "community_support", pending[0].Type)

	entrant, contributions, err := svc.ForEntrant(ctx, "A@example.com")
	require.NoError(t, err)
	require.Equal(t, a.ID, entrant.ID)
	require.Equal(t, 20, entrant.ContributionPoints)
	require.Len(t, contributions, 1)
	require.Equal(t, models.ContributionApproved, contributions[0].Status)

	_, _, err = svc.ForEntrant(ctx, "ghost@example.com")
	require.True(t, errorx.Is(err, errorx.NotFound))

	require.Len(t, svc.Types(), 6)
}
