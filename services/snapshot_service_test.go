package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"waitlist-rank-system/errorx"
	"waitlist-rank-system/models"
	"waitlist-rank-system/testutil"
)

type fakeBoard struct {
	published []LeaderboardEntry
	err       error
}

func (b *fakeBoard) Publish(_ context.Context, entries []LeaderboardEntry) error {
	if b.err != nil {
		return b.err
	}
	b.published = entries
	return nil
}

func (b *fakeBoard) Top(_ context.Context, limit int) ([]LeaderboardEntry, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.published[:min(limit, len(b.published))], nil
}

type fakeArchiver struct {
	runs []string
	err  error
}

func (a *fakeArchiver) Archive(_ context.Context, run *models.SnapshotRun, ranked []models.Entrant) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	a.runs = append(a.runs, run.ID)
	return "snapshots/" + run.ID + ".csv", nil
}

func newSnapshotService(t *testing.T) (*SnapshotService, *clockwork.FakeClock) {
	clock := clockwork.NewFakeClockAt(testutil.Epoch.Add(24 * time.Hour))
	return NewSnapshotService(testutil.NewDB(t), clock, testutil.Logger()), clock
}

func TestTakeSnapshotSingleEntrant(t *testing.T) {
	svc, clock := newSnapshotService(t)
	pop := population(90, 60, 60, 5)
	for i := range pop {
		pop[i].VotingWeight = 1
	}

	svc.TakeSnapshot(&pop[2], pop)
	require.Equal(t, 2, *pop[2].SnapshotRank)
	require.Equal(t, clock.Now().UTC(), *pop[2].SnapshotAt)
	require.Equal(t, models.FreeAccessLifetime, pop[2].FreeAccessMonths)
	require.Equal(t, 3, pop[2].VotingWeight)
	require.True(t, pop[2].Badges.Has(models.BadgeKeyholder))
	require.Nil(t, pop[1].SnapshotRank)
}

func TestGlobalSnapshotTiesUseScanOrder(t *testing.T) {
	svc, _ := newSnapshotService(t)
	a := testutil.EntrantWithScore(t, svc.DB, "Ada", 50)
	b := testutil.EntrantWithScore(t, svc.DB, "Bo", 50)
	c := testutil.EntrantWithScore(t, svc.DB, "Cy", 30)

	run, err := svc.TakeGlobalSnapshot(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, 3, run.EntrantCount)
	require.Equal(t, "manual", run.Label)

	for want, e := range []*models.Entrant{a, b, c} {
		fresh := testutil.Reload(t, svc.DB, e)
		require.NotNil(t, fresh.SnapshotRank)
		require.Equal(t, want+1, *fresh.SnapshotRank)
		require.NotNil(t, fresh.SnapshotAt)
	}

	var runs []models.SnapshotRun
	require.NoError(t, svc.DB.Find(&runs).Error)
	require.Len(t, runs, 1)
}

func TestGlobalSnapshotIsPermutationAndSkipsSpam(t *testing.T) {
	svc, _ := newSnapshotService(t)
	scores := []int{7, 99, 7, 0, 42, 13, 42, 1}
	for _, s := range scores {
		testutil.InsertEntrant(t, svc.DB, models.Entrant{EngagementPoints: s})
	}
	spam := testutil.InsertEntrant(t, svc.DB, models.Entrant{EngagementPoints: 500, IsSpam: true})

	run, err := svc.TakeGlobalSnapshot(context.Background(), "wave1")
	require.NoError(t, err)
	require.Equal(t, len(scores), run.EntrantCount)

	var ranked []models.Entrant
	require.NoError(t, svc.DB.Where("is_spam = ?", false).Order("snapshot_rank ASC").Find(&ranked).Error)
	require.Len(t, ranked, len(scores))
	for i, e := range ranked {
		require.Equal(t, i+1, *e.SnapshotRank)
		if i > 0 {
			require.LessOrEqual(t, e.TotalScore, ranked[i-1].TotalScore)
		}
	}

	require.Nil(t, testutil.Reload(t, svc.DB, spam).SnapshotRank)
}

func TestGlobalSnapshotAppliesRewards(t *testing.T) {
	svc, _ := newSnapshotService(t)
	top := testutil.EntrantWithScore(t, svc.DB, "Top", 80)

	_, err := svc.TakeGlobalSnapshot(context.Background(), "launch")
	require.NoError(t, err)

	fresh := testutil.Reload(t, svc.DB, top)
	require.Equal(t, models.FreeAccessLifetime, fresh.FreeAccessMonths)
	require.Equal(t, 3, fresh.VotingWeight)
	require.Equal(t, 25, fresh.DiscountPercentage)
	require.Equal(t, models.StatusWave1, fresh.Status)
	require.Equal(t, models.BadgeSet{models.BadgeKeyholder, models.BadgeFoundingMember}, fresh.Badges)
}

func TestGlobalSnapshotRollsBackOnFailure(t *testing.T) {
	svc, _ := newSnapshotService(t)
	e := testutil.EntrantWithScore(t, svc.DB, "Solo", 10)

	// Without the runs table the final insert fails and the rank updates must not survive.
	require.NoError(t, svc.DB.Migrator().DropTable(&models.SnapshotRun{}))

	_, err := svc.TakeGlobalSnapshot(context.Background(), "broken")
	require.ErrorIs(t, err, errorx.Unknown)
	require.Nil(t, testutil.Reload(t, svc.DB, e).SnapshotRank)
}

func TestGlobalSnapshotPublishesAndArchives(t *testing.T) {
	svc, _ := newSnapshotService(t)
	board := &fakeBoard{}
	archiver := &fakeArchiver{}
	svc.Board = board
	svc.Archiver = archiver

	testutil.EntrantWithScore(t, svc.DB, "One", 30)
	testutil.EntrantWithScore(t, svc.DB, "Two", 20)

	run, err := svc.TakeGlobalSnapshot(context.Background(), "launch")
	require.NoError(t, err)
	require.Equal(t, "snapshots/"+run.ID+".csv", run.ArchiveKey)

	var stored models.SnapshotRun
	require.NoError(t, svc.DB.First(&stored, "id = ?", run.ID).Error)
	require.Equal(t, run.ArchiveKey, stored.ArchiveKey)

	require.Len(t, board.published, 2)
	require.Equal(t, "One", board.published[0].Name)

	top, err := svc.SnapshotTop(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	require.Equal(t, 1, top[0].Rank)
}

func TestGlobalSnapshotSurvivesBoardAndArchiveFailures(t *testing.T) {
	svc, _ := newSnapshotService(t)
	svc.Board = &fakeBoard{err: errors.New("redis down")}
	svc.Archiver = &fakeArchiver{err: errors.New("bucket missing")}

	testutil.EntrantWithScore(t, svc.DB, "One", 30)
	testutil.EntrantWithScore(t, svc.DB, "Two", 20)

	run, err := svc.TakeGlobalSnapshot(context.Background(), "launch")
	require.NoError(t, err)
	require.Empty(t, run.ArchiveKey)

	// The board is down, so reads fall back to the stored ranks.
	top, err := svc.SnapshotTop(context.Background(), 50)
	require.NoError(t, err)
	require.Len(t, top, 2)
	require.Equal(t, "Two", top[1].Name)
	require.Equal(t, 2, top[1].Rank)
}

func TestSnapshotRunsNewestFirst(t *testing.T) {
	svc, clock := newSnapshotService(t)
	_, err := svc.TakeGlobalSnapshot(context.Background(), "first")
	require.NoError(t, err)
	clock.Advance(time.Hour)
	_, err = svc.TakeGlobalSnapshot(context.Background(), "second")
	require.NoError(t, err)

	runs, err := svc.Runs(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	require.Equal(t, "second", runs[0].Label)
	require.Equal(t, 0, runs[0].EntrantCount)
}
