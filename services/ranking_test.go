package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"waitlist-rank-system/models"
	"waitlist-rank-system/testutil"
)

func population(scores ...int) []models.Entrant {
	pop := make([]models.Entrant, len(scores))
	for i, s := range scores {
		pop[i] = models.Entrant{TotalScore: s}
	}
	return pop
}

func TestCurrentRankSharesTies(t *testing.T) {
	pop := population(50, 50, 30, 10)
	require.Equal(t, 1, CurrentRank(&pop[0], pop))
	require.Equal(t, 1, CurrentRank(&pop[1], pop))
	require.Equal(t, 3, CurrentRank(&pop[2], pop))
	require.Equal(t, 4, CurrentRank(&pop[3], pop))
}

func TestCurrentRankIgnoresSpam(t *testing.T) {
	pop := population(100, 40, 20)
	pop[0].IsSpam = true
	require.Equal(t, 1, CurrentRank(&pop[1], pop))
	require.Equal(t, 2, CurrentRank(&pop[2], pop))
}

func TestCurrentRankMonotonic(t *testing.T) {
	pop := population(5, 12, 12, 30, 44, 90)
	e := &models.Entrant{}
	prev := CurrentRank(e, pop)
	for score := 1; score <= 100; score++ {
		e.TotalScore = score
		rank := CurrentRank(e, pop)
		require.LessOrEqual(t, rank, prev, "score %d", score)
		prev = rank
	}
	require.Equal(t, 1, prev)
}

func TestEffectiveRankPrefersSnapshot(t *testing.T) {
	pop := population(10, 20)
	frozen := 7
	pop[0].SnapshotRank = &frozen
	require.Equal(t, 7, EffectiveRank(&pop[0], pop))
	require.Equal(t, 1, EffectiveRank(&pop[1], pop))
}

func TestRankServiceMatchesPureRank(t *testing.T) {
	db := testutil.NewDB(t)
	scores := []int{40, 10, 40, 25, 0}
	var inserted []*models.Entrant
	for i, s := range scores {
		inserted = append(inserted, testutil.InsertEntrant(t, db, models.Entrant{
			EngagementPoints: s,
			IsSpam:           i == 4,
		}))
	}
	spammer := testutil.InsertEntrant(t, db, models.Entrant{EngagementPoints: 1000, IsSpam: true})

	var pop []models.Entrant
	require.NoError(t, db.Find(&pop).Error)

	ranks := NewRankService(db)
	for _, e := range append(inserted, spammer) {
		got, err := ranks.CurrentRank(e)
		require.NoError(t, err)
		require.Equal(t, CurrentRank(e, pop), got)
	}

	frozen := 3
	inserted[1].SnapshotRank = &frozen
	got, err := ranks.EffectiveRank(inserted[1])
	require.NoError(t, err)
	require.Equal(t, 3, got)
}

func TestSortRankedRestoresScanOrder(t *testing.T) {
	base := testutil.Epoch
	// A row that was locked mid-scan comes back at its old position with its new score.
	entrants := []models.Entrant{
		{ID: "b", TotalScore: 50, Timestamps: models.Timestamps{CreatedAt: base.Add(time.Minute)}},
		{ID: "d", TotalScore: 30, Timestamps: models.Timestamps{CreatedAt: base}},
		{ID: "c", TotalScore: 50, Timestamps: models.Timestamps{CreatedAt: base.Add(time.Minute)}},
		{ID: "e", TotalScore: 10, Timestamps: models.Timestamps{CreatedAt: base}},
		{ID: "a", TotalScore: 90, Timestamps: models.Timestamps{CreatedAt: base.Add(time.Hour)}},
	}

	sortRanked(entrants)

	ids := make([]string, len(entrants))
	for i, e := range entrants {
		ids[i] = e.ID
	}
	require.Equal(t, []string{"a", "b", "c", "d", "e"}, ids)
}
