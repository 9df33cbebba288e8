package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"waitlist-rank-system/errorx"
	"waitlist-rank-system/models"
)

func TestComputeTotalExample(t *testing.T) {
	e := &models.Entrant{
		ReferralCount:        5,
		ContributionPoints:   20,
		EngagementPoints:     3,
		EarlyCommitmentBonus: 30,
	}
	require.Equal(t, 63, ScoreEngine{}.Recompute(e))
	require.Equal(t, 63, e.TotalScore)
}

func TestRecordContributionBands(t *testing.T) {
	var engine ScoreEngine
	e := &models.Entrant{EarlyCommitmentBonus: 15}
	engine.Recompute(e)

	err := engine.RecordContribution(e, "testing", 20)
	require.True(t, errorx.Is(err, errorx.InvalidPoints))
	require.Equal(t, 0, e.ContributionPoints)
	require.Equal(t, 15, e.TotalScore)

	require.NoError(t, engine.RecordContribution(e, "testing", 10))
	require.Equal(t, 10, e.ContributionPoints)
	require.Equal(t, 25, e.TotalScore)

	// 7 is inside the bug_report band but not an allowed value.
	err = engine.RecordContribution(e, "bug_report", 7)
	require.True(t, errorx.Is(err, errorx.InvalidPoints))

	// 5 is an allowed value but below the documentation band.
	err = engine.RecordContribution(e, "documentation", 5)
	require.True(t, errorx.Is(err, errorx.InvalidPoints))

	err = engine.RecordContribution(e, "poetry", 5)
	require.True(t, errorx.Is(err, errorx.BadRequest))

	require.Equal(t, 10, e.ContributionPoints)
	require.Equal(t, 25, e.TotalScore)
}

func TestRecordCodeDevelopmentRejectsNonPositive(t *testing.T) {
	var engine ScoreEngine
	e := &models.Entrant{}

	for _, points := range []int{0, -5} {
		err := engine.RecordCodeDevelopment(e, points)
		require.True(t, errorx.Is(err, errorx.InvalidPoints))
	}
	require.Equal(t, 0, e.CodeDevelopmentPoints)

	require.NoError(t, engine.RecordCodeDevelopment(e, 40))
	require.Equal(t, 40, e.TotalScore)
}

func TestRecordEngagement(t *testing.T) {
	var engine ScoreEngine
	e := &models.Entrant{}

	require.NoError(t, engine.RecordEngagement(e, 0))
	require.NoError(t, engine.RecordEngagement(e, 3))
	require.Error(t, engine.RecordEngagement(e, -1))
	require.Equal(t, 3, e.EngagementPoints)
	require.Equal(t, 3, e.TotalScore)
}

func TestTotalMatchesFormulaAfterEveryMutation(t *testing.T) {
	var engine ScoreEngine
	e := &models.Entrant{EarlyCommitmentBonus: 50}
	engine.Recompute(e)

	steps := []func(){
		func() { engine.RecordReferral(e) },
		func() { _ = engine.RecordContribution(e, "bug_report", 20) },
		func() { _ = engine.RecordEngagement(e, 2) },
		func() { _ = engine.RecordCodeDevelopment(e, 7) },
		func() { engine.RecordReferral(e) },
		func() { _ = engine.RecordContribution(e, "feature_feedback", 20) },
	}
	for _, step := range steps {
		step()
		require.Equal(t, e.ReferralCount*2+e.ContributionPoints+e.EngagementPoints+e.EarlyCommitmentBonus+e.CodeDevelopmentPoints, e.TotalScore)
		require.Equal(t, 50, e.EarlyCommitmentBonus)
	}
	require.Equal(t, 2*2+20+2+50+7, e.TotalScore)
}
