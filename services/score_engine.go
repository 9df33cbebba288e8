package services

import (
	"slices"

	"waitlist-rank-system/errorx"
	"waitlist-rank-system/models"
)

// ScoreEngine owns the point sources of an entrant. Every mutation goes through one of the
// Record methods, each of which ends in Recompute; nothing else writes TotalScore.
type ScoreEngine struct{}

// Recompute rebuilds TotalScore from the five point sources and returns it.
func (ScoreEngine) Recompute(e *models.Entrant) int {
	e.TotalScore = ComputeTotal(e)
	return e.TotalScore
}

// ComputeTotal is the score formula, without touching the entrant.
func ComputeTotal(e *models.Entrant) int {
	return e.ReferralPoints() +
		e.ContributionPoints +
		e.EngagementPoints +
		e.EarlyCommitmentBonus +
		e.CodeDevelopmentPoints
}

func (se ScoreEngine) RecordReferral(e *models.Entrant) {
	e.ReferralCount++
	se.Recompute(e)
}

// RecordContribution credits an approved contribution. Invalid points leave e untouched.
func (se ScoreEngine) RecordContribution(e *models.Entrant, contributionType string, points int) error {
	if err := ValidateContribution(contributionType, points); err != nil {
		return err
	}
	e.ContributionPoints += points
	se.Recompute(e)
	return nil
}

func (se ScoreEngine) RecordEngagement(e *models.Entrant, points int) error {
	if points < 0 {
		return errorx.New(errorx.InvalidPoints, "Engagement points cannot be negative")
	}
	e.EngagementPoints += points
	se.Recompute(e)
	return nil
}

func (se ScoreEngine) RecordCodeDevelopment(e *models.Entrant, points int) error {
	if points <= 0 {
		return errorx.New(errorx.InvalidPoints, "Code development points must be positive")
	}
	e.CodeDevelopmentPoints += points
	se.Recompute(e)
	return nil
}

// ValidateContribution checks points against the allowed values and the type's band.
func ValidateContribution(contributionType string, points int) error {
	ct, ok := models.ContributionTypes[contributionType]
	if !ok {
		return errorx.New(errorx.BadRequest, "Invalid contribution type %q", contributionType)
	}
	if !slices.Contains(models.ContributionPointValues, points) {
		return errorx.New(errorx.InvalidPoints, "Points must be one of %v", models.ContributionPointValues)
	}
	if points < ct.Min || points > ct.Max {
		return errorx.New(errorx.InvalidPoints, "Points for %s must be between %d and %d", contributionType, ct.Min, ct.Max)
	}
	return nil
}
