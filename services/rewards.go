package services

import (
	"waitlist-rank-system/models"
)

// rankBand maps ranks up to and including MaxRank to a value.
type rankBand[T any] struct {
	MaxRank int
	Value   T
}

func lookupBand[T any](bands []rankBand[T], rank int) (T, bool) {
	for _, b := range bands {
		if rank <= b.MaxRank {
			return b.Value, true
		}
	}
	var zero T
	return zero, false
}

var freeAccessBands = []rankBand[int]{
	{10, models.FreeAccessLifetime},
	{100, 12},
	{300, 6},
	{1000, 2},
}

// Early10kMaxRank is the last rank that earns the early_10k badge.
const Early10kMaxRank = 10000

var votingWeightBands = []rankBand[int]{
	{10, 3},
	{100, 2},
}

var badgeBands = []rankBand[[]string]{
	{10, []string{models.BadgeKeyholder, models.BadgeFoundingMember}},
	{100, []string{models.BadgeFoundingMember}},
	{300, []string{models.BadgeFoundingMember}},
	{1000, []string{models.BadgeFoundingMember}},
	{Early10kMaxRank, []string{models.BadgeEarly10k}},
}

var discountBands = []rankBand[int]{
	{500, 25},
	{1000, 20},
	{1500, 15},
	{2000, 10},
	{2500, 5},
}

// AccessWaveBands is the release-wave ladder, also served by the access-waves endpoint.
var AccessWaveBands = []rankBand[models.EntrantStatus]{
	{1000, models.StatusWave1},
	{2500, models.StatusWave2},
	{5000, models.StatusWave3},
	{7500, models.StatusWave4},
	{10000, models.StatusWave5},
}

// WaveForRank returns the access wave for rank, or StatusWaitlist past the last wave.
func WaveForRank(rank int) models.EntrantStatus {
	if wave, ok := lookupBand(AccessWaveBands, rank); ok {
		return wave
	}
	return models.StatusWaitlist
}

// WaveLimit returns the last rank admitted to wave, or 0 for an unknown wave.
func WaveLimit(wave models.EntrantStatus) int {
	for _, b := range AccessWaveBands {
		if b.Value == wave {
			return b.MaxRank
		}
	}
	return 0
}

// DeriveRewards applies the reward tiers for rank to e. Each tier ladder is evaluated on
// its own. Badges are only ever added.
func DeriveRewards(e *models.Entrant, rank int) {
	if rank < 1 {
		return
	}

	if months, ok := lookupBand(freeAccessBands, rank); ok {
		e.FreeAccessMonths = months
	} else {
		e.FreeAccessMonths = 0
	}

	if weight, ok := lookupBand(votingWeightBands, rank); ok {
		e.VotingWeight = weight
	}

	if badges, ok := lookupBand(badgeBands, rank); ok {
		for _, b := range badges {
			e.Badges.Add(b)
		}
	}

	if discount, ok := lookupBand(discountBands, rank); ok {
		e.DiscountPercentage = discount
	}

	if wave, ok := lookupBand(AccessWaveBands, rank); ok {
		e.Status = wave
	}
}
