package services

import (
	"time"
)

// Bonus points paid for signing up before each cutoff, earliest first.
var EarlyBonusPoints = [3]int{50, 30, 15}

// DefaultEarlyBonusCutoffs are the launch-campaign cutoffs (UTC midnight).
var DefaultEarlyBonusCutoffs = [3]time.Time{
	time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
	time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC),
	time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC),
}

// EarlyBonusSchedule is a step function from signup time to bonus points.
type EarlyBonusSchedule struct {
	Cutoffs [3]time.Time
}

// NewEarlyBonusSchedule builds a schedule from exactly three ascending cutoffs. Any other
// input falls back to DefaultEarlyBonusCutoffs.
func NewEarlyBonusSchedule(cutoffs []time.Time) EarlyBonusSchedule {
	if len(cutoffs) != 3 || !cutoffs[0].Before(cutoffs[1]) || !cutoffs[1].Before(cutoffs[2]) {
		return EarlyBonusSchedule{Cutoffs: DefaultEarlyBonusCutoffs}
	}
	return EarlyBonusSchedule{Cutoffs: [3]time.Time{cutoffs[0], cutoffs[1], cutoffs[2]}}
}

// Bonus returns the early commitment bonus for an entrant created at createdAt.
func (s EarlyBonusSchedule) Bonus(createdAt time.Time) int {
	for i, cutoff := range s.Cutoffs {
		if createdAt.Before(cutoff) {
			return EarlyBonusPoints[i]
		}
	}
	return 0
}
