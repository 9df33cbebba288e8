package services

import (
	"cmp"
	"fmt"
	"slices"

	"gorm.io/gorm"

	"waitlist-rank-system/models"
)

// CurrentRank is one plus the number of non-spam entrants in population with a strictly
// higher total score. Tied entrants share a rank.
func CurrentRank(e *models.Entrant, population []models.Entrant) int {
	higher := 0
	for i := range population {
		if !population[i].IsSpam && population[i].TotalScore > e.TotalScore {
			higher++
		}
	}
	return higher + 1
}

// EffectiveRank prefers the frozen snapshot rank over the live one.
func EffectiveRank(e *models.Entrant, population []models.Entrant) int {
	if e.SnapshotRank != nil {
		return *e.SnapshotRank
	}
	return CurrentRank(e, population)
}

// RankService answers rank questions against the database instead of a loaded population.
type RankService struct {
	DB *gorm.DB
}

func NewRankService(db *gorm.DB) *RankService {
	return &RankService{DB: db}
}

// CurrentRank is the COUNT form of the package-level CurrentRank. Inside a transaction use
// NewRankService(tx).
func (s *RankService) CurrentRank(e *models.Entrant) (int, error) {
	var higher int64
	err := s.DB.Model(&models.Entrant{}).
		Where("is_spam = ? AND total_score > ?", false, e.TotalScore).
		Count(&higher).Error
	if err != nil {
		return 0, fmt.Errorf("count higher scores: %w", err)
	}
	return int(higher) + 1, nil
}

func (s *RankService) EffectiveRank(e *models.Entrant) (int, error) {
	if e.SnapshotRank != nil {
		return *e.SnapshotRank, nil
	}
	return s.CurrentRank(e)
}

// rankedOrder is the scan order used wherever ranks are handed out sequentially.
const rankedOrder = "total_score DESC, created_at ASC, id ASC"

// sortRanked puts entrants in rankedOrder. Rows read with FOR UPDATE under READ COMMITTED
// come back sorted by the values seen before the lock wait, so the order is re-applied here.
func sortRanked(entrants []models.Entrant) {
	slices.SortStableFunc(entrants, func(a, b models.Entrant) int {
		return cmp.Or(
			cmp.Compare(b.TotalScore, a.TotalScore),
			a.CreatedAt.Compare(b.CreatedAt),
			cmp.Compare(a.ID, b.ID),
		)
	})
}

func nonSpam(db *gorm.DB) *gorm.DB {
	return db.Model(&models.Entrant{}).Where("is_spam = ?", false)
}
