package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"waitlist-rank-system/errorx"
	"waitlist-rank-system/metrics"
	"waitlist-rank-system/models"
)

// LeaderboardEntry is the public view of a ranked entrant.
type LeaderboardEntry struct {
	Rank          int             `json:"rank"`
	EntrantID     string          `json:"-"`
	Name          string          `json:"name"`
	TotalScore    int             `json:"total_score"`
	Referrals     int             `json:"referrals"`
	Contributions int             `json:"contributions"`
	Badges        models.BadgeSet `json:"badges"`
}

func newLeaderboardEntry(rank int, e *models.Entrant) LeaderboardEntry {
	badges := e.Badges
	if badges == nil {
		badges = models.BadgeSet{}
	}
	return LeaderboardEntry{
		Rank:          rank,
		EntrantID:     e.ID,
		Name:          e.DisplayName(),
		TotalScore:    e.TotalScore,
		Referrals:     e.ReferralCount,
		Contributions: e.ContributionPoints,
		Badges:        badges,
	}
}

// SnapshotBoard holds the most recent frozen ranking for fast reads.
type SnapshotBoard interface {
	Publish(ctx context.Context, entries []LeaderboardEntry) error
	Top(ctx context.Context, limit int) ([]LeaderboardEntry, error)
}

// SnapshotArchiver stores a copy of a snapshot outside the database and returns its key.
type SnapshotArchiver interface {
	Archive(ctx context.Context, run *models.SnapshotRun, ranked []models.Entrant) (string, error)
}

type SnapshotService struct {
	DB       *gorm.DB
	Clock    clockwork.Clock
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	Board    SnapshotBoard
	Archiver SnapshotArchiver
}

func NewSnapshotService(db *gorm.DB, clock clockwork.Clock, logger *slog.Logger) *SnapshotService {
	return &SnapshotService{DB: db, Clock: clock, Logger: logger}
}

// TakeSnapshot freezes the live rank of e within population and applies its rewards.
func (s *SnapshotService) TakeSnapshot(e *models.Entrant, population []models.Entrant) {
	rank := CurrentRank(e, population)
	now := s.Clock.Now().UTC()
	e.SnapshotRank = &rank
	e.SnapshotAt = &now
	DeriveRewards(e, rank)
}

// TakeGlobalSnapshot ranks every non-spam entrant by score in one transaction. Ties are
// ranked in scan order, earliest signup first. Either every entrant is updated or none is.
func (s *SnapshotService) TakeGlobalSnapshot(ctx context.Context, label string) (*models.SnapshotRun, error) {
	if label == "" {
		label = "manual"
	}
	start := s.Clock.Now()
	now := start.UTC()

	var ranked []models.Entrant
	run := models.SnapshotRun{
		ID:      uuid.NewString(),
		Label:   label,
		TakenAt: now,
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("is_spam = ?", false).
			Order(rankedOrder).
			Find(&ranked).Error; err != nil {
			return err
		}
		sortRanked(ranked)

		for i := range ranked {
			rank := i + 1
			ranked[i].SnapshotRank = &rank
			ranked[i].SnapshotAt = &now
			DeriveRewards(&ranked[i], rank)
			if err := tx.Save(&ranked[i]).Error; err != nil {
				return err
			}
		}

		run.EntrantCount = len(ranked)
		return tx.Create(&run).Error
	})
	if err != nil {
		s.Logger.Error("Global snapshot rolled back", "label", label, "err", err)
		return nil, errorx.Unknown
	}

	s.Metrics.ObserveSnapshot(s.Clock.Since(start), run.EntrantCount)
	s.Logger.Info("Global snapshot taken", "label", label, "entrants", run.EntrantCount)

	s.publish(ctx, ranked)
	s.archive(ctx, &run, ranked)

	return &run, nil
}

func (s *SnapshotService) publish(ctx context.Context, ranked []models.Entrant) {
	if s.Board == nil {
		return
	}
	entries := make([]LeaderboardEntry, len(ranked))
	for i := range ranked {
		entries[i] = newLeaderboardEntry(*ranked[i].SnapshotRank, &ranked[i])
	}
	if err := s.Board.Publish(ctx, entries); err != nil {
		s.Logger.Warn("Cannot publish snapshot board", "err", err)
	}
}

func (s *SnapshotService) archive(ctx context.Context, run *models.SnapshotRun, ranked []models.Entrant) {
	if s.Archiver == nil {
		return
	}
	key, err := s.Archiver.Archive(ctx, run, ranked)
	if err != nil {
		s.Logger.Warn("Cannot archive snapshot", "run_id", run.ID, "err", err)
		return
	}
	if err := s.DB.WithContext(ctx).Model(run).Update("archive_key", key).Error; err != nil {
		s.Logger.Warn("Cannot record snapshot archive key", "run_id", run.ID, "err", err)
		return
	}
	run.ArchiveKey = key
}

// SnapshotTop serves the frozen leaderboard, from the board when available and from the
// database otherwise.
func (s *SnapshotService) SnapshotTop(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	limit = clampLeaderboardLimit(limit)

	if s.Board != nil {
		entries, err := s.Board.Top(ctx, limit)
		if err == nil && len(entries) > 0 {
			return entries, nil
		}
		if err != nil {
			s.Logger.Warn("Snapshot board unavailable, reading database", "err", err)
		}
	}

	var entrants []models.Entrant
	if err := s.DB.WithContext(ctx).
		Where("is_spam = ? AND snapshot_rank IS NOT NULL", false).
		Order("snapshot_rank ASC").
		Limit(limit).
		Find(&entrants).Error; err != nil {
		s.Logger.Error("Cannot read snapshot ranks", "err", err)
		return nil, errorx.Unknown
	}

	entries := make([]LeaderboardEntry, len(entrants))
	for i := range entrants {
		entries[i] = newLeaderboardEntry(*entrants[i].SnapshotRank, &entrants[i])
	}
	return entries, nil
}

// Runs lists snapshot runs, newest first.
func (s *SnapshotService) Runs(ctx context.Context, limit int) ([]models.SnapshotRun, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	var runs []models.SnapshotRun
	if err := s.DB.WithContext(ctx).Order("taken_at DESC").Limit(limit).Find(&runs).Error; err != nil {
		s.Logger.Error("Cannot list snapshot runs", "err", err)
		return nil, errorx.Unknown
	}
	return runs, nil
}

// MaxLeaderboardLimit caps every public leaderboard read.
const MaxLeaderboardLimit = 20

func clampLeaderboardLimit(limit int) int {
	if limit <= 0 || limit > MaxLeaderboardLimit {
		return MaxLeaderboardLimit
	}
	return limit
}
