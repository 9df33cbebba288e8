package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"waitlist-rank-system/errorx"
	"waitlist-rank-system/metrics"
	"waitlist-rank-system/models"
)

const maxDescriptionLength = 500

type ContributionService struct {
	DB      *gorm.DB
	Clock   clockwork.Clock
	Engine  ScoreEngine
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

func NewContributionService(db *gorm.DB, clock clockwork.Clock, logger *slog.Logger) *ContributionService {
	return &ContributionService{DB: db, Clock: clock, Logger: logger}
}

// Types is the contribution catalog.
func (s *ContributionService) Types() map[string]models.ContributionType {
	return models.ContributionTypes
}

// Submit queues a contribution for review. Type and points are checked on submission.
func (s *ContributionService) Submit(ctx context.Context, email, contributionType, description string, points int) (*models.Contribution, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, errorx.New(errorx.BadRequest, "Email is required")
	}
	if contributionType == "" {
		return nil, errorx.New(errorx.BadRequest, "contribution_type is required")
	}
	if err := ValidateContribution(contributionType, points); err != nil {
		return nil, err
	}
	description = strings.TrimSpace(description)
	if utf8.RuneCountInString(description) > maxDescriptionLength {
		return nil, errorx.New(errorx.BadRequest, "Description must be at most %d characters", maxDescriptionLength)
	}

	var entrant models.Entrant
	err := s.DB.WithContext(ctx).Where("email = ?", email).First(&entrant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errorx.New(errorx.NotFound, "User not on waitlist")
	}
	if err != nil {
		return nil, failWith(s.Logger, "submit contribution", err)
	}

	contribution := models.Contribution{
		ID:          uuid.NewString(),
		EntrantID:   entrant.ID,
		Type:        contributionType,
		Description: description,
		Points:      points,
		Status:      models.ContributionPending,
		CreatedAt:   s.Clock.Now().UTC(),
	}
	if err := s.DB.WithContext(ctx).Create(&contribution).Error; err != nil {
		return nil, failWith(s.Logger, "submit contribution", err)
	}
	s.Metrics.IncContribution(string(models.ContributionPending))
	return &contribution, nil
}

// Approve credits a pending contribution to its entrant.
func (s *ContributionService) Approve(ctx context.Context, id, reviewer string) (*models.Contribution, error) {
	return s.review(ctx, id, reviewer, models.ContributionApproved)
}

// Reject closes a pending contribution without touching the score.
func (s *ContributionService) Reject(ctx context.Context, id, reviewer string) (*models.Contribution, error) {
	return s.review(ctx, id, reviewer, models.ContributionRejected)
}

func (s *ContributionService) review(ctx context.Context, id, reviewer string, outcome models.ContributionStatus) (*models.Contribution, error) {
	if reviewer = strings.TrimSpace(reviewer); reviewer == "" {
		reviewer = "admin"
	}

	var contribution models.Contribution
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&contribution).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorx.New(errorx.NotFound, "Contribution not found")
		}
		if err != nil {
			return err
		}
		if contribution.Status != models.ContributionPending {
			return errorx.New(errorx.InvalidState, "Contribution already %s", contribution.Status)
		}

		if outcome == models.ContributionApproved {
			entrant, err := lockEntrant(tx, "id", contribution.EntrantID)
			if err != nil {
				return err
			}
			if err := s.Engine.RecordContribution(entrant, contribution.Type, contribution.Points); err != nil {
				return err
			}
			if err := tx.Save(entrant).Error; err != nil {
				return err
			}
			if err := appendScoreEvent(tx, entrant, models.SourceContribution, contribution.Points, contribution.ID); err != nil {
				return err
			}
		}

		now := s.Clock.Now().UTC()
		contribution.Status = outcome
		contribution.ReviewedBy = &reviewer
		contribution.ReviewedAt = &now
		return tx.Save(&contribution).Error
	})
	if err != nil {
		return nil, failWith(s.Logger, "review contribution", err)
	}

	s.Metrics.IncContribution(string(outcome))
	if outcome == models.ContributionApproved {
		s.Metrics.IncScoreEvent(string(models.SourceContribution))
	}
	s.Logger.Info("Contribution reviewed", "id", contribution.ID, "status", outcome, "reviewer", reviewer, "points", contribution.Points)
	return &contribution, nil
}

// PendingContribution is a queued contribution with its submitter's email.
type PendingContribution struct {
	models.Contribution
	Email string `json:"email"`
}

// Pending lists contributions awaiting review, oldest first.
func (s *ContributionService) Pending(ctx context.Context) ([]PendingContribution, error) {
	pending := make([]PendingContribution, 0)
	err := s.DB.WithContext(ctx).
		Table("contributions").
		Select("contributions.*, entrants.email AS email").
		Joins("JOIN entrants ON entrants.id = contributions.entrant_id").
		Where("contributions.status = ?", models.ContributionPending).
		Order("contributions.created_at ASC").
		Scan(&pending).Error
	if err != nil {
		return nil, failWith(s.Logger, "pending contributions", err)
	}
	return pending, nil
}

// ForEntrant returns the entrant and every contribution it submitted, newest first.
func (s *ContributionService) ForEntrant(ctx context.Context, email string) (*models.Entrant, []models.Contribution, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var entrant models.Entrant
	err := s.DB.WithContext(ctx).Where("email = ?", email).First(&entrant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, errorx.New(errorx.NotFound, "User not found")
	}
	if err != nil {
		return nil, nil, failWith(s.Logger, "entrant contributions", err)
	}

	contributions := make([]models.Contribution, 0)
	if err := s.DB.WithContext(ctx).
		Where("entrant_id = ?", entrant.ID).
		Order("created_at DESC").
		Find(&contributions).Error; err != nil {
		return nil, nil, failWith(s.Logger, "entrant contributions", err)
	}
	return &entrant, contributions, nil
}
