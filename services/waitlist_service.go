package services

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"waitlist-rank-system/errorx"
	"waitlist-rank-system/metrics"
	"waitlist-rank-system/models"
)

const (
	MVPTarget = 1000
	V1Target  = 10000

	topReferrersLimit = 10
)

type WaitlistService struct {
	DB      *gorm.DB
	Clock   clockwork.Clock
	Bonus   EarlyBonusSchedule
	Engine  ScoreEngine
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

func NewWaitlistService(db *gorm.DB, clock clockwork.Clock, bonus EarlyBonusSchedule, logger *slog.Logger) *WaitlistService {
	return &WaitlistService{DB: db, Clock: clock, Bonus: bonus, Logger: logger}
}

// SignupSummary is returned for both new and existing signups.
type SignupSummary struct {
	Rank         int    `json:"rank"`
	ReferralCode string `json:"referral_code"`
	TotalScore   int    `json:"total_score"`
	EarlyBonus   int    `json:"early_bonus"`
}

// Signup adds email to the waitlist. An email that is already present is not an error: its
// current summary is returned with created set to false.
func (s *WaitlistService) Signup(ctx context.Context, email, name, referredBy string) (*SignupSummary, bool, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, false, err
	}
	referredBy = normalizeCode(referredBy)

	var summary *SignupSummary
	created := false
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Entrant
		err := tx.Where("email = ?", email).First(&existing).Error
		if err == nil {
			rank, err := NewRankService(tx).CurrentRank(&existing)
			if err != nil {
				return err
			}
			summary = newSignupSummary(&existing, rank)
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		var referrer *models.Entrant
		if referredBy != "" {
			referrer, err = lockEntrant(tx, "referral_code", referredBy)
			if err != nil {
				if errorx.Is(err, errorx.NotFound) {
					return errorx.New(errorx.NotFound, "Referral code %s not found", referredBy)
				}
				return err
			}
		}

		code, err := uniqueReferralCode(tx)
		if err != nil {
			return err
		}

		now := s.Clock.Now().UTC()
		entrant := models.Entrant{
			ID:                   uuid.NewString(),
			Email:                email,
			ReferralCode:         code,
			EarlyCommitmentBonus: s.Bonus.Bonus(now),
			VotingWeight:         1,
			Badges:               models.BadgeSet{},
			Status:               models.StatusWaitlist,
			Timestamps:           models.Timestamps{CreatedAt: now, UpdatedAt: now},
		}
		if name = strings.TrimSpace(name); name != "" {
			entrant.Name = &name
		}
		if referrer != nil {
			entrant.ReferredBy = &referrer.ReferralCode
		}
		s.Engine.Recompute(&entrant)

		if err := tx.Create(&entrant).Error; err != nil {
			return err
		}

		if referrer != nil {
			if err := s.creditReferrer(tx, referrer, &entrant); err != nil {
				return err
			}
		}

		rank, err := NewRankService(tx).CurrentRank(&entrant)
		if err != nil {
			return err
		}
		summary = newSignupSummary(&entrant, rank)
		created = true
		return nil
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// A concurrent signup for the same email won the unique index.
		if existing, lookupErr := s.existingSummary(ctx, email); lookupErr == nil {
			return existing, false, nil
		}
	}
	if err != nil {
		return nil, false, s.fail("signup", err)
	}

	if created {
		s.Metrics.IncSignup()
		s.Logger.Info("Entrant joined waitlist", "referral_code", summary.ReferralCode, "referred_by", referredBy)
	}
	return summary, created, nil
}

// creditReferrer writes the referral row and, unless the referrer is flagged as spam,
// records the referral on the referrer's score.
func (s *WaitlistService) creditReferrer(tx *gorm.DB, referrer, referred *models.Entrant) error {
	credited := !referrer.IsSpam
	if credited {
		s.Engine.RecordReferral(referrer)
		if err := tx.Save(referrer).Error; err != nil {
			return err
		}
		if err := appendScoreEvent(tx, referrer, models.SourceReferral, models.ReferralWeight, referred.ID); err != nil {
			return err
		}
		s.Metrics.IncScoreEvent(string(models.SourceReferral))
	}
	s.Metrics.IncReferral(credited)

	return tx.Create(&models.Referral{
		ID:               uuid.NewString(),
		ReferrerID:       referrer.ID,
		ReferredID:       referred.ID,
		ReferralCodeUsed: referrer.ReferralCode,
		PointsAwarded:    credited,
	}).Error
}

func (s *WaitlistService) existingSummary(ctx context.Context, email string) (*SignupSummary, error) {
	var existing models.Entrant
	db := s.DB.WithContext(ctx)
	if err := db.Where("email = ?", email).First(&existing).Error; err != nil {
		return nil, err
	}
	rank, err := NewRankService(db).CurrentRank(&existing)
	if err != nil {
		return nil, err
	}
	return newSignupSummary(&existing, rank), nil
}

func newSignupSummary(e *models.Entrant, rank int) *SignupSummary {
	return &SignupSummary{
		Rank:         rank,
		ReferralCode: e.ReferralCode,
		TotalScore:   e.TotalScore,
		EarlyBonus:   e.EarlyCommitmentBonus,
	}
}

type InviteResult struct {
	ContactEmail           string `json:"contact_email"`
	PointsAwarded          bool   `json:"points_awarded"`
	ReferrerNewScore       int    `json:"referrer_new_score"`
	ReferrerTotalReferrals int    `json:"referrer_total_referrals"`
}

// Invite signs contactEmail up with the referrer's code.
func (s *WaitlistService) Invite(ctx context.Context, referrerEmail, contactEmail, contactName string) (*InviteResult, error) {
	referrer, err := s.GetByEmail(ctx, referrerEmail)
	if err != nil {
		return nil, err
	}
	contactEmail, err = normalizeEmail(contactEmail)
	if err != nil {
		return nil, err
	}
	if contactEmail == referrer.Email {
		return nil, errorx.New(errorx.Conflict, "You cannot refer yourself")
	}

	_, created, err := s.Signup(ctx, contactEmail, contactName, referrer.ReferralCode)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, errorx.New(errorx.Conflict, "Contact already on waitlist")
	}

	referrer, err = s.GetByEmail(ctx, referrer.Email)
	if err != nil {
		return nil, err
	}
	return &InviteResult{
		ContactEmail:           contactEmail,
		PointsAwarded:          !referrer.IsSpam,
		ReferrerNewScore:       referrer.TotalScore,
		ReferrerTotalReferrals: referrer.ReferralCount,
	}, nil
}

func (s *WaitlistService) GetByEmail(ctx context.Context, email string) (*models.Entrant, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, errorx.New(errorx.BadRequest, "Email is required")
	}
	var e models.Entrant
	err := s.DB.WithContext(ctx).Where("email = ?", email).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errorx.New(errorx.NotFound, "User not found")
	}
	if err != nil {
		return nil, s.fail("get entrant", err)
	}
	return &e, nil
}

type Position struct {
	Email        string               `json:"email"`
	Name         *string              `json:"name"`
	Position     int                  `json:"position"`
	ReferralCode string               `json:"referral_code"`
	TotalScore   int                  `json:"total_score"`
	AccessWave   models.EntrantStatus `json:"access_wave"`
}

// Position reports the live rank of an entrant and the access wave it falls in.
func (s *WaitlistService) Position(ctx context.Context, email string) (*Position, error) {
	e, err := s.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	rank, err := NewRankService(s.DB.WithContext(ctx)).CurrentRank(e)
	if err != nil {
		return nil, s.fail("position", err)
	}
	return &Position{
		Email:        e.Email,
		Name:         e.Name,
		Position:     rank,
		ReferralCode: e.ReferralCode,
		TotalScore:   e.TotalScore,
		AccessWave:   WaveForRank(rank),
	}, nil
}

type ScoreBreakdown struct {
	Referrals             int `json:"referrals"`
	ReferralPoints        int `json:"referral_points"`
	ContributionPoints    int `json:"contribution_points"`
	EngagementPoints      int `json:"engagement_points"`
	EarlyBonus            int `json:"early_bonus"`
	CodeDevelopmentPoints int `json:"code_development_points"`
	TotalScore            int `json:"total_score"`
}

type Rewards struct {
	FreeAccessMonths   int `json:"free_access_months"`
	DiscountPercentage int `json:"discount_percentage"`
	VotingWeight       int `json:"voting_weight"`
}

type EntrantStatus struct {
	Email          string               `json:"email"`
	Name           *string              `json:"name"`
	ReferralCode   string               `json:"referral_code"`
	CurrentRank    int                  `json:"current_rank"`
	SnapshotRank   *int                 `json:"snapshot_rank"`
	AccessWave     models.EntrantStatus `json:"access_wave"`
	ScoreBreakdown ScoreBreakdown       `json:"score_breakdown"`
	Rewards        Rewards              `json:"rewards"`
	Badges         models.BadgeSet      `json:"badges"`
	Status         models.EntrantStatus `json:"status"`
	IsVerified     bool                 `json:"is_verified"`
	CreatedAt      time.Time            `json:"created_at"`
}

func (s *WaitlistService) Status(ctx context.Context, email string) (*EntrantStatus, error) {
	e, err := s.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	rank, err := NewRankService(s.DB.WithContext(ctx)).CurrentRank(e)
	if err != nil {
		return nil, s.fail("status", err)
	}
	badges := e.Badges
	if badges == nil {
		badges = models.BadgeSet{}
	}
	return &EntrantStatus{
		Email:        e.Email,
		Name:         e.Name,
		ReferralCode: e.ReferralCode,
		CurrentRank:  rank,
		SnapshotRank: e.SnapshotRank,
		AccessWave:   WaveForRank(rank),
		ScoreBreakdown: ScoreBreakdown{
			Referrals:             e.ReferralCount,
			ReferralPoints:        e.ReferralPoints(),
			ContributionPoints:    e.ContributionPoints,
			EngagementPoints:      e.EngagementPoints,
			EarlyBonus:            e.EarlyCommitmentBonus,
			CodeDevelopmentPoints: e.CodeDevelopmentPoints,
			TotalScore:            e.TotalScore,
		},
		Rewards: Rewards{
			FreeAccessMonths:   e.FreeAccessMonths,
			DiscountPercentage: e.DiscountPercentage,
			VotingWeight:       e.VotingWeight,
		},
		Badges:     badges,
		Status:     e.Status,
		IsVerified: e.IsVerified,
		CreatedAt:  e.CreatedAt,
	}, nil
}

// ValidateReferralCode returns the display name of the non-spam owner of code.
func (s *WaitlistService) ValidateReferralCode(ctx context.Context, code string) (string, error) {
	code = normalizeCode(code)
	var e models.Entrant
	err := nonSpam(s.DB.WithContext(ctx)).Where("referral_code = ?", code).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", errorx.New(errorx.NotFound, "Invalid referral code")
	}
	if err != nil {
		return "", s.fail("validate referral code", err)
	}
	return e.DisplayName(), nil
}

// Leaderboard returns the top entrants with sequential ranks. limit is capped at 20.
func (s *WaitlistService) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	limit = clampLeaderboardLimit(limit)
	var entrants []models.Entrant
	if err := nonSpam(s.DB.WithContext(ctx)).Order(rankedOrder).Limit(limit).Find(&entrants).Error; err != nil {
		return nil, s.fail("leaderboard", err)
	}
	entries := make([]LeaderboardEntry, len(entrants))
	for i := range entrants {
		entries[i] = newLeaderboardEntry(i+1, &entrants[i])
	}
	return entries, nil
}

// RankedEntrant pairs an entrant with a rank and the access wave of its live rank.
type RankedEntrant struct {
	Rank       int                  `json:"rank"`
	AccessWave models.EntrantStatus `json:"access_wave"`
	models.Entrant
}

// ListRanked returns every non-spam entrant with sequential ranks in scan order.
func (s *WaitlistService) ListRanked(ctx context.Context) ([]RankedEntrant, error) {
	ranked, err := s.rankedPopulation(ctx)
	if err != nil {
		return nil, err
	}
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked, nil
}

// WaveMembers lists the non-spam entrants whose live rank falls in wave. Rank here is the
// live, tie-sharing rank.
func (s *WaitlistService) WaveMembers(ctx context.Context, wave string) ([]RankedEntrant, error) {
	status := models.EntrantStatus(strings.ToLower(strings.TrimSpace(wave)))
	if !slices.Contains(models.AccessWaves, status) {
		return nil, errorx.New(errorx.BadRequest, "Invalid wave. Use: %v", models.AccessWaves)
	}
	ranked, err := s.rankedPopulation(ctx)
	if err != nil {
		return nil, err
	}
	members := make([]RankedEntrant, 0)
	for _, r := range ranked {
		if r.AccessWave == status {
			members = append(members, r)
		}
	}
	return members, nil
}

// rankedPopulation loads the non-spam population in scan order, with Rank set to the live
// rank. Scores are descending, so an entrant's live rank is the position of the first
// entrant sharing its score.
func (s *WaitlistService) rankedPopulation(ctx context.Context) ([]RankedEntrant, error) {
	var entrants []models.Entrant
	if err := nonSpam(s.DB.WithContext(ctx)).Order(rankedOrder).Find(&entrants).Error; err != nil {
		return nil, s.fail("list ranked", err)
	}
	ranked := make([]RankedEntrant, len(entrants))
	rank := 0
	for i := range entrants {
		if i == 0 || entrants[i].TotalScore != entrants[i-1].TotalScore {
			rank = i + 1
		}
		ranked[i] = RankedEntrant{Rank: rank, AccessWave: WaveForRank(rank), Entrant: entrants[i]}
	}
	return ranked, nil
}

type Stats struct {
	TotalSignups  int64 `json:"total_signups"`
	VerifiedUsers int64 `json:"verified_users"`
	MVPTarget     int64 `json:"mvp_target"`
	V1Target      int64 `json:"v1_target"`
	SpotsToMVP    int64 `json:"spots_to_mvp"`
	SpotsToV1     int64 `json:"spots_to_v1"`
}

func (s *WaitlistService) Stats(ctx context.Context) (*Stats, error) {
	db := s.DB.WithContext(ctx)
	var total, verified int64
	if err := nonSpam(db).Count(&total).Error; err != nil {
		return nil, s.fail("stats", err)
	}
	if err := nonSpam(db).Where("is_verified = ?", true).Count(&verified).Error; err != nil {
		return nil, s.fail("stats", err)
	}
	return &Stats{
		TotalSignups:  total,
		VerifiedUsers: verified,
		MVPTarget:     MVPTarget,
		V1Target:      V1Target,
		SpotsToMVP:    max(0, MVPTarget-total),
		SpotsToV1:     max(0, V1Target-total),
	}, nil
}

type ReferredContact struct {
	Email    string    `json:"email"`
	Name     *string   `json:"name"`
	JoinedAt time.Time `json:"joined_at"`
}

type ReferralInfo struct {
	Email          string            `json:"email"`
	Name           *string           `json:"name"`
	ReferralCode   string            `json:"referral_code"`
	TotalReferrals int               `json:"total_referrals"`
	ReferralPoints int               `json:"referral_points"`
	Referrals      []ReferredContact `json:"referrals"`
}

// ReferralInfo lists the entrants who signed up with email's referral code.
func (s *WaitlistService) ReferralInfo(ctx context.Context, email string) (*ReferralInfo, error) {
	e, err := s.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	var referred []models.Entrant
	if err := s.DB.WithContext(ctx).
		Where("referred_by = ?", e.ReferralCode).
		Order("created_at ASC").
		Find(&referred).Error; err != nil {
		return nil, s.fail("referral info", err)
	}
	contacts := make([]ReferredContact, len(referred))
	for i, r := range referred {
		contacts[i] = ReferredContact{Email: r.Email, Name: r.Name, JoinedAt: r.CreatedAt}
	}
	return &ReferralInfo{
		Email:          e.Email,
		Name:           e.Name,
		ReferralCode:   e.ReferralCode,
		TotalReferrals: e.ReferralCount,
		ReferralPoints: e.ReferralPoints(),
		Referrals:      contacts,
	}, nil
}

type TopReferrer struct {
	Name      string `json:"name"`
	Referrals int    `json:"referrals"`
	Points    int    `json:"points"`
}

type ReferralStats struct {
	TotalUsers     int64         `json:"total_users"`
	TotalReferrals int64         `json:"total_referrals"`
	TopReferrers   []TopReferrer `json:"top_referrers"`
}

func (s *WaitlistService) ReferralStats(ctx context.Context) (*ReferralStats, error) {
	db := s.DB.WithContext(ctx)
	stats := &ReferralStats{TopReferrers: []TopReferrer{}}

	if err := nonSpam(db).Count(&stats.TotalUsers).Error; err != nil {
		return nil, s.fail("referral stats", err)
	}
	if err := nonSpam(db).Select("COALESCE(SUM(referral_count), 0)").Scan(&stats.TotalReferrals).Error; err != nil {
		return nil, s.fail("referral stats", err)
	}

	var top []models.Entrant
	if err := nonSpam(db).
		Where("referral_count > 0").
		Order("referral_count DESC, created_at ASC").
		Limit(topReferrersLimit).
		Find(&top).Error; err != nil {
		return nil, s.fail("referral stats", err)
	}
	for i := range top {
		stats.TopReferrers = append(stats.TopReferrers, TopReferrer{
			Name:      top[i].DisplayName(),
			Referrals: top[i].ReferralCount,
			Points:    top[i].ReferralPoints(),
		})
	}
	return stats, nil
}

// ScoreUpdate is the state of an entrant after a point mutation.
type ScoreUpdate struct {
	Email        string `json:"email"`
	SourcePoints int    `json:"source_points"`
	TotalScore   int    `json:"new_total_score"`
	Rank         int    `json:"new_rank"`
}

func (s *WaitlistService) AddEngagement(ctx context.Context, email string, points int, activity string) (*ScoreUpdate, error) {
	if activity == "" {
		activity = "general"
	}
	return s.mutateScore(ctx, email, models.SourceEngagement, points, activity, func(e *models.Entrant) (int, error) {
		if err := s.Engine.RecordEngagement(e, points); err != nil {
			return 0, err
		}
		return e.EngagementPoints, nil
	})
}

func (s *WaitlistService) AddCodeDevelopment(ctx context.Context, email string, points int, description string) (*ScoreUpdate, error) {
	return s.mutateScore(ctx, email, models.SourceCodeDevelopment, points, description, func(e *models.Entrant) (int, error) {
		if err := s.Engine.RecordCodeDevelopment(e, points); err != nil {
			return 0, err
		}
		return e.CodeDevelopmentPoints, nil
	})
}

// mutateScore applies one score engine operation to a locked entrant and appends the ledger
// line in the same transaction.
func (s *WaitlistService) mutateScore(
	ctx context.Context,
	email string,
	source models.ScoreSource,
	points int,
	note string,
	apply func(e *models.Entrant) (int, error),
) (*ScoreUpdate, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, errorx.New(errorx.BadRequest, "Email is required")
	}

	var update *ScoreUpdate
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		e, err := lockEntrant(tx, "email", email)
		if err != nil {
			return err
		}
		sourcePoints, err := apply(e)
		if err != nil {
			return err
		}
		if err := tx.Save(e).Error; err != nil {
			return err
		}
		if err := appendScoreEvent(tx, e, source, points, note); err != nil {
			return err
		}
		rank, err := NewRankService(tx).CurrentRank(e)
		if err != nil {
			return err
		}
		update = &ScoreUpdate{Email: e.Email, SourcePoints: sourcePoints, TotalScore: e.TotalScore, Rank: rank}
		return nil
	})
	if err != nil {
		return nil, s.fail("add "+string(source), err)
	}
	s.Metrics.IncScoreEvent(string(source))
	return update, nil
}

func (s *WaitlistService) Verify(ctx context.Context, email string) error {
	return s.setFlag(ctx, email, "is_verified")
}

// MarkSpam excludes the entrant from ranking. Ranks of others shift on the next read.
func (s *WaitlistService) MarkSpam(ctx context.Context, email string) error {
	return s.setFlag(ctx, email, "is_spam")
}

func (s *WaitlistService) setFlag(ctx context.Context, email, column string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	res := s.DB.WithContext(ctx).Model(&models.Entrant{}).Where("email = ?", email).Update(column, true)
	if res.Error != nil {
		return s.fail("set "+column, res.Error)
	}
	if res.RowsAffected == 0 {
		return errorx.New(errorx.NotFound, "User not found")
	}
	s.Logger.Info("Entrant flagged", "flag", column)
	return nil
}

type RewardClaim struct {
	CurrentRank        int                  `json:"current_rank"`
	EffectiveRank      int                  `json:"effective_rank"`
	FreeAccessMonths   int                  `json:"free_access_months"`
	DiscountPercentage int                  `json:"discount_percentage"`
	VotingWeight       int                  `json:"voting_weight"`
	Badges             models.BadgeSet      `json:"badges"`
	Status             models.EntrantStatus `json:"status"`
}

// RefreshRewards derives rewards from the entrant's effective rank and stores them.
func (s *WaitlistService) RefreshRewards(ctx context.Context, email string) (*RewardClaim, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, errorx.New(errorx.BadRequest, "Email is required")
	}

	var claim *RewardClaim
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		e, err := lockEntrant(tx, "email", email)
		if err != nil {
			return err
		}
		if e.IsSpam {
			return errorx.New(errorx.InvalidState, "Flagged entrants do not earn rewards")
		}
		ranks := NewRankService(tx)
		current, err := ranks.CurrentRank(e)
		if err != nil {
			return err
		}
		effective, err := ranks.EffectiveRank(e)
		if err != nil {
			return err
		}
		DeriveRewards(e, effective)
		if err := tx.Save(e).Error; err != nil {
			return err
		}
		claim = &RewardClaim{
			CurrentRank:        current,
			EffectiveRank:      effective,
			FreeAccessMonths:   e.FreeAccessMonths,
			DiscountPercentage: e.DiscountPercentage,
			VotingWeight:       e.VotingWeight,
			Badges:             e.Badges,
			Status:             e.Status,
		}
		return nil
	})
	if err != nil {
		return nil, s.fail("refresh rewards", err)
	}
	return claim, nil
}

// fail passes errorx errors through and hides everything else behind errorx.Unknown.
func (s *WaitlistService) fail(op string, err error) error {
	return failWith(s.Logger, op, err)
}

func failWith(logger *slog.Logger, op string, err error) error {
	var xerr errorx.Error
	if errors.As(err, &xerr) {
		return xerr
	}
	logger.Error("Waitlist operation failed", "op", op, "err", err)
	return errorx.Unknown
}

func lockEntrant(tx *gorm.DB, column, value string) (*models.Entrant, error) {
	var e models.Entrant
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where(column+" = ?", value).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errorx.New(errorx.NotFound, "User not found")
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func appendScoreEvent(tx *gorm.DB, e *models.Entrant, source models.ScoreSource, points int, note string) error {
	return tx.Create(&models.ScoreEvent{
		ID:         uuid.NewString(),
		EntrantID:  e.ID,
		Source:     source,
		Points:     points,
		Note:       note,
		TotalAfter: e.TotalScore,
	}).Error
}

// uniqueReferralCode draws 8 upper-case hex characters from a random uuid until unused.
func uniqueReferralCode(tx *gorm.DB) (string, error) {
	for range 5 {
		code := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
		var count int64
		if err := tx.Model(&models.Entrant{}).Where("referral_code = ?", code).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return code, nil
		}
	}
	return "", errorx.New(errorx.Conflict, "Could not allocate a referral code, try again")
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", errorx.New(errorx.BadRequest, "Email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", errorx.New(errorx.BadRequest, "Invalid email address")
	}
	return email, nil
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
