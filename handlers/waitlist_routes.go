// handlers/waitlist_routes.go
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"waitlist-rank-system/errorx"
	"waitlist-rank-system/models"
	"waitlist-rank-system/services"
)

// AccessWave is one release wave as advertised to entrants.
type AccessWave struct {
	Wave   models.EntrantStatus `json:"wave"`
	Date   string               `json:"date"`
	Target int                  `json:"target"`
}

var waveDates = map[models.EntrantStatus]string{
	models.StatusWave1: "January 10, 2025",
	models.StatusWave2: "January 17, 2025",
	models.StatusWave3: "January 24, 2025",
	models.StatusWave4: "January 31, 2025",
	models.StatusWave5: "February 7, 2025",
}

func accessWaves() []AccessWave {
	waves := make([]AccessWave, 0, len(models.AccessWaves))
	for _, w := range models.AccessWaves {
		waves = append(waves, AccessWave{Wave: w, Date: waveDates[w], Target: services.WaveLimit(w)})
	}
	return waves
}

type signupRequest struct {
	Email      string `json:"email"`
	Name       string `json:"name"`
	ReferredBy string `json:"referred_by"`
}

func SetupWaitlistRoutes(
	app *fiber.App,
	waitlist *services.WaitlistService,
	snapshots *services.SnapshotService,
	stream *services.LeaderboardStream,
	defaultLimit int,
) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"service":      "waitlist-rank-system",
			"status":       "ok",
			"access_waves": accessWaves(),
			"score_formula": fiber.Map{
				"referral_weight": models.ReferralWeight,
				"sources": []string{
					"referrals", "contributions", "engagement", "early_bonus", "code_development",
				},
			},
		})
	})

	api := app.Group("/api/waitlist")

	api.Post("/signup", func(c *fiber.Ctx) error {
		var req signupRequest
		if err := parseBody(c, &req); err != nil {
			return respondError(c, err)
		}
		summary, created, err := waitlist.Signup(c.UserContext(), req.Email, req.Name, req.ReferredBy)
		if err != nil {
			return respondError(c, err)
		}
		if !created {
			return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Email already on waitlist", "data": summary})
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Successfully joined waitlist", "data": summary})
	})

	api.Get("/position/:email", func(c *fiber.Ctx) error {
		pos, err := waitlist.Position(c.UserContext(), c.Params("email"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(pos)
	})

	api.Get("/user/:email", func(c *fiber.Ctx) error {
		status, err := waitlist.Status(c.UserContext(), c.Params("email"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(status)
	})

	api.Get("/leaderboard", func(c *fiber.Ctx) error {
		board, err := waitlist.Leaderboard(c.UserContext(), c.QueryInt("limit", defaultLimit))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"leaderboard": board})
	})

	api.Get("/leaderboard/stream", stream.Stream)

	api.Get("/snapshot/top", func(c *fiber.Ctx) error {
		board, err := snapshots.SnapshotTop(c.UserContext(), c.QueryInt("limit", defaultLimit))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"leaderboard": board})
	})

	api.Get("/stats", func(c *fiber.Ctx) error {
		stats, err := waitlist.Stats(c.UserContext())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(stats)
	})

	api.Get("/all", func(c *fiber.Ctx) error {
		ranked, err := waitlist.ListRanked(c.UserContext())
		if err != nil {
			return respondError(c, err)
		}
		users := make([]fiber.Map, len(ranked))
		for i, r := range ranked {
			users[i] = fiber.Map{
				"rank":          r.Rank,
				"email":         r.Email,
				"name":          r.Name,
				"total_score":   r.TotalScore,
				"referral_code": r.ReferralCode,
				"access_wave":   r.AccessWave,
			}
		}
		return c.JSON(fiber.Map{"total": len(users), "users": users})
	})

	api.Get("/validate/:code", func(c *fiber.Ctx) error {
		name, err := waitlist.ValidateReferralCode(c.UserContext(), c.Params("code"))
		if errorx.Is(err, errorx.NotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"valid": false, "message": "Invalid referral code"})
		}
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"valid": true, "referrer_name": name, "message": "Valid referral code"})
	})

	api.Get("/access-waves", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"access_waves": accessWaves()})
	})
}
