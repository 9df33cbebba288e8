// handlers/referral_routes.go
package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"waitlist-rank-system/services"
)

type inviteRequest struct {
	ReferrerEmail string `json:"referrer_email"`
	ContactEmail  string `json:"contact_email"`
	ContactName   string `json:"contact_name"`
}

type emailRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

func SetupReferralRoutes(app *fiber.App, waitlist *services.WaitlistService) {
	api := app.Group("/api/referral")

	// Registering as a referrer is a plain signup that also reports the referral count.
	api.Post("/register", func(c *fiber.Ctx) error {
		var req emailRequest
		if err := parseBody(c, &req); err != nil {
			return respondError(c, err)
		}
		summary, created, err := waitlist.Signup(c.UserContext(), req.Email, req.Name, "")
		if err != nil {
			return respondError(c, err)
		}
		if !created {
			e, err := waitlist.GetByEmail(c.UserContext(), req.Email)
			if err != nil {
				return respondError(c, err)
			}
			return c.JSON(fiber.Map{
				"message":         "Already registered",
				"referral_code":   e.ReferralCode,
				"total_referrals": e.ReferralCount,
			})
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message":         "Successfully joined waitlist",
			"referral_code":   summary.ReferralCode,
			"total_referrals": 0,
		})
	})

	api.Post("/invite", func(c *fiber.Ctx) error {
		var req inviteRequest
		if err := parseBody(c, &req); err != nil {
			return respondError(c, err)
		}
		if req.ReferrerEmail == "" || req.ContactEmail == "" {
			return badRequest(c, "referrer_email and contact_email required")
		}
		res, err := waitlist.Invite(c.UserContext(), req.ReferrerEmail, req.ContactEmail, req.ContactName)
		if err != nil {
			return respondError(c, err)
		}
		message := fmt.Sprintf("Invited %s.", res.ContactEmail)
		if res.PointsAwarded {
			message = fmt.Sprintf("Invited %s. You earned +2 points!", res.ContactEmail)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message":                  message,
			"referrer_new_score":       res.ReferrerNewScore,
			"referrer_total_referrals": res.ReferrerTotalReferrals,
		})
	})

	api.Get("/user/:email", func(c *fiber.Ctx) error {
		info, err := waitlist.ReferralInfo(c.UserContext(), c.Params("email"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(info)
	})

	api.Post("/claim", func(c *fiber.Ctx) error {
		var req emailRequest
		if err := parseBody(c, &req); err != nil {
			return respondError(c, err)
		}
		if req.Email == "" {
			return badRequest(c, "Email is required")
		}
		claim, err := waitlist.RefreshRewards(c.UserContext(), req.Email)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{
			"message": "Rewards are automatically applied based on your rank",
			"rewards": claim,
		})
	})

	api.Get("/stats", func(c *fiber.Ctx) error {
		stats, err := waitlist.ReferralStats(c.UserContext())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(stats)
	})
}
