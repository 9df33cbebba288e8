// handlers/contribution_routes.go
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"waitlist-rank-system/services"
)

type contributionRequest struct {
	Email            string `json:"email"`
	ContributionType string `json:"contribution_type"`
	Description      string `json:"description"`
	Points           *int   `json:"points"`
}

type pointsRequest struct {
	Email       string `json:"email"`
	Points      *int   `json:"points"`
	Activity    string `json:"activity"`
	Description string `json:"description"`
}

// SetupContributionRoutes registers contribution submission plus the engagement and
// code-development grants.
func SetupContributionRoutes(app *fiber.App, waitlist *services.WaitlistService, contributions *services.ContributionService) {
	api := app.Group("/api")

	api.Post("/contribution/submit", func(c *fiber.Ctx) error {
		var req contributionRequest
		if err := parseBody(c, &req); err != nil {
			return respondError(c, err)
		}
		points := 5
		if req.Points != nil {
			points = *req.Points
		}
		contribution, err := contributions.Submit(c.UserContext(), req.Email, req.ContributionType, req.Description, points)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message": "Contribution submitted for review",
			"data":    contribution,
		})
	})

	api.Get("/contribution/user/:email", func(c *fiber.Ctx) error {
		entrant, list, err := contributions.ForEntrant(c.UserContext(), c.Params("email"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{
			"email":                     entrant.Email,
			"total_contribution_points": entrant.ContributionPoints,
			"contributions":             list,
		})
	})

	api.Get("/contribution/types", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"types": contributions.Types()})
	})

	api.Post("/engagement/add", func(c *fiber.Ctx) error {
		var req pointsRequest
		if err := parseBody(c, &req); err != nil {
			return respondError(c, err)
		}
		points := 1
		if req.Points != nil {
			points = *req.Points
		}
		update, err := waitlist.AddEngagement(c.UserContext(), req.Email, points, req.Activity)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(update)
	})

	api.Post("/code-development/add", func(c *fiber.Ctx) error {
		var req pointsRequest
		if err := parseBody(c, &req); err != nil {
			return respondError(c, err)
		}
		if req.Points == nil {
			return badRequest(c, "Points must be positive")
		}
		update, err := waitlist.AddCodeDevelopment(c.UserContext(), req.Email, *req.Points, req.Description)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(update)
	})
}
