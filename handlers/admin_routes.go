// handlers/admin_routes.go
package handlers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"waitlist-rank-system/middleware"
	"waitlist-rank-system/services"
)

type snapshotRequest struct {
	Label string `json:"label"`
}

func SetupAdminRoutes(
	app *fiber.App,
	waitlist *services.WaitlistService,
	contributions *services.ContributionService,
	snapshots *services.SnapshotService,
) {
	admin := app.Group("/api/admin")

	admin.Get("/contributions/pending", func(c *fiber.Ctx) error {
		pending, err := contributions.Pending(c.UserContext())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"count": len(pending), "contributions": pending})
	})

	admin.Post("/contribution/approve/:id", middleware.ReviewerContext(), func(c *fiber.Ctx) error {
		contribution, err := contributions.Approve(c.UserContext(), c.Params("id"), middleware.Reviewer(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{
			"message":      fmt.Sprintf("Contribution approved. Added %d points.", contribution.Points),
			"contribution": contribution,
		})
	})

	admin.Post("/contribution/reject/:id", middleware.ReviewerContext(), func(c *fiber.Ctx) error {
		contribution, err := contributions.Reject(c.UserContext(), c.Params("id"), middleware.Reviewer(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"message": "Contribution rejected", "contribution": contribution})
	})

	admin.Post("/verify/:email", func(c *fiber.Ctx) error {
		if err := waitlist.Verify(c.UserContext(), c.Params("email")); err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"message": fmt.Sprintf("User %s verified", c.Params("email"))})
	})

	admin.Post("/mark-spam/:email", func(c *fiber.Ctx) error {
		if err := waitlist.MarkSpam(c.UserContext(), c.Params("email")); err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"message": fmt.Sprintf("User %s marked as spam", c.Params("email"))})
	})

	admin.Post("/snapshot", func(c *fiber.Ctx) error {
		var req snapshotRequest
		if len(c.Body()) > 0 {
			if err := parseBody(c, &req); err != nil {
				return respondError(c, err)
			}
		}
		run, err := snapshots.TakeGlobalSnapshot(c.UserContext(), req.Label)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{
			"message":     fmt.Sprintf("Snapshot taken for %d users", run.EntrantCount),
			"timestamp":   run.TakenAt.Format(time.RFC3339),
			"snapshot_id": run.ID,
			"archive_key": run.ArchiveKey,
		})
	})

	admin.Get("/snapshots", func(c *fiber.Ctx) error {
		runs, err := snapshots.Runs(c.UserContext(), c.QueryInt("limit", 20))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"count": len(runs), "snapshots": runs})
	})

	admin.Get("/all-users", func(c *fiber.Ctx) error {
		ranked, err := waitlist.ListRanked(c.UserContext())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"total": len(ranked), "users": ranked})
	})

	admin.Get("/wave-users/:wave", func(c *fiber.Ctx) error {
		members, err := waitlist.WaveMembers(c.UserContext(), c.Params("wave"))
		if err != nil {
			return respondError(c, err)
		}
		users := make([]fiber.Map, len(members))
		for i, m := range members {
			users[i] = fiber.Map{
				"email":       m.Email,
				"name":        m.Name,
				"rank":        m.Rank,
				"total_score": m.TotalScore,
			}
		}
		return c.JSON(fiber.Map{"wave": c.Params("wave"), "count": len(users), "users": users})
	})
}
