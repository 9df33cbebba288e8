// middleware/auth.go
package middleware

import (
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2"
)

const (
	ReviewerHeader  = "X-Reviewer"
	DefaultReviewer = "admin"

	reviewerKey = "reviewer"
)

// ReviewerContext resolves who is acting on an admin route: the JSON body field "reviewer",
// then the X-Reviewer header, then "admin". Identity is informational only.
func ReviewerContext() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reviewer := ""

		if body := c.Body(); len(body) > 0 {
			var payload struct {
				Reviewer string `json:"reviewer"`
			}
			if json.Unmarshal(body, &payload) == nil {
				reviewer = strings.TrimSpace(payload.Reviewer)
			}
		}
		if reviewer == "" {
			reviewer = strings.TrimSpace(c.Get(ReviewerHeader))
		}
		if reviewer == "" {
			reviewer = DefaultReviewer
		}

		c.Locals(reviewerKey, reviewer)
		return c.Next()
	}
}

// Reviewer returns the identity set by ReviewerContext.
func Reviewer(c *fiber.Ctx) string {
	if r, ok := c.Locals(reviewerKey).(string); ok && r != "" {
		return r
	}
	return DefaultReviewer
}
