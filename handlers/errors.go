package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"waitlist-rank-system/errorx"
)

func httpStatus(code errorx.Code) int {
	switch code {
	case errorx.BadRequest, errorx.InvalidPoints:
		return fiber.StatusBadRequest
	case errorx.NotFound:
		return fiber.StatusNotFound
	case errorx.AlreadyExists, errorx.Conflict, errorx.InvalidState:
		return fiber.StatusConflict
	case errorx.Unavailable:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes err as {"error", "code"}. Errors that are not errorx.Error are never
// shown to the client.
func respondError(c *fiber.Ctx, err error) error {
	var xerr errorx.Error
	if !errors.As(err, &xerr) {
		xerr = errorx.Unknown
	}
	return c.Status(httpStatus(xerr.Code)).JSON(fiber.Map{
		"error": xerr.Message,
		"code":  xerr.Code.String(),
	})
}

func badRequest(c *fiber.Ctx, format string, a ...any) error {
	return respondError(c, errorx.New(errorx.BadRequest, format, a...))
}

// parseBody decodes a JSON body, treating an empty or malformed body as a bad request.
func parseBody(c *fiber.Ctx, out any) error {
	if len(c.Body()) == 0 {
		return errorx.New(errorx.BadRequest, "No data provided")
	}
	if err := c.BodyParser(out); err != nil {
		return errorx.New(errorx.BadRequest, "Invalid request body")
	}
	return nil
}
