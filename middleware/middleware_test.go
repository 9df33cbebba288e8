package middleware

import (
	"bytes"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func newReviewerApp() *fiber.App {
	app := fiber.New()
	app.Post("/review", ReviewerContext(), func(c *fiber.Ctx) error {
		return c.SendString(Reviewer(c))
	})
	return app
}

func reviewerOf(t *testing.T, app *fiber.App, body, header string) string {
	req := httptest.NewRequest("POST", "/review", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if header != "" {
		req.Header.Set(ReviewerHeader, header)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(data)
}

func TestReviewerContext(t *testing.T) {
	app := newReviewerApp()

	require.Equal(t, "maria", reviewerOf(t, app, `{"reviewer":"maria"}`, "ops"))
	require.Equal(t, "ops", reviewerOf(t, app, `{}`, "ops"))
	require.Equal(t, "ops", reviewerOf(t, app, `not json`, "ops"))
	require.Equal(t, DefaultReviewer, reviewerOf(t, app, "", ""))
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	app := fiber.New()
	app.Use(RequestLogger(logger))
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })
	app.Get("/boom", func(c *fiber.Ctx) error { return fiber.ErrServiceUnavailable })

	_, err := app.Test(httptest.NewRequest("GET", "/ok", nil))
	require.NoError(t, err)
	_, err = app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)

	out := buf.String()
	require.Contains(t, out, "path=/ok status=204")
	require.Contains(t, out, "level=ERROR")
	require.Contains(t, out, "path=/boom status=503")
}
