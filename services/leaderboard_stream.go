package services

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
)

// LeaderboardStream pushes the live top 20 to SSE clients whenever it changes.
type LeaderboardStream struct {
	Waitlist *WaitlistService
	Interval time.Duration
	Logger   *slog.Logger
}

func NewLeaderboardStream(waitlist *WaitlistService, logger *slog.Logger) *LeaderboardStream {
	return &LeaderboardStream{Waitlist: waitlist, Interval: 3 * time.Second, Logger: logger}
}

// Stream is the fiber handler for the SSE endpoint.
func (s *LeaderboardStream) Stream(c *fiber.Ctx) error {
	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no") // nginx

	reqCtx := c.Context()
	reqCtx.SetBodyStreamWriter(func(w *bufio.Writer) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		ticker := time.NewTicker(s.Interval)
		defer ticker.Stop()

		// Initial keepalive (comment event)
		w.WriteString(":\n\n")
		last, err := s.WriteUpdate(ctx, w, "")
		if err != nil {
			return
		}

		for {
			select {
			case <-ticker.C:
				last, err = s.WriteUpdate(ctx, w, last)
				if err != nil {
					// Client disconnected
					return
				}
			case <-reqCtx.Done():
				return
			}
		}
	})

	return nil
}

// WriteUpdate writes a leaderboard event when the board differs from last and flushes. It
// returns the payload now considered current.
func (s *LeaderboardStream) WriteUpdate(ctx context.Context, w *bufio.Writer, last string) (string, error) {
	entries, err := s.Waitlist.Leaderboard(ctx, MaxLeaderboardLimit)
	if err != nil {
		s.Logger.Warn("Leaderboard stream query failed", "err", err)
		return last, w.Flush()
	}
	payload, err := json.Marshal(entries)
	if err != nil {
		return last, err
	}
	if string(payload) != last {
		fmt.Fprintf(w, "event: leaderboard\ndata: %s\n\n", payload)
	}
	return string(payload), w.Flush()
}
