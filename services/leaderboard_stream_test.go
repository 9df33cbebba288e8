package services

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"waitlist-rank-system/testutil"
)

func TestLeaderboardStreamWritesOnChange(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2025, time.January, 5, 0, 0, 0, 0, time.UTC))
	svc := NewWaitlistService(testutil.NewDB(t), clock, NewEarlyBonusSchedule(nil), testutil.Logger())
	stream := NewLeaderboardStream(svc, testutil.Logger())
	ctx := context.Background()

	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)

	_, _, err := svc.Signup(ctx, "first@example.com", "First", "")
	require.NoError(t, err)
	last, err := stream.WriteUpdate(ctx, w, "")
	require.NoError(t, err)
	require.Equal(t, 1, strings.Count(buf.String(), "event: leaderboard"))
	require.Contains(t, buf.String(), `"name":"First"`)

	last, err = stream.WriteUpdate(ctx, w, last)
	require.NoError(t, err)
	require.Equal(t, 1, strings.Count(buf.String(), "event: leaderboard"))

	_, err = svc.AddEngagement(ctx, "first@example.com", 2, "")
	require.NoError(t, err)
	_, err = stream.WriteUpdate(ctx, w, last)
	require.NoError(t, err)
	require.Equal(t, 2, strings.Count(buf.String(), "event: leaderboard"))
	require.Contains(t, buf.String(), `"total_score":32`)
}
