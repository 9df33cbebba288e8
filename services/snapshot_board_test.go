package services

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestRedisSnapshotBoardUnreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	board := NewRedisSnapshotBoard(client)

	err := board.Publish(context.Background(), []LeaderboardEntry{{Rank: 1, EntrantID: "a", Name: "A"}})
	require.Error(t, err)

	_, err = board.Top(context.Background(), 5)
	require.Error(t, err)
}

func TestRedisSnapshotBoardClose(t *testing.T) {
	board := NewRedisSnapshotBoard(redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"}))

	require.NoError(t, board.Close())
	require.ErrorIs(t, board.Close(), redis.ErrClosed)

	_, err := board.Top(context.Background(), 5)
	require.ErrorIs(t, err, redis.ErrClosed)
}
