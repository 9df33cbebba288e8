package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	snapshotRankKey    = "waitlist:snapshot:ranks"
	snapshotEntriesKey = "waitlist:snapshot:entries"
)

// RedisSnapshotBoard keeps the latest snapshot as a sorted set of entrant ids scored by rank,
// with the rendered entries in a hash next to it.
type RedisSnapshotBoard struct {
	Client redis.UniversalClient
}

func NewRedisSnapshotBoard(client redis.UniversalClient) *RedisSnapshotBoard {
	return &RedisSnapshotBoard{Client: client}
}

// Close releases the Redis connections.
func (b *RedisSnapshotBoard) Close() error {
	return b.Client.Close()
}

// Publish replaces the previous snapshot atomically.
func (b *RedisSnapshotBoard) Publish(ctx context.Context, entries []LeaderboardEntry) error {
	members := make([]redis.Z, 0, len(entries))
	fields := make(map[string]any, len(entries))
	for _, e := range entries {
		data, err := json.Marshal(e)
		if err != nil {
			return err
		}
		members = append(members, redis.Z{Score: float64(e.Rank), Member: e.EntrantID})
		fields[e.EntrantID] = data
	}

	pipe := b.Client.TxPipeline()
	pipe.Del(ctx, snapshotRankKey, snapshotEntriesKey)
	if len(members) > 0 {
		pipe.ZAdd(ctx, snapshotRankKey, members...)
		pipe.HSet(ctx, snapshotEntriesKey, fields)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("update snapshot board failed: %w", err)
	}
	return nil
}

// Top returns the best limit entries of the latest snapshot.
func (b *RedisSnapshotBoard) Top(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	ids, err := b.Client.ZRange(ctx, snapshotRankKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	values, err := b.Client.HMGet(ctx, snapshotEntriesKey, ids...).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("snapshot entry %s missing", ids[i])
		}
		var entry LeaderboardEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			return nil, err
		}
		entry.EntrantID = ids[i]
		entries = append(entries, entry)
	}
	return entries, nil
}
