package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	redislib "github.com/redis/go-redis/v9"
)

const (
	shardKeyPrefix = "aboutbot:shard:"
	shardTTL       = 5 * time.Minute
)

// ShardRegistry shares per-shard guild counts between bot processes so any
// shard can report the fleet total. Each shard has its own key, so a shard
// that stops publishing drops out after shardTTL.
type ShardRegistry struct {
	rdb *redislib.Client
}

func NewShardRegistry(rdb *redislib.Client) *ShardRegistry {
	return &ShardRegistry{rdb: rdb}
}

func (r *ShardRegistry) Enabled() bool {
	return r != nil && r.rdb != nil
}

func ShardKey(shardID int) string {
	return shardKeyPrefix + strconv.Itoa(shardID)
}

// Publish stores the guild count of one shard for shardTTL.
func (r *ShardRegistry) Publish(ctx context.Context, shardID, guilds int) error {
	if !r.Enabled() {
		return nil
	}

	if err := r.rdb.Set(ctx, ShardKey(shardID), guilds, shardTTL).Err(); err != nil {
		return fmt.Errorf("cannot publish shard %d: %w", shardID, err)
	}
	return nil
}

// Remove forgets the given shards, used on shutdown.
func (r *ShardRegistry) Remove(ctx context.Context, shardIDs ...int) error {
	if !r.Enabled() || len(shardIDs) == 0 {
		return nil
	}

	keys := make([]string, 0, len(shardIDs))
	for _, id := range shardIDs {
		keys = append(keys, ShardKey(id))
	}
	return r.rdb.Del(ctx, keys...).Err()
}

// Counts reads the published guild count of shards 0..shardCount-1. Shards
// without a live key are missing from the result.
func (r *ShardRegistry) Counts(ctx context.Context, shardCount int) (map[int]int, error) {
	if !r.Enabled() {
		return nil, fmt.Errorf("shard registry disabled")
	}
	if shardCount < 1 {
		return map[int]int{}, nil
	}

	keys := make([]string, shardCount)
	for id := range keys {
		keys[id] = ShardKey(id)
	}

	values, err := r.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("cannot read shard registry: %w", err)
	}
	return ParseCounts(values), nil
}

// ParseCounts maps MGET results, indexed by shard ID, to guild counts,
// skipping missing keys and garbage.
func ParseCounts(values []interface{}) map[int]int {
	counts := make(map[int]int, len(values))
	for id, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		if n, err := strconv.Atoi(s); err == nil && n >= 0 {
			counts[id] = n
		}
	}
	return counts
}
