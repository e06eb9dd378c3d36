package bot

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/hxnx/aboutbot/internal/logger"
	"github.com/hxnx/aboutbot/internal/redis"
)

const fleetTimeout = 2 * time.Second

// Fleet counts guilds over every shard. Shards of this process are counted
// from their state; the Redis registry supplies the shards other processes run.
type Fleet struct {
	sessions   []*discordgo.Session
	shardCount int
	registry   *redis.ShardRegistry
}

func NewFleet(sessions []*discordgo.Session, shardCount int, registry *redis.ShardRegistry) *Fleet {
	return &Fleet{sessions: sessions, shardCount: shardCount, registry: registry}
}

func (f *Fleet) TotalGuilds(ctx context.Context) int {
	local := f.localCounts()
	if !f.registry.Enabled() {
		return mergeCounts(local, nil)
	}

	ctx, cancel := context.WithTimeout(ctx, fleetTimeout)
	defer cancel()

	remote, err := f.registry.Counts(ctx, f.shardCount)
	if err != nil {
		logger.Warnf("failed to read fleet guild count, using local shards: %v", err)
		return mergeCounts(local, nil)
	}
	return mergeCounts(local, remote)
}

// Publish pushes the guild count of every local shard to the registry.
func (f *Fleet) Publish(ctx context.Context) {
	if !f.registry.Enabled() {
		return
	}
	for _, s := range f.sessions {
		if err := f.registry.Publish(ctx, s.ShardID, guildCount(s)); err != nil {
			logger.Component("presence").Warn("failed to publish shard stats", "shard", s.ShardID, "err", err)
		}
	}
}

func (f *Fleet) Forget(ctx context.Context) error {
	ids := make([]int, 0, len(f.sessions))
	for _, s := range f.sessions {
		ids = append(ids, s.ShardID)
	}
	return f.registry.Remove(ctx, ids...)
}

func (f *Fleet) localCounts() map[int]int {
	counts := make(map[int]int, len(f.sessions))
	for _, s := range f.sessions {
		counts[s.ShardID] = guildCount(s)
	}
	return counts
}

// mergeCounts sums guilds per shard, preferring the live local count over a
// published one for the same shard.
func mergeCounts(local, remote map[int]int) int {
	total := 0
	for _, n := range local {
		total += n
	}
	for id, n := range remote {
		if _, ok := local[id]; !ok {
			total += n
		}
	}
	return total
}

func guildCount(s *discordgo.Session) int {
	if s.State == nil {
		return 0
	}
	s.State.RLock()
	defer s.State.RUnlock()
	return len(s.State.Guilds)
}
