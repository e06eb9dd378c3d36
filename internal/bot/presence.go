package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/hxnx/aboutbot/internal/logger"
)

const presenceUpdateInterval = 60 * time.Second

func (b *Bot) startPresenceUpdater() {
	if b.presenceStop != nil {
		return
	}
	b.presenceStop = make(chan struct{})
	go func(stop <-chan struct{}) {
		ticker := time.NewTicker(presenceUpdateInterval)
		defer ticker.Stop()

		b.updatePresence()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				b.updatePresence()
				b.cooldowns.Prune(time.Now())
			}
		}
	}(b.presenceStop)
}

func (b *Bot) stopPresenceUpdater() {
	if b.presenceStop == nil {
		return
	}
	close(b.presenceStop)
	b.presenceStop = nil
}

func (b *Bot) updatePresence() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	b.fleet.Publish(ctx)

	for _, s := range b.sessions {
		status := PresenceStatus(b.config.CommandPrefix, s.ShardID, guildCount(s))
		if err := s.UpdateGameStatus(0, status); err != nil {
			logger.Component("presence").Warn("failed to update presence", "shard", s.ShardID, "err", err)
		}
	}
}

func PresenceStatus(prefix string, shardID, guilds int) string {
	return fmt.Sprintf("%sabout | shard #%d | %d servers", prefix, max(1, shardID+1), guilds)
}
