package commands

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/hxnx/aboutbot/internal/logger"
)

// handleSyncMessage lets the owner push the slash commands to the current
// guild without waiting for global propagation.
func (r *Router) handleSyncMessage(s *discordgo.Session, m *discordgo.MessageCreate, _ string) {
	if m.GuildID == "" {
		return
	}

	reply := func(content string) {
		if _, err := s.ChannelMessageSendReply(m.ChannelID, content, m.Reference()); err != nil {
			logger.Warnf("failed to reply to sync: %v", err)
		}
	}

	if r.deps.Client.OwnerID == "" || m.Author.ID != r.deps.Client.OwnerID {
		reply(fmt.Sprintf("%s Only the bot owner can use this command.", r.deps.Client.Warning))
		return
	}

	if _, err := r.RegisterCommands(s, m.GuildID); err != nil {
		reply(fmt.Sprintf("%s Slash command sync failed: %v", r.deps.Client.Warning, err))
		return
	}

	reply(fmt.Sprintf("%s Synced %d slash commands to this server.", r.deps.Client.Success, len(r.commandList)))
}
