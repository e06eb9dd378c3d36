package listeners

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/hxnx/aboutbot/internal/features/about"
	"github.com/hxnx/aboutbot/internal/features/shared"
	"github.com/hxnx/aboutbot/internal/logger"
)

func HandleAboutMessage(h *about.Handler, s *discordgo.Session, m *discordgo.MessageCreate) {
	if s == nil || m == nil {
		return
	}

	err := h.Run(context.Background(), s, m.GuildID, m.ChannelID, func(embed *discordgo.MessageEmbed) error {
		return shared.ReplyEmbed(s, m, embed)
	})
	if err != nil {
		logger.Warnf("failed to reply to about: %v", err)
	}
}
