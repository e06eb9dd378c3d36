package commands

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/hxnx/aboutbot/internal/features/about"
	"github.com/hxnx/aboutbot/internal/features/shared"
	"github.com/hxnx/aboutbot/internal/logger"
)

// About answers /about. The first call may wait on the application lookup,
// so the response is deferred and sent as a followup.
func About(h *about.Handler) func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	return func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if i.Type != discordgo.InteractionApplicationCommand {
			return
		}

		if err := shared.DeferResponse(s, i); err != nil {
			logger.Warnf("failed to defer about: %v", err)
			return
		}

		err := h.Run(context.Background(), s, i.GuildID, i.ChannelID, func(embed *discordgo.MessageEmbed) error {
			return shared.FollowupEmbed(s, i, embed)
		})
		if err != nil {
			logger.Warnf("failed to respond to about: %v", err)
		}
	}
}
