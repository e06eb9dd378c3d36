package commands

import (
	"github.com/bwmarrin/discordgo"
	"github.com/hxnx/aboutbot/internal/features/client"
	"github.com/hxnx/aboutbot/internal/features/help"
	"github.com/hxnx/aboutbot/internal/features/shared"
	"github.com/hxnx/aboutbot/internal/logger"
)

func Help(info *client.Info, entries []help.Entry) func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	return func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if i.Type != discordgo.InteractionApplicationCommand {
			return
		}

		filter := shared.GetOptionString(i.ApplicationCommandData().Options, "command")
		embed := help.BuildHelpEmbed(info, botName(s), entries, filter)
		if err := shared.RespondEmbed(s, i, embed); err != nil {
			logger.Warnf("failed to respond to help: %v", err)
		}
	}
}

func botName(s *discordgo.Session) string {
	if s.State != nil && s.State.User != nil {
		return s.State.User.Username
	}
	return "Bot"
}
