package commands

import (
	"github.com/bwmarrin/discordgo"
	"github.com/hxnx/aboutbot/internal/features/ping"
)

func Ping(src *ping.Source) func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	return func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if i.Type != discordgo.InteractionApplicationCommand {
			return
		}

		src.RespondPing(s, i, discordgo.InteractionResponseChannelMessageWithSource)
	}
}
