package listeners

import (
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/hxnx/aboutbot/internal/features/ping"
)

func RoutePingComponent(src *ping.Source, s *discordgo.Session, i *discordgo.InteractionCreate) bool {
	if i.Type != discordgo.InteractionMessageComponent {
		return false
	}

	customID := i.MessageComponentData().CustomID
	if !strings.HasPrefix(customID, "ping_") {
		return false
	}

	HandlePingComponent(src, s, i)
	return true
}

func HandlePingComponent(src *ping.Source, s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}

	if i.MessageComponentData().CustomID == ping.RefreshID {
		src.RespondPing(s, i, discordgo.InteractionResponseUpdateMessage)
	}
}
