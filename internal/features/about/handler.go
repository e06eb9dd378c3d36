package about

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/hxnx/aboutbot/internal/features/client"
)

// Handler binds the command to the process-wide client configuration and
// the fleet counter shared by every shard.
type Handler struct {
	Command *Command
	Client  *client.Info
	Fleet   GuildCounter
}

// Run executes the command for a session, replying through reply.
func (h *Handler) Run(ctx context.Context, s *discordgo.Session, guildID, channelID string, reply func(*discordgo.MessageEmbed) error) error {
	return h.Command.Execute(ctx, NewSessionBot(s, h.Fleet), Invocation{
		GuildID:   guildID,
		ChannelID: channelID,
		Client:    h.Client,
		Reply:     reply,
	})
}
