package commands

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/hxnx/aboutbot/internal/database"
	"github.com/hxnx/aboutbot/internal/features/about"
	aboutcmd "github.com/hxnx/aboutbot/internal/features/about/commands"
	aboutlisteners "github.com/hxnx/aboutbot/internal/features/about/listeners"
	"github.com/hxnx/aboutbot/internal/features/client"
	"github.com/hxnx/aboutbot/internal/features/help"
	helpcmd "github.com/hxnx/aboutbot/internal/features/help/commands"
	"github.com/hxnx/aboutbot/internal/features/ping"
	pingcmd "github.com/hxnx/aboutbot/internal/features/ping/commands"
	pinglisteners "github.com/hxnx/aboutbot/internal/features/ping/listeners"
	shared "github.com/hxnx/aboutbot/internal/features/shared"
	"github.com/hxnx/aboutbot/internal/logger"
)

const (
	helpName = "help"
	pingName = "ping"
	syncName = "sync"
)

type Deps struct {
	ApplicationID string
	Client        *client.Info
	About         *about.Command
	Fleet         about.GuildCounter
	Usage         *database.UsageRepository
	Cooldowns     *shared.Cooldowns
}

type (
	slashHandler  func(s *discordgo.Session, i *discordgo.InteractionCreate)
	prefixHandler func(s *discordgo.Session, m *discordgo.MessageCreate, args string)
)

// Router owns the command list and dispatches slash and prefix invocations.
type Router struct {
	deps    Deps
	ping    *ping.Source
	entries []help.Entry

	commandList []*discordgo.ApplicationCommand
	slash       map[string]slashHandler
	prefix      map[string]prefixHandler
}

func NewRouter(deps Deps) *Router {
	r := &Router{
		deps: deps,
		ping: &ping.Source{
			StartTime: deps.Client.StartTime,
			Fleet:     deps.Fleet,
			Usage:     deps.Usage,
		},
		entries: []help.Entry{
			{Name: about.Name, Description: about.Description},
			{Name: deps.Client.HelpWord, Description: "Lists my commands"},
			{Name: pingName, Description: "Checks the bot status"},
			{Name: syncName, Description: "Re-registers slash commands in this server", OwnerOnly: true},
		},
	}

	r.commandList = []*discordgo.ApplicationCommand{
		{
			Name:        about.Name,
			Description: about.Description,
		},
		{
			Name:        helpName,
			Description: "Lists my commands",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "command",
					Description: "Show a single command",
					Required:    false,
				},
			},
		},
		{
			Name:        pingName,
			Description: "Checks the bot status",
		},
	}

	aboutHandler := &about.Handler{Command: deps.About, Client: deps.Client, Fleet: deps.Fleet}

	r.slash = map[string]slashHandler{
		about.Name: aboutcmd.About(aboutHandler),
		helpName:   helpcmd.Help(deps.Client, r.entries),
		pingName:   pingcmd.Ping(r.ping),
	}

	r.prefix = map[string]prefixHandler{
		about.Name: func(s *discordgo.Session, m *discordgo.MessageCreate, _ string) {
			aboutlisteners.HandleAboutMessage(aboutHandler, s, m)
		},
		strings.ToLower(deps.Client.HelpWord): r.handleHelpMessage,
		pingName: func(s *discordgo.Session, m *discordgo.MessageCreate, _ string) {
			r.ping.SendPing(s, m)
		},
		syncName: r.handleSyncMessage,
	}

	return r
}

func (r *Router) CommandList() []*discordgo.ApplicationCommand {
	return r.commandList
}

func (r *Router) RegisterCommands(s *discordgo.Session, guildID string) ([]*discordgo.ApplicationCommand, error) {
	scope := "global"
	if guildID != "" {
		scope = fmt.Sprintf("guild:%s", guildID)
	}

	logger.Infof("Registering %d commands (%s)", len(r.commandList), scope)

	cmds, err := s.ApplicationCommandBulkOverwrite(r.deps.ApplicationID, guildID, r.commandList)
	if err != nil {
		return nil, fmt.Errorf("cannot bulk overwrite commands: %w", err)
	}
	return cmds, nil
}

func (r *Router) AddHandlers(s *discordgo.Session) {
	s.AddHandler(r.HandleMessage)

	s.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		switch i.Type {
		case discordgo.InteractionApplicationCommand:
			r.handleSlash(s, i)
		case discordgo.InteractionMessageComponent:
			if pinglisteners.RoutePingComponent(r.ping, s, i) {
				return
			}
		default:
			return
		}
	})
}

func (r *Router) handleSlash(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	handler, ok := r.slash[data.Name]
	if !ok {
		return
	}

	userID := shared.GetInteractionUserID(i)
	if !r.deps.Cooldowns.Allow(data.Name, userID) {
		shared.RespondEphemeral(s, i, r.cooldownMessage(data.Name))
		return
	}

	handler(s, i)
	r.recordUsage(i.GuildID, i.ChannelID, userID, data.Name)
}

// HandleMessage runs prefix commands such as "!about".
func (r *Router) HandleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m == nil || m.Author == nil || m.Author.Bot {
		return
	}

	name, args, ok := ParseCommand(m.Content, r.deps.Client.Prefix)
	if !ok {
		return
	}

	handler, ok := r.prefix[name]
	if !ok {
		return
	}

	if !r.deps.Cooldowns.Allow(name, m.Author.ID) {
		if _, err := s.ChannelMessageSendReply(m.ChannelID, r.cooldownMessage(name), m.Reference()); err != nil {
			logger.Warnf("failed to send cooldown notice: %v", err)
		}
		return
	}

	handler(s, m, args)
	r.recordUsage(m.GuildID, m.ChannelID, m.Author.ID, name)
}

// ParseCommand splits "<prefix><name> <args>" into a lower-cased name and
// the trimmed remainder.
func ParseCommand(content, prefix string) (name, args string, ok bool) {
	content = strings.TrimSpace(content)
	if prefix == "" || !strings.HasPrefix(content, prefix) {
		return "", "", false
	}

	rest := strings.TrimSpace(strings.TrimPrefix(content, prefix))
	if rest == "" {
		return "", "", false
	}

	name, args, _ = strings.Cut(rest, " ")
	return strings.ToLower(name), strings.TrimSpace(args), true
}

func (r *Router) handleHelpMessage(s *discordgo.Session, m *discordgo.MessageCreate, args string) {
	name := "Bot"
	if s.State != nil && s.State.User != nil {
		name = s.State.User.Username
	}

	embed := help.BuildHelpEmbed(r.deps.Client, name, r.entries, args)
	if err := shared.ReplyEmbed(s, m, embed); err != nil {
		logger.Warnf("failed to reply to help: %v", err)
	}
}

func (r *Router) cooldownMessage(command string) string {
	return fmt.Sprintf("%s You are using `%s` too fast, try again in a few seconds.", r.deps.Client.Warning, command)
}

func (r *Router) recordUsage(guildID, channelID, userID, command string) {
	err := r.deps.Usage.Record(database.Usage{
		GuildID:   guildID,
		ChannelID: channelID,
		UserID:    userID,
		Command:   command,
	})
	if err != nil {
		logger.Component("database").Warn("failed to record command usage", "command", command, "err", err)
	}
}
