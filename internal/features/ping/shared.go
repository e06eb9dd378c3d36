package ping

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/dustin/go-humanize"
	"github.com/hxnx/aboutbot/internal/database"
	"github.com/hxnx/aboutbot/internal/features/about"
	"github.com/hxnx/aboutbot/internal/logger"
)

const RefreshID = "ping_refresh"

// Status is what the ping panel shows.
type Status struct {
	APILatency     time.Duration
	GatewayLatency time.Duration
	Guilds         int
	Shards         int
	Uptime         time.Duration
	MemoryBytes    uint64

	// CommandsRun is negative when no usage log is attached.
	CommandsRun int64
	At          time.Time
}

// Source gathers a Status from a session.
type Source struct {
	StartTime time.Time
	Fleet     about.GuildCounter
	Usage     *database.UsageRepository
}

func (src *Source) Status(s *discordgo.Session) Status {
	latency := s.HeartbeatLatency().Round(time.Millisecond)

	gatewayLatency := latency
	if !s.LastHeartbeatAck.IsZero() {
		gatewayLatency = time.Since(s.LastHeartbeatAck).Round(time.Millisecond)
	}

	shards := s.ShardCount
	if shards == 0 {
		shards = 1
	}

	guilds := 0
	if src.Fleet != nil {
		guilds = src.Fleet.TotalGuilds(context.Background())
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	commandsRun := int64(-1)
	if total, ok, err := src.Usage.Total(); err != nil {
		logger.Warnf("failed to count command usage: %v", err)
	} else if ok {
		commandsRun = total
	}

	return Status{
		APILatency:     latency,
		GatewayLatency: gatewayLatency,
		Guilds:         guilds,
		Shards:         shards,
		Uptime:         time.Since(src.StartTime).Round(time.Second),
		MemoryBytes:    mem.Alloc,
		CommandsRun:    commandsRun,
		At:             time.Now(),
	}
}

func BuildPingComponentsV2(st Status) []discordgo.MessageComponent {
	colorLilac := 0xC8A2C8
	divider := true
	spacing := discordgo.SeparatorSpacingSizeSmall

	lines := []discordgo.MessageComponent{
		discordgo.TextDisplay{Content: fmt.Sprintf("**API latency:** %s", st.APILatency)},
		discordgo.TextDisplay{Content: fmt.Sprintf("**Gateway latency:** %s", st.GatewayLatency)},
		discordgo.TextDisplay{Content: fmt.Sprintf("**Servers:** %s • **Shards:** %d", humanize.Comma(int64(st.Guilds)), st.Shards)},
		discordgo.TextDisplay{Content: fmt.Sprintf("**Uptime:** %s • **Memory:** %s", st.Uptime, humanize.Bytes(st.MemoryBytes))},
	}
	if st.CommandsRun >= 0 {
		lines = append(lines, discordgo.TextDisplay{Content: fmt.Sprintf("**Commands run:** %s", humanize.Comma(st.CommandsRun))})
	}

	return []discordgo.MessageComponent{
		discordgo.Container{
			AccentColor: &colorLilac,
			Components: []discordgo.MessageComponent{
				discordgo.TextDisplay{Content: "**Pong!**"},
				discordgo.Separator{Divider: &divider, Spacing: &spacing},
				discordgo.Section{
					Components: lines,
					Accessory: discordgo.Button{
						Style:    discordgo.PrimaryButton,
						Label:    "Refresh",
						CustomID: RefreshID,
					},
				},
				discordgo.TextDisplay{Content: fmt.Sprintf("Updated <t:%d:R>", st.At.Unix())},
			},
		},
	}
}

func (src *Source) RespondPing(s *discordgo.Session, i *discordgo.InteractionCreate, respType discordgo.InteractionResponseType) {
	if s == nil || i == nil {
		return
	}

	components := BuildPingComponentsV2(src.Status(s))

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: respType,
		Data: &discordgo.InteractionResponseData{
			Components: components,
			Flags:      discordgo.MessageFlagsIsComponentsV2 | discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		logger.Warnf("failed to respond to ping: %v", err)
	}
}

// SendPing posts the panel in reply to a prefix command.
func (src *Source) SendPing(s *discordgo.Session, m *discordgo.MessageCreate) {
	if s == nil || m == nil {
		return
	}

	_, err := s.ChannelMessageSendComplex(m.ChannelID, &discordgo.MessageSend{
		Components: BuildPingComponentsV2(src.Status(s)),
		Flags:      discordgo.MessageFlagsIsComponentsV2,
		Reference:  m.Reference(),
	})
	if err != nil {
		logger.Warnf("failed to send ping: %v", err)
	}
}
