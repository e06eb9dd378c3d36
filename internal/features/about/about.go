package about

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/dustin/go-humanize"
	"github.com/hxnx/aboutbot/internal/features/client"
	"github.com/hxnx/aboutbot/internal/logger"
	"github.com/hxnx/aboutbot/internal/version"
)

const (
	Name        = "about"
	Description = "Shows information about the bot"

	applicationTimeout = 10 * time.Second
	ownerTimeout       = 5 * time.Second

	// Discord rejects empty field names.
	blankFieldName = "\u200b"
)

type Options struct {
	Color       int
	Description string
	Features    []string
	// Permissions is the bitset requested by the invite link, used as is.
	Permissions int64
}

type Option func(*Command)

// WithIsAuthor chooses between "written by" and "owner" attribution.
func WithIsAuthor(v bool) Option {
	return func(c *Command) { c.isAuthor = v }
}

// WithReplacementIcon sets the bullet used when the success glyph is a custom emoji.
func WithReplacementIcon(icon string) Option {
	return func(c *Command) { c.replacementIcon = icon }
}

type Command struct {
	opts Options

	mu              sync.RWMutex
	isAuthor        bool
	replacementIcon string

	inviteOnce sync.Once
	inviteLink string

	ownerID   string
	ownerName string
}

func New(opts Options, options ...Option) *Command {
	c := &Command{
		opts:            opts,
		isAuthor:        true,
		replacementIcon: "+",
	}
	for _, o := range options {
		o(c)
	}
	return c
}

func (c *Command) SetIsAuthor(v bool) {
	c.mu.Lock()
	c.isAuthor = v
	c.mu.Unlock()
}

func (c *Command) SetReplacementIcon(icon string) {
	c.mu.Lock()
	c.replacementIcon = icon
	c.mu.Unlock()
}

// Invocation is one call of the command.
type Invocation struct {
	GuildID   string
	ChannelID string
	Client    *client.Info
	Reply     func(embed *discordgo.MessageEmbed) error
}

// Execute builds the about embed and sends it as the single reply.
func (c *Command) Execute(ctx context.Context, bot Bot, inv Invocation) error {
	embed := c.Build(ctx, bot, inv)
	if err := inv.Reply(embed); err != nil {
		return fmt.Errorf("cannot send about reply: %w", err)
	}
	return nil
}

func (c *Command) Build(ctx context.Context, bot Bot, inv Invocation) *discordgo.MessageEmbed {
	link := c.invite(ctx, bot)
	self := bot.SelfUser()

	c.mu.RLock()
	isAuthor, icon := c.isAuthor, c.replacementIcon
	c.mu.RUnlock()

	color := c.opts.Color
	if inv.GuildID != "" {
		if selfColor := bot.SelfColor(inv.GuildID); selfColor != 0 {
			color = selfColor
		}
	}

	var d strings.Builder
	fmt.Fprintf(&d, "Hello! I am **%s**, %s\n", self.Username, c.opts.Description)
	if isAuthor {
		fmt.Fprintf(&d, "I was written in Go by **%s**. ", c.owner(ctx, bot, inv.Client.OwnerID))
	} else {
		fmt.Fprintf(&d, "My owner is **%s**. ", c.owner(ctx, bot, inv.Client.OwnerID))
	}
	fmt.Fprintf(&d, "I'm built on %s [command framework](%s) (%s) and [discordgo](https://github.com/bwmarrin/discordgo) (%s)\n",
		version.AppName, version.Repository, version.Version, discordgo.VERSION)
	fmt.Fprintf(&d, "Type `%s%s` to see my commands!", inv.Client.Prefix, inv.Client.HelpWord)
	if line := InviteLine(inv.Client.ServerInvite, link); line != "" {
		d.WriteString("\n")
		d.WriteString(line)
	}
	d.WriteString("\n\nSome of my features include: ```css")
	glyph := FeatureGlyph(inv.Client.Success, icon)
	for _, f := range c.opts.Features {
		fmt.Fprintf(&d, "\n%s %s", glyph, f)
	}
	d.WriteString(" ```")

	var timestamp string
	if !inv.Client.StartTime.IsZero() {
		timestamp = inv.Client.StartTime.Format(time.RFC3339)
	}

	return &discordgo.MessageEmbed{
		Color: color,
		Author: &discordgo.MessageEmbedAuthor{
			Name:    fmt.Sprintf("All about %s!", self.Username),
			IconURL: self.AvatarURL(""),
		},
		Description: d.String(),
		Fields:      SummaryFields(ctx, bot),
		Footer:      &discordgo.MessageEmbedFooter{Text: "Last restart"},
		Timestamp:   timestamp,
	}
}

// InviteLine is the sentence pointing at the support server and/or the OAuth
// invite. It is empty when neither is available.
func InviteLine(serverInvite, oauthLink string) string {
	join := serverInvite != ""
	inv := oauthLink != ""
	switch {
	case join && inv:
		return fmt.Sprintf("Join my server [`here`](%s), or [`invite`](%s) me to your server!", serverInvite, oauthLink)
	case join:
		return fmt.Sprintf("Join my server [`here`](%s)!", serverInvite)
	case inv:
		return fmt.Sprintf("Please [`invite`](%s) me to your server!", oauthLink)
	default:
		return ""
	}
}

// FeatureGlyph keeps plain-text glyphs and swaps custom emoji markup, which
// does not render inside a code block, for the replacement.
func FeatureGlyph(success, replacement string) string {
	if strings.HasPrefix(success, "<") {
		return replacement
	}
	return success
}

func SummaryFields(ctx context.Context, bot Bot) []*discordgo.MessageEmbedField {
	st := bot.Stats()
	shard, sharded := bot.Shard()
	if !sharded {
		return []*discordgo.MessageEmbedField{
			{Name: "Stats", Value: count(st.Guilds) + " servers\n1 shard", Inline: true},
			{Name: "Users", Value: count(st.UniqueUsers) + " unique\n" + count(st.Members) + " total", Inline: true},
			{Name: "Channels", Value: count(st.TextChannels) + " text\n" + count(st.VoiceChannels) + " voice", Inline: true},
		}
	}

	return []*discordgo.MessageEmbedField{
		{Name: "Stats", Value: fmt.Sprintf("%s servers\nShard %d/%d", count(bot.TotalGuilds(ctx)), shard.ID+1, shard.Total), Inline: true},
		{Name: "This shard", Value: count(st.UniqueUsers) + " users\n" + count(st.Guilds) + " servers", Inline: true},
		{Name: blankFieldName, Value: count(st.TextChannels) + " text channels\n" + count(st.VoiceChannels) + " voice channels", Inline: true},
	}
}

func count(n int) string {
	return humanize.Comma(int64(n))
}

// owner resolves the owner's name once per owner ID. Failed lookups are not
// remembered and fall back to a mention.
func (c *Command) owner(ctx context.Context, bot Bot, ownerID string) string {
	mention := "<@" + ownerID + ">"
	if ownerID == "" {
		return mention
	}

	c.mu.RLock()
	id, name := c.ownerID, c.ownerName
	c.mu.RUnlock()
	if id == ownerID {
		return name
	}

	ctx, cancel := context.WithTimeout(ctx, ownerTimeout)
	defer cancel()

	u, err := bot.User(ctx, ownerID)
	if err != nil || u == nil {
		logger.Debugf("cannot resolve owner %s: %v", ownerID, err)
		return mention
	}

	c.mu.Lock()
	c.ownerID, c.ownerName = ownerID, u.Username
	c.mu.Unlock()
	return u.Username
}
