package about

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/hxnx/aboutbot/internal/features/client"
)

type fakeBot struct {
	app      *discordgo.Application
	appErr   error
	appCalls atomic.Int32

	owner     *discordgo.User
	ownerErr  error
	userCalls atomic.Int32

	color int
	shard *ShardInfo
	stats Stats
	fleet int
}

func (b *fakeBot) SelfUser() *discordgo.User {
	return &discordgo.User{ID: "1447268601496338588", Username: "Lilac"}
}

func (b *fakeBot) Application(context.Context) (*discordgo.Application, error) {
	b.appCalls.Add(1)
	return b.app, b.appErr
}

func (b *fakeBot) User(context.Context, string) (*discordgo.User, error) {
	b.userCalls.Add(1)
	return b.owner, b.ownerErr
}

func (b *fakeBot) SelfColor(string) int { return b.color }

func (b *fakeBot) Shard() (ShardInfo, bool) {
	if b.shard == nil {
		return ShardInfo{}, false
	}
	return *b.shard, true
}

func (b *fakeBot) Stats() Stats { return b.stats }

func (b *fakeBot) TotalGuilds(context.Context) int { return b.fleet }

func publicApp() *discordgo.Application {
	return &discordgo.Application{ID: "1447268601496338588", BotPublic: true}
}

func testClient() *client.Info {
	return &client.Info{
		Prefix:    "!",
		HelpWord:  "help",
		OwnerID:   "175928847299117063",
		Success:   "✅",
		StartTime: time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC),
	}
}

type recorder struct {
	sent []*discordgo.MessageEmbed
}

func (r *recorder) reply(e *discordgo.MessageEmbed) error {
	r.sent = append(r.sent, e)
	return nil
}

func run(t *testing.T, cmd *Command, bot Bot, info *client.Info, guildID string) *discordgo.MessageEmbed {
	t.Helper()
	rec := &recorder{}
	err := cmd.Execute(context.Background(), bot, Invocation{
		GuildID:   guildID,
		ChannelID: "1",
		Client:    info,
		Reply:     rec.reply,
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(rec.sent) != 1 {
		t.Fatalf("Execute() sent %d replies, want 1", len(rec.sent))
	}
	return rec.sent[0]
}

func featureLines(description string) []string {
	_, block, ok := strings.Cut(description, "```css")
	if !ok {
		return nil
	}
	block = strings.TrimSuffix(block, " ```")
	return strings.Split(strings.TrimPrefix(block, "\n"), "\n")
}

func TestFeatureList(t *testing.T) {
	t.Parallel()

	features := []string{"Music", "Moderation", "Fun"}

	tests := []struct {
		name    string
		success string
		want    string
	}{
		{name: "plain glyph", success: "✅", want: "✅"},
		{name: "custom emoji", success: "<:yes:123456789012345678>", want: "*"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cmd := New(Options{Features: features}, WithReplacementIcon("*"))
			info := testClient()
			info.Success = tt.success

			embed := run(t, cmd, &fakeBot{app: publicApp()}, info, "")
			lines := featureLines(embed.Description)
			if len(lines) != len(features) {
				t.Fatalf("got %d feature lines %q, want %d", len(lines), lines, len(features))
			}
			for i, line := range lines {
				if want := tt.want + " " + features[i]; line != want {
					t.Errorf("line %d = %q, want %q", i, line, want)
				}
			}
		})
	}
}

func TestSetReplacementIcon(t *testing.T) {
	t.Parallel()

	cmd := New(Options{Features: []string{"Music"}})
	cmd.SetReplacementIcon("->")
	info := testClient()
	info.Success = "<a:ok:123456789012345678>"

	embed := run(t, cmd, &fakeBot{app: publicApp()}, info, "")
	if lines := featureLines(embed.Description); len(lines) != 1 || lines[0] != "-> Music" {
		t.Errorf("feature lines = %q, want [\"-> Music\"]", lines)
	}
}

func TestInviteFetchFailure(t *testing.T) {
	t.Parallel()

	bot := &fakeBot{appErr: errors.New("503 Service Unavailable")}
	embed := run(t, New(Options{}), bot, testClient(), "")

	if strings.Contains(embed.Description, "[`invite`]") {
		t.Errorf("description has an invite link after a failed fetch: %q", embed.Description)
	}
	if strings.Contains(embed.Description, "Please") {
		t.Errorf("description has an invite sentence: %q", embed.Description)
	}
}

func TestPrivateBotHasNoInvite(t *testing.T) {
	t.Parallel()

	bot := &fakeBot{app: &discordgo.Application{ID: "1447268601496338588", BotPublic: false}}
	embed := run(t, New(Options{}), bot, testClient(), "")

	if strings.Contains(embed.Description, "oauth2") {
		t.Errorf("description has an OAuth link for a private bot: %q", embed.Description)
	}
}

func TestInviteLine(t *testing.T) {
	t.Parallel()

	const (
		server = "https://discord.gg/lilac"
		oauth  = "https://discord.com/oauth2/authorize?client_id=1"
	)

	tests := []struct {
		name   string
		server string
		oauth  string
		want   string
	}{
		{
			name:   "both",
			server: server,
			oauth:  oauth,
			want:   "Join my server [`here`](" + server + "), or [`invite`](" + oauth + ") me to your server!",
		},
		{
			name:   "server only",
			server: server,
			want:   "Join my server [`here`](" + server + ")!",
		},
		{
			name:  "invite only",
			oauth: oauth,
			want:  "Please [`invite`](" + oauth + ") me to your server!",
		},
		{
			name: "neither",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := InviteLine(tt.server, tt.oauth); got != tt.want {
				t.Errorf("InviteLine() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInviteSentenceInEmbed(t *testing.T) {
	t.Parallel()

	info := testClient()
	info.ServerInvite = "https://discord.gg/lilac"

	embed := run(t, New(Options{Permissions: discordgo.PermissionSendMessages}), &fakeBot{app: publicApp()}, info, "")

	want := InviteLine(info.ServerInvite, InviteURL("1447268601496338588", discordgo.PermissionSendMessages))
	if !strings.Contains(embed.Description, "\n"+want+"\n") {
		t.Errorf("description %q does not contain %q", embed.Description, want)
	}
	if !strings.Contains(want, ", or ") {
		t.Errorf("invite sentence %q does not join both links with \", or \"", want)
	}
}

func TestInviteURL(t *testing.T) {
	t.Parallel()

	got := InviteURL("1447268601496338588", 2048)
	want := "https://discord.com/oauth2/authorize?client_id=1447268601496338588&permissions=2048&scope=bot+applications.commands"
	if got != want {
		t.Errorf("InviteURL() = %q, want %q", got, want)
	}
}

func TestInvitePermissions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		perms int64
		want  string
	}{
		{name: "empty set", perms: 0, want: "permissions=0&"},
		{name: "send messages", perms: discordgo.PermissionSendMessages, want: "permissions=2048&"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			embed := run(t, New(Options{Permissions: tt.perms}), &fakeBot{app: publicApp()}, testClient(), "")
			if !strings.Contains(embed.Description, tt.want) {
				t.Errorf("description %q does not contain %q", embed.Description, tt.want)
			}
		})
	}
}

func TestInviteFetchedOnce(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		bot  *fakeBot
	}{
		{name: "success", bot: &fakeBot{app: publicApp()}},
		{name: "failure", bot: &fakeBot{appErr: errors.New("timeout")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cmd := New(Options{})

			var wg sync.WaitGroup
			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_ = cmd.Execute(context.Background(), tt.bot, Invocation{
						Client: testClient(),
						Reply:  func(*discordgo.MessageEmbed) error { return nil },
					})
				}()
			}
			wg.Wait()
			run(t, cmd, tt.bot, testClient(), "")

			if got := tt.bot.appCalls.Load(); got != 1 {
				t.Errorf("application fetched %d times, want 1", got)
			}
		})
	}
}

func TestSummaryFields(t *testing.T) {
	t.Parallel()

	stats := Stats{Guilds: 12, UniqueUsers: 3400, Members: 5120, TextChannels: 80, VoiceChannels: 15}

	tests := []struct {
		name string
		bot  *fakeBot
		want [][2]string
	}{
		{
			name: "unsharded",
			bot:  &fakeBot{stats: stats},
			want: [][2]string{
				{"Stats", "12 servers\n1 shard"},
				{"Users", "3,400 unique\n5,120 total"},
				{"Channels", "80 text\n15 voice"},
			},
		},
		{
			name: "sharded",
			bot:  &fakeBot{stats: stats, shard: &ShardInfo{ID: 1, Total: 4}, fleet: 1042},
			want: [][2]string{
				{"Stats", "1,042 servers\nShard 2/4"},
				{"This shard", "3,400 users\n12 servers"},
				{blankFieldName, "80 text channels\n15 voice channels"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			fields := SummaryFields(context.Background(), tt.bot)
			if len(fields) != len(tt.want) {
				t.Fatalf("got %d fields, want %d", len(fields), len(tt.want))
			}
			for i, f := range fields {
				if f.Name != tt.want[i][0] || f.Value != tt.want[i][1] {
					t.Errorf("field %d = {%q, %q}, want {%q, %q}", i, f.Name, f.Value, tt.want[i][0], tt.want[i][1])
				}
				if !f.Inline {
					t.Errorf("field %d is not inline", i)
				}
			}
		})
	}
}

func TestAuthorLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		isAuthor bool
		bot      *fakeBot
		want     string
	}{
		{
			name:     "author",
			isAuthor: true,
			bot:      &fakeBot{owner: &discordgo.User{Username: "hxnx"}},
			want:     "I was written in Go by **hxnx**.",
		},
		{
			name: "owner",
			bot:  &fakeBot{owner: &discordgo.User{Username: "hxnx"}},
			want: "My owner is **hxnx**.",
		},
		{
			name: "owner unresolved",
			bot:  &fakeBot{ownerErr: errors.New("unknown user")},
			want: "My owner is **<@175928847299117063>**.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cmd := New(Options{}, WithIsAuthor(tt.isAuthor))
			embed := run(t, cmd, tt.bot, testClient(), "")
			if !strings.Contains(embed.Description, tt.want) {
				t.Errorf("description %q does not contain %q", embed.Description, tt.want)
			}
		})
	}
}

func TestOwnerResolvedOnce(t *testing.T) {
	t.Parallel()

	cmd := New(Options{})
	bot := &fakeBot{owner: &discordgo.User{Username: "hxnx"}}
	for i := 0; i < 3; i++ {
		embed := run(t, cmd, bot, testClient(), "")
		if !strings.Contains(embed.Description, "**hxnx**") {
			t.Fatalf("description %q does not name the owner", embed.Description)
		}
	}
	if got := bot.userCalls.Load(); got != 1 {
		t.Errorf("owner looked up %d times, want 1", got)
	}

	failing := &fakeBot{ownerErr: errors.New("unknown user")}
	run(t, cmd, failing, testClient(), "")
	if got := failing.userCalls.Load(); got != 0 {
		t.Errorf("cached owner looked up again %d times", got)
	}

	info := testClient()
	info.OwnerID = ""
	embed := run(t, New(Options{}), failing, info, "")
	if !strings.Contains(embed.Description, "**<@>**") {
		t.Errorf("description %q has no mention fallback for a missing owner", embed.Description)
	}
	if got := failing.userCalls.Load(); got != 0 {
		t.Errorf("missing owner looked up %d times, want 0", got)
	}
}

func TestSetIsAuthor(t *testing.T) {
	t.Parallel()

	cmd := New(Options{})
	cmd.SetIsAuthor(false)
	embed := run(t, cmd, &fakeBot{owner: &discordgo.User{Username: "hxnx"}}, testClient(), "")
	if !strings.Contains(embed.Description, "My owner is **hxnx**.") {
		t.Errorf("description %q has no owner label", embed.Description)
	}
}

func TestEmbedLayout(t *testing.T) {
	t.Parallel()

	info := testClient()
	cmd := New(Options{Color: 0xC8A2C8, Description: "a bot that tells you about itself."})

	tests := []struct {
		name    string
		guildID string
		color   int
		want    int
	}{
		{name: "direct message", color: 0xFF0000, want: 0xC8A2C8},
		{name: "guild", guildID: "2", color: 0xFF0000, want: 0xFF0000},
		{name: "guild without role color", guildID: "2", want: 0xC8A2C8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			embed := run(t, cmd, &fakeBot{color: tt.color}, info, tt.guildID)
			if embed.Color != tt.want {
				t.Errorf("Color = %#x, want %#x", embed.Color, tt.want)
			}
			if embed.Author == nil || embed.Author.Name != "All about Lilac!" {
				t.Errorf("Author = %+v", embed.Author)
			}
			if embed.Footer == nil || embed.Footer.Text != "Last restart" {
				t.Errorf("Footer = %+v", embed.Footer)
			}
			if embed.Timestamp != "2026-10-01T12:00:00Z" {
				t.Errorf("Timestamp = %q", embed.Timestamp)
			}
			for _, want := range []string{
				"Hello! I am **Lilac**, a bot that tells you about itself.",
				"Type `!help` to see my commands!",
				"[discordgo](https://github.com/bwmarrin/discordgo)",
			} {
				if !strings.Contains(embed.Description, want) {
					t.Errorf("description %q does not contain %q", embed.Description, want)
				}
			}
		})
	}
}

func TestExecuteReplyError(t *testing.T) {
	t.Parallel()

	sendErr := errors.New("missing access")
	err := New(Options{}).Execute(context.Background(), &fakeBot{}, Invocation{
		Client: testClient(),
		Reply:  func(*discordgo.MessageEmbed) error { return sendErr },
	})
	if !errors.Is(err, sendErr) {
		t.Errorf("Execute() error = %v, want wrapping %v", err, sendErr)
	}
}

func TestCountGuilds(t *testing.T) {
	t.Parallel()

	alice := &discordgo.User{ID: "1"}
	bob := &discordgo.User{ID: "2"}
	guilds := []*discordgo.Guild{
		{
			Members: []*discordgo.Member{{User: alice}, {User: bob}},
			Channels: []*discordgo.Channel{
				{Type: discordgo.ChannelTypeGuildText},
				{Type: discordgo.ChannelTypeGuildVoice},
				{Type: discordgo.ChannelTypeGuildCategory},
			},
		},
		{
			Members:  []*discordgo.Member{{User: alice}},
			Channels: []*discordgo.Channel{{Type: discordgo.ChannelTypeGuildNews}},
		},
	}

	got := CountGuilds(guilds)
	want := Stats{Guilds: 2, UniqueUsers: 2, Members: 3, TextChannels: 2, VoiceChannels: 1}
	if got != want {
		t.Errorf("CountGuilds() = %+v, want %+v", got, want)
	}
}
