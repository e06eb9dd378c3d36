package about

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// Stats are the counts shown in the summary fields. In a sharded process they
// cover a single shard.
type Stats struct {
	Guilds        int
	UniqueUsers   int
	Members       int
	TextChannels  int
	VoiceChannels int
}

type ShardInfo struct {
	ID    int
	Total int
}

// Bot is the part of the running bot the about command reads.
type Bot interface {
	SelfUser() *discordgo.User
	Application(ctx context.Context) (*discordgo.Application, error)
	User(ctx context.Context, userID string) (*discordgo.User, error)
	// SelfColor is the bot member's display color in the guild, 0 if none.
	SelfColor(guildID string) int
	// Shard reports false when the process is not sharded.
	Shard() (ShardInfo, bool)
	Stats() Stats
	TotalGuilds(ctx context.Context) int
}

// GuildCounter sums guilds across every shard of the fleet.
type GuildCounter interface {
	TotalGuilds(ctx context.Context) int
}

// SessionBot adapts a discordgo session to Bot.
type SessionBot struct {
	s     *discordgo.Session
	fleet GuildCounter
}

func NewSessionBot(s *discordgo.Session, fleet GuildCounter) *SessionBot {
	return &SessionBot{s: s, fleet: fleet}
}

func (b *SessionBot) SelfUser() *discordgo.User {
	if b.s.State == nil || b.s.State.User == nil {
		return &discordgo.User{}
	}
	return b.s.State.User
}

// Application fetches the bot's own application. The session client has no
// per-call context, so ctx only bounds how long the caller waits.
func (b *SessionBot) Application(ctx context.Context) (*discordgo.Application, error) {
	return fetchApplication(ctx, func() (*discordgo.Application, error) {
		return b.s.Application("@me")
	})
}

func fetchApplication(ctx context.Context, fetch func() (*discordgo.Application, error)) (*discordgo.Application, error) {
	type result struct {
		app *discordgo.Application
		err error
	}

	done := make(chan result, 1)
	go func() {
		app, err := fetch()
		done <- result{app: app, err: err}
	}()

	select {
	case r := <-done:
		return r.app, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// User looks the user up in the guild member cache before asking the API.
func (b *SessionBot) User(ctx context.Context, userID string) (*discordgo.User, error) {
	if u := b.cachedUser(userID); u != nil {
		return u, nil
	}
	return b.s.User(userID, discordgo.WithContext(ctx))
}

func (b *SessionBot) cachedUser(userID string) *discordgo.User {
	st := b.s.State
	if st == nil || userID == "" {
		return nil
	}
	st.RLock()
	defer st.RUnlock()
	for _, g := range st.Guilds {
		for _, m := range g.Members {
			if m.User != nil && m.User.ID == userID {
				return m.User
			}
		}
	}
	return nil
}

func (b *SessionBot) SelfColor(guildID string) int {
	st := b.s.State
	if guildID == "" || st == nil || st.User == nil {
		return 0
	}

	member, err := st.Member(guildID, st.User.ID)
	if err != nil {
		return 0
	}
	guild, err := st.Guild(guildID)
	if err != nil {
		return 0
	}

	st.RLock()
	defer st.RUnlock()
	return MemberColor(guild.Roles, member.Roles)
}

// MemberColor is the color of the highest colored role the member holds.
func MemberColor(guildRoles []*discordgo.Role, memberRoles []string) int {
	held := make(map[string]struct{}, len(memberRoles))
	for _, id := range memberRoles {
		held[id] = struct{}{}
	}

	var top *discordgo.Role
	for _, r := range guildRoles {
		if _, ok := held[r.ID]; !ok || r.Color == 0 {
			continue
		}
		if top == nil || r.Position > top.Position {
			top = r
		}
	}
	if top == nil {
		return 0
	}
	return top.Color
}

func (b *SessionBot) Shard() (ShardInfo, bool) {
	if b.s.ShardCount <= 1 {
		return ShardInfo{}, false
	}
	return ShardInfo{ID: b.s.ShardID, Total: b.s.ShardCount}, true
}

func (b *SessionBot) Stats() Stats {
	if b.s.State == nil {
		return Stats{}
	}
	b.s.State.RLock()
	defer b.s.State.RUnlock()
	return CountGuilds(b.s.State.Guilds)
}

func (b *SessionBot) TotalGuilds(ctx context.Context) int {
	if b.fleet != nil {
		return b.fleet.TotalGuilds(ctx)
	}
	return b.Stats().Guilds
}

// CountGuilds tallies users and channels over the cached guilds.
func CountGuilds(guilds []*discordgo.Guild) Stats {
	st := Stats{Guilds: len(guilds)}
	users := make(map[string]struct{})
	for _, g := range guilds {
		st.Members += len(g.Members)
		for _, m := range g.Members {
			if m.User != nil {
				users[m.User.ID] = struct{}{}
			}
		}
		for _, ch := range g.Channels {
			switch ch.Type {
			case discordgo.ChannelTypeGuildText, discordgo.ChannelTypeGuildNews:
				st.TextChannels++
			case discordgo.ChannelTypeGuildVoice, discordgo.ChannelTypeGuildStageVoice:
				st.VoiceChannels++
			}
		}
	}
	st.UniqueUsers = len(users)
	return st
}
