package help

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/hxnx/aboutbot/internal/features/client"
)

const helpColor = 0xC8A2C8

// Entry describes one command in the help listing.
type Entry struct {
	Name        string
	Description string
	OwnerOnly   bool
}

// BuildHelpEmbed lists every command, or only the one named by filter.
func BuildHelpEmbed(info *client.Info, botName string, entries []Entry, filter string) *discordgo.MessageEmbed {
	filter = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(filter), info.Prefix))

	var b strings.Builder
	shown := 0
	for _, e := range entries {
		if filter != "" && e.Name != filter {
			continue
		}
		if e.OwnerOnly && filter == "" {
			continue
		}
		fmt.Fprintf(&b, "`%s%s` - %s\n", info.Prefix, e.Name, e.Description)
		shown++
	}
	if shown == 0 {
		fmt.Fprintf(&b, "%s No command named `%s`.\n", info.Warning, filter)
	}

	if owner := info.OwnerMention(); owner != "" {
		fmt.Fprintf(&b, "\nFor additional help, contact %s", owner)
		if info.ServerInvite != "" {
			fmt.Fprintf(&b, " or join %s", info.ServerInvite)
		}
	} else if info.ServerInvite != "" {
		fmt.Fprintf(&b, "\nFor additional help, join %s", info.ServerInvite)
	}

	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%s commands", botName),
		Description: strings.TrimSpace(b.String()),
		Color:       helpColor,
	}
}
