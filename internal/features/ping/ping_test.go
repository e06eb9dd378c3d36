package ping

import (
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
)

func sectionLines(t *testing.T, comps []discordgo.MessageComponent) []string {
	t.Helper()

	container, ok := comps[0].(discordgo.Container)
	if !ok {
		t.Fatalf("first component is %T, want Container", comps[0])
	}
	for _, c := range container.Components {
		section, ok := c.(discordgo.Section)
		if !ok {
			continue
		}
		var lines []string
		for _, l := range section.Components {
			lines = append(lines, l.(discordgo.TextDisplay).Content)
		}
		return lines
	}
	t.Fatal("no section in ping panel")
	return nil
}

func TestBuildPingComponentsV2(t *testing.T) {
	t.Parallel()

	base := Status{
		APILatency:     42 * time.Millisecond,
		GatewayLatency: 40 * time.Millisecond,
		Guilds:         1234,
		Shards:         2,
		Uptime:         90 * time.Minute,
		MemoryBytes:    12_000_000,
		At:             time.Unix(1_800_000_000, 0),
	}

	tests := []struct {
		name        string
		commandsRun int64
		wantLines   int
		wantLast    string
	}{
		{name: "without usage log", commandsRun: -1, wantLines: 4, wantLast: "**Uptime:** 1h30m0s • **Memory:** 12 MB"},
		{name: "with usage log", commandsRun: 10500, wantLines: 5, wantLast: "**Commands run:** 10,500"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			st := base
			st.CommandsRun = tt.commandsRun

			lines := sectionLines(t, BuildPingComponentsV2(st))
			if len(lines) != tt.wantLines {
				t.Fatalf("got %d lines %q, want %d", len(lines), lines, tt.wantLines)
			}
			if lines[2] != "**Servers:** 1,234 • **Shards:** 2" {
				t.Errorf("servers line = %q", lines[2])
			}
			if got := lines[len(lines)-1]; got != tt.wantLast {
				t.Errorf("last line = %q, want %q", got, tt.wantLast)
			}
		})
	}
}
