package client

import (
	"time"

	"github.com/hxnx/aboutbot/config"
)

// Info is the command client configuration every command can read.
type Info struct {
	Prefix       string
	HelpWord     string
	OwnerID      string
	ServerInvite string
	Success      string
	Warning      string
	StartTime    time.Time
}

func New(cfg *config.Config, startTime time.Time) *Info {
	return &Info{
		Prefix:       cfg.CommandPrefix,
		HelpWord:     cfg.HelpWord,
		OwnerID:      cfg.OwnerID,
		ServerInvite: cfg.ServerInvite,
		Success:      cfg.SuccessEmoji,
		Warning:      cfg.WarningEmoji,
		StartTime:    startTime,
	}
}

// OwnerMention returns the owner as a mention, or "" when no owner is configured.
func (c *Info) OwnerMention() string {
	if c.OwnerID == "" {
		return ""
	}
	return "<@" + c.OwnerID + ">"
}
