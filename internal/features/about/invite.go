package about

import (
	"context"
	"errors"
	"net/url"
	"strconv"

	"github.com/hxnx/aboutbot/internal/logger"
)

const oauthAuthorizeURL = "https://discord.com/oauth2/authorize"

// InviteURL builds the OAuth2 link that adds the application as a bot with perms.
func InviteURL(applicationID string, perms int64) string {
	q := url.Values{}
	q.Set("client_id", applicationID)
	q.Set("permissions", strconv.FormatInt(perms, 10))
	q.Set("scope", "bot applications.commands")
	return oauthAuthorizeURL + "?" + q.Encode()
}

// invite resolves the invite link on the first call only. A failed lookup
// leaves it empty for the rest of the process.
func (c *Command) invite(ctx context.Context, bot Bot) string {
	c.inviteOnce.Do(func() {
		ctx, cancel := context.WithTimeout(ctx, applicationTimeout)
		defer cancel()

		app, err := bot.Application(ctx)
		if err == nil && app == nil {
			err = errors.New("empty application response")
		}
		if err != nil {
			logger.Component("oauth2").Error("could not generate invite link", "err", err)
			return
		}
		if app.BotPublic {
			c.inviteLink = InviteURL(app.ID, c.opts.Permissions)
		}
	})
	return c.inviteLink
}
