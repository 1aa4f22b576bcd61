package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/thelux31/hiddendevsappforwhatever/internal/app/dispatch"
	"github.com/thelux31/hiddendevsappforwhatever/internal/domain"
)

func (c *Client) Moderate(ctx context.Context, a domain.ModerationAction) error {
	var err error
	switch a.Kind {
	case domain.ActionKick:
		err = c.s.GuildMemberDeleteWithReason(a.GuildID, a.TargetID, a.Reason, discordgo.WithContext(ctx))
	case domain.ActionBan:
		err = c.s.GuildBanCreateWithReason(a.GuildID, a.TargetID, a.Reason, 0, discordgo.WithContext(ctx))
	case domain.ActionTimeout:
		until := time.Now().Add(a.Duration)
		err = c.s.GuildMemberTimeout(a.GuildID, a.TargetID, &until,
			discordgo.WithContext(ctx), discordgo.WithAuditLogReason(a.Reason))
	default:
		return &dispatch.ExternalServiceError{
			Service: "discord",
			Reason:  "unsupported action",
			Err:     fmt.Errorf("moderation kind %q", a.Kind),
		}
	}
	if err != nil {
		return &dispatch.ExternalServiceError{Service: "discord", Reason: restReason(err), Err: err}
	}
	return nil
}

// restReason turns a discordgo error into a short text fit for the caller:
// the API's own message ("Missing Permissions") or the HTTP status text.
func restReason(err error) string {
	var rerr *discordgo.RESTError
	if errors.As(err, &rerr) {
		if rerr.Message != nil && rerr.Message.Message != "" {
			return rerr.Message.Message
		}
		if rerr.Response != nil {
			return http.StatusText(rerr.Response.StatusCode)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "request timed out"
	}
	return "request failed"
}
