package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/thelux31/hiddendevsappforwhatever/internal/app/dispatch"
	"github.com/thelux31/hiddendevsappforwhatever/internal/domain"
)

const (
	defaultReason          = "No reason provided"
	defaultTimeoutMinutes  = 5
	maxTimeoutMinutes      = 28 * 24 * 60
	maxReasonLength        = 512
	unknownModerationError = "the request was rejected"
)

type ModerationService struct {
	mod Moderator
}

func NewModerationService(m Moderator) *ModerationService { return &ModerationService{mod: m} }

func memberParam(verb string) dispatch.Param {
	return dispatch.Param{Name: "member", Description: "Member to " + verb, Type: dispatch.ParamUser, Required: true}
}

func reasonParam(verb string) dispatch.Param {
	return dispatch.Param{
		Name:        "reason",
		Description: "Reason for " + verb,
		Type:        dispatch.ParamString,
		Default:     defaultReason,
		MaxLength:   maxReasonLength,
	}
}

func (s *ModerationService) Commands() []dispatch.Descriptor {
	return []dispatch.Descriptor{
		{
			Name:        "kick",
			Description: "Kick a member from the server",
			Params:      []dispatch.Param{memberParam("kick"), reasonParam("kick")},
			Requires:    dispatch.CapKickMembers,
			Handler:     s.kick,
		},
		{
			Name:        "ban",
			Description: "Ban a member from the server",
			Params:      []dispatch.Param{memberParam("ban"), reasonParam("ban")},
			Requires:    dispatch.CapBanMembers,
			Handler:     s.ban,
		},
		{
			Name:        "timeout",
			Description: "Temporarily mute a member",
			Params: []dispatch.Param{
				memberParam("timeout"),
				{
					Name:        "duration",
					Description: "Duration in minutes",
					Type:        dispatch.ParamInteger,
					Default:     int64(defaultTimeoutMinutes),
					MinValue:    dispatch.Int64(1),
					MaxValue:    dispatch.Int64(maxTimeoutMinutes),
				},
				reasonParam("timeout"),
			},
			Requires: dispatch.CapModerateMembers,
			Handler:  s.timeout,
		},
	}
}

func (s *ModerationService) kick(ctx context.Context, ix *dispatch.Interaction) error {
	return s.apply(ctx, ix, domain.ActionKick, 0)
}

func (s *ModerationService) ban(ctx context.Context, ix *dispatch.Interaction) error {
	return s.apply(ctx, ix, domain.ActionBan, 0)
}

func (s *ModerationService) timeout(ctx context.Context, ix *dispatch.Interaction) error {
	minutes := ix.Args.Int("duration")
	return s.apply(ctx, ix, domain.ActionTimeout, time.Duration(minutes)*time.Minute)
}

func (s *ModerationService) apply(ctx context.Context, ix *dispatch.Interaction, kind domain.ActionKind, d time.Duration) error {
	action := domain.ModerationAction{
		GuildID:  ix.GuildID,
		TargetID: ix.Args.User("member"),
		Kind:     kind,
		Reason:   ix.Args.String("reason"),
		Duration: d,
	}
	mention := "<@" + action.TargetID + ">"

	if err := s.mod.Moderate(ctx, action); err != nil {
		ix.Log.Warn("moderation action failed", "action", string(kind), "target", action.TargetID, "err", err)
		why := unknownModerationError
		var ee *dispatch.ExternalServiceError
		if errors.As(err, &ee) && ee.Reason != "" {
			why = ee.Reason
		}
		return ix.Response.SendPrimary(ctx, fmt.Sprintf("Could not %s %s. Error: %s", kind, mention, why), true)
	}

	ix.Log.Info("moderation action applied", "action", string(kind), "target", action.TargetID)
	return ix.Response.SendPrimary(ctx, fmt.Sprintf("%s was %s. Reason: %s", mention, pastTense(action), action.Reason), false)
}

func pastTense(a domain.ModerationAction) string {
	switch a.Kind {
	case domain.ActionKick:
		return "kicked"
	case domain.ActionBan:
		return "banned"
	case domain.ActionTimeout:
		return fmt.Sprintf("timed out for %d minutes", int64(a.Duration/time.Minute))
	}
	return string(a.Kind)
}
