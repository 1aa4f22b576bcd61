package domain

import "time"

type ActionKind string

const (
	ActionKick    ActionKind = "kick"
	ActionBan     ActionKind = "ban"
	ActionTimeout ActionKind = "timeout"
)

// ModerationAction is one requested action against a member. It lives only
// for the duration of a command and is never stored.
type ModerationAction struct {
	GuildID  string
	TargetID string
	Kind     ActionKind
	Reason   string
	Duration time.Duration // timeout only
}
