package service

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thelux31/hiddendevsappforwhatever/internal/app/dispatch"
	"github.com/thelux31/hiddendevsappforwhatever/internal/domain"
	"github.com/thelux31/hiddendevsappforwhatever/internal/testutil"
)

func TestKickDeniedNeverCallsModerator(t *testing.T) {
	mod := &testutil.Moderator{}
	r := newRig(t, NewModerationService(mod))

	res := r.run("kick", "mod", map[string]any{"member": "42"})

	assert.Equal(t, dispatch.Completed, res.State)
	assert.Empty(t, mod.Actions)
	calls := r.tr.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, testutil.CallRespond, calls[0].Kind)
	assert.True(t, calls[0].Private)
	assert.Contains(t, calls[0].Content, "permission to kick members")
}

func TestKickDeniedBeforeArgumentChecks(t *testing.T) {
	mod := &testutil.Moderator{}
	r := newRig(t, NewModerationService(mod))

	res := r.run("kick", "nobody", map[string]any{"member": "42", "reason": strings.Repeat("x", 600)})

	assert.Equal(t, dispatch.Completed, res.State)
	assert.Empty(t, mod.Actions)
	calls := r.tr.Calls()
	require.Len(t, calls, 1)
	assert.True(t, calls[0].Private)
	assert.Contains(t, calls[0].Content, "permission to kick members")
	assert.NotContains(t, calls[0].Content, "reason")
}

func TestModerationSuccess(t *testing.T) {
	cases := []struct {
		cmd  string
		cap  dispatch.Capability
		args map[string]any
		want domain.ModerationAction
		text string
	}{
		{
			cmd:  "kick",
			cap:  dispatch.CapKickMembers,
			args: map[string]any{"member": "42", "reason": "spam"},
			want: domain.ModerationAction{GuildID: "g1", TargetID: "42", Kind: domain.ActionKick, Reason: "spam"},
			text: "<@42> was kicked. Reason: spam",
		},
		{
			cmd:  "ban",
			cap:  dispatch.CapBanMembers,
			args: map[string]any{"member": "42"},
			want: domain.ModerationAction{GuildID: "g1", TargetID: "42", Kind: domain.ActionBan, Reason: "No reason provided"},
			text: "<@42> was banned. Reason: No reason provided",
		},
		{
			cmd:  "timeout",
			cap:  dispatch.CapModerateMembers,
			args: map[string]any{"member": "42"},
			want: domain.ModerationAction{GuildID: "g1", TargetID: "42", Kind: domain.ActionTimeout, Reason: "No reason provided", Duration: 5 * time.Minute},
			text: "<@42> was timed out for 5 minutes. Reason: No reason provided",
		},
		{
			cmd:  "timeout",
			cap:  dispatch.CapAdministrator,
			args: map[string]any{"member": "42", "duration": int64(60), "reason": "cool off"},
			want: domain.ModerationAction{GuildID: "g1", TargetID: "42", Kind: domain.ActionTimeout, Reason: "cool off", Duration: time.Hour},
			text: "<@42> was timed out for 60 minutes. Reason: cool off",
		},
	}
	for _, tc := range cases {
		t.Run(tc.cmd, func(t *testing.T) {
			mod := &testutil.Moderator{}
			r := newRig(t, NewModerationService(mod))
			r.caps.ByCaller["mod"] = dispatch.NewCapabilitySet(tc.cap)

			res := r.run(tc.cmd, "mod", tc.args)

			require.NoError(t, res.Err)
			require.Equal(t, []domain.ModerationAction{tc.want}, mod.Actions)
			calls := r.tr.Calls()
			require.Len(t, calls, 1)
			assert.Equal(t, tc.text, calls[0].Content)
			assert.False(t, calls[0].Private)
		})
	}
}

func TestModerationFailureReportsReason(t *testing.T) {
	mod := &testutil.Moderator{Err: &dispatch.ExternalServiceError{
		Service: "discord",
		Reason:  "Missing Permissions",
		Err:     assert.AnError,
	}}
	r := newRig(t, NewModerationService(mod))
	r.caps.ByCaller["mod"] = dispatch.NewCapabilitySet(dispatch.CapBanMembers)

	res := r.run("ban", "mod", map[string]any{"member": "42"})

	assert.Equal(t, dispatch.Completed, res.State)
	calls := r.tr.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "Could not ban <@42>. Error: Missing Permissions", calls[0].Content)
	assert.True(t, calls[0].Private)
	assert.NotContains(t, calls[0].Content, assert.AnError.Error())
}

func TestModerationFailureHidesRawError(t *testing.T) {
	mod := &testutil.Moderator{Err: assert.AnError}
	r := newRig(t, NewModerationService(mod))
	r.caps.ByCaller["mod"] = dispatch.NewCapabilitySet(dispatch.CapKickMembers)

	r.run("kick", "mod", map[string]any{"member": "42"})

	calls := r.tr.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "Could not kick <@42>. Error: the request was rejected", calls[0].Content)
}

func TestTimeoutDurationBounds(t *testing.T) {
	mod := &testutil.Moderator{}
	r := newRig(t, NewModerationService(mod))
	r.caps.ByCaller["mod"] = dispatch.NewCapabilitySet(dispatch.CapModerateMembers)

	r.run("timeout", "mod", map[string]any{"member": "42", "duration": int64(0)})

	assert.Empty(t, mod.Actions)
	calls := r.tr.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "Option `duration` must be at least 1.", calls[0].Content)
}
