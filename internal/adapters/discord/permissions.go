package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/thelux31/hiddendevsappforwhatever/internal/app/dispatch"
)

var capabilityBits = map[dispatch.Capability]int64{
	dispatch.CapKickMembers:     discordgo.PermissionKickMembers,
	dispatch.CapBanMembers:      discordgo.PermissionBanMembers,
	dispatch.CapModerateMembers: discordgo.PermissionModerateMembers,
	dispatch.CapAdministrator:   discordgo.PermissionAdministrator,
}

// CapabilitiesOf resolves guild-level permissions of a member: owner gets
// everything, otherwise the union of @everyone and the member's roles.
func (c *Client) CapabilitiesOf(ctx context.Context, callerID, guildID string) (dispatch.CapabilitySet, error) {
	if g, _ := c.s.State.Guild(guildID); g != nil && g.OwnerID == callerID {
		return capabilitiesFromPermissions(discordgo.PermissionAll), nil
	}

	m, err := c.s.State.Member(guildID, callerID)
	if err != nil || m == nil {
		m, err = c.s.GuildMember(guildID, callerID, discordgo.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("member %s: %w", callerID, err)
		}
	}

	var roles []*discordgo.Role
	if g, _ := c.s.State.Guild(guildID); g != nil && len(g.Roles) > 0 {
		roles = g.Roles
	} else {
		roles, err = c.s.GuildRoles(guildID, discordgo.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("roles of %s: %w", guildID, err)
		}
	}

	return capabilitiesFromPermissions(memberPermissions(guildID, m.Roles, roles)), nil
}

// memberPermissions ORs the @everyone role (its ID is the guild ID) with
// every role the member holds.
func memberPermissions(guildID string, memberRoles []string, roles []*discordgo.Role) int64 {
	has := make(map[string]struct{}, len(memberRoles)+1)
	has[guildID] = struct{}{}
	for _, rid := range memberRoles {
		has[rid] = struct{}{}
	}
	var perms int64
	for _, ro := range roles {
		if _, ok := has[ro.ID]; ok {
			perms |= ro.Permissions
		}
	}
	return perms
}

func capabilitiesFromPermissions(perms int64) dispatch.CapabilitySet {
	set := dispatch.NewCapabilitySet()
	for c, bit := range capabilityBits {
		if perms&bit != 0 {
			set[c] = struct{}{}
		}
	}
	return set
}

func permissionBit(c dispatch.Capability) int64 { return capabilityBits[c] }
