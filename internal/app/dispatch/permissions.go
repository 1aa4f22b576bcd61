package dispatch

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Capability is a named permission a caller may hold.
type Capability string

const (
	CapNone            Capability = ""
	CapKickMembers     Capability = "kick_members"
	CapBanMembers      Capability = "ban_members"
	CapModerateMembers Capability = "moderate_members"
	CapAdministrator   Capability = "administrator"
)

// verbs used in denial notices
var capabilityVerbs = map[Capability]string{
	CapKickMembers:     "kick",
	CapBanMembers:      "ban",
	CapModerateMembers: "timeout",
}

type CapabilitySet map[Capability]struct{}

func NewCapabilitySet(caps ...Capability) CapabilitySet {
	set := make(CapabilitySet, len(caps))
	for _, c := range caps {
		set[c] = struct{}{}
	}
	return set
}

func (s CapabilitySet) Has(c Capability) bool {
	_, ok := s[c]
	return ok
}

func (s CapabilitySet) String() string {
	names := make([]string, 0, len(s))
	for c := range s {
		names = append(names, string(c))
	}
	sort.Strings(names)
	return "[" + strings.Join(names, " ") + "]"
}

// CapabilitySource resolves what a caller may do in a guild.
type CapabilitySource interface {
	CapabilitiesOf(ctx context.Context, callerID, guildID string) (CapabilitySet, error)
}

// Decision is the outcome of a permission check. Reason is set when denied.
type Decision struct {
	Allowed bool
	Reason  string
}

// Authorize is the permission gate. It is pure: administrator satisfies any
// requirement and an empty requirement is always allowed.
func Authorize(caps CapabilitySet, required Capability) Decision {
	if required == CapNone || caps.Has(required) || caps.Has(CapAdministrator) {
		return Decision{Allowed: true}
	}
	what := "use this command"
	if verb, ok := capabilityVerbs[required]; ok {
		what = verb + " members"
	}
	return Decision{
		Reason: fmt.Sprintf("You do not have permission to %s. (missing %s capability)", what, required),
	}
}
