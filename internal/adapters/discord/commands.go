package discord

import (
	"github.com/bwmarrin/discordgo"

	"github.com/thelux31/hiddendevsappforwhatever/internal/app/dispatch"
)

var optionTypes = map[dispatch.ParamType]discordgo.ApplicationCommandOptionType{
	dispatch.ParamString:  discordgo.ApplicationCommandOptionString,
	dispatch.ParamInteger: discordgo.ApplicationCommandOptionInteger,
	dispatch.ParamBoolean: discordgo.ApplicationCommandOptionBoolean,
	dispatch.ParamUser:    discordgo.ApplicationCommandOptionUser,
}

// ApplicationCommands renders registry descriptors as slash command
// definitions. Commands that need a capability are hidden by default from
// members without the matching permission; the gate still checks.
func ApplicationCommands(descs []*dispatch.Descriptor) []*discordgo.ApplicationCommand {
	guildOnly := false
	out := make([]*discordgo.ApplicationCommand, 0, len(descs))
	for _, d := range descs {
		cmd := &discordgo.ApplicationCommand{
			Name:         d.Name,
			Description:  d.Description,
			DMPermission: &guildOnly,
		}
		if bit := permissionBit(d.Requires); bit != 0 {
			cmd.DefaultMemberPermissions = &bit
		}
		for _, p := range d.Params {
			cmd.Options = append(cmd.Options, applicationOption(p))
		}
		out = append(out, cmd)
	}
	return out
}

func applicationOption(p dispatch.Param) *discordgo.ApplicationCommandOption {
	opt := &discordgo.ApplicationCommandOption{
		Type:        optionTypes[p.Type],
		Name:        p.Name,
		Description: p.Description,
		Required:    p.Required,
		MaxLength:   p.MaxLength,
	}
	if p.MinValue != nil {
		v := float64(*p.MinValue)
		opt.MinValue = &v
	}
	if p.MaxValue != nil {
		opt.MaxValue = float64(*p.MaxValue)
	}
	return opt
}
