package discord

import (
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/thelux31/hiddendevsappforwhatever/internal/app/dispatch"
)

// eventFromInteraction converts a slash command interaction; other
// interaction types (components, autocomplete, modals) are not commands.
func eventFromInteraction(ic *discordgo.InteractionCreate, now time.Time) (dispatch.Event, bool) {
	if ic == nil || ic.Interaction == nil || ic.Type != discordgo.InteractionApplicationCommand {
		return dispatch.Event{}, false
	}
	data := ic.ApplicationCommandData()
	return dispatch.Event{
		InteractionID: ic.ID,
		AppID:         ic.AppID,
		Token:         ic.Token,
		GuildID:       ic.GuildID,
		ChannelID:     ic.ChannelID,
		CallerID:      callerID(ic),
		Command:       data.Name,
		RawArgs:       rawArgs(data.Options),
		ReceivedAt:    now,
	}, true
}

func callerID(ic *discordgo.InteractionCreate) string {
	if ic.Member != nil && ic.Member.User != nil {
		return ic.Member.User.ID
	}
	if ic.User != nil {
		return ic.User.ID
	}
	return ""
}

// rawArgs flattens top-level options into plain Go values: strings,
// int64, bool, and user IDs as strings.
func rawArgs(opts []*discordgo.ApplicationCommandInteractionDataOption) map[string]any {
	out := make(map[string]any, len(opts))
	for _, o := range opts {
		switch o.Type {
		case discordgo.ApplicationCommandOptionString:
			out[o.Name] = o.StringValue()
		case discordgo.ApplicationCommandOptionInteger:
			out[o.Name] = o.IntValue()
		case discordgo.ApplicationCommandOptionBoolean:
			out[o.Name] = o.BoolValue()
		case discordgo.ApplicationCommandOptionUser:
			out[o.Name] = o.UserValue(nil).ID
		default:
			out[o.Name] = o.Value
		}
	}
	return out
}

func messageEvent(m *discordgo.MessageCreate) (dispatch.MessageEvent, bool) {
	if m == nil || m.Message == nil || m.Author == nil || m.Author.Bot {
		return dispatch.MessageEvent{}, false
	}
	return dispatch.MessageEvent{
		GuildID:   m.GuildID,
		ChannelID: m.ChannelID,
		AuthorID:  m.Author.ID,
		Content:   m.Content,
	}, true
}
