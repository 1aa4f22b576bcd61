package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"github.com/thelux31/hiddendevsappforwhatever/internal/app/dispatch"
)

// user mentions ping, @everyone/@here and roles in caller-supplied text do not
var allowedMentions = &discordgo.MessageAllowedMentions{
	Parse: []discordgo.AllowedMentionType{discordgo.AllowedMentionTypeUsers},
}

func interactionOf(t dispatch.Target) *discordgo.Interaction {
	return &discordgo.Interaction{
		ID:        t.InteractionID,
		AppID:     t.AppID,
		Token:     t.Token,
		ChannelID: t.ChannelID,
	}
}

func flagsFor(private bool) discordgo.MessageFlags {
	if private {
		return discordgo.MessageFlagsEphemeral
	}
	return 0
}

func (c *Client) Respond(ctx context.Context, t dispatch.Target, msg dispatch.Message) error {
	return c.s.InteractionRespond(interactionOf(t), &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content:         msg.Content,
			Flags:           flagsFor(msg.Private),
			AllowedMentions: allowedMentions,
		},
	}, discordgo.WithContext(ctx))
}

// Defer acknowledges without content (for work longer than the ack window).
func (c *Client) Defer(ctx context.Context, t dispatch.Target, private bool) error {
	return c.s.InteractionRespond(interactionOf(t), &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: flagsFor(private)},
	}, discordgo.WithContext(ctx))
}

func (c *Client) EditResponse(ctx context.Context, t dispatch.Target, content string) error {
	_, err := c.s.InteractionResponseEdit(interactionOf(t), &discordgo.WebhookEdit{
		Content:         &content,
		AllowedMentions: allowedMentions,
	}, discordgo.WithContext(ctx))
	return err
}

func (c *Client) Followup(ctx context.Context, t dispatch.Target, msg dispatch.Message) error {
	_, err := c.s.FollowupMessageCreate(interactionOf(t), true, &discordgo.WebhookParams{
		Content:         msg.Content,
		Flags:           flagsFor(msg.Private),
		AllowedMentions: allowedMentions,
	}, discordgo.WithContext(ctx))
	return err
}
