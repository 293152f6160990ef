package core

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// InteractionAPI is the part of *discordgo.Session used to answer interactions
type InteractionAPI interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
}

// DiscordResponder answers one interaction. Discord accepts a single initial
// response, so a second Send is an error.
type DiscordResponder struct {
	api         InteractionAPI
	interaction *discordgo.InteractionCreate
	responded   bool
}

// NewDiscordResponder creates a new Discord responder
func NewDiscordResponder(api InteractionAPI, i *discordgo.InteractionCreate) *DiscordResponder {
	return &DiscordResponder{api: api, interaction: i}
}

// Send converts the result into the matching interaction response
func (r *DiscordResponder) Send(result *HandlerResult) error {
	if result == nil || (result.Response == nil && result.Modal == nil) {
		return nil
	}
	if r.responded {
		return fmt.Errorf("interaction already responded to")
	}

	var resp *discordgo.InteractionResponse
	if result.Modal != nil {
		resp = &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseModal,
			Data: &discordgo.InteractionResponseData{
				CustomID:   result.Modal.CustomID,
				Title:      result.Modal.Title,
				Components: result.Modal.Components,
			},
		}
	} else {
		resp = r.buildMessage(result.Response)
	}

	if err := r.api.InteractionRespond(r.interaction.Interaction, resp); err != nil {
		return err
	}
	r.responded = true
	return nil
}

// HasResponded returns whether this responder has already sent a response
func (r *DiscordResponder) HasResponded() bool {
	return r.responded
}

func (r *DiscordResponder) buildMessage(response *Response) *discordgo.InteractionResponse {
	data := &discordgo.InteractionResponseData{
		Content:    response.Content,
		Embeds:     response.Embeds,
		Components: response.Components,
	}
	if response.Ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}

	kind := discordgo.InteractionResponseChannelMessageWithSource
	// Only component interactions have a message to update
	if response.Update && r.interaction.Type == discordgo.InteractionMessageComponent {
		kind = discordgo.InteractionResponseUpdateMessage
	}
	return &discordgo.InteractionResponse{Type: kind, Data: data}
}
