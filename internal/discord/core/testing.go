package core

import (
	"sync"

	"github.com/bwmarrin/discordgo"
)

// RecordingAPI is an InteractionAPI that keeps every response for assertions
type RecordingAPI struct {
	mu        sync.Mutex
	Responses []*discordgo.InteractionResponse
	Err       error
}

// InteractionRespond implements InteractionAPI
func (r *RecordingAPI) InteractionRespond(_ *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.Responses = append(r.Responses, resp)
	return nil
}

// Last returns the most recent response or nil
func (r *RecordingAPI) Last() *discordgo.InteractionResponse {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Responses) == 0 {
		return nil
	}
	return r.Responses[len(r.Responses)-1]
}

func member(userID string) *discordgo.Member {
	return &discordgo.Member{User: &discordgo.User{ID: userID, Username: "user-" + userID}}
}

// NewTestCommand builds a slash command interaction from a guild member
func NewTestCommand(userID, name string, options ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		ID:      "interaction-" + name,
		Type:    discordgo.InteractionApplicationCommand,
		GuildID: "guild-1",
		Member:  member(userID),
		Data: discordgo.ApplicationCommandInteractionData{
			Name:    name,
			Options: options,
		},
	}}
}

// NewTestComponent builds a button interaction
func NewTestComponent(userID, customID string) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		ID:      "interaction-" + customID,
		Type:    discordgo.InteractionMessageComponent,
		GuildID: "guild-1",
		Member:  member(userID),
		Data: discordgo.MessageComponentInteractionData{
			CustomID:      customID,
			ComponentType: discordgo.ButtonComponent,
		},
	}}
}

// NewTestModalSubmit builds a modal submit carrying the given input values
func NewTestModalSubmit(userID, customID string, values map[string]string) *discordgo.InteractionCreate {
	rows := make([]discordgo.MessageComponent, 0, len(values))
	for id, v := range values {
		rows = append(rows, &discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			&discordgo.TextInput{CustomID: id, Value: v},
		}})
	}
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		ID:      "interaction-" + customID,
		Type:    discordgo.InteractionModalSubmit,
		GuildID: "guild-1",
		Member:  member(userID),
		Data: discordgo.ModalSubmitInteractionData{
			CustomID:   customID,
			Components: rows,
		},
	}}
}
