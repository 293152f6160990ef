package core

import (
	"context"
	"log/slog"

	"github.com/bwmarrin/discordgo"
)

// InteractionContext wraps a Discord interaction with the fields handlers use
type InteractionContext struct {
	Context     context.Context
	Interaction *discordgo.InteractionCreate
	Logger      *slog.Logger

	UserID    string
	UserName  string
	GuildID   string
	ChannelID string

	values map[string]string
}

// NewInteractionContext creates an InteractionContext from a Discord interaction
func NewInteractionContext(ctx context.Context, i *discordgo.InteractionCreate, logger *slog.Logger) *InteractionContext {
	if logger == nil {
		logger = slog.Default()
	}
	ic := &InteractionContext{
		Context:     ctx,
		Interaction: i,
		GuildID:     i.GuildID,
		ChannelID:   i.ChannelID,
		values:      make(map[string]string),
	}

	// Guild interactions carry Member, DMs carry User
	switch {
	case i.Member != nil && i.Member.User != nil:
		ic.UserID = i.Member.User.ID
		ic.UserName = i.Member.User.Username
	case i.User != nil:
		ic.UserID = i.User.ID
		ic.UserName = i.User.Username
	}

	ic.Logger = logger.With("user_id", ic.UserID, "interaction_id", i.ID)
	ic.parse()
	return ic
}

func (ic *InteractionContext) parse() {
	switch ic.Interaction.Type {
	case discordgo.InteractionApplicationCommand:
		ic.parseSubcommand(ic.Interaction.ApplicationCommandData().Options)
	case discordgo.InteractionModalSubmit:
		for _, row := range ic.Interaction.ModalSubmitData().Components {
			ic.collectInputs(row)
		}
	}
}

func (ic *InteractionContext) parseSubcommand(options []*discordgo.ApplicationCommandInteractionDataOption) {
	for _, opt := range options {
		if opt.Type == discordgo.ApplicationCommandOptionSubCommand {
			ic.values["subcommand"] = opt.Name
			return
		}
	}
}

func (ic *InteractionContext) collectInputs(c discordgo.MessageComponent) {
	switch v := c.(type) {
	case *discordgo.ActionsRow:
		for _, inner := range v.Components {
			ic.collectInputs(inner)
		}
	case *discordgo.TextInput:
		ic.values[v.CustomID] = v.Value
	}
}

// IsCommand reports whether this is a slash command
func (ic *InteractionContext) IsCommand() bool {
	return ic.Interaction.Type == discordgo.InteractionApplicationCommand
}

// IsComponent reports whether this is a button or select interaction
func (ic *InteractionContext) IsComponent() bool {
	return ic.Interaction.Type == discordgo.InteractionMessageComponent
}

// IsModal reports whether this is a modal submit
func (ic *InteractionContext) IsModal() bool {
	return ic.Interaction.Type == discordgo.InteractionModalSubmit
}

// GetCommandName returns the slash command name
func (ic *InteractionContext) GetCommandName() string {
	if !ic.IsCommand() {
		return ""
	}
	return ic.Interaction.ApplicationCommandData().Name
}

// GetSubcommand returns the invoked subcommand, if any
func (ic *InteractionContext) GetSubcommand() string {
	return ic.values["subcommand"]
}

// GetCustomID returns the custom ID of a component or modal interaction
func (ic *InteractionContext) GetCustomID() string {
	switch {
	case ic.IsComponent():
		return ic.Interaction.MessageComponentData().CustomID
	case ic.IsModal():
		return ic.Interaction.ModalSubmitData().CustomID
	}
	return ""
}

// ParsedCustomID parses GetCustomID
func (ic *InteractionContext) ParsedCustomID() (*CustomID, error) {
	return ParseCustomID(ic.GetCustomID())
}

// ModalValue returns the submitted value of a modal text input
func (ic *InteractionContext) ModalValue(inputID string) string {
	if !ic.IsModal() {
		return ""
	}
	return ic.values[inputID]
}
