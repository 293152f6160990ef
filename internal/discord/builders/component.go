package builders

import (
	"github.com/bwmarrin/discordgo"

	"github.com/KirkDiggler/shipyard-negotiation/internal/discord/core"
)

// maxPerRow is Discord's limit of buttons in one action row
const maxPerRow = 5

// ComponentBuilder lays out buttons into action rows
type ComponentBuilder struct {
	rows       []discordgo.MessageComponent
	currentRow []discordgo.MessageComponent
	ids        *core.CustomIDBuilder
}

// NewComponentBuilder creates a new component builder
func NewComponentBuilder(ids *core.CustomIDBuilder) *ComponentBuilder {
	return &ComponentBuilder{ids: ids}
}

// Button adds a button whose custom ID is domain:action:target:args
func (b *ComponentBuilder) Button(label string, style discordgo.ButtonStyle, action, target string, args ...string) *ComponentBuilder {
	b.add(discordgo.Button{
		Label:    label,
		Style:    style,
		CustomID: b.ids.Button(action, target, args...),
	})
	return b
}

// PrimaryButton adds a primary styled button
func (b *ComponentBuilder) PrimaryButton(label, action, target string, args ...string) *ComponentBuilder {
	return b.Button(label, discordgo.PrimaryButton, action, target, args...)
}

// SuccessButton adds a success styled button
func (b *ComponentBuilder) SuccessButton(label, action, target string, args ...string) *ComponentBuilder {
	return b.Button(label, discordgo.SuccessButton, action, target, args...)
}

// DangerButton adds a danger styled button
func (b *ComponentBuilder) DangerButton(label, action, target string, args ...string) *ComponentBuilder {
	return b.Button(label, discordgo.DangerButton, action, target, args...)
}

// NewRow starts a new action row
func (b *ComponentBuilder) NewRow() *ComponentBuilder {
	if len(b.currentRow) > 0 {
		b.rows = append(b.rows, discordgo.ActionsRow{Components: b.currentRow})
		b.currentRow = nil
	}
	return b
}

// Build returns the built components
func (b *ComponentBuilder) Build() []discordgo.MessageComponent {
	b.NewRow()
	return b.rows
}

func (b *ComponentBuilder) add(component discordgo.MessageComponent) {
	if len(b.currentRow) >= maxPerRow {
		b.NewRow()
	}
	b.currentRow = append(b.currentRow, component)
}

// ParagraphInput is a required multi-line text input on its own row
func ParagraphInput(customID, label, placeholder string, maxLength int) discordgo.MessageComponent {
	return discordgo.ActionsRow{Components: []discordgo.MessageComponent{
		discordgo.TextInput{
			CustomID:    customID,
			Label:       label,
			Style:       discordgo.TextInputParagraph,
			Placeholder: placeholder,
			Required:    true,
			MaxLength:   maxLength,
		},
	}}
}
