package core

import (
	"github.com/bwmarrin/discordgo"
)

// Handler processes one kind of interaction
type Handler interface {
	// CanHandle determines if this handler should process the interaction
	CanHandle(ctx *InteractionContext) bool

	// Handle processes the interaction and returns a result
	Handle(ctx *InteractionContext) (*HandlerResult, error)
}

// HandlerFunc allows functions to implement the Handler interface
type HandlerFunc func(ctx *InteractionContext) (*HandlerResult, error)

// CanHandle for HandlerFunc always returns true
func (f HandlerFunc) CanHandle(*InteractionContext) bool {
	return true
}

// Handle calls the function
func (f HandlerFunc) Handle(ctx *InteractionContext) (*HandlerResult, error) {
	return f(ctx)
}

// HandlerResult is what a handler wants sent back to Discord
type HandlerResult struct {
	Response *Response

	// Modal opens a form instead of sending a message
	Modal *Modal
}

// Response is a message reply
type Response struct {
	Content    string
	Embeds     []*discordgo.MessageEmbed
	Components []discordgo.MessageComponent
	Ephemeral  bool

	// Update replaces the message the component was attached to
	Update bool
}

// Modal is a form with text inputs
type Modal struct {
	CustomID   string
	Title      string
	Components []discordgo.MessageComponent
}

// NewResponse creates a new response with the given content
func NewResponse(content string) *Response {
	return &Response{Content: content}
}

// NewEphemeralResponse creates a response only the invoking user sees
func NewEphemeralResponse(content string) *Response {
	return &Response{Content: content, Ephemeral: true}
}

// NewEmbedResponse creates a response with an embed
func NewEmbedResponse(embed *discordgo.MessageEmbed) *Response {
	return &Response{Embeds: []*discordgo.MessageEmbed{embed}}
}

// WithComponents sets the components
func (r *Response) WithComponents(components ...discordgo.MessageComponent) *Response {
	r.Components = components
	return r
}

// AsEphemeral marks the response ephemeral
func (r *Response) AsEphemeral() *Response {
	r.Ephemeral = true
	return r
}

// AsUpdate sets the response to update the original message
func (r *Response) AsUpdate() *Response {
	r.Update = true
	return r
}

// Reply wraps a response in a result
func Reply(r *Response) *HandlerResult {
	return &HandlerResult{Response: r}
}

// OpenModal wraps a modal in a result
func OpenModal(m *Modal) *HandlerResult {
	return &HandlerResult{Modal: m}
}
