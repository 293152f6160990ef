package core

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dnderr "github.com/KirkDiggler/shipyard-negotiation/internal/errors"
)

type stubHandler struct {
	canHandle bool
	result    *HandlerResult
	err       error
	called    bool
}

func (m *stubHandler) CanHandle(*InteractionContext) bool { return m.canHandle }

func (m *stubHandler) Handle(*InteractionContext) (*HandlerResult, error) {
	m.called = true
	return m.result, m.err
}

func TestPipeline_FirstAcceptingHandlerWins(t *testing.T) {
	p := NewPipeline(nil)
	skipped := &stubHandler{}
	first := &stubHandler{canHandle: true, result: Reply(NewResponse("one"))}
	second := &stubHandler{canHandle: true, result: Reply(NewResponse("two"))}
	p.Register(skipped, first, second)
	assert.Equal(t, 3, p.HandlerCount())

	api := &RecordingAPI{}
	require.NoError(t, p.Execute(context.Background(), api, NewTestCommand("u1", "shipyard")))

	assert.False(t, skipped.called)
	assert.True(t, first.called)
	assert.False(t, second.called)
	require.Len(t, api.Responses, 1)
	assert.Equal(t, "one", api.Last().Data.Content)
}

func TestPipeline_ErrorsBecomeUserMessages(t *testing.T) {
	p := NewPipeline(nil)
	p.Register(&stubHandler{canHandle: true, err: dnderr.IncompleteDialoguef("%d of %d answers", 2, 4)})

	api := &RecordingAPI{}
	require.NoError(t, p.Execute(context.Background(), api, NewTestCommand("u1", "shipyard")))

	resp := api.Last()
	require.NotNil(t, resp)
	assert.Equal(t, dnderr.UserMessage(dnderr.IncompleteDialoguef("any")), resp.Data.Content)
	assert.Equal(t, discordgo.MessageFlagsEphemeral, resp.Data.Flags)
	assert.NotContains(t, resp.Data.Content, "2 of 4")
}

func TestPipeline_MiddlewareOrder(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next Handler) Handler {
			return HandlerFunc(func(ctx *InteractionContext) (*HandlerResult, error) {
				order = append(order, name)
				return next.Handle(ctx)
			})
		}
	}

	p := NewPipeline(nil)
	p.Use(mark("outer"), mark("inner"))
	p.Register(&stubHandler{canHandle: true, result: Reply(NewResponse("ok"))})

	require.NoError(t, p.Execute(context.Background(), &RecordingAPI{}, NewTestCommand("u1", "shipyard")))
	assert.Equal(t, []string{"outer", "inner"}, order)
}

func TestPipeline_Unhandled(t *testing.T) {
	p := NewPipeline(nil)
	p.Register(&stubHandler{})

	api := &RecordingAPI{}
	require.NoError(t, p.Execute(context.Background(), api, NewTestComponent("u1", "other:thing")))
	require.NotNil(t, api.Last())
	assert.Equal(t, discordgo.MessageFlagsEphemeral, api.Last().Data.Flags)
}

func TestPipeline_SendFailure(t *testing.T) {
	p := NewPipeline(nil)
	p.Register(&stubHandler{canHandle: true, result: Reply(NewResponse("ok"))})

	err := p.Execute(context.Background(), &RecordingAPI{Err: errors.New("gateway closed")}, NewTestCommand("u1", "shipyard"))
	assert.ErrorContains(t, err, "gateway closed")
}

func TestRouter_Dispatch(t *testing.T) {
	r := NewRouter("shipyard")
	var hit string
	r.CommandFunc(func(*InteractionContext) (*HandlerResult, error) { hit = "cmd"; return nil, nil })
	r.ComponentFunc("claim", func(*InteractionContext) (*HandlerResult, error) { hit = "claim"; return nil, nil })
	r.ModalFunc("claim", func(ctx *InteractionContext) (*HandlerResult, error) {
		hit = "modal:" + ctx.ModalValue("statement")
		return nil, nil
	})
	h := r.Build()

	tests := []struct {
		name   string
		i      *discordgo.InteractionCreate
		accept bool
		want   string
	}{
		{"slash command", NewTestCommand("u", "shipyard"), true, "cmd"},
		{"other command", NewTestCommand("u", "dnd"), false, ""},
		{"button", NewTestComponent("u", "shipyard:claim:s1:DEFENDER"), true, "claim"},
		{"unknown action", NewTestComponent("u", "shipyard:nope"), false, ""},
		{"other domain", NewTestComponent("u", "combat:claim"), false, ""},
		{"modal", NewTestModalSubmit("u", "shipyard:claim:s1:DEFENDER", map[string]string{"statement": "mine"}), true, "modal:mine"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit = ""
			ctx := NewInteractionContext(context.Background(), tt.i, nil)
			require.Equal(t, tt.accept, h.CanHandle(ctx))
			if !tt.accept {
				return
			}
			_, err := h.Handle(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.want, hit)
		})
	}
}

func TestDiscordResponder(t *testing.T) {
	t.Run("modal", func(t *testing.T) {
		api := &RecordingAPI{}
		r := NewDiscordResponder(api, NewTestComponent("u", "shipyard:claim:s1"))
		require.NoError(t, r.Send(OpenModal(&Modal{CustomID: "shipyard:claim:s1", Title: "Claim"})))
		assert.Equal(t, discordgo.InteractionResponseModal, api.Last().Type)
		assert.Equal(t, "Claim", api.Last().Data.Title)
		assert.True(t, r.HasResponded())
		assert.Error(t, r.Send(Reply(NewResponse("again"))))
	})

	t.Run("update only applies to components", func(t *testing.T) {
		api := &RecordingAPI{}
		require.NoError(t, NewDiscordResponder(api, NewTestComponent("u", "shipyard:x")).Send(Reply(NewResponse("a").AsUpdate())))
		assert.Equal(t, discordgo.InteractionResponseUpdateMessage, api.Last().Type)

		require.NoError(t, NewDiscordResponder(api, NewTestCommand("u", "shipyard")).Send(Reply(NewResponse("b").AsUpdate())))
		assert.Equal(t, discordgo.InteractionResponseChannelMessageWithSource, api.Last().Type)
	})

	t.Run("nil result sends nothing", func(t *testing.T) {
		api := &RecordingAPI{}
		r := NewDiscordResponder(api, NewTestCommand("u", "shipyard"))
		require.NoError(t, r.Send(nil))
		assert.Empty(t, api.Responses)
		assert.False(t, r.HasResponded())
	})
}
