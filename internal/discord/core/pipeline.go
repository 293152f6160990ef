package core

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/bwmarrin/discordgo"
)

// Middleware wraps a handler
type Middleware func(Handler) Handler

// Pipeline routes each interaction to the first handler that accepts it
type Pipeline struct {
	mu         sync.RWMutex
	handlers   []Handler
	middleware []Middleware
	logger     *slog.Logger
}

// NewPipeline creates a new handler pipeline
func NewPipeline(logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{logger: logger}
}

// Use adds middleware applied to handlers registered after the call
func (p *Pipeline) Use(middleware ...Middleware) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.middleware = append(p.middleware, middleware...)
}

// Register adds handlers to the pipeline
func (p *Pipeline) Register(handlers ...Handler) {
	p.mu.Lock()
	defer p.mu.Unlock()

	chain := MiddlewareChain(p.middleware...)
	for _, h := range handlers {
		p.handlers = append(p.handlers, wrapped{accept: h, run: chain(h)})
	}
}

// HandlerCount returns the number of registered handlers
func (p *Pipeline) HandlerCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.handlers)
}

// Execute runs the pipeline for an interaction
func (p *Pipeline) Execute(ctx context.Context, api InteractionAPI, i *discordgo.InteractionCreate) error {
	ictx := NewInteractionContext(ctx, i, p.logger)
	responder := NewDiscordResponder(api, i)

	p.mu.RLock()
	handlers := make([]Handler, len(p.handlers))
	copy(handlers, p.handlers)
	p.mu.RUnlock()

	for _, h := range handlers {
		if !h.CanHandle(ictx) {
			continue
		}

		result, err := h.Handle(ictx)
		if err != nil {
			result = errorResult(ictx, err)
		}
		if err := responder.Send(result); err != nil {
			return fmt.Errorf("failed to send response: %w", err)
		}
		return nil
	}

	ictx.Logger.Warn("unhandled interaction",
		"type", i.Type.String(),
		"command", ictx.GetCommandName(),
		"custom_id", ictx.GetCustomID())
	return responder.Send(Reply(NewEphemeralResponse("I don't know how to handle that.")))
}

// wrapped keeps the undecorated handler for routing decisions
type wrapped struct {
	accept Handler
	run    Handler
}

func (w wrapped) CanHandle(ctx *InteractionContext) bool { return w.accept.CanHandle(ctx) }

func (w wrapped) Handle(ctx *InteractionContext) (*HandlerResult, error) { return w.run.Handle(ctx) }

// errorResult logs the failure and shows the player only the coded message
func errorResult(ctx *InteractionContext, err error) *HandlerResult {
	ctx.Logger.Error("interaction failed", "error", err)
	return Reply(ErrorResponse(err))
}

// MiddlewareChain creates a single middleware from multiple middleware.
// The first middleware is the outermost.
func MiddlewareChain(middleware ...Middleware) Middleware {
	return func(next Handler) Handler {
		for i := len(middleware) - 1; i >= 0; i-- {
			next = middleware[i](next)
		}
		return next
	}
}
