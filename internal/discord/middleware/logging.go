package middleware

import (
	"time"

	"github.com/KirkDiggler/shipyard-negotiation/internal/discord/core"
)

// Logging records each interaction with its route and duration
func Logging() core.Middleware {
	return func(next core.Handler) core.Handler {
		return core.HandlerFunc(func(ctx *core.InteractionContext) (*core.HandlerResult, error) {
			start := time.Now()
			result, err := next.Handle(ctx)

			attrs := []any{
				"command", ctx.GetCommandName(),
				"custom_id", ctx.GetCustomID(),
				"duration", time.Since(start),
			}
			if err != nil {
				ctx.Logger.Warn("interaction returned error", append(attrs, "error", err)...)
				return result, err
			}
			ctx.Logger.Info("interaction handled", attrs...)
			return result, nil
		})
	}
}
