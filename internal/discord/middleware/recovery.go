package middleware

import (
	"runtime/debug"

	"github.com/KirkDiggler/shipyard-negotiation/internal/discord/core"
	dnderr "github.com/KirkDiggler/shipyard-negotiation/internal/errors"
)

// Recovery converts a handler panic into an internal error
func Recovery() core.Middleware {
	return func(next core.Handler) core.Handler {
		return core.HandlerFunc(func(ctx *core.InteractionContext) (result *core.HandlerResult, err error) {
			defer func() {
				if r := recover(); r != nil {
					ctx.Logger.Error("panic recovered in handler", "panic", r, "stack", string(debug.Stack()))
					result, err = nil, dnderr.Internalf("handler panic: %v", r)
				}
			}()
			return next.Handle(ctx)
		})
	}
}
