package core

import (
	"fmt"
)

// Router dispatches interactions for one domain. The domain doubles as the
// slash command name and the first custom ID part.
type Router struct {
	domain     string
	handlers   map[string]Handler
	middleware []Middleware
	ids        *CustomIDBuilder
}

// NewRouter creates a new domain router
func NewRouter(domain string) *Router {
	return &Router{
		domain:   domain,
		handlers: make(map[string]Handler),
		ids:      NewCustomIDBuilder(domain),
	}
}

// Use adds middleware applied to handlers registered after the call
func (r *Router) Use(middleware ...Middleware) *Router {
	r.middleware = append(r.middleware, middleware...)
	return r
}

// Handle registers a handler for a routing pattern
func (r *Router) Handle(pattern string, handler Handler) *Router {
	r.handlers[pattern] = MiddlewareChain(r.middleware...)(handler)
	return r
}

// CommandFunc registers the handler for the domain's slash command
func (r *Router) CommandFunc(fn HandlerFunc) *Router {
	return r.Handle("cmd", fn)
}

// ComponentFunc registers a button handler for an action
func (r *Router) ComponentFunc(action string, fn HandlerFunc) *Router {
	return r.Handle(fmt.Sprintf("component:%s", action), fn)
}

// ModalFunc registers a modal submit handler for an action
func (r *Router) ModalFunc(action string, fn HandlerFunc) *Router {
	return r.Handle(fmt.Sprintf("modal:%s", action), fn)
}

// CustomIDs returns the custom ID builder for this domain
func (r *Router) CustomIDs() *CustomIDBuilder {
	return r.ids
}

// CanHandle checks if this router can handle the interaction
func (r *Router) CanHandle(ctx *InteractionContext) bool {
	_, ok := r.handlers[r.pattern(ctx)]
	return ok
}

// HandleInteraction runs the handler registered for the interaction
func (r *Router) HandleInteraction(ctx *InteractionContext) (*HandlerResult, error) {
	h, ok := r.handlers[r.pattern(ctx)]
	if !ok {
		return nil, fmt.Errorf("no %s handler for %q", r.domain, ctx.GetCustomID())
	}
	return h.Handle(ctx)
}

// Build exposes the router as a Handler
func (r *Router) Build() Handler {
	return routerHandler{r}
}

type routerHandler struct{ r *Router }

func (h routerHandler) CanHandle(ctx *InteractionContext) bool { return h.r.CanHandle(ctx) }

func (h routerHandler) Handle(ctx *InteractionContext) (*HandlerResult, error) {
	return h.r.HandleInteraction(ctx)
}

// pattern extracts the routing pattern from the interaction
func (r *Router) pattern(ctx *InteractionContext) string {
	switch {
	case ctx.IsCommand():
		if ctx.GetCommandName() == r.domain {
			return "cmd"
		}
	case ctx.IsComponent(), ctx.IsModal():
		id, err := ctx.ParsedCustomID()
		if err != nil || id.Domain != r.domain {
			return ""
		}
		kind := "component"
		if ctx.IsModal() {
			kind = "modal"
		}
		return fmt.Sprintf("%s:%s", kind, id.Action)
	}
	return ""
}
