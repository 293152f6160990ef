package middleware

import (
	"fmt"
	"sync"
	"time"

	"github.com/KirkDiggler/shipyard-negotiation/internal/discord/core"
)

// RateLimitConfig configures rate limiting behavior
type RateLimitConfig struct {
	// MaxRequests is the number of interactions allowed per window
	MaxRequests int

	Window time.Duration

	// KeyFunc extracts the rate limit key; defaults to the user ID
	KeyFunc func(*core.InteractionContext) string

	// Now defaults to time.Now
	Now func() time.Time
}

// RateLimit rejects interactions over the configured rate with an ephemeral notice
func RateLimit(cfg *RateLimitConfig) core.Middleware {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = func(ctx *core.InteractionContext) string { return ctx.UserID }
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	store := newWindowCounter(cfg.Now)
	message := fmt.Sprintf("The guard raises a hand. Give it %v before trying again.", cfg.Window)

	return func(next core.Handler) core.Handler {
		return core.HandlerFunc(func(ctx *core.InteractionContext) (*core.HandlerResult, error) {
			key := cfg.KeyFunc(ctx)
			if key == "" {
				return next.Handle(ctx)
			}
			if store.increment(key, cfg.Window) > cfg.MaxRequests {
				ctx.Logger.Info("interaction rate limited", "key", key)
				return core.Reply(core.NewEphemeralResponse(message)), nil
			}
			return next.Handle(ctx)
		})
	}
}

type bucket struct {
	count   int
	resetAt time.Time
}

// windowCounter is a fixed-window counter per key
type windowCounter struct {
	mu      sync.Mutex
	now     func() time.Time
	buckets map[string]*bucket
}

func newWindowCounter(now func() time.Time) *windowCounter {
	return &windowCounter{now: now, buckets: make(map[string]*bucket)}
}

func (w *windowCounter) increment(key string, window time.Duration) int {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	for k, b := range w.buckets {
		if now.After(b.resetAt) {
			delete(w.buckets, k)
		}
	}

	b, ok := w.buckets[key]
	if !ok {
		b = &bucket{resetAt: now.Add(window)}
		w.buckets[key] = b
	}
	b.count++
	return b.count
}
