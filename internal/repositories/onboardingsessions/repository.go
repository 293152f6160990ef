package onboardingsessions

//go:generate mockgen -destination=mock/mock_repository.go -package=mockonboardingsessions -source=repository.go

import (
	"context"

	"github.com/KirkDiggler/shipyard-negotiation/internal/domain/firstlogin"
)

// Repository stores first-login sessions. A player has at most one session
// that is not COMPLETE at any time.
type Repository interface {
	// Create stores a new session with Version 1. Returns a session_already_active
	// error if the player has an incomplete session.
	Create(ctx context.Context, session *firstlogin.Session) error

	// Get returns a copy of the session or a not_found error
	Get(ctx context.Context, id string) (*firstlogin.Session, error)

	// Update writes the session if its Version matches the stored one and bumps
	// the Version on success. A mismatch returns a conflict error.
	Update(ctx context.Context, session *firstlogin.Session) error

	// Delete removes a session and releases the player's active slot
	Delete(ctx context.Context, id string) error

	// GetActiveByPlayer returns the player's incomplete session or not_found
	GetActiveByPlayer(ctx context.Context, playerID string) (*firstlogin.Session, error)

	// ListByPlayer returns every stored session for the player, oldest first
	ListByPlayer(ctx context.Context, playerID string) ([]*firstlogin.Session, error)
}
