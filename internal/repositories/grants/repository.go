package grants

//go:generate mockgen -destination=mock/mock_repository.go -package=mockgrants -source=repository.go

import (
	"context"

	"github.com/KirkDiggler/shipyard-negotiation/internal/domain/firstlogin"
)

// Repository is the player-state ledger. It holds at most one grant per session.
type Repository interface {
	// Record stores the grant unless one already exists for its session.
	// It returns the grant that is stored afterwards and whether this call wrote it.
	Record(ctx context.Context, grant *firstlogin.PlayerGrant) (*firstlogin.PlayerGrant, bool, error)

	// GetBySession returns the grant for a session or a not_found error
	GetBySession(ctx context.Context, sessionID string) (*firstlogin.PlayerGrant, error)

	// ListByPlayer returns every grant a player has received, oldest first
	ListByPlayer(ctx context.Context, playerID string) ([]*firstlogin.PlayerGrant, error)

	Close() error
}
