package grants

import (
	"context"
	"sort"
	"sync"

	"github.com/KirkDiggler/shipyard-negotiation/internal/domain/firstlogin"
	dnderr "github.com/KirkDiggler/shipyard-negotiation/internal/errors"
)

type inMemoryRepository struct {
	mu     sync.RWMutex
	grants map[string]firstlogin.PlayerGrant // sessionID -> grant
}

// NewInMemoryRepository creates a ledger kept in process memory
func NewInMemoryRepository() Repository {
	return &inMemoryRepository{
		grants: make(map[string]firstlogin.PlayerGrant),
	}
}

func (r *inMemoryRepository) Record(ctx context.Context, grant *firstlogin.PlayerGrant) (*firstlogin.PlayerGrant, bool, error) {
	if err := validate(grant); err != nil {
		return nil, false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.grants[grant.SessionID]; ok {
		return &existing, false, nil
	}

	r.grants[grant.SessionID] = *grant
	stored := *grant
	return &stored, true, nil
}

func (r *inMemoryRepository) GetBySession(ctx context.Context, sessionID string) (*firstlogin.PlayerGrant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.grants[sessionID]
	if !ok {
		return nil, dnderr.NotFoundf("no grant for session %s", sessionID).WithMeta("session_id", sessionID)
	}
	return &g, nil
}

func (r *inMemoryRepository) ListByPlayer(ctx context.Context, playerID string) ([]*firstlogin.PlayerGrant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*firstlogin.PlayerGrant
	for _, g := range r.grants {
		if g.PlayerID == playerID {
			g := g
			out = append(out, &g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GrantedAt.Before(out[j].GrantedAt) })
	return out, nil
}

func (r *inMemoryRepository) Close() error { return nil }

func validate(grant *firstlogin.PlayerGrant) error {
	if grant == nil {
		return dnderr.InvalidArgument("grant cannot be nil")
	}
	if grant.SessionID == "" || grant.PlayerID == "" {
		return dnderr.InvalidArgument("grant needs a session ID and a player ID")
	}
	if grant.Credits < 0 {
		return dnderr.InvalidArgumentf("grant credits cannot be negative: %d", grant.Credits)
	}
	return nil
}
