package onboardingsessions

import (
	"context"
	"sort"
	"sync"

	"github.com/KirkDiggler/shipyard-negotiation/internal/domain/firstlogin"
	dnderr "github.com/KirkDiggler/shipyard-negotiation/internal/errors"
)

type inMemoryRepository struct {
	mu       sync.RWMutex
	sessions map[string]*firstlogin.Session
	active   map[string]string // playerID -> sessionID
}

// NewInMemoryRepository creates a repository backed by process memory
func NewInMemoryRepository() Repository {
	return &inMemoryRepository{
		sessions: make(map[string]*firstlogin.Session),
		active:   make(map[string]string),
	}
}

func (r *inMemoryRepository) Create(ctx context.Context, session *firstlogin.Session) error {
	if err := validateNew(session); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[session.ID]; exists {
		return dnderr.AlreadyExistsf("session %s already exists", session.ID).
			WithMeta("session_id", session.ID)
	}
	if activeID, ok := r.active[session.PlayerID]; ok {
		return dnderr.SessionAlreadyActivef("player %s already has session %s", session.PlayerID, activeID).
			WithMeta("player_id", session.PlayerID).
			WithMeta("active_session_id", activeID)
	}

	session.Version = 1
	r.sessions[session.ID] = session.Clone()
	if !session.IsComplete() {
		r.active[session.PlayerID] = session.ID
	}

	return nil
}

func (r *inMemoryRepository) Get(ctx context.Context, id string) (*firstlogin.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.sessions[id]
	if !ok {
		return nil, dnderr.NotFoundf("session %s not found", id).WithMeta("session_id", id)
	}
	return stored.Clone(), nil
}

func (r *inMemoryRepository) Update(ctx context.Context, session *firstlogin.Session) error {
	if session == nil {
		return dnderr.InvalidArgument("session cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.sessions[session.ID]
	if !ok {
		return dnderr.NotFoundf("session %s not found", session.ID).WithMeta("session_id", session.ID)
	}
	if stored.Version != session.Version {
		return dnderr.Conflictf("session %s was modified (have version %d, stored %d)",
			session.ID, session.Version, stored.Version).
			WithMeta("session_id", session.ID)
	}

	session.Version++
	r.sessions[session.ID] = session.Clone()
	if session.IsComplete() && r.active[session.PlayerID] == session.ID {
		delete(r.active, session.PlayerID)
	}

	return nil
}

func (r *inMemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.sessions[id]
	if !ok {
		return dnderr.NotFoundf("session %s not found", id).WithMeta("session_id", id)
	}

	delete(r.sessions, id)
	if r.active[stored.PlayerID] == id {
		delete(r.active, stored.PlayerID)
	}
	return nil
}

func (r *inMemoryRepository) GetActiveByPlayer(ctx context.Context, playerID string) (*firstlogin.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.active[playerID]
	if !ok {
		return nil, dnderr.NotFoundf("no active session for player %s", playerID).
			WithMeta("player_id", playerID)
	}
	return r.sessions[id].Clone(), nil
}

func (r *inMemoryRepository) ListByPlayer(ctx context.Context, playerID string) ([]*firstlogin.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*firstlogin.Session
	for _, s := range r.sessions {
		if s.PlayerID == playerID {
			out = append(out, s.Clone())
		}
	}
	sortByCreated(out)
	return out, nil
}

func validateNew(session *firstlogin.Session) error {
	if session == nil {
		return dnderr.InvalidArgument("session cannot be nil")
	}
	if session.ID == "" {
		return dnderr.InvalidArgument("session ID cannot be empty")
	}
	if session.PlayerID == "" {
		return dnderr.InvalidArgument("player ID cannot be empty")
	}
	return nil
}

func sortByCreated(sessions []*firstlogin.Session) {
	sort.SliceStable(sessions, func(i, j int) bool {
		if sessions[i].CreatedAt.Equal(sessions[j].CreatedAt) {
			return sessions[i].Attempt < sessions[j].Attempt
		}
		return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
	})
}
