package onboarding

import (
	"context"
	"log/slog"

	"github.com/KirkDiggler/shipyard-negotiation/internal/domain/firstlogin"
	dnderr "github.com/KirkDiggler/shipyard-negotiation/internal/errors"
	"github.com/KirkDiggler/shipyard-negotiation/internal/repositories/grants"
)

// FinalizerConfig holds configuration for the finalizer
type FinalizerConfig struct {
	Store  *Store            // Required
	Ledger grants.Repository // Required
	Clock  Clock             // Optional
	Logger *slog.Logger      // Optional
}

// Finalizer turns a resolved outcome into the player's grant. It is the only
// caller of the grant ledger.
type Finalizer struct {
	store  *Store
	ledger grants.Repository
	clock  Clock
	logger *slog.Logger
}

// NewFinalizer creates a finalizer
func NewFinalizer(cfg *FinalizerConfig) *Finalizer {
	if cfg == nil || cfg.Store == nil {
		panic("session store is required")
	}
	if cfg.Ledger == nil {
		panic("grant ledger is required")
	}

	f := &Finalizer{
		store:  cfg.Store,
		ledger: cfg.Ledger,
		clock:  cfg.Clock,
		logger: cfg.Logger,
	}
	if f.clock == nil {
		f.clock = RealClock{}
	}
	if f.logger == nil {
		f.logger = slog.Default()
	}
	return f
}

// Finalize writes the grant for a session with a resolved outcome and marks
// it COMPLETE. Calling it again returns the stored grant together with an
// already_finalized error. Without an outcome it fails with incomplete_dialogue.
func (f *Finalizer) Finalize(ctx context.Context, sessionID string) (*firstlogin.PlayerGrant, error) {
	sess, err := f.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.IsComplete() && sess.Grant != nil {
		return sess.Grant, dnderr.AlreadyFinalizedf("session %s was already finalized", sessionID).
			WithMeta("session_id", sessionID)
	}
	if sess.Outcome == nil {
		return nil, dnderr.IncompleteDialoguef("session %s has no resolved outcome", sessionID).
			WithMeta("session_id", sessionID)
	}

	grant := &firstlogin.PlayerGrant{
		SessionID:         sess.ID,
		PlayerID:          sess.PlayerID,
		Ship:              sess.Outcome.AwardedShip,
		Credits:           sess.Outcome.Credits,
		TradeBonus:        sess.Outcome.TradeBonus,
		ReputationPenalty: sess.Outcome.ReputationPenalty,
		Outcome:           sess.Outcome.Kind,
		Nickname:          sess.PlayerName,
		GrantedAt:         f.clock.Now(),
	}

	// The ledger keys on session id, so a retry after a crash finds the first grant
	stored, written, err := f.ledger.Record(ctx, grant)
	if err != nil {
		return nil, dnderr.Wrapf(err, "failed to record grant for session %s", sessionID).
			WithMeta("session_id", sessionID)
	}

	completed, err := f.store.Complete(ctx, sessionID, stored)
	if err != nil {
		if dnderr.IsAlreadyFinalized(err) && completed != nil && completed.Grant != nil {
			return completed.Grant, err
		}
		return nil, err
	}

	if written {
		f.logger.Info("player grant recorded",
			"session_id", sessionID,
			"player_id", stored.PlayerID,
			"ship", stored.Ship,
			"credits", stored.Credits,
			"outcome", stored.Outcome)
	}
	return completed.Grant, nil
}

// GrantFor returns the first grant a player received. A player who never
// finished a first login gets not_found.
func (f *Finalizer) GrantFor(ctx context.Context, playerID string) (*firstlogin.PlayerGrant, error) {
	granted, err := f.ledger.ListByPlayer(ctx, playerID)
	if err != nil {
		return nil, dnderr.Wrapf(err, "failed to read grants for %s", playerID).WithMeta("player_id", playerID)
	}
	if len(granted) == 0 {
		return nil, dnderr.NotFoundf("player %s has no grant", playerID).WithMeta("player_id", playerID)
	}
	return granted[0], nil
}
