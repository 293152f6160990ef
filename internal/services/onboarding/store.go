package onboarding

import (
	"context"

	"github.com/KirkDiggler/shipyard-negotiation/internal/domain/firstlogin"
	dnderr "github.com/KirkDiggler/shipyard-negotiation/internal/errors"
	"github.com/KirkDiggler/shipyard-negotiation/internal/repositories/onboardingsessions"
	"github.com/KirkDiggler/shipyard-negotiation/internal/services/analysis"
	"github.com/KirkDiggler/shipyard-negotiation/internal/services/negotiation"
	"github.com/KirkDiggler/shipyard-negotiation/internal/uuid"
)

// DefaultDialogueLength is the claim plus three guard questions
const DefaultDialogueLength = 4

// conflict retries when another instance wrote the same session in between
const maxConflictRetries = 3

// StoreConfig holds configuration for the session store
type StoreConfig struct {
	Repository     onboardingsessions.Repository // Required
	UUIDGenerator  uuid.Generator                // Optional
	Clock          Clock                         // Optional
	DialogueLength int                           // Optional, total exchanges including the claim
}

// Store is the only writer of session state. Mutations of one session are
// serialized in process and persisted with optimistic versioning.
type Store struct {
	repo           onboardingsessions.Repository
	uuidGenerator  uuid.Generator
	clock          Clock
	dialogueLength int
	locks          *sessionLocks
}

// NewStore creates a session store
func NewStore(cfg *StoreConfig) *Store {
	if cfg == nil || cfg.Repository == nil {
		panic("session repository is required")
	}

	s := &Store{
		repo:           cfg.Repository,
		uuidGenerator:  cfg.UUIDGenerator,
		clock:          cfg.Clock,
		dialogueLength: cfg.DialogueLength,
		locks:          newSessionLocks(),
	}
	if s.uuidGenerator == nil {
		s.uuidGenerator = uuid.NewGoogleUUIDGenerator()
	}
	if s.clock == nil {
		s.clock = RealClock{}
	}
	if s.dialogueLength < 2 {
		s.dialogueLength = DefaultDialogueLength
	}
	return s
}

// DialogueLength is the number of exchanges, claim included, before the
// session can be completed
func (s *Store) DialogueLength() int {
	return s.dialogueLength
}

// Create starts a session for the player with the guard's opening question
// pending. Fails with session_already_active if one is incomplete.
func (s *Store) Create(ctx context.Context, playerID string, offer firstlogin.ShipOffer) (*firstlogin.Session, error) {
	if playerID == "" {
		return nil, dnderr.InvalidArgument("player ID is required")
	}

	previous, err := s.repo.ListByPlayer(ctx, playerID)
	if err != nil {
		return nil, dnderr.Wrapf(err, "failed to count attempts for player %s", playerID)
	}

	now := s.clock.Now()
	sess := &firstlogin.Session{
		ID:        s.uuidGenerator.New(),
		PlayerID:  playerID,
		Attempt:   len(previous) + 1,
		CreatedAt: now,
		UpdatedAt: now,
		Phase:     firstlogin.PhaseShipSelection,
		Offer:     offer,
		Pending:   negotiation.OpeningPrompt(offer),
	}

	if err := s.repo.Create(ctx, sess); err != nil {
		return nil, err
	}
	return sess.Clone(), nil
}

// Get returns a snapshot of the session
func (s *Store) Get(ctx context.Context, id string) (*firstlogin.Session, error) {
	return s.repo.Get(ctx, id)
}

// GetActiveByPlayer returns the player's incomplete session
func (s *Store) GetActiveByPlayer(ctx context.Context, playerID string) (*firstlogin.Session, error) {
	return s.repo.GetActiveByPlayer(ctx, playerID)
}

// Claim records the ship claim as exchange #1 and moves the session into DIALOGUE
func (s *Store) Claim(ctx context.Context, id string, ship firstlogin.ShipType, ex firstlogin.DialogueExchange) (*firstlogin.Session, error) {
	return s.mutate(ctx, id, func(sess *firstlogin.Session) error {
		if sess.Phase != firstlogin.PhaseShipSelection {
			return dnderr.InvalidPhasef("session %s is in %s, ships can only be claimed in %s",
				id, sess.Phase, firstlogin.PhaseShipSelection)
		}
		if !sess.Offer.Contains(ship) {
			return dnderr.InvalidArgumentf("ship %s was not offered", ship)
		}

		sess.ClaimedShip = ship
		if err := s.append(sess, ex); err != nil {
			return err
		}
		return transition(sess, firstlogin.PhaseDialogue)
	})
}

// AppendExchange adds one answered exchange. The exchange sequence must be
// exactly one past the last appended one.
func (s *Store) AppendExchange(ctx context.Context, id string, ex firstlogin.DialogueExchange) (*firstlogin.Session, error) {
	return s.mutate(ctx, id, func(sess *firstlogin.Session) error {
		if sess.IsComplete() {
			return dnderr.InvalidPhasef("session %s is already complete", id)
		}
		if sess.Phase == firstlogin.PhaseShipSelection {
			return dnderr.InvalidPhasef("session %s has not claimed a ship yet", id)
		}
		if len(sess.Exchanges) >= s.dialogueLength {
			return dnderr.SequenceConflictf("session %s has no open question", id)
		}
		return s.append(sess, ex)
	})
}

// Transition moves the session from SHIP_SELECTION to DIALOGUE. COMPLETE is
// reachable only through Complete, which requires an outcome and a grant.
func (s *Store) Transition(ctx context.Context, id string, to firstlogin.Phase) (*firstlogin.Session, error) {
	if to == firstlogin.PhaseComplete {
		return nil, dnderr.InvalidPhasef("session %s can only be completed with a grant", id).
			WithMeta("session_id", id)
	}
	return s.mutate(ctx, id, func(sess *firstlogin.Session) error {
		return transition(sess, to)
	})
}

// RecordOutcome stores the resolved outcome. An outcome already on the
// session is kept so completion is repeatable.
func (s *Store) RecordOutcome(ctx context.Context, id string, outcome *firstlogin.NegotiationOutcome) (*firstlogin.Session, error) {
	return s.mutate(ctx, id, func(sess *firstlogin.Session) error {
		if sess.IsComplete() || sess.Outcome != nil {
			return nil
		}
		if sess.Phase != firstlogin.PhaseDialogue {
			return dnderr.InvalidPhasef("session %s is in %s", id, sess.Phase)
		}
		o := *outcome
		sess.Outcome = &o
		return nil
	})
}

// Complete attaches the grant and closes the session. A session that is
// already complete returns already_finalized alongside its stored state.
func (s *Store) Complete(ctx context.Context, id string, grant *firstlogin.PlayerGrant) (*firstlogin.Session, error) {
	var finalized bool
	sess, err := s.mutate(ctx, id, func(sess *firstlogin.Session) error {
		if sess.IsComplete() {
			finalized = true
			return errUnchanged
		}
		if sess.Outcome == nil {
			return dnderr.IncompleteDialoguef("session %s has no resolved outcome", id)
		}
		if err := transition(sess, firstlogin.PhaseComplete); err != nil {
			return err
		}

		g := *grant
		completed := s.clock.Now()
		sess.Grant = &g
		sess.CompletedAt = &completed
		sess.Pending = nil
		return nil
	})
	if err != nil {
		return nil, err
	}
	if finalized {
		return sess, dnderr.AlreadyFinalizedf("session %s was already finalized", id).
			WithMeta("session_id", id)
	}
	return sess, nil
}

// Abandon deletes an incomplete session so the player can start over
func (s *Store) Abandon(ctx context.Context, id string) error {
	release, err := s.locks.acquire(ctx, id)
	if err != nil {
		return dnderr.Wrapf(err, "failed to lock session %s", id)
	}
	defer release()

	sess, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if sess.IsComplete() {
		return dnderr.InvalidPhasef("session %s is complete and cannot be abandoned", id)
	}
	return s.repo.Delete(ctx, id)
}

// errUnchanged lets a mutation return the current state without writing
var errUnchanged = dnderr.New(dnderr.CodeUnknown, "unchanged")

// mutate loads, changes and writes one session under its lock. A version
// conflict from another instance reloads and reapplies fn.
func (s *Store) mutate(ctx context.Context, id string, fn func(*firstlogin.Session) error) (*firstlogin.Session, error) {
	release, err := s.locks.acquire(ctx, id)
	if err != nil {
		return nil, dnderr.Wrapf(err, "failed to lock session %s", id)
	}
	defer release()

	for attempt := 0; ; attempt++ {
		sess, err := s.repo.Get(ctx, id)
		if err != nil {
			return nil, err
		}

		if err := fn(sess); err != nil {
			if err == errUnchanged {
				return sess, nil
			}
			return nil, err
		}

		sess.UpdatedAt = s.clock.Now()
		err = s.repo.Update(ctx, sess)
		if err == nil {
			return sess.Clone(), nil
		}
		if !dnderr.IsConflict(err) || attempt+1 >= maxConflictRetries {
			return nil, err
		}
	}
}

// append adds ex and refreshes everything derived from the dialogue
func (s *Store) append(sess *firstlogin.Session, ex firstlogin.DialogueExchange) error {
	if want := sess.LastSequence() + 1; ex.Sequence != want {
		return dnderr.SequenceConflictf("sequence %d was submitted but %d is expected", ex.Sequence, want).
			WithMeta("session_id", sess.ID).
			WithMeta("expected_sequence", want)
	}

	sess.Exchanges = append(sess.Exchanges, ex)
	sess.RunningScore = negotiation.AggregatePersuasion(sess.Exchanges)

	switch ex.Analysis.Source {
	case firstlogin.SourcePrimary:
		sess.PrimaryAnalyses++
	default:
		sess.FallbackAnalyses++
	}

	if sess.PlayerName == "" {
		if name := ex.Analysis.Facts[analysis.FactName]; name != "" {
			sess.PlayerName = name
		}
	}

	if len(sess.Exchanges) < s.dialogueLength {
		sess.Pending = negotiation.NextPrompt(sess)
	} else {
		sess.Pending = nil
	}
	return nil
}

func transition(sess *firstlogin.Session, to firstlogin.Phase) error {
	if !sess.Phase.CanTransition(to) {
		return dnderr.InvalidPhasef("session %s cannot move from %s to %s", sess.ID, sess.Phase, to).
			WithMeta("session_id", sess.ID)
	}
	sess.Phase = to
	return nil
}
