package onboarding

//go:generate mockgen -destination=mock/mock_service.go -package=mockonboarding -source=service.go

import (
	"context"
	"log/slog"
	"strings"

	"github.com/KirkDiggler/shipyard-negotiation/internal/dice"
	"github.com/KirkDiggler/shipyard-negotiation/internal/domain/firstlogin"
	dnderr "github.com/KirkDiggler/shipyard-negotiation/internal/errors"
	"github.com/KirkDiggler/shipyard-negotiation/internal/events"
	"github.com/KirkDiggler/shipyard-negotiation/internal/services/analysis"
	"github.com/KirkDiggler/shipyard-negotiation/internal/services/negotiation"
	"github.com/KirkDiggler/shipyard-negotiation/internal/services/shipyard"
)

// maxResponseLength caps one answer; longer text is rejected
const maxResponseLength = 2000

// Service is the first-login negotiation flow
type Service interface {
	// StartOrResumeSession returns the player's incomplete session or starts a
	// new one. A player who already finished gets the completed session back.
	StartOrResumeSession(ctx context.Context, playerID string) (*Status, error)

	// GetPlayerStatus reports whether a player still needs a first login
	GetPlayerStatus(ctx context.Context, playerID string) (*PlayerStatus, error)

	// ClaimShip answers the guard's opening question by naming one offered ship
	ClaimShip(ctx context.Context, sessionID string, ship firstlogin.ShipType, statement string) (*Status, error)

	// SubmitResponse answers the pending guard question. An already answered
	// sequence fails with sequence_conflict.
	SubmitResponse(ctx context.Context, sessionID string, sequence int, text string) (*Status, error)

	// CompleteSession resolves the dialogue and grants the outcome. Repeating
	// it on a complete session returns the same result.
	CompleteSession(ctx context.Context, sessionID string) (*Status, error)

	// GetSessionStatus returns the session with derived guard state
	GetSessionStatus(ctx context.Context, sessionID string) (*Status, error)

	// AbandonSession drops an incomplete session so a new attempt can begin
	AbandonSession(ctx context.Context, sessionID string) error
}

// Status is a session snapshot plus what surfaces need to render it
type Status struct {
	Session *firstlogin.Session
	Mood    negotiation.Mood

	// Remaining counts unanswered exchanges, the claim included
	Remaining int

	// Resumed is set by StartOrResumeSession when an existing session was returned
	Resumed bool
}

// PlayerStatus is where a player stands before any session is opened
type PlayerStatus struct {
	PlayerID           string
	RequiresFirstLogin bool

	// Active is the incomplete session, if any
	Active *Status

	// Grant is set once the player has finished
	Grant *firstlogin.PlayerGrant
}

// CanComplete reports whether every exchange has been answered
func (s *Status) CanComplete() bool {
	return s.Session.Phase == firstlogin.PhaseDialogue && s.Remaining == 0
}

// ServiceConfig holds configuration for the service
type ServiceConfig struct {
	Store     *Store                // Required
	Finalizer *Finalizer            // Required
	Generator shipyard.Generator    // Required
	Analyzer  analysis.Analyzer     // Required
	Resolver  *negotiation.Resolver // Required
	Clock     Clock                 // Optional
	Logger    *slog.Logger          // Optional
	SeedFunc  func() uint64         // Optional, defaults to dice.NewSeed
	Events    events.Publisher      // Optional
}

type service struct {
	store     *Store
	finalizer *Finalizer
	generator shipyard.Generator
	analyzer  analysis.Analyzer
	resolver  *negotiation.Resolver
	clock     Clock
	logger    *slog.Logger
	seed      func() uint64
	publisher events.Publisher
}

// NewService creates the onboarding service
func NewService(cfg *ServiceConfig) Service {
	if cfg == nil || cfg.Store == nil {
		panic("session store is required")
	}
	if cfg.Finalizer == nil {
		panic("finalizer is required")
	}
	if cfg.Generator == nil {
		panic("ship generator is required")
	}
	if cfg.Analyzer == nil {
		panic("analyzer is required")
	}
	if cfg.Resolver == nil {
		panic("resolver is required")
	}

	svc := &service{
		store:     cfg.Store,
		finalizer: cfg.Finalizer,
		generator: cfg.Generator,
		analyzer:  cfg.Analyzer,
		resolver:  cfg.Resolver,
		clock:     cfg.Clock,
		logger:    cfg.Logger,
		seed:      cfg.SeedFunc,
		publisher: cfg.Events,
	}
	if svc.clock == nil {
		svc.clock = RealClock{}
	}
	if svc.logger == nil {
		svc.logger = slog.Default()
	}
	if svc.seed == nil {
		svc.seed = dice.NewSeed
	}
	return svc
}

func (s *service) StartOrResumeSession(ctx context.Context, playerID string) (*Status, error) {
	if strings.TrimSpace(playerID) == "" {
		return nil, dnderr.InvalidArgument("player ID is required")
	}

	active, err := s.store.GetActiveByPlayer(ctx, playerID)
	if err == nil {
		return s.status(active, true), nil
	}
	if !dnderr.IsNotFound(err) {
		return nil, dnderr.Wrapf(err, "failed to look up active session for %s", playerID).
			WithMeta("player_id", playerID)
	}

	grant, err := s.finalizer.GrantFor(ctx, playerID)
	if err == nil {
		return s.finished(ctx, grant)
	}
	if !dnderr.IsNotFound(err) {
		return nil, err
	}

	offer := s.generator.Generate(playerID, s.seed())
	sess, err := s.store.Create(ctx, playerID, offer)
	if err != nil {
		if dnderr.IsSessionAlreadyActive(err) {
			// Lost a race with another start for the same player
			active, getErr := s.store.GetActiveByPlayer(ctx, playerID)
			if getErr == nil {
				return s.status(active, true), nil
			}
		}
		return nil, dnderr.Wrapf(err, "failed to start session for %s", playerID).
			WithMeta("player_id", playerID)
	}

	s.logger.Info("first-login session started",
		"session_id", sess.ID,
		"player_id", playerID,
		"attempt", sess.Attempt,
		"offer", sess.Offer.Ships,
		"rarity_roll", sess.Offer.RarityRoll)

	s.emit(&events.Event{Type: events.EventTypeSessionStarted, SessionID: sess.ID, PlayerID: playerID})
	return s.status(sess, false), nil
}

func (s *service) ClaimShip(ctx context.Context, sessionID string, ship firstlogin.ShipType, statement string) (*Status, error) {
	statement = strings.TrimSpace(statement)
	if err := validateText(statement); err != nil {
		return nil, err
	}

	snapshot, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, dnderr.Wrapf(err, "failed to get session %s", sessionID).WithMeta("session_id", sessionID)
	}
	if snapshot.Phase != firstlogin.PhaseShipSelection {
		return nil, dnderr.InvalidPhasef("session %s already claimed %s", sessionID, snapshot.ClaimedShip).
			WithMeta("session_id", sessionID)
	}
	if !snapshot.Offer.Contains(ship) {
		return nil, dnderr.InvalidArgumentf("ship %s was not offered", ship).WithMeta("session_id", sessionID)
	}

	// Analysis sees the claim so it can flag a statement about another hull
	snapshot.ClaimedShip = ship
	ex, err := s.analyze(ctx, snapshot, statement)
	if err != nil {
		return nil, err
	}

	sess, err := s.store.Claim(ctx, sessionID, ship, *ex)
	if err != nil {
		return nil, dnderr.Wrapf(err, "failed to claim %s", ship).WithMeta("session_id", sessionID)
	}

	s.logger.Info("ship claimed", "session_id", sessionID, "ship", ship)
	s.emit(&events.Event{
		Type:      events.EventTypeShipClaimed,
		SessionID: sessionID,
		PlayerID:  sess.PlayerID,
		Sequence:  ex.Sequence,
		Ship:      ship,
	})
	return s.status(sess, false), nil
}

func (s *service) SubmitResponse(ctx context.Context, sessionID string, sequence int, text string) (*Status, error) {
	text = strings.TrimSpace(text)
	if err := validateText(text); err != nil {
		return nil, err
	}

	snapshot, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, dnderr.Wrapf(err, "failed to get session %s", sessionID).WithMeta("session_id", sessionID)
	}
	switch {
	case snapshot.IsComplete():
		return nil, dnderr.InvalidPhasef("session %s is already complete", sessionID).WithMeta("session_id", sessionID)
	case snapshot.Phase != firstlogin.PhaseDialogue:
		return nil, dnderr.InvalidPhasef("session %s must claim a ship first", sessionID).WithMeta("session_id", sessionID)
	case snapshot.Pending == nil:
		return nil, dnderr.SequenceConflictf("session %s has no open question", sessionID).WithMeta("session_id", sessionID)
	case snapshot.Pending.Sequence != sequence:
		return nil, dnderr.SequenceConflictf("sequence %d was submitted but %d is open", sequence, snapshot.Pending.Sequence).
			WithMeta("session_id", sessionID).
			WithMeta("expected_sequence", snapshot.Pending.Sequence)
	}

	// The lock is not held here; the store re-checks the sequence on append
	ex, err := s.analyze(ctx, snapshot, text)
	if err != nil {
		return nil, err
	}

	sess, err := s.store.AppendExchange(ctx, sessionID, *ex)
	if err != nil {
		return nil, dnderr.Wrapf(err, "failed to record response %d", sequence).WithMeta("session_id", sessionID)
	}

	s.emit(&events.Event{
		Type:      events.EventTypeResponseRecorded,
		SessionID: sessionID,
		PlayerID:  sess.PlayerID,
		Sequence:  sequence,
	})
	return s.status(sess, false), nil
}

func (s *service) CompleteSession(ctx context.Context, sessionID string) (*Status, error) {
	snapshot, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, dnderr.Wrapf(err, "failed to get session %s", sessionID).WithMeta("session_id", sessionID)
	}
	if snapshot.IsComplete() {
		return s.status(snapshot, false), nil
	}
	if snapshot.Phase != firstlogin.PhaseDialogue {
		return nil, dnderr.InvalidPhasef("session %s has not claimed a ship", sessionID).WithMeta("session_id", sessionID)
	}
	if n := len(snapshot.Exchanges); n < s.store.DialogueLength() {
		return nil, dnderr.IncompleteDialoguef("session %s has %d of %d answers", sessionID, n, s.store.DialogueLength()).
			WithMeta("session_id", sessionID)
	}

	if snapshot.Outcome == nil {
		skill := negotiation.Evaluate(snapshot.Exchanges)
		outcome, err := s.resolver.Resolve(snapshot.ClaimedShip, skill.Level, negotiation.AggregatePersuasion(snapshot.Exchanges))
		if err != nil {
			return nil, dnderr.Wrapf(err, "failed to resolve session %s", sessionID).WithMeta("session_id", sessionID)
		}
		outcome.SkillScore = skill.Score

		if _, err := s.store.RecordOutcome(ctx, sessionID, outcome); err != nil {
			return nil, dnderr.Wrapf(err, "failed to store outcome for %s", sessionID).WithMeta("session_id", sessionID)
		}
	}

	if _, err := s.finalizer.Finalize(ctx, sessionID); err != nil && !dnderr.IsAlreadyFinalized(err) {
		return nil, dnderr.Wrapf(err, "failed to finalize session %s", sessionID).WithMeta("session_id", sessionID)
	}

	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, dnderr.Wrapf(err, "failed to reload session %s", sessionID).WithMeta("session_id", sessionID)
	}

	s.logger.Info("first-login session complete",
		"session_id", sessionID,
		"player_id", sess.PlayerID,
		"outcome", sess.Outcome.Kind,
		"skill", sess.Outcome.Skill,
		"persuasion", sess.Outcome.Persuasion,
		"primary_analyses", sess.PrimaryAnalyses,
		"fallback_analyses", sess.FallbackAnalyses)

	s.emit(&events.Event{
		Type:      events.EventTypeSessionCompleted,
		SessionID: sessionID,
		PlayerID:  sess.PlayerID,
		Ship:      sess.Outcome.AwardedShip,
		Outcome:   sess.Outcome,
		Grant:     sess.Grant,
	})
	return s.status(sess, false), nil
}

func (s *service) GetPlayerStatus(ctx context.Context, playerID string) (*PlayerStatus, error) {
	if strings.TrimSpace(playerID) == "" {
		return nil, dnderr.InvalidArgument("player ID is required")
	}
	ps := &PlayerStatus{PlayerID: playerID}

	grant, err := s.finalizer.GrantFor(ctx, playerID)
	switch {
	case err == nil:
		ps.Grant = grant
	case !dnderr.IsNotFound(err):
		return nil, err
	}

	active, err := s.store.GetActiveByPlayer(ctx, playerID)
	switch {
	case err == nil:
		ps.Active = s.status(active, true)
	case !dnderr.IsNotFound(err):
		return nil, dnderr.Wrapf(err, "failed to look up active session for %s", playerID).
			WithMeta("player_id", playerID)
	}

	ps.RequiresFirstLogin = ps.Grant == nil
	return ps, nil
}

// finished returns the session that earned grant. Once that session has
// expired only the ledger remembers, and the caller gets already_finalized.
func (s *service) finished(ctx context.Context, grant *firstlogin.PlayerGrant) (*Status, error) {
	sess, err := s.store.Get(ctx, grant.SessionID)
	if err == nil {
		return s.status(sess, true), nil
	}
	if !dnderr.IsNotFound(err) {
		return nil, dnderr.Wrapf(err, "failed to get session %s", grant.SessionID).
			WithMeta("session_id", grant.SessionID)
	}
	return nil, dnderr.AlreadyFinalizedf("player %s already completed first login", grant.PlayerID).
		WithMeta("session_id", grant.SessionID).
		WithMeta("player_id", grant.PlayerID)
}

func (s *service) GetSessionStatus(ctx context.Context, sessionID string) (*Status, error) {
	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, dnderr.Wrapf(err, "failed to get session %s", sessionID).WithMeta("session_id", sessionID)
	}
	return s.status(sess, false), nil
}

func (s *service) AbandonSession(ctx context.Context, sessionID string) error {
	if err := s.store.Abandon(ctx, sessionID); err != nil {
		return dnderr.Wrapf(err, "failed to abandon session %s", sessionID).WithMeta("session_id", sessionID)
	}
	s.logger.Info("first-login session abandoned", "session_id", sessionID)
	s.emit(&events.Event{Type: events.EventTypeSessionAbandoned, SessionID: sessionID})
	return nil
}

// emit publishes after the change is stored. A listener failure is logged
// and never undoes or fails the operation.
func (s *service) emit(e *events.Event) {
	if s.publisher == nil {
		return
	}
	if e.At.IsZero() {
		e.At = s.clock.Now()
	}
	if err := s.publisher.Emit(e); err != nil {
		s.logger.Warn("event listener failed", "event", e.Type, "session_id", e.SessionID, "error", err)
	}
}

// analyze scores text against the pending prompt and builds the exchange to append
func (s *service) analyze(ctx context.Context, snapshot *firstlogin.Session, text string) (*firstlogin.DialogueExchange, error) {
	if snapshot.Pending == nil {
		return nil, dnderr.SequenceConflictf("session %s has no open question", snapshot.ID).
			WithMeta("session_id", snapshot.ID)
	}
	prompt := *snapshot.Pending

	result, err := s.analyzer.Analyze(ctx, &analysis.Request{
		Session:  snapshot,
		Prompt:   prompt,
		Response: text,
	})
	if err != nil {
		return nil, dnderr.Wrap(err, "failed to analyze response").WithMeta("session_id", snapshot.ID)
	}

	return &firstlogin.DialogueExchange{
		Sequence:  prompt.Sequence,
		NPCPrompt: prompt.Text,
		Response:  text,
		Timestamp: s.clock.Now(),
		Topic:     prompt.Topic,
		Challenge: prompt.Challenge,
		Analysis:  *result,
	}, nil
}

func (s *service) status(sess *firstlogin.Session, resumed bool) *Status {
	remaining := s.store.DialogueLength() - len(sess.Exchanges)
	if remaining < 0 || sess.IsComplete() {
		remaining = 0
	}
	return &Status{
		Session:   sess,
		Mood:      negotiation.MoodFor(sess),
		Remaining: remaining,
		Resumed:   resumed,
	}
}

func validateText(text string) error {
	if text == "" {
		return dnderr.InvalidArgument("response text is required")
	}
	if len(text) > maxResponseLength {
		return dnderr.InvalidArgumentf("response is longer than %d characters", maxResponseLength)
	}
	return nil
}
