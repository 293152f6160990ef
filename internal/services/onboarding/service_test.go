package onboarding_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/shipyard-negotiation/internal/domain/firstlogin"
	dnderr "github.com/KirkDiggler/shipyard-negotiation/internal/errors"
	"github.com/KirkDiggler/shipyard-negotiation/internal/services/analysis"
	mockanalysis "github.com/KirkDiggler/shipyard-negotiation/internal/services/analysis/mock"
	"github.com/KirkDiggler/shipyard-negotiation/internal/services/negotiation"
	"github.com/KirkDiggler/shipyard-negotiation/internal/services/onboarding"
)

// playDialogue claims ship and answers every remaining question
func playDialogue(t *testing.T, svc onboarding.Service, playerID string, ship firstlogin.ShipType) *onboarding.Status {
	t.Helper()
	ctx := context.Background()

	status, err := svc.StartOrResumeSession(ctx, playerID)
	require.NoError(t, err)

	status, err = svc.ClaimShip(ctx, status.Session.ID, ship, "That "+ship.DisplayName()+" is mine, I flew her in an hour ago.")
	require.NoError(t, err)

	for i := 0; status.Remaining > 0; i++ {
		status, err = svc.SubmitResponse(ctx, status.Session.ID, status.Session.Pending.Sequence, answers[i%len(answers)])
		require.NoError(t, err)
	}
	return status
}

func TestService_StartOrResumeSession(t *testing.T) {
	h := newHarness(t, harnessConfig{})
	ctx := context.Background()

	started, err := h.service.StartOrResumeSession(ctx, "player-1")
	require.NoError(t, err)
	assert.False(t, started.Resumed)
	assert.Equal(t, firstlogin.PhaseShipSelection, started.Session.Phase)
	assert.Equal(t, 1, started.Session.Attempt)
	assert.Equal(t, firstlogin.ShipEscapePod, started.Session.Offer.Ships[0])
	require.NotNil(t, started.Session.Pending)
	assert.Equal(t, 1, started.Session.Pending.Sequence)
	assert.Equal(t, onboarding.DefaultDialogueLength, started.Remaining)

	resumed, err := h.service.StartOrResumeSession(ctx, "player-1")
	require.NoError(t, err)
	assert.True(t, resumed.Resumed)
	assert.Equal(t, started.Session.ID, resumed.Session.ID)

	_, err = h.service.StartOrResumeSession(ctx, " ")
	assert.Error(t, err)
}

func TestService_ClaimShip(t *testing.T) {
	h := newHarness(t, harnessConfig{})
	ctx := context.Background()

	status, err := h.service.StartOrResumeSession(ctx, "player-1")
	require.NoError(t, err)
	id := status.Session.ID

	_, err = h.service.ClaimShip(ctx, id, firstlogin.ShipCargoFreighter, "It's my freighter.")
	assert.Equal(t, dnderr.CodeInvalidArgument, dnderr.GetCode(err), "ship not offered")

	_, err = h.service.ClaimShip(ctx, id, firstlogin.ShipDefender, "   ")
	assert.Equal(t, dnderr.CodeInvalidArgument, dnderr.GetCode(err))

	_, err = h.service.SubmitResponse(ctx, id, 1, "hello")
	assert.True(t, dnderr.IsInvalidPhase(err), "answers need a claim first")

	claimed, err := h.service.ClaimShip(ctx, id, firstlogin.ShipDefender, "My name is Mara Voss and that Defender is mine.")
	require.NoError(t, err)
	assert.Equal(t, firstlogin.PhaseDialogue, claimed.Session.Phase)
	assert.Equal(t, firstlogin.ShipDefender, claimed.Session.ClaimedShip)
	assert.Equal(t, "Mara Voss", claimed.Session.PlayerName)
	require.Len(t, claimed.Session.Exchanges, 1)
	assert.Equal(t, firstlogin.TopicShipClaim, claimed.Session.Exchanges[0].Topic)
	require.NotNil(t, claimed.Session.Pending)
	assert.Equal(t, 2, claimed.Session.Pending.Sequence)
	assert.Equal(t, 1, claimed.Session.FallbackAnalyses, "heuristic analyzer scores as fallback")

	_, err = h.service.ClaimShip(ctx, id, firstlogin.ShipDefender, "Again.")
	assert.True(t, dnderr.IsInvalidPhase(err))
}

func TestService_SubmitResponse_RejectsAnsweredSequence(t *testing.T) {
	h := newHarness(t, harnessConfig{})
	ctx := context.Background()

	status, err := h.service.StartOrResumeSession(ctx, "player-1")
	require.NoError(t, err)
	status, err = h.service.ClaimShip(ctx, status.Session.ID, firstlogin.ShipDefender, "The Defender is mine.")
	require.NoError(t, err)

	_, err = h.service.SubmitResponse(ctx, status.Session.ID, 2, answers[0])
	require.NoError(t, err)

	_, err = h.service.SubmitResponse(ctx, status.Session.ID, 2, answers[1])
	require.Error(t, err)
	assert.True(t, dnderr.IsSequenceConflict(err))
	assert.Equal(t, 3, dnderr.GetMeta(err)["expected_sequence"])

	_, err = h.service.SubmitResponse(ctx, status.Session.ID, 9, answers[1])
	assert.True(t, dnderr.IsSequenceConflict(err))

	stored, err := h.service.GetSessionStatus(ctx, status.Session.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Session.Exchanges, 2)
	assert.Equal(t, answers[0], stored.Session.Exchanges[1].Response)
}

func TestService_ConcurrentSubmitHasOneWinner(t *testing.T) {
	gate := &sync.WaitGroup{}
	analyzer := &scoreAnalyzer{score: 0.6}
	h := newHarness(t, harnessConfig{analyzer: analyzer})
	ctx := context.Background()

	status, err := h.service.StartOrResumeSession(ctx, "player-1")
	require.NoError(t, err)
	status, err = h.service.ClaimShip(ctx, status.Session.ID, firstlogin.ShipDefender, "The Defender is mine.")
	require.NoError(t, err)

	// Both submissions are held inside the analyzer until each has passed the
	// pre-check, so they race on the append
	gate.Add(2)
	analyzer.gate = gate

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		wins      int
		conflicts int
	)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(text string) {
			defer wg.Done()
			_, err := h.service.SubmitResponse(ctx, status.Session.ID, 2, text)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case dnderr.IsSequenceConflict(err):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(answers[i])
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, conflicts)

	stored, err := h.service.GetSessionStatus(ctx, status.Session.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Session.Exchanges, 2)
}

func TestService_CompleteSession_Scenarios(t *testing.T) {
	tests := []struct {
		name        string
		ship        firstlogin.ShipType
		score       float64
		wantKind    firstlogin.OutcomeKind
		wantShip    firstlogin.ShipType
		wantCredits int
		wantTrade   bool
		wantPenalty bool
	}{
		{
			name:        "convincing pilot keeps the defender",
			ship:        firstlogin.ShipDefender,
			score:       0.9,
			wantKind:    firstlogin.OutcomeSuccess,
			wantShip:    firstlogin.ShipDefender,
			wantCredits: 7000,
			wantTrade:   true,
		},
		{
			name:        "weak bluff on a defender is caught",
			ship:        firstlogin.ShipDefender,
			score:       0.2,
			wantKind:    firstlogin.OutcomeFailure,
			wantShip:    firstlogin.ShipEscapePod,
			wantCredits: 500,
			wantPenalty: true,
		},
		{
			name:        "escape pod is never refused",
			ship:        firstlogin.ShipEscapePod,
			score:       0.05,
			wantKind:    firstlogin.OutcomePartialSuccess,
			wantShip:    firstlogin.ShipEscapePod,
			wantCredits: 800,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, harnessConfig{analyzer: &scoreAnalyzer{score: tt.score}})
			ctx := context.Background()

			status := playDialogue(t, h.service, "player-1", tt.ship)
			assert.True(t, status.CanComplete())

			done, err := h.service.CompleteSession(ctx, status.Session.ID)
			require.NoError(t, err)

			sess := done.Session
			assert.Equal(t, firstlogin.PhaseComplete, sess.Phase)
			require.NotNil(t, sess.Outcome)
			assert.Equal(t, tt.wantKind, sess.Outcome.Kind)
			assert.Equal(t, tt.wantShip, sess.Outcome.AwardedShip)
			assert.Equal(t, tt.wantCredits, sess.Outcome.Credits)
			assert.Equal(t, tt.wantTrade, sess.Outcome.TradeBonus)
			assert.Equal(t, tt.wantPenalty, sess.Outcome.ReputationPenalty)
			assert.NotEmpty(t, sess.Outcome.GuardVerdict)
			assert.Nil(t, sess.Pending)
			require.NotNil(t, sess.CompletedAt)

			grant, err := h.ledger.GetBySession(ctx, sess.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantShip, grant.Ship)
			assert.Equal(t, tt.wantCredits, grant.Credits)
			assert.Equal(t, "Mara Voss", grant.Nickname)
			assert.Equal(t, *grant, *sess.Grant)

			again, err := h.service.CompleteSession(ctx, sess.ID)
			require.NoError(t, err, "completion is repeatable")
			assert.Equal(t, *sess.Outcome, *again.Session.Outcome)
		})
	}
}

func TestService_CompleteSession_Preconditions(t *testing.T) {
	h := newHarness(t, harnessConfig{})
	ctx := context.Background()

	status, err := h.service.StartOrResumeSession(ctx, "player-1")
	require.NoError(t, err)
	id := status.Session.ID

	_, err = h.service.CompleteSession(ctx, id)
	assert.True(t, dnderr.IsInvalidPhase(err))

	_, err = h.service.ClaimShip(ctx, id, firstlogin.ShipDefender, "The Defender is mine.")
	require.NoError(t, err)

	_, err = h.service.CompleteSession(ctx, id)
	assert.True(t, dnderr.IsIncompleteDialogue(err))

	_, err = h.service.CompleteSession(ctx, "missing")
	assert.True(t, dnderr.IsNotFound(err))
}

func TestService_CompletedSessionRejectsFurtherAnswers(t *testing.T) {
	h := newHarness(t, harnessConfig{analyzer: &scoreAnalyzer{score: 0.7}})
	ctx := context.Background()

	status := playDialogue(t, h.service, "player-1", firstlogin.ShipDefender)
	_, err := h.service.CompleteSession(ctx, status.Session.ID)
	require.NoError(t, err)

	_, err = h.service.SubmitResponse(ctx, status.Session.ID, 5, "one more thing")
	assert.True(t, dnderr.IsInvalidPhase(err))

	assert.True(t, dnderr.IsInvalidPhase(h.service.AbandonSession(ctx, status.Session.ID)))

}

func TestService_FinishedPlayerCannotNegotiateAgain(t *testing.T) {
	h := newHarness(t, harnessConfig{analyzer: &scoreAnalyzer{score: 0.95}})
	ctx := context.Background()

	status := playDialogue(t, h.service, "player-1", firstlogin.ShipDefender)
	done, err := h.service.CompleteSession(ctx, status.Session.ID)
	require.NoError(t, err)

	again, err := h.service.StartOrResumeSession(ctx, "player-1")
	require.NoError(t, err)
	assert.True(t, again.Resumed)
	assert.Equal(t, status.Session.ID, again.Session.ID)
	assert.Equal(t, firstlogin.PhaseComplete, again.Session.Phase)
	assert.Equal(t, done.Session.Grant.Ship, again.Session.Grant.Ship)

	granted, err := h.ledger.ListByPlayer(ctx, "player-1")
	require.NoError(t, err)
	assert.Len(t, granted, 1, "one starting grant per player")

	// the session can expire from storage; the ledger still remembers
	require.NoError(t, h.sessions.Delete(ctx, status.Session.ID))
	_, err = h.service.StartOrResumeSession(ctx, "player-1")
	assert.True(t, dnderr.IsAlreadyFinalized(err))

	granted, err = h.ledger.ListByPlayer(ctx, "player-1")
	require.NoError(t, err)
	assert.Len(t, granted, 1)
}

func TestService_GetPlayerStatus(t *testing.T) {
	h := newHarness(t, harnessConfig{analyzer: &scoreAnalyzer{score: 0.95}})
	ctx := context.Background()

	fresh, err := h.service.GetPlayerStatus(ctx, "player-1")
	require.NoError(t, err)
	assert.True(t, fresh.RequiresFirstLogin)
	assert.Nil(t, fresh.Active)
	assert.Nil(t, fresh.Grant)

	status := playDialogue(t, h.service, "player-1", firstlogin.ShipDefender)

	inProgress, err := h.service.GetPlayerStatus(ctx, "player-1")
	require.NoError(t, err)
	assert.True(t, inProgress.RequiresFirstLogin)
	require.NotNil(t, inProgress.Active)
	assert.Equal(t, status.Session.ID, inProgress.Active.Session.ID)

	_, err = h.service.CompleteSession(ctx, status.Session.ID)
	require.NoError(t, err)

	finished, err := h.service.GetPlayerStatus(ctx, "player-1")
	require.NoError(t, err)
	assert.False(t, finished.RequiresFirstLogin)
	assert.Nil(t, finished.Active)
	require.NotNil(t, finished.Grant)
	assert.Equal(t, status.Session.ID, finished.Grant.SessionID)

	_, err = h.service.GetPlayerStatus(ctx, "")
	assert.True(t, dnderr.Is(err, dnderr.CodeInvalidArgument))
}

func TestService_AbandonSession(t *testing.T) {
	h := newHarness(t, harnessConfig{})
	ctx := context.Background()

	first, err := h.service.StartOrResumeSession(ctx, "player-1")
	require.NoError(t, err)
	require.NoError(t, h.service.AbandonSession(ctx, first.Session.ID))

	_, err = h.service.GetSessionStatus(ctx, first.Session.ID)
	assert.True(t, dnderr.IsNotFound(err))

	second, err := h.service.StartOrResumeSession(ctx, "player-1")
	require.NoError(t, err)
	assert.NotEqual(t, first.Session.ID, second.Session.ID)
}

func TestService_DialogueLengthIsConfigurable(t *testing.T) {
	h := newHarness(t, harnessConfig{analyzer: &scoreAnalyzer{score: 0.5}, dialogueLength: 2})

	status := playDialogue(t, h.service, "player-1", firstlogin.ShipDefender)
	assert.Len(t, status.Session.Exchanges, 2)
	assert.Nil(t, status.Session.Pending)
	assert.True(t, status.CanComplete())
}

func TestService_GuardFollowsContradictionWithChallenge(t *testing.T) {
	h := newHarness(t, harnessConfig{})
	ctx := context.Background()

	status, err := h.service.StartOrResumeSession(ctx, "player-1")
	require.NoError(t, err)
	status, err = h.service.ClaimShip(ctx, status.Session.ID, firstlogin.ShipDefender, "Call me Mara. The Defender is mine.")
	require.NoError(t, err)

	status, err = h.service.SubmitResponse(ctx, status.Session.ID, 2, "My name is Jonah Pike, I fly a scout ship.")
	require.NoError(t, err)

	last := status.Session.Exchanges[len(status.Session.Exchanges)-1]
	assert.NotEmpty(t, last.Analysis.Contradictions)
	require.NotNil(t, status.Session.Pending)
	assert.True(t, status.Session.Pending.Challenge)
	assert.Equal(t, "Mara", status.Session.PlayerName, "first introduction wins")
}

func TestService_AnalyzerReceivesSnapshotAndPrompt(t *testing.T) {
	ctrl := gomock.NewController(t)
	analyzer := mockanalysis.NewMockAnalyzer(ctrl)
	h := newHarness(t, harnessConfig{analyzer: analyzer})
	ctx := context.Background()

	status, err := h.service.StartOrResumeSession(ctx, "player-1")
	require.NoError(t, err)
	opening := *status.Session.Pending

	analyzer.EXPECT().
		Analyze(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req *analysis.Request) (*firstlogin.AnalysisResult, error) {
			assert.Equal(t, opening, req.Prompt)
			assert.Equal(t, firstlogin.ShipDefender, req.Session.ClaimedShip)
			assert.Empty(t, req.Session.Exchanges)
			return &firstlogin.AnalysisResult{Persuasiveness: 1, Confidence: 1, Consistency: 1, Detail: 1,
				Source: firstlogin.SourcePrimary}, nil
		})

	claimed, err := h.service.ClaimShip(ctx, status.Session.ID, firstlogin.ShipDefender, "Mine.")
	require.NoError(t, err)
	assert.Equal(t, 1, claimed.Session.PrimaryAnalyses)
	assert.Equal(t, negotiation.MoodConvinced, claimed.Mood)
}
