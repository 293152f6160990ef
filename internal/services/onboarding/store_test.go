package onboarding_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/shipyard-negotiation/internal/domain/firstlogin"
	dnderr "github.com/KirkDiggler/shipyard-negotiation/internal/errors"
	mockonboardingsessions "github.com/KirkDiggler/shipyard-negotiation/internal/repositories/onboardingsessions/mock"
	"github.com/KirkDiggler/shipyard-negotiation/internal/services/onboarding"
	"github.com/KirkDiggler/shipyard-negotiation/internal/testutils"
)

func exchange(seq int) firstlogin.DialogueExchange {
	return testutils.CreateTestExchange(seq, firstlogin.TopicArrivalDetails, "Docked at bay 7.", testutils.CreateTestAnalysis(0.6))
}

func TestStore_PhaseMachine(t *testing.T) {
	h := newHarness(t, harnessConfig{})
	ctx := context.Background()

	sess, err := h.store.Create(ctx, "player-1", testutils.CreateTestOffer(1, firstlogin.ShipDefender))
	require.NoError(t, err)
	assert.Equal(t, "session-1", sess.ID)

	_, err = h.store.Transition(ctx, sess.ID, firstlogin.PhaseComplete)
	assert.True(t, dnderr.IsInvalidPhase(err), "cannot skip the dialogue")

	_, err = h.store.AppendExchange(ctx, sess.ID, exchange(1))
	assert.True(t, dnderr.IsInvalidPhase(err), "no answers before a claim")

	sess, err = h.store.Transition(ctx, sess.ID, firstlogin.PhaseDialogue)
	require.NoError(t, err)

	_, err = h.store.Transition(ctx, sess.ID, firstlogin.PhaseShipSelection)
	assert.True(t, dnderr.IsInvalidPhase(err), "no going back")

	_, err = h.store.Transition(ctx, sess.ID, firstlogin.PhaseComplete)
	assert.True(t, dnderr.IsInvalidPhase(err), "completion needs a grant")

	_, err = h.store.RecordOutcome(ctx, sess.ID, &firstlogin.NegotiationOutcome{
		Kind:        firstlogin.OutcomeFailure,
		AwardedShip: firstlogin.ShipEscapePod,
		Credits:     500,
	})
	require.NoError(t, err)
	_, err = h.store.Complete(ctx, sess.ID, &firstlogin.PlayerGrant{
		SessionID: sess.ID,
		PlayerID:  "player-1",
		Ship:      firstlogin.ShipEscapePod,
		Credits:   500,
		Outcome:   firstlogin.OutcomeFailure,
	})
	require.NoError(t, err)

	_, err = h.store.AppendExchange(ctx, sess.ID, exchange(1))
	assert.True(t, dnderr.IsInvalidPhase(err), "complete sessions are closed")
}

func TestStore_TransitionCannotComplete(t *testing.T) {
	h := newHarness(t, harnessConfig{})
	ctx := context.Background()

	sess, err := h.store.Create(ctx, "player-1", testutils.CreateTestOffer(1, firstlogin.ShipDefender))
	require.NoError(t, err)
	_, err = h.store.Claim(ctx, sess.ID, firstlogin.ShipDefender, exchange(1))
	require.NoError(t, err)

	_, err = h.store.Transition(ctx, sess.ID, firstlogin.PhaseComplete)
	assert.True(t, dnderr.IsInvalidPhase(err))

	got, err := h.store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, firstlogin.PhaseDialogue, got.Phase)
	assert.Nil(t, got.Outcome)
	assert.Nil(t, got.Grant)
}

func TestStore_AppendRequiresNextSequence(t *testing.T) {
	h := newHarness(t, harnessConfig{})
	ctx := context.Background()

	sess, err := h.store.Create(ctx, "player-1", testutils.CreateTestOffer(1, firstlogin.ShipDefender))
	require.NoError(t, err)

	_, err = h.store.Claim(ctx, sess.ID, firstlogin.ShipDefender, exchange(2))
	assert.True(t, dnderr.IsSequenceConflict(err))

	sess, err = h.store.Claim(ctx, sess.ID, firstlogin.ShipDefender, exchange(1))
	require.NoError(t, err)
	assert.Equal(t, int64(2), sess.Version)

	_, err = h.store.AppendExchange(ctx, sess.ID, exchange(1))
	assert.True(t, dnderr.IsSequenceConflict(err))
	_, err = h.store.AppendExchange(ctx, sess.ID, exchange(3))
	assert.True(t, dnderr.IsSequenceConflict(err))

	sess, err = h.store.AppendExchange(ctx, sess.ID, exchange(2))
	require.NoError(t, err)
	assert.Equal(t, 2, sess.LastSequence())
	assert.InDelta(t, 0.6, sess.RunningScore, 1e-9)
	assert.Equal(t, 2, sess.PrimaryAnalyses)
	require.NotNil(t, sess.Pending)
	assert.Equal(t, 3, sess.Pending.Sequence)
}

func TestStore_StopsAskingAtDialogueLength(t *testing.T) {
	h := newHarness(t, harnessConfig{dialogueLength: 3})
	ctx := context.Background()

	sess, err := h.store.Create(ctx, "player-1", testutils.CreateTestOffer(1, firstlogin.ShipDefender))
	require.NoError(t, err)
	_, err = h.store.Claim(ctx, sess.ID, firstlogin.ShipDefender, exchange(1))
	require.NoError(t, err)
	_, err = h.store.AppendExchange(ctx, sess.ID, exchange(2))
	require.NoError(t, err)
	sess, err = h.store.AppendExchange(ctx, sess.ID, exchange(3))
	require.NoError(t, err)
	assert.Nil(t, sess.Pending)

	_, err = h.store.AppendExchange(ctx, sess.ID, exchange(4))
	assert.True(t, dnderr.IsSequenceConflict(err))
}

func TestStore_RetriesVersionConflicts(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mockonboardingsessions.NewMockRepository(ctrl)
	store := onboarding.NewStore(&onboarding.StoreConfig{Repository: repo, Clock: fixedClock{now: testNow}})
	ctx := context.Background()

	sess := testutils.CreateTestSession("s1", "p1")

	gomock.InOrder(
		repo.EXPECT().Get(ctx, "s1").Return(sess.Clone(), nil),
		repo.EXPECT().Update(ctx, gomock.Any()).Return(dnderr.Conflictf("stale")),
		repo.EXPECT().Get(ctx, "s1").Return(sess.Clone(), nil),
		repo.EXPECT().Update(ctx, gomock.Any()).Return(nil),
	)

	got, err := store.Transition(ctx, "s1", firstlogin.PhaseDialogue)
	require.NoError(t, err)
	assert.Equal(t, firstlogin.PhaseDialogue, got.Phase)
}

func TestStore_GivesUpAfterRepeatedConflicts(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mockonboardingsessions.NewMockRepository(ctrl)
	store := onboarding.NewStore(&onboarding.StoreConfig{Repository: repo})
	ctx := context.Background()

	sess := testutils.CreateTestSession("s1", "p1")
	repo.EXPECT().Get(ctx, "s1").Return(sess.Clone(), nil).Times(3)
	repo.EXPECT().Update(ctx, gomock.Any()).Return(dnderr.Conflictf("stale")).Times(3)

	_, err := store.Transition(ctx, "s1", firstlogin.PhaseDialogue)
	assert.True(t, dnderr.IsConflict(err))
}

func TestStore_AbandonOnlyIncomplete(t *testing.T) {
	h := newHarness(t, harnessConfig{})
	ctx := context.Background()

	sess, err := h.store.Create(ctx, "player-1", testutils.CreateTestOffer(1))
	require.NoError(t, err)

	_, err = h.store.Create(ctx, "player-1", testutils.CreateTestOffer(2))
	assert.True(t, dnderr.IsSessionAlreadyActive(err))

	require.NoError(t, h.store.Abandon(ctx, sess.ID))
	assert.True(t, dnderr.IsNotFound(h.store.Abandon(ctx, sess.ID)))

	again, err := h.store.Create(ctx, "player-1", testutils.CreateTestOffer(2))
	require.NoError(t, err)
	assert.Equal(t, 1, again.Attempt, "abandoned attempts are forgotten")
}

func TestNewStore_RequiresRepository(t *testing.T) {
	assert.Panics(t, func() { onboarding.NewStore(&onboarding.StoreConfig{}) })
}
