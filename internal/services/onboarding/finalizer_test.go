package onboarding_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/shipyard-negotiation/internal/domain/firstlogin"
	dnderr "github.com/KirkDiggler/shipyard-negotiation/internal/errors"
	mockgrants "github.com/KirkDiggler/shipyard-negotiation/internal/repositories/grants/mock"
	"github.com/KirkDiggler/shipyard-negotiation/internal/testutils"
)

// readyToFinalize plays a session through to a recorded outcome
func readyToFinalize(t *testing.T, h *harness) string {
	t.Helper()
	ctx := context.Background()

	sess, err := h.store.Create(ctx, "player-1", testutils.CreateTestOffer(1, firstlogin.ShipDefender))
	require.NoError(t, err)
	_, err = h.store.Claim(ctx, sess.ID, firstlogin.ShipDefender, exchange(1))
	require.NoError(t, err)

	_, err = h.store.RecordOutcome(ctx, sess.ID, &firstlogin.NegotiationOutcome{
		Kind:        firstlogin.OutcomeSuccess,
		AwardedShip: firstlogin.ShipDefender,
		Credits:     7000,
		TradeBonus:  true,
	})
	require.NoError(t, err)
	return sess.ID
}

func TestFinalizer_WritesGrantOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	ledger := mockgrants.NewMockRepository(ctrl)
	h := newHarness(t, harnessConfig{ledger: ledger})
	ctx := context.Background()
	id := readyToFinalize(t, h)

	ledger.EXPECT().
		Record(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, g *firstlogin.PlayerGrant) (*firstlogin.PlayerGrant, bool, error) {
			assert.Equal(t, id, g.SessionID)
			assert.Equal(t, firstlogin.ShipDefender, g.Ship)
			assert.Equal(t, 7000, g.Credits)
			assert.True(t, g.TradeBonus)
			assert.Equal(t, testNow, g.GrantedAt)
			return g, true, nil
		}).
		Times(1)

	grant, err := h.finalizer.Finalize(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, firstlogin.OutcomeSuccess, grant.Outcome)

	again, err := h.finalizer.Finalize(ctx, id)
	require.Error(t, err)
	assert.True(t, dnderr.IsAlreadyFinalized(err))
	assert.Equal(t, *grant, *again, "memoised grant comes back with the signal")

	sess, err := h.store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, firstlogin.PhaseComplete, sess.Phase)
}

func TestFinalizer_UsesExistingLedgerEntry(t *testing.T) {
	h := newHarness(t, harnessConfig{})
	ctx := context.Background()
	id := readyToFinalize(t, h)

	// A previous attempt reached the ledger but not the session write
	earlier := &firstlogin.PlayerGrant{
		SessionID: id,
		PlayerID:  "player-1",
		Ship:      firstlogin.ShipDefender,
		Credits:   7000,
		Outcome:   firstlogin.OutcomeSuccess,
		GrantedAt: testNow.Add(-1),
	}
	_, _, err := h.ledger.Record(ctx, earlier)
	require.NoError(t, err)

	grant, err := h.finalizer.Finalize(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, earlier.GrantedAt, grant.GrantedAt)
}

func TestFinalizer_RequiresOutcome(t *testing.T) {
	h := newHarness(t, harnessConfig{})
	ctx := context.Background()

	sess, err := h.store.Create(ctx, "player-1", testutils.CreateTestOffer(1, firstlogin.ShipDefender))
	require.NoError(t, err)

	_, err = h.finalizer.Finalize(ctx, sess.ID)
	assert.True(t, dnderr.IsIncompleteDialogue(err))
}

func TestFinalizer_LedgerFailureLeavesSessionOpen(t *testing.T) {
	ctrl := gomock.NewController(t)
	ledger := mockgrants.NewMockRepository(ctrl)
	h := newHarness(t, harnessConfig{ledger: ledger})
	ctx := context.Background()
	id := readyToFinalize(t, h)

	ledger.EXPECT().Record(ctx, gomock.Any()).Return(nil, false, errors.New("disk full"))

	_, err := h.finalizer.Finalize(ctx, id)
	require.Error(t, err)

	sess, err := h.store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, firstlogin.PhaseDialogue, sess.Phase)
	assert.Nil(t, sess.Grant)
}
