package firstlogin_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/KirkDiggler/shipyard-negotiation/internal/domain/firstlogin"
)

func TestPhase_CanTransition(t *testing.T) {
	tests := []struct {
		from, to firstlogin.Phase
		want     bool
	}{
		{firstlogin.PhaseShipSelection, firstlogin.PhaseDialogue, true},
		{firstlogin.PhaseDialogue, firstlogin.PhaseComplete, true},
		{firstlogin.PhaseShipSelection, firstlogin.PhaseComplete, false},
		{firstlogin.PhaseComplete, firstlogin.PhaseDialogue, false},
		{firstlogin.PhaseDialogue, firstlogin.PhaseDialogue, false},
		{firstlogin.PhaseDialogue, "LOBBY", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransition(tt.to))
		})
	}
}

func TestOutcomeKind_Rank(t *testing.T) {
	assert.Less(t, firstlogin.OutcomeFailure.Rank(), firstlogin.OutcomePartialSuccess.Rank())
	assert.Less(t, firstlogin.OutcomePartialSuccess.Rank(), firstlogin.OutcomeSuccess.Rank())
}

func TestSession_CloneIsDeep(t *testing.T) {
	done := time.Now()
	sess := &firstlogin.Session{
		ID:          "s1",
		Offer:       firstlogin.ShipOffer{Ships: []firstlogin.ShipType{firstlogin.ShipEscapePod}},
		CompletedAt: &done,
		Exchanges: []firstlogin.DialogueExchange{
			{Sequence: 1, Analysis: firstlogin.AnalysisResult{Facts: map[string]string{"name": "Vex"}}},
		},
		Outcome: &firstlogin.NegotiationOutcome{Credits: 500},
	}

	c := sess.Clone()
	c.Offer.Ships[0] = firstlogin.ShipDefender
	c.Exchanges[0].Analysis.Facts["name"] = "Other"
	c.Outcome.Credits = 9000

	assert.Equal(t, firstlogin.ShipEscapePod, sess.Offer.Ships[0])
	assert.Equal(t, "Vex", sess.Exchanges[0].Analysis.Facts["name"])
	assert.Equal(t, 500, sess.Outcome.Credits)
}

func TestSession_FactsFirstClaimWins(t *testing.T) {
	sess := &firstlogin.Session{
		Exchanges: []firstlogin.DialogueExchange{
			{Sequence: 1, Analysis: firstlogin.AnalysisResult{Facts: map[string]string{"name": "vex"}}},
			{Sequence: 2, Analysis: firstlogin.AnalysisResult{Facts: map[string]string{"name": "mira", "origin": "titan"}}},
		},
	}

	facts := sess.Facts()
	assert.Equal(t, "vex", facts["name"])
	assert.Equal(t, "titan", facts["origin"])
	assert.Equal(t, 2, sess.LastSequence())
}
