package testutils

import (
	"time"

	"github.com/KirkDiggler/shipyard-negotiation/internal/domain/firstlogin"
)

// FixedTime is the clock every fixture uses
var FixedTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// CreateTestOffer creates an offer with the escape pod first followed by ships
func CreateTestOffer(seed uint64, ships ...firstlogin.ShipType) firstlogin.ShipOffer {
	return firstlogin.ShipOffer{
		Ships:      append([]firstlogin.ShipType{firstlogin.ShipEscapePod}, ships...),
		Seed:       seed,
		RarityRoll: 50,
	}
}

// CreateTestSession creates a session in ship selection offering a scout ship
// and a defender
func CreateTestSession(id, playerID string) *firstlogin.Session {
	return &firstlogin.Session{
		ID:        id,
		PlayerID:  playerID,
		Attempt:   1,
		CreatedAt: FixedTime,
		UpdatedAt: FixedTime,
		Phase:     firstlogin.PhaseShipSelection,
		Offer:     CreateTestOffer(42, firstlogin.ShipScoutShip, firstlogin.ShipDefender),
		Version:   1,
	}
}

// CreateTestAnalysis creates a primary analysis with every score set to score
func CreateTestAnalysis(score float64) firstlogin.AnalysisResult {
	return firstlogin.AnalysisResult{
		Persuasiveness: score,
		Confidence:     score,
		Consistency:    score,
		Detail:         score,
		Source:         firstlogin.SourcePrimary,
	}
}

// CreateTestExchange creates an exchange at seq answered with response
func CreateTestExchange(seq int, topic firstlogin.Topic, response string, analysis firstlogin.AnalysisResult) firstlogin.DialogueExchange {
	return firstlogin.DialogueExchange{
		Sequence:  seq,
		NPCPrompt: "State your business.",
		Response:  response,
		Timestamp: FixedTime.Add(time.Duration(seq) * time.Minute),
		Topic:     topic,
		Analysis:  analysis,
	}
}

// CreateTestDialogueSession creates a session in DIALOGUE that claimed ship and
// has one exchange per response, each scored at score
func CreateTestDialogueSession(id, playerID string, ship firstlogin.ShipType, score float64, responses ...string) *firstlogin.Session {
	sess := CreateTestSession(id, playerID)
	sess.Phase = firstlogin.PhaseDialogue
	sess.ClaimedShip = ship

	topics := []firstlogin.Topic{
		firstlogin.TopicShipClaim,
		firstlogin.TopicIdentityVerification,
		firstlogin.TopicArrivalDetails,
		firstlogin.TopicShipKnowledge,
		firstlogin.TopicSituationalAwareness,
	}
	for i, r := range responses {
		sess.Exchanges = append(sess.Exchanges,
			CreateTestExchange(i+1, topics[i%len(topics)], r, CreateTestAnalysis(score)))
	}
	sess.RunningScore = score
	return sess
}
