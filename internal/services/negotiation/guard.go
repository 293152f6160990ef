package negotiation

import (
	"fmt"
	"strings"

	"github.com/KirkDiggler/shipyard-negotiation/internal/dice"
	"github.com/KirkDiggler/shipyard-negotiation/internal/domain/firstlogin"
)

// Mood is how the guard currently feels about the player's story
type Mood string

const (
	MoodNeutral        Mood = "NEUTRAL"
	MoodSuspicious     Mood = "SUSPICIOUS"
	MoodVerySuspicious Mood = "VERY_SUSPICIOUS"
	MoodConvinced      Mood = "CONVINCED"
)

// MoodFor maps the running persuasion score to a mood
func MoodFor(sess *firstlogin.Session) Mood {
	if len(sess.Exchanges) == 0 {
		return MoodNeutral
	}
	switch s := sess.RunningScore; {
	case s > 0.8:
		return MoodConvinced
	case s > 0.6:
		return MoodNeutral
	case s > 0.4:
		return MoodSuspicious
	default:
		return MoodVerySuspicious
	}
}

var moodPrefix = map[Mood]string{
	MoodNeutral:        "",
	MoodConvinced:      "All right, that sounds reasonable. One more thing. ",
	MoodSuspicious:     "Hmm, I'm not sure I believe that. ",
	MoodVerySuspicious: "I'm not buying any of this so far. ",
}

var questionTopics = []firstlogin.Topic{
	firstlogin.TopicIdentityVerification,
	firstlogin.TopicArrivalDetails,
	firstlogin.TopicShipKnowledge,
	firstlogin.TopicSituationalAwareness,
}

// questionBank is keyed by topic then ship; the empty ship key is the default set
var questionBank = map[firstlogin.Topic]map[firstlogin.ShipType][]string{
	firstlogin.TopicIdentityVerification: {
		"": {
			"What name is on your pilot registration?",
			"Give me your clearance code for this sector.",
			"Read me the ID number on your pilot's license.",
		},
		firstlogin.ShipCargoFreighter: {
			"Freighter captains carry a merchant guild ID. Let's hear it.",
			"Which shipping outfit do you haul for?",
		},
		firstlogin.ShipScoutShip: {
			"Scouts need reconnaissance clearance. What's yours?",
			"Which survey division are you attached to?",
		},
	},
	firstlogin.TopicArrivalDetails: {
		"": {
			"When exactly did you dock here?",
			"Who signed off on your landing clearance?",
			"What approach vector did you come in on?",
		},
		firstlogin.ShipCargoFreighter: {
			"Where did you pick up your last load?",
			"Which bay is your freighter assigned to?",
		},
		firstlogin.ShipDefender: {
			"Which sector were you patrolling before this?",
			"Which security division sent you here?",
		},
	},
	firstlogin.TopicShipKnowledge: {
		"": {
			"What's the registry code on that hull?",
			"How old is the ship's registration?",
			"What's her top sustained speed?",
		},
		firstlogin.ShipScoutShip: {
			"What's the maximum sensor range on that scout?",
			"What drive does your scout run on?",
		},
		firstlogin.ShipCargoFreighter: {
			"How much cargo does she carry at full load?",
			"How many holds does your freighter have?",
		},
		firstlogin.ShipLightFreighter: {
			"What's the hold capacity on a light freighter like yours?",
		},
	},
	firstlogin.TopicSituationalAwareness: {
		"": {
			"Why is your ship sitting in a restricted area?",
			"Are you cleared for the outer rim transit lanes?",
			"Do you know the security protocol in force today?",
		},
		firstlogin.ShipEscapePod: {
			"Escape pods get registered with emergency services. Did you do that?",
			"Who let an escape pod dock at this bay?",
		},
		firstlogin.ShipFastCourier: {
			"What priority is the package you're carrying?",
			"Who's the recipient of your delivery?",
		},
	},
}

// OpeningPrompt is the guard's first question, answered by the ship claim
func OpeningPrompt(offer firstlogin.ShipOffer) *firstlogin.PendingPrompt {
	names := make([]string, len(offer.Ships))
	for i, s := range offer.Ships {
		names[i] = s.DisplayName()
	}

	return &firstlogin.PendingPrompt{
		Sequence: 1,
		Topic:    firstlogin.TopicShipClaim,
		Text: fmt.Sprintf("Hold it. This dock is restricted. I've got a %s berthed here. "+
			"Which one is yours, and why should I believe you?", strings.Join(names, ", ")),
	}
}

// NextPrompt picks the guard's next question after the last appended exchange.
// Topics are not repeated until all have been asked. A contradiction in the
// last answer produces a challenge prompt. The choice depends only on the
// session's seed and history.
func NextPrompt(sess *firstlogin.Session) *firstlogin.PendingPrompt {
	seq := sess.LastSequence() + 1
	roller := dice.NewSeededRoller(sess.Offer.Seed ^ (uint64(seq) * 0x9e3779b97f4a7c15))

	asked := make(map[firstlogin.Topic]bool)
	for _, ex := range sess.Exchanges {
		asked[ex.Topic] = true
	}
	var remaining []firstlogin.Topic
	for _, t := range questionTopics {
		if !asked[t] {
			remaining = append(remaining, t)
		}
	}
	if len(remaining) == 0 {
		remaining = questionTopics
	}

	topic := remaining[roller.Intn(len(remaining))]
	questions := questionBank[topic][sess.ClaimedShip]
	if len(questions) == 0 {
		questions = questionBank[topic][""]
	}
	question := questions[roller.Intn(len(questions))]

	prompt := &firstlogin.PendingPrompt{Sequence: seq, Topic: topic}

	if n := len(sess.Exchanges); n > 0 && len(sess.Exchanges[n-1].Analysis.Contradictions) > 0 {
		prompt.Challenge = true
		prompt.Text = fmt.Sprintf("Wait. That doesn't add up: %s. Straighten that out for me. %s",
			sess.Exchanges[n-1].Analysis.Contradictions[0], question)
		return prompt
	}

	prompt.Text = moodPrefix[MoodFor(sess)] + question
	return prompt
}

// Verdict is the guard's closing line for an outcome
func Verdict(o *firstlogin.NegotiationOutcome) string {
	switch o.Kind {
	case firstlogin.OutcomeSuccess:
		line := fmt.Sprintf("Everything checks out. The %s is yours, captain. Sorry for the trouble.",
			o.AwardedShip.DisplayName())
		if o.TradeBonus {
			line += " I'll put in a word with the trade office. They like pilots who know their business."
		}
		return line
	case firstlogin.OutcomePartialSuccess:
		return fmt.Sprintf("Your story almost holds up. Almost. Take the %s and %d credits and don't make me regret it.",
			o.AwardedShip.DisplayName(), o.Credits)
	default:
		return fmt.Sprintf("Nice try. That's going in my report. You get the %s and %d credits, and I'll be watching you.",
			o.AwardedShip.DisplayName(), o.Credits)
	}
}
