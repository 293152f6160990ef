package firstlogin

import "time"

// Phase is the lifecycle position of a session
type Phase string

const (
	PhaseShipSelection Phase = "SHIP_SELECTION"
	PhaseDialogue      Phase = "DIALOGUE"
	PhaseComplete      Phase = "COMPLETE"
)

var phaseOrder = map[Phase]int{
	PhaseShipSelection: 0,
	PhaseDialogue:      1,
	PhaseComplete:      2,
}

// CanTransition reports whether to is the single phase that directly follows p
func (p Phase) CanTransition(to Phase) bool {
	from, ok := phaseOrder[p]
	if !ok {
		return false
	}
	next, ok := phaseOrder[to]
	if !ok {
		return false
	}
	return next == from+1
}

// ShipOffer is the set of hulls presented for one session, with the inputs
// that produced it so it can be regenerated.
type ShipOffer struct {
	Ships      []ShipType `json:"ships"`
	Seed       uint64     `json:"seed"`
	RarityRoll int        `json:"rarity_roll"`
}

// Contains reports whether ship was offered
func (o *ShipOffer) Contains(ship ShipType) bool {
	for _, s := range o.Ships {
		if s == ship {
			return true
		}
	}
	return false
}

// Topic is the subject of a guard question
type Topic string

const (
	TopicShipClaim            Topic = "ship_claim"
	TopicIdentityVerification Topic = "identity_verification"
	TopicArrivalDetails       Topic = "arrival_details"
	TopicShipKnowledge        Topic = "ship_knowledge"
	TopicSituationalAwareness Topic = "situational_awareness"
)

// AnalysisSource records which analyzer scored an exchange
type AnalysisSource string

const (
	SourcePrimary   AnalysisSource = "primary"
	SourceHeuristic AnalysisSource = "heuristic"
)

// AnalysisResult scores one player response. All scores are in [0,1].
type AnalysisResult struct {
	Persuasiveness float64           `json:"persuasiveness"`
	Confidence     float64           `json:"confidence"`
	Consistency    float64           `json:"consistency"`
	Detail         float64           `json:"detail"`
	Contradictions []string          `json:"contradictions,omitempty"`
	Facts          map[string]string `json:"facts,omitempty"`
	Source         AnalysisSource    `json:"source"`
}

// DialogueExchange is one guard prompt and the player's verbatim answer.
// Exchanges are never modified once appended.
type DialogueExchange struct {
	Sequence  int            `json:"sequence"`
	NPCPrompt string         `json:"npc_prompt"`
	Response  string         `json:"response"`
	Timestamp time.Time      `json:"timestamp"`
	Topic     Topic          `json:"topic"`
	Challenge bool           `json:"challenge"` // prompt followed a detected contradiction
	Analysis  AnalysisResult `json:"analysis"`
}

// PendingPrompt is the guard question waiting for an answer
type PendingPrompt struct {
	Sequence  int    `json:"sequence"`
	Text      string `json:"text"`
	Topic     Topic  `json:"topic"`
	Challenge bool   `json:"challenge"`
}

// OutcomeKind classifies the result of a negotiation
type OutcomeKind string

const (
	OutcomeFailure        OutcomeKind = "FAILURE"
	OutcomePartialSuccess OutcomeKind = "PARTIAL_SUCCESS"
	OutcomeSuccess        OutcomeKind = "SUCCESS"
)

// Rank orders outcomes so FAILURE < PARTIAL_SUCCESS < SUCCESS
func (k OutcomeKind) Rank() int {
	switch k {
	case OutcomeSuccess:
		return 2
	case OutcomePartialSuccess:
		return 1
	default:
		return 0
	}
}

// NegotiationOutcome is derived once from a finished dialogue
type NegotiationOutcome struct {
	Kind              OutcomeKind `json:"kind"`
	AwardedShip       ShipType    `json:"awarded_ship"`
	Credits           int         `json:"credits"`
	Persuasion        float64     `json:"persuasion"`
	Skill             SkillLevel  `json:"skill"`
	SkillScore        float64     `json:"skill_score"`
	TradeBonus        bool        `json:"trade_bonus"`
	ReputationPenalty bool        `json:"reputation_penalty"`
	GuardVerdict      string      `json:"guard_verdict,omitempty"`
}

// PlayerGrant is what the rest of the game receives once a session is finalized
type PlayerGrant struct {
	SessionID         string      `json:"session_id"`
	PlayerID          string      `json:"player_id"`
	Ship              ShipType    `json:"ship"`
	Credits           int         `json:"credits"`
	TradeBonus        bool        `json:"trade_bonus"`
	ReputationPenalty bool        `json:"reputation_penalty"`
	Outcome           OutcomeKind `json:"outcome"`
	Nickname          string      `json:"nickname,omitempty"`
	GrantedAt         time.Time   `json:"granted_at"`
}

// Session is one player's onboarding negotiation
type Session struct {
	ID          string     `json:"id"`
	PlayerID    string     `json:"player_id"`
	Attempt     int        `json:"attempt"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	Phase       Phase              `json:"phase"`
	Offer       ShipOffer          `json:"offer"`
	ClaimedShip ShipType           `json:"claimed_ship,omitempty"`
	Exchanges   []DialogueExchange `json:"exchanges"`
	Pending     *PendingPrompt     `json:"pending,omitempty"`

	RunningScore float64 `json:"running_score"`
	PlayerName   string  `json:"player_name,omitempty"`

	PrimaryAnalyses  int `json:"primary_analyses"`
	FallbackAnalyses int `json:"fallback_analyses"`

	Outcome *NegotiationOutcome `json:"outcome,omitempty"`
	Grant   *PlayerGrant        `json:"grant,omitempty"`

	// Version is bumped on every write and used for optimistic concurrency
	Version int64 `json:"version"`
}

// IsComplete reports whether the session can no longer change
func (s *Session) IsComplete() bool {
	return s.Phase == PhaseComplete
}

// LastSequence returns the highest appended sequence, 0 when empty
func (s *Session) LastSequence() int {
	if len(s.Exchanges) == 0 {
		return 0
	}
	return s.Exchanges[len(s.Exchanges)-1].Sequence
}

// Facts merges the facts extracted so far. Earlier claims win.
func (s *Session) Facts() map[string]string {
	facts := make(map[string]string)
	for _, ex := range s.Exchanges {
		for k, v := range ex.Analysis.Facts {
			if _, ok := facts[k]; !ok {
				facts[k] = v
			}
		}
	}
	return facts
}

// Clone returns a deep copy so callers cannot mutate stored state
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}

	c := *s
	c.Offer.Ships = append([]ShipType(nil), s.Offer.Ships...)

	c.Exchanges = make([]DialogueExchange, len(s.Exchanges))
	for i, ex := range s.Exchanges {
		ex.Analysis.Contradictions = append([]string(nil), ex.Analysis.Contradictions...)
		if ex.Analysis.Facts != nil {
			facts := make(map[string]string, len(ex.Analysis.Facts))
			for k, v := range ex.Analysis.Facts {
				facts[k] = v
			}
			ex.Analysis.Facts = facts
		}
		c.Exchanges[i] = ex
	}

	if s.CompletedAt != nil {
		t := *s.CompletedAt
		c.CompletedAt = &t
	}
	if s.Pending != nil {
		p := *s.Pending
		c.Pending = &p
	}
	if s.Outcome != nil {
		o := *s.Outcome
		c.Outcome = &o
	}
	if s.Grant != nil {
		g := *s.Grant
		c.Grant = &g
	}

	return &c
}
