package onboardingsessions

import (
	"github.com/KirkDiggler/shipyard-negotiation/internal/domain/firstlogin"
)

// Stats aggregates a set of sessions for the admin view
type Stats struct {
	Sessions   int
	ByPhase    map[firstlogin.Phase]int
	ByOutcome  map[firstlogin.OutcomeKind]int
	ByShip     map[firstlogin.ShipType]int
	Credits    int
	Primary    int
	Fallback   int
	persuasion float64
	resolved   int
}

func NewStats() *Stats {
	return &Stats{
		ByPhase:   map[firstlogin.Phase]int{},
		ByOutcome: map[firstlogin.OutcomeKind]int{},
		ByShip:    map[firstlogin.ShipType]int{},
	}
}

// Add counts one session. It has the Scan callback signature.
func (s *Stats) Add(sess *firstlogin.Session) error {
	s.Sessions++
	s.ByPhase[sess.Phase]++
	s.Primary += sess.PrimaryAnalyses
	s.Fallback += sess.FallbackAnalyses

	if sess.Outcome != nil {
		s.ByOutcome[sess.Outcome.Kind]++
		s.persuasion += sess.Outcome.Persuasion
		s.resolved++
	}
	if sess.Grant != nil {
		s.ByShip[sess.Grant.Ship]++
		s.Credits += sess.Grant.Credits
	}
	return nil
}

// AveragePersuasion is the mean final score over sessions with an outcome
func (s *Stats) AveragePersuasion() float64 {
	if s.resolved == 0 {
		return 0
	}
	return s.persuasion / float64(s.resolved)
}

// FallbackRate is the share of analyses served by the keyword fallback
func (s *Stats) FallbackRate() float64 {
	total := s.Primary + s.Fallback
	if total == 0 {
		return 0
	}
	return float64(s.Fallback) / float64(total)
}
