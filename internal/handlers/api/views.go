package api

import (
	"time"

	"github.com/KirkDiggler/shipyard-negotiation/internal/domain/firstlogin"
	"github.com/KirkDiggler/shipyard-negotiation/internal/services/onboarding"
)

type shipView struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

type promptView struct {
	Sequence  int    `json:"sequence"`
	Text      string `json:"text"`
	Topic     string `json:"topic"`
	Challenge bool   `json:"challenge,omitempty"`
}

type exchangeView struct {
	Sequence  int       `json:"sequence"`
	Prompt    string    `json:"prompt"`
	Response  string    `json:"response"`
	Topic     string    `json:"topic"`
	Timestamp time.Time `json:"timestamp"`
}

type outcomeView struct {
	Kind              string `json:"kind"`
	AwardedShip       string `json:"awarded_ship"`
	Credits           int    `json:"credits"`
	TradeBonus        bool   `json:"trade_bonus"`
	ReputationPenalty bool   `json:"reputation_penalty"`
	GuardVerdict      string `json:"guard_verdict"`
}

// sessionView is the wire shape of a session. Analysis scores stay server side.
type sessionView struct {
	ID          string         `json:"id"`
	Phase       string         `json:"phase"`
	Attempt     int            `json:"attempt"`
	Offer       []shipView     `json:"offer"`
	ClaimedShip string         `json:"claimed_ship,omitempty"`
	Pending     *promptView    `json:"pending,omitempty"`
	Exchanges   []exchangeView `json:"exchanges"`
	GuardMood   string         `json:"guard_mood"`
	Remaining   int            `json:"remaining"`
	CanComplete bool           `json:"can_complete"`
	Resumed     bool           `json:"resumed,omitempty"`
	PlayerName  string         `json:"player_name,omitempty"`
	Outcome     *outcomeView   `json:"outcome,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
}

func newSessionView(st *onboarding.Status) *sessionView {
	sess := st.Session
	v := &sessionView{
		ID:          sess.ID,
		Phase:       string(sess.Phase),
		Attempt:     sess.Attempt,
		ClaimedShip: string(sess.ClaimedShip),
		Exchanges:   make([]exchangeView, 0, len(sess.Exchanges)),
		GuardMood:   string(st.Mood),
		Remaining:   st.Remaining,
		CanComplete: st.CanComplete(),
		Resumed:     st.Resumed,
		PlayerName:  sess.PlayerName,
		CreatedAt:   sess.CreatedAt,
		CompletedAt: sess.CompletedAt,
	}

	for _, s := range sess.Offer.Ships {
		v.Offer = append(v.Offer, shipView{Type: string(s), Name: s.DisplayName()})
	}
	if p := sess.Pending; p != nil {
		v.Pending = &promptView{Sequence: p.Sequence, Text: p.Text, Topic: string(p.Topic), Challenge: p.Challenge}
	}
	for _, ex := range sess.Exchanges {
		v.Exchanges = append(v.Exchanges, exchangeView{
			Sequence:  ex.Sequence,
			Prompt:    ex.NPCPrompt,
			Response:  ex.Response,
			Topic:     string(ex.Topic),
			Timestamp: ex.Timestamp,
		})
	}
	if o := sess.Outcome; o != nil && sess.Phase == firstlogin.PhaseComplete {
		v.Outcome = &outcomeView{
			Kind:              string(o.Kind),
			AwardedShip:       string(o.AwardedShip),
			Credits:           o.Credits,
			TradeBonus:        o.TradeBonus,
			ReputationPenalty: o.ReputationPenalty,
			GuardVerdict:      o.GuardVerdict,
		}
	}
	return v
}

type grantView struct {
	SessionID         string    `json:"session_id"`
	Ship              shipView  `json:"ship"`
	Credits           int       `json:"credits"`
	Outcome           string    `json:"outcome"`
	TradeBonus        bool      `json:"trade_bonus"`
	ReputationPenalty bool      `json:"reputation_penalty"`
	Nickname          string    `json:"nickname,omitempty"`
	GrantedAt         time.Time `json:"granted_at"`
}

type playerStatusView struct {
	PlayerID           string     `json:"player_id"`
	RequiresFirstLogin bool       `json:"requires_first_login"`
	ActiveSessionID    string     `json:"active_session_id,omitempty"`
	Grant              *grantView `json:"grant,omitempty"`
}

func newPlayerStatusView(ps *onboarding.PlayerStatus) *playerStatusView {
	v := &playerStatusView{
		PlayerID:           ps.PlayerID,
		RequiresFirstLogin: ps.RequiresFirstLogin,
	}
	if ps.Active != nil {
		v.ActiveSessionID = ps.Active.Session.ID
	}
	if g := ps.Grant; g != nil {
		v.Grant = &grantView{
			SessionID:         g.SessionID,
			Ship:              shipView{Type: string(g.Ship), Name: g.Ship.DisplayName()},
			Credits:           g.Credits,
			Outcome:           string(g.Outcome),
			TradeBonus:        g.TradeBonus,
			ReputationPenalty: g.ReputationPenalty,
			Nickname:          g.Nickname,
			GrantedAt:         g.GrantedAt,
		}
	}
	return v
}
